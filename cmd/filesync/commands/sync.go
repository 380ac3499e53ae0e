package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/walteh/filesync/cmd/filesync/opts"
	"github.com/walteh/filesync/pkg/log"
	"github.com/walteh/filesync/pkg/operation"
	"github.com/walteh/filesync/pkg/status"
)

// SyncAction prepares each job's directories and runs one processing pass
func SyncAction(plan *opts.Plan) operation.Action {
	return func(ctx context.Context, op operation.Operator) error {
		if err := op.Initialize(ctx); err != nil {
			return err
		}

		summary, err := op.ProcessFiles(ctx, plan.Job(op).DeleteAfter)
		if summary != nil {
			printSummary(ctx, summary)
		}
		return err
	}
}

func printSummary(ctx context.Context, summary *status.Summary) {
	out, err := status.RenderSummary(summary)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("job", summary.Job).Msg("rendering summary")
		return
	}
	log.FromContext(ctx).Block(out)
}

// Run builds the plan, prints the command header and runs action over every job
func Run(ctx context.Context, o *opts.RootOpts, title string, action func(plan *opts.Plan) operation.Action) error {
	plan, err := o.Plan(ctx)
	if err != nil {
		return err
	}
	log.FromContext(ctx).Header(fmt.Sprintf("%s • %d job(s)", title, len(plan.Operators)))
	return operation.NewRunner(plan.Async).Run(ctx, plan.Operators, action(plan))
}
