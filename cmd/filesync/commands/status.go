package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/walteh/filesync/cmd/filesync/opts"
	"github.com/walteh/filesync/pkg/log"
	"github.com/walteh/filesync/pkg/operation"
	"github.com/walteh/filesync/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// StatusAction lists the files each job would process next
func StatusAction(plan *opts.Plan) operation.Action {
	return func(ctx context.Context, op operation.Operator) error {
		pending, err := op.Status(ctx)
		if err != nil {
			return errors.Errorf("checking status: %w", err)
		}

		out, err := status.RenderPending(pending)
		if err != nil {
			return errors.Errorf("rendering status: %w", err)
		}

		paths := op.Paths()
		log.FromContext(ctx).Block(fmt.Sprintf("%s: %s -> %s\n%s", op.Name(), paths.In, paths.Out, out))
		return nil
	}
}

// NewStatusCmd creates a new status command
func NewStatusCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "List the files the next run would process",
		Long: `Status is a dry run of a processing pass.
It will:
1. Load the records file
2. List the regular files in the input directory
3. Report each new file with its size and type

Nothing is moved, copied or recorded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return Run(cmd.Context(), o, "status", StatusAction)
		},
	}

	return cmd
}
