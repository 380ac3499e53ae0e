package commands

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/walteh/filesync/cmd/filesync/opts"
	"github.com/walteh/filesync/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

// ErrNothingToClear is returned when clear is asked to clear nothing
var ErrNothingToClear = errors.Base("nothing to clear")

// ClearAction empties the records store and/or the input directory of each job
func ClearAction(clearRecords, clearInput bool) func(plan *opts.Plan) operation.Action {
	return func(plan *opts.Plan) operation.Action {
		return func(ctx context.Context, op operation.Operator) error {
			if err := op.Initialize(ctx); err != nil {
				return err
			}
			if clearRecords {
				if err := op.ClearRecordsFile(ctx); err != nil {
					return err
				}
			}
			if clearInput {
				if err := op.ClearInputDirectory(ctx); err != nil {
					return err
				}
			}
			return nil
		}
	}
}

// NewClearCmd creates a new clear command
func NewClearCmd(o *opts.RootOpts) *cobra.Command {
	var clearRecords, clearInput bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the records file and/or the input directory",
		Long: `Clear resets a job without processing anything.
It will:
1. Truncate the records file (--records)
2. Delete every file directly inside the input directory (--input)

Sub-directories and the records file itself are never deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !clearRecords && !clearInput {
				return errors.Errorf("%w: pass --records and/or --input", ErrNothingToClear)
			}
			return Run(cmd.Context(), o, "clear", ClearAction(clearRecords, clearInput))
		},
	}

	cmd.Flags().BoolVar(&clearRecords, "records", false, "truncate the records file")
	cmd.Flags().BoolVar(&clearInput, "input", false, "delete the files in the input directory")

	return cmd
}
