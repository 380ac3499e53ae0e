package main

import (
	"context"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/filesync/cmd/filesync/commands"
	"github.com/walteh/filesync/cmd/filesync/opts"
	"github.com/walteh/filesync/pkg/log"
	"gitlab.com/tozd/go/errors"
)

const (
	flagClearRecords = "clear_records"
	flagClearInput   = "clear_input"
)

// newRootCmd creates the filesync command tree writing console lines to stdout
// and structured logs to stderr
func newRootCmd(fsys afero.Fs, stdout, stderr io.Writer) (*cobra.Command, error) {
	o := opts.New(fsys)

	cmd := &cobra.Command{
		Use:   "filesync",
		Short: "Move or copy new files from one directory to another, once",
		Long: `filesync moves or copies files from an input directory to an output
directory and remembers every file name it has handled in a records file,
so running it again never processes the same name twice.

Jobs come from --config, from the job flags, or from ./.filesync.
Every flag can also be set as FILESYNC_<FLAG>, e.g. FILESYNC_IN_DIRECTORY.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(setupLogging(cmd, o.Debug(), stdout, stderr))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			v := o.Viper
			if v.GetBool(flagClearRecords) || v.GetBool(flagClearInput) {
				return commands.Run(cmd.Context(), o, "clear", commands.ClearAction(v.GetBool(flagClearRecords), v.GetBool(flagClearInput)))
			}
			return commands.Run(cmd.Context(), o, "sync", commands.SyncAction)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := addRootFlags(cmd, o); err != nil {
		return nil, err
	}

	cmd.AddCommand(
		commands.NewClearCmd(o),
		commands.NewStatusCmd(o),
		newVersionCmd(),
	)

	return cmd, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) error {
	if err := o.AddJobFlags(cmd.PersistentFlags()); err != nil {
		return err
	}

	cmd.Flags().Bool(flagClearRecords, false, "truncate the records file and exit")
	cmd.Flags().Bool(flagClearInput, false, "delete the files in the input directory and exit")
	for _, name := range []string{flagClearRecords, flagClearInput} {
		if err := o.Viper.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
			return errors.Errorf("binding flag %s: %w", name, err)
		}
	}
	return nil
}

// setupLogging configures zerolog based on flags and attaches the console logger
func setupLogging(cmd *cobra.Command, debug bool, stdout, stderr io.Writer) context.Context {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: stderr}).Level(level).With().Timestamp().Logger()

	ctx := zlog.WithContext(cmd.Context())
	return log.NewContext(ctx, log.New(stdout, zlog))
}
