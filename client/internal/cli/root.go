// Package cli is the terminal front end of the confessions board.
package cli

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/itchan-dev/confessions/client/internal/setup"
	"github.com/itchan-dev/confessions/shared/config"
	"github.com/itchan-dev/confessions/shared/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFolder string
	Format       string // "json" | "text"
	Verbose      bool
}

var ValidFormats = []string{"text", "json"}

// shutdownTimeout bounds how long a command waits for pending vote writes.
const shutdownTimeout = 15 * time.Second

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "confessions",
		Short: "Anonymous confessions board",
		Long:  "Read, post and vote on anonymous confessions. Votes and the feed are cached on this device.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFolder, "config_folder", "c", "config", "path to folder with configs")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.AddCommand(NewFeedCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewVoteCommand(opts, "up"))
	cmd.AddCommand(NewVoteCommand(opts, "down"))
	cmd.AddCommand(NewCooldownCommand(opts))

	return cmd
}

// open loads the config, wires the board and warm starts it. The caller must
// call close, which flushes pending vote writes.
func open(cmd *cobra.Command, opts *RootOptions) (*setup.Dependencies, func() error, error) {
	cfg := config.MustLoadClient(opts.ConfigFolder)

	level := cfg.Public.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	logger.InitializeTo(cmd.ErrOrStderr(), level, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		return nil, nil, err
	}

	if err := deps.Board.Start(cmd.Context()); err != nil {
		deps.Store.Close()
		return nil, nil, err
	}

	closeBoard := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return deps.Close(ctx)
	}
	return deps, closeBoard, nil
}

func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
	}
}
