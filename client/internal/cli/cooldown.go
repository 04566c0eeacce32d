package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/itchan-dev/confessions/client/internal/setup"
	"github.com/itchan-dev/confessions/shared/config"
	"github.com/itchan-dev/confessions/shared/logger"
)

type cooldownStatus struct {
	Allowed          bool   `json:"allowed"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	Window           string `json:"window"`
}

func NewCooldownCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "cooldown",
		Short: "Show when the next confession is allowed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCooldown(cmd, rootOpts)
		},
	}
}

// runCooldown only reads the device store; it never contacts the backend.
func runCooldown(cmd *cobra.Command, opts *RootOptions) error {
	cfg := config.MustLoadClient(opts.ConfigFolder)
	logger.InitializeTo(cmd.ErrOrStderr(), cfg.Public.LogLevel, cfg.Public.LogJSON)

	deps, err := setup.SetupDependencies(cfg)
	if err != nil {
		return err
	}
	defer deps.Store.Close()

	remaining := deps.Limiter.Remaining(cmd.Context())
	status := cooldownStatus{
		Allowed:          remaining == 0,
		RemainingSeconds: int64(remaining.Round(time.Second) / time.Second),
		Window:           deps.Limiter.Window().String(),
	}

	msg := "You can confess now."
	if !status.Allowed {
		msg = fmt.Sprintf("Next confession allowed in %s.", remaining.Round(time.Second))
	}
	return newFormatter(cmd, opts).Message(msg, status)
}
