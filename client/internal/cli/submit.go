package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	var title, body string

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Post a confession",
		Long: `Post an anonymous confession.

Markup is stripped from the body. One confession is allowed per cooldown
window on this device. Use --body - to read the body from stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if body == "-" {
				raw, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read body from stdin: %w", err)
				}
				body = string(raw)
			}
			return runSubmit(cmd, rootOpts, title, body)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "confession title")
	cmd.Flags().StringVarP(&body, "body", "b", "", "confession body, - for stdin")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("body")

	return cmd
}

func runSubmit(cmd *cobra.Command, opts *RootOptions, title, body string) (err error) {
	deps, closeBoard, err := open(cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeBoard(); err == nil {
			err = cerr
		}
	}()

	post, err := deps.Board.Submit(cmd.Context(), title, body)
	if err != nil {
		return err
	}
	return newFormatter(cmd, opts).Post(PostView{Post: post})
}
