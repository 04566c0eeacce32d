package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/itchan-dev/confessions/shared/domain"
)

// NewVoteCommand builds "up" or "down". Voting the same way twice retracts the vote.
func NewVoteCommand(rootOpts *RootOptions, direction string) *cobra.Command {
	dir := domain.VoteDirection(direction)

	return &cobra.Command{
		Use:   direction + " <post-id>",
		Short: fmt.Sprintf("Vote a confession %s (again to retract)", direction),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVote(cmd, rootOpts, args[0], dir)
		},
	}
}

func runVote(cmd *cobra.Command, opts *RootOptions, id domain.PostId, dir domain.VoteDirection) error {
	deps, closeBoard, err := open(cmd, opts)
	if err != nil {
		return err
	}

	if dir == domain.VoteUp {
		_, err = deps.Board.VoteUp(cmd.Context(), id)
	} else {
		_, err = deps.Board.VoteDown(cmd.Context(), id)
	}
	if err != nil {
		closeBoard()
		return err
	}

	// the write is sent on close; a failed write is rolled back by then
	if err := closeBoard(); err != nil {
		return err
	}
	if err := deps.Board.VoteError(id); err != nil {
		return fmt.Errorf("vote not saved: %w", err)
	}

	post, _ := deps.Engine.Post(id)
	return newFormatter(cmd, opts).Post(PostView{Post: post, MyVote: deps.Board.CurrentUserVote(id)})
}
