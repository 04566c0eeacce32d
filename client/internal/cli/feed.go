package cli

import (
	"github.com/spf13/cobra"
)

func NewFeedCommand(rootOpts *RootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show the newest confessions",
		Long: `Fetch confessions newer than the cached ones and print the feed.

When the backend is unreachable the cached feed is printed with a warning.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFeed(cmd, rootOpts, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of confessions to show (0 for all)")

	return cmd
}

func runFeed(cmd *cobra.Command, opts *RootOptions, limit int) (err error) {
	deps, closeBoard, err := open(cmd, opts)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeBoard(); err == nil {
			err = cerr
		}
	}()

	state := deps.Board.State()
	posts := state.Posts
	if limit > 0 && len(posts) > limit {
		posts = posts[:limit]
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = PostView{Post: p, MyVote: deps.Board.CurrentUserVote(p.Id)}
	}

	warning := ""
	if state.Err != nil {
		warning = "showing cached confessions: " + state.Err.Error()
	}
	return newFormatter(cmd, opts).Posts(views, warning)
}
