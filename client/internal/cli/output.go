package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/itchan-dev/confessions/shared/domain"
)

// OutputFormatter prints command results as text or json.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // warnings; keeps json on Writer parseable
}

// CLIResponse is the json envelope.
type CLIResponse struct {
	Status  string `json:"status"`
	Data    any    `json:"data,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// PostView is a post together with this device's vote on it.
type PostView struct {
	domain.Post
	MyVote domain.VoteDirection `json:"my_vote,omitempty"`
}

func (f *OutputFormatter) Posts(posts []PostView, warning string) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: posts, Warning: warning})
	}
	if warning != "" {
		fmt.Fprintf(f.ErrWriter, "warning: %s\n", warning)
	}
	if len(posts) == 0 {
		fmt.Fprintln(f.Writer, "No confessions yet.")
		return nil
	}
	for i, p := range posts {
		if i > 0 {
			fmt.Fprintln(f.Writer)
		}
		f.writePost(p)
	}
	return nil
}

func (f *OutputFormatter) Post(p PostView) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: p})
	}
	f.writePost(p)
	return nil
}

// Message prints a one-line result; data is only used by the json format.
func (f *OutputFormatter) Message(msg string, data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, msg)
	return nil
}

func (f *OutputFormatter) writePost(p PostView) {
	vote := ""
	switch p.MyVote {
	case domain.VoteUp:
		vote = "  [you: up]"
	case domain.VoteDown:
		vote = "  [you: down]"
	}
	fmt.Fprintf(f.Writer, "%s  %s\n", p.Id, p.Title)
	fmt.Fprintf(f.Writer, "  %s\n", p.Body)
	fmt.Fprintf(f.Writer, "  +%d / -%d%s  %s\n", p.Upvotes, p.Downvotes, vote, p.CreatedAt.Local().Format(time.DateTime))
}
