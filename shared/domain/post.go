package domain

import "time"

// Post is a single confession. Id and CreatedAt are assigned by the remote store
// and never change; the counters only move through the vote protocol.
type Post struct {
	Id        PostId    `json:"id"`
	Title     PostTitle `json:"title"`
	Body      PostBody  `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Upvotes   int       `json:"upvotes"`
	Downvotes int       `json:"downvotes"`
}

// to iterate thru layers: handler -> service -> storage
type PostCreationData struct {
	Title PostTitle
	Body  PostBody
}

type PostCounts struct {
	Upvotes   int
	Downvotes int
}

func (p *Post) Counts() PostCounts {
	return PostCounts{Upvotes: p.Upvotes, Downvotes: p.Downvotes}
}

func (p *Post) SetCounts(c PostCounts) {
	p.Upvotes = c.Upvotes
	p.Downvotes = c.Downvotes
}
