package domain

type (
	PostId    = string
	PostTitle = string
	PostBody  = string
)

// VoteDirection is the vote a device holds on a post. The zero value means no vote.
type VoteDirection string

const (
	VoteNone VoteDirection = ""
	VoteUp   VoteDirection = "up"
	VoteDown VoteDirection = "down"
)

func (d VoteDirection) Valid() bool {
	return d == VoteUp || d == VoteDown
}

func (d VoteDirection) String() string {
	if d == VoteNone {
		return "none"
	}
	return string(d)
}
