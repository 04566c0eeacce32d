package domain

import (
	"fmt"
	"time"
)

// for debug
func (p *Post) String() string {
	return fmt.Sprintf("[id:%s, title:%s, created:%s, up:%d, down:%d]",
		p.Id, p.Title, p.CreatedAt.Format(time.StampMilli), p.Upvotes, p.Downvotes)
}
