package validation

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"github.com/itchan-dev/confessions/shared/domain"
	"github.com/itchan-dev/confessions/shared/errors"
)

// strict policy drops every tag; script/style contents are dropped with them
var strictPolicy = bluemonday.StrictPolicy()

// Rules bounds a submission. Zero limits are not enforced.
type Rules struct {
	MaxBodyWords   int
	MaxTitleLength int
}

// maxStripPasses bounds the sanitize/unescape loop for deeply entity-encoded input.
const maxStripPasses = 8

// StripMarkup removes angle-bracket tags. Posts are rendered as plain text,
// so the entities bluemonday escapes are turned back into characters. That can
// expose encoded tags such as "&lt;b&gt;", so the two steps repeat until the
// text stops changing.
func StripMarkup(s string) string {
	for i := 0; i < maxStripPasses; i++ {
		out := html.UnescapeString(strictPolicy.Sanitize(s))
		if out == s {
			return out
		}
		s = out
	}
	// still nesting after every pass: keep it as inert text
	return strings.NewReplacer("<", "", ">", "").Replace(s)
}

// WordCount counts whitespace-delimited words, ignoring empty tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Clean trims title and body and strips markup from the body.
func Clean(title, body string) domain.PostCreationData {
	return domain.PostCreationData{
		Title: strings.TrimSpace(title),
		Body:  strings.TrimSpace(StripMarkup(strings.TrimSpace(body))),
	}
}

// Submission cleans the input and checks it against the rules.
func (r Rules) Submission(title, body string) (domain.PostCreationData, error) {
	data := Clean(title, body)

	if data.Title == "" {
		return data, &errors.ValidationError{Message: "Title is empty"}
	}
	if data.Body == "" {
		return data, &errors.ValidationError{Message: "Body is empty"}
	}
	if r.MaxTitleLength > 0 && utf8.RuneCountInString(data.Title) > r.MaxTitleLength {
		return data, &errors.ValidationError{Message: fmt.Sprintf("Title is too long (max %d characters)", r.MaxTitleLength)}
	}
	if r.MaxBodyWords > 0 {
		if n := WordCount(data.Body); n > r.MaxBodyWords {
			return data, &errors.ValidationError{Message: fmt.Sprintf("Body is too long: %d words (max %d)", n, r.MaxBodyWords)}
		}
	}
	return data, nil
}
