package composer

import "strings"

// State of the composer. Submissions are only actionable in NonEmpty.
type State int

const (
	Empty State = iota
	NonEmpty
)

func (s State) String() string {
	if s == NonEmpty {
		return "non-empty"
	}
	return "empty"
}

// Composer holds the text the user is typing but has not sent yet.
type Composer struct {
	value string
}

func New() *Composer {
	return &Composer{}
}

func (c *Composer) Set(v string) {
	c.value = v
}

func (c *Composer) Value() string {
	return c.value
}

// IsEmpty reports whether the draft is blank once surrounding whitespace is removed.
func (c *Composer) IsEmpty() bool {
	return strings.TrimSpace(c.value) == ""
}

func (c *Composer) State() State {
	if c.IsEmpty() {
		return Empty
	}
	return NonEmpty
}

// Take returns the trimmed draft and clears the composer.
// A blank draft is left untouched and ok is false.
func (c *Composer) Take() (text string, ok bool) {
	if c.IsEmpty() {
		return "", false
	}
	text = strings.TrimSpace(c.value)
	c.value = ""
	return text, true
}

func (c *Composer) Reset() {
	c.value = ""
}
