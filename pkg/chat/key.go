package chat

// KeyEnter is the only key the session reacts to.
const KeyEnter = "Enter"

// KeyEvent is a key press as reported by a surface (terminal, browser).
type KeyEvent struct {
	Key   string
	Shift bool
}

// KeyResult tells the surface what happened to a key event.
type KeyResult struct {
	// Handled is true when the session consumed the key; the surface must then
	// suppress its own default behavior (line break, form submit).
	Handled bool
	// Submitted is true when the key produced a user message.
	Submitted bool
}
