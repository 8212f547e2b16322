package tui

import "github.com/Afrawles/teampulse/internal/report"

// outcomeMsg delivers one fetch cycle's result back into the event loop.
// seq is the token handed out by the view at fetch start; the view discards
// the message when a newer fetch has been started since.
type outcomeMsg struct {
	name string
	seq  uint64
	out  report.Outcome
}
