// Package codeentry models the verification code input: a fixed row of
// single-digit cells with focus that follows typing and backspace, and a
// completion signal that fires once per completed code.
package codeentry

import (
	"strings"

	"github.com/dmitrijs2005/crux/internal/common"
)

// Entry is not safe for concurrent use; the flow controller serializes
// access to it.
type Entry struct {
	cells     []string
	focus     int
	submitted bool
}

// New returns an empty entry with length cells. A non-positive length means
// common.CodeLength.
func New(length int) *Entry {
	if length <= 0 {
		length = common.CodeLength
	}
	return &Entry{cells: make([]string, length)}
}

// Len returns the number of cells.
func (e *Entry) Len() int {
	return len(e.cells)
}

// Input applies text typed into cell i and reports a freshly completed code.
//
// A single digit fills cell i and moves focus to i+1 (focus stays on the last
// cell). Empty text clears cell i. Several digits, as from a paste, fill
// cells from i onward. Anything containing a non-digit is rejected and
// leaves the entry unchanged.
func (e *Entry) Input(i int, text string) (string, bool) {
	if i < 0 || i >= len(e.cells) {
		return "", false
	}

	switch {
	case text == "":
		e.cells[i] = ""
		e.focus = i
	case !common.IsDigits(text):
		return "", false
	default:
		n := 0
		for ; n < len(text) && i+n < len(e.cells); n++ {
			e.cells[i+n] = text[n : n+1]
		}
		e.focus = min(i+n, len(e.cells)-1)
	}
	return e.check()
}

// Backspace handles delete pressed in cell i. A filled cell is cleared and
// keeps focus. An empty cell only moves focus to the previous one.
func (e *Entry) Backspace(i int) {
	if i < 0 || i >= len(e.cells) {
		return
	}
	if e.cells[i] != "" {
		e.cells[i] = ""
		e.focus = i
	} else if i > 0 {
		e.focus = i - 1
	}
	e.check()
}

// Clear empties every cell, focuses the first one and re-arms completion.
func (e *Entry) Clear() {
	for i := range e.cells {
		e.cells[i] = ""
	}
	e.focus = 0
	e.submitted = false
}

// Code joins the cells in index order.
func (e *Entry) Code() string {
	return strings.Join(e.cells, "")
}

// Cells returns a copy of the cells.
func (e *Entry) Cells() []string {
	out := make([]string, len(e.cells))
	copy(out, e.cells)
	return out
}

// Focus returns the focused cell index.
func (e *Entry) Focus() int {
	return e.focus
}

// Complete reports whether every cell holds a digit.
func (e *Entry) Complete() bool {
	for _, c := range e.cells {
		if c == "" {
			return false
		}
	}
	return true
}

// Submitted reports whether the current complete code was already handed
// out.
func (e *Entry) Submitted() bool {
	return e.submitted
}

// check releases the code once per completed sequence. The latch is reset
// only when the code becomes incomplete, so editing a digit in place does
// not submit again.
func (e *Entry) check() (string, bool) {
	if !e.Complete() {
		e.submitted = false
		return "", false
	}
	if e.submitted {
		return "", false
	}
	e.submitted = true
	return e.Code(), true
}
