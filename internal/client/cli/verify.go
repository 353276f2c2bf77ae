package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/crux/internal/client/flow"
	"github.com/dmitrijs2005/crux/internal/common"
)

// Lines the code screen understands besides digits.
const (
	codeCmdResend = "resend"
	codeCmdDelete = "-"
	codeCmdSubmit = "submit"
)

// codeScreen drives c from typed lines until the code is confirmed, the
// flow fails for good, or the user leaves with an empty line.
//
// Digits are typed from the focused cell, so a code can be entered in
// pieces. Once every cell is filled a new line replaces the whole code.
// A "-" line removes the last digit.
func (a *App) codeScreen(ctx context.Context, c *flow.Controller) error {
	defer c.Close()

	for {
		snap := c.Snapshot()
		switch snap.Stage {
		case flow.Authenticated:
			if snap.Mode == flow.ModeSignup {
				printlnFn("All set! Sign in with your email and password.")
			}
			return nil
		case flow.Failed:
			return errors.New(snap.Error)
		}

		line, err := getSimpleText(a.reader, codePrompt(snap), a.out)
		if err != nil {
			return err
		}

		switch line {
		case "":
			printlnFn("Verification left, use 'verify " + snap.Identifier + "' to come back")
			return nil
		case codeCmdResend:
			_ = a.report(c.Resend(ctx), "A new code was sent")
		case codeCmdDelete:
			deleteDigit(c, snap)
		case codeCmdSubmit:
			if res, ok := c.Submit(ctx); ok {
				_ = a.report(res, "")
			}
		default:
			a.typeCode(ctx, c, snap, line)
		}
	}
}

func (a *App) typeCode(ctx context.Context, c *flow.Controller, snap flow.Snapshot, line string) {
	if !common.IsDigits(line) {
		printlnFn("Digits only, please")
		return
	}
	at := snap.Focus
	if filled(snap.Cells) {
		c.Clear()
		at = 0
	}
	res, ok := c.Type(ctx, at, line)
	if !ok {
		return
	}
	_ = a.report(res, "Code accepted")
}

// deleteDigit removes the digit before the cursor. On an empty cell the
// first delete only moves focus back, so a second one clears that cell.
func deleteDigit(c *flow.Controller, snap flow.Snapshot) {
	c.Backspace(snap.Focus)
	if snap.Focus > 0 && snap.Cells[snap.Focus] == "" {
		c.Backspace(c.Snapshot().Focus)
	}
}

func codePrompt(snap flow.Snapshot) string {
	var b strings.Builder
	b.WriteString("Code [")
	for i, cell := range snap.Cells {
		if i > 0 {
			b.WriteByte(' ')
		}
		if cell == "" {
			cell = "_"
		}
		b.WriteString(cell)
	}
	b.WriteString("]")

	if snap.Mode == flow.ModeSignup {
		if snap.TimeLeft > 0 {
			fmt.Fprintf(&b, " resend in %ds", snap.TimeLeft)
		} else {
			b.WriteString(" type 'resend' for a new code")
		}
	}
	if snap.Error != "" {
		b.WriteString("\n" + snap.Error)
	}
	return b.String()
}

func filled(cells []string) bool {
	for _, c := range cells {
		if c == "" {
			return false
		}
	}
	return true
}
