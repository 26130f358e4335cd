package diag

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/teranos/derivegen/errors"
)

// Context selects how a diagnostic is rendered.
type Context int

const (
	// ContextPlain is concise single-line text for logs and CI.
	ContextPlain Context = iota
	// ContextTerminal is coloured multi-line text for humans.
	ContextTerminal
)

// Format renders err for the given context. Hints attached with
// errors.WithHint are included alongside a generation error's own hint.
func Format(err error, ctx Context) string {
	if err == nil {
		return ""
	}
	de, ok := As(err)
	if !ok {
		if ctx == ContextPlain {
			return err.Error()
		}
		return pterm.Red(err.Error()) + formatHints(errors.GetAllHints(err))
	}

	hints := errors.GetAllHints(err)
	if de.Hint != "" {
		hints = append([]string{de.Hint}, hints...)
	}

	if ctx == ContextPlain {
		msg := string(de.Kind) + ": " + de.Message
		if loc := de.Location.String(); loc != "" {
			msg = loc + ": " + msg
		}
		if len(hints) > 0 {
			msg += fmt.Sprintf(" (%s)", hints[0])
		}
		return msg
	}

	out := pterm.Red(de.Message)
	out += fmt.Sprintf("\n\n%s", pterm.LightCyan("Context:"))
	out += fmt.Sprintf("\n  %s %s", pterm.Yellow("Kind:"), de.Kind)
	if loc := de.Location.String(); loc != "" {
		out += fmt.Sprintf("\n  %s %s", pterm.Yellow("Location:"), loc)
	}
	return out + formatHints(hints)
}

func formatHints(hints []string) string {
	if len(hints) == 0 {
		return ""
	}
	out := fmt.Sprintf("\n\n%s", pterm.Green("Suggestions:"))
	for _, h := range hints {
		out += fmt.Sprintf("\n  • %s", h)
	}
	return out
}
