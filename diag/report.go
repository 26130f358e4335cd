package diag

import (
	"strings"

	"github.com/teranos/derivegen/rust"
)

// Report renders err as the artifact that replaces generated code: a comment
// naming the location followed by a compile_error! invocation, so the host
// compiler stops with the message. Errors that are not generation errors
// are reported the same way without a location.
func Report(err error) string {
	if err == nil {
		return ""
	}

	var w rust.Writer
	if de, ok := As(err); ok {
		if loc := de.Location.String(); loc != "" {
			w.Line(rust.LineComment("derivegen: " + string(de.Kind) + " at " + loc))
		} else {
			w.Line(rust.LineComment("derivegen: " + string(de.Kind)))
		}
	} else {
		w.Line("// derivegen: generation failed")
	}
	w.Line("::core::compile_error! { %s }", rust.Quote(singleLine(err.Error())))
	return w.String()
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
