package rust

import (
	"fmt"
	"strings"
)

// Writer accumulates Rust source with four-space indentation.
type Writer struct {
	sb     strings.Builder
	indent int
}

// Line writes one formatted line at the current indentation.
func (w *Writer) Line(format string, args ...interface{}) {
	if format == "" {
		w.sb.WriteByte('\n')
		return
	}
	w.sb.WriteString(strings.Repeat("    ", w.indent))
	if len(args) == 0 {
		w.sb.WriteString(format)
	} else {
		fmt.Fprintf(&w.sb, format, args...)
	}
	w.sb.WriteByte('\n')
}

// Open writes a line ending in " {" and indents.
func (w *Writer) Open(format string, args ...interface{}) {
	if format == "" {
		w.Line("{")
		w.indent++
		return
	}
	w.Line(format+" {", args...)
	w.indent++
}

// OpenWhere writes an item header followed by a where-clause, one predicate
// per line, and opens its body. Without predicates it behaves like Open.
func (w *Writer) OpenWhere(head string, preds []string) {
	if len(preds) == 0 {
		w.Open("%s", head)
		return
	}
	w.Line("%s", head)
	w.Line("where")
	w.indent++
	for _, p := range preds {
		w.Line("%s,", p)
	}
	w.indent--
	w.Open("")
}

// Close dedents and writes the closing brace plus an optional suffix.
func (w *Writer) Close(suffix string) {
	if w.indent > 0 {
		w.indent--
	}
	w.Line("}" + suffix)
}

// Indent and Dedent adjust the indentation for continuation lines.
func (w *Writer) Indent() { w.indent++ }

func (w *Writer) Dedent() {
	if w.indent > 0 {
		w.indent--
	}
}

// Blank writes an empty line.
func (w *Writer) Blank() { w.sb.WriteByte('\n') }

// String returns everything written so far.
func (w *Writer) String() string { return w.sb.String() }
