package diag

import (
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/errors"
)

var loc = descriptor.Location{File: "command.yaml", Line: 7, Column: 9}

func TestErrorMessage(t *testing.T) {
	err := Errorf(UnrecognizedAnnotationKey, loc, "unrecognized key %q in builder attribute", "eac").
		WithHint("did you mean %q?", "each")

	assert.Equal(t, `command.yaml:7:9: unrecognized key "eac" in builder attribute (did you mean "each"?)`, err.Error())
	assert.True(t, errors.Is(err, errors.ErrGeneration))

	noLoc := Errorf(ConflictingOverride, descriptor.Location{}, "duplicate")
	assert.Equal(t, "duplicate", noLoc.Error())
}

func TestAsThroughWrapping(t *testing.T) {
	base := Errorf(MalformedAnnotationValue, loc, "expected string literal")
	wrapped := errors.Wrap(base, "generating Command")

	de, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, MalformedAnnotationValue, de.Kind)

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
}

func TestReport(t *testing.T) {
	err := Errorf(UnrecognizedAnnotationKey, loc, "expected `builder(each = \"...\")`")
	out := Report(errors.Wrap(err, "builder"))

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "// derivegen: unrecognized annotation key at command.yaml:7:9", lines[0])
	assert.Equal(t,
		"::core::compile_error! { \"builder: command.yaml:7:9: expected `builder(each = \\\"...\\\")`\" }",
		lines[1])

	assert.Equal(t, "", Report(nil))
	assert.Contains(t, Report(errors.New("boom\nagain")), `::core::compile_error! { "boom again" }`)
}

func TestFormat(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	err := Errorf(UnrecognizedAnnotationKey, loc, "unrecognized key \"eac\"").WithHint("did you mean \"each\"?")

	plain := Format(err, ContextPlain)
	assert.Equal(t, `command.yaml:7:9: unrecognized annotation key: unrecognized key "eac" (did you mean "each"?)`, plain)

	term := Format(err, ContextTerminal)
	assert.Contains(t, term, "Context:")
	assert.Contains(t, term, "Location: command.yaml:7:9")
	assert.Contains(t, term, "Suggestions:")
	assert.Contains(t, term, `did you mean "each"?`)

	other := errors.WithHint(errors.New("no such file"), "check the path")
	assert.Equal(t, "no such file", Format(other, ContextPlain))
	assert.Contains(t, Format(other, ContextTerminal), "check the path")
	assert.Equal(t, "", Format(nil, ContextPlain))
}
