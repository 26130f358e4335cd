package config

import (
	"time"

	"github.com/kballard/go-shellquote"

	"github.com/teranos/derivegen/builder"
	"github.com/teranos/derivegen/debugfmt"
	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/generate"
	"github.com/teranos/derivegen/shape"
)

// Classifier builds the type classifier from the shape words.
func (c *Config) Classifier() *shape.Classifier {
	return shape.New(
		shape.WithOptionWords(c.Shape.OptionWords...),
		shape.WithContainerWords(c.Shape.ContainerWords...),
		shape.WithPhantomWords(c.Shape.PhantomWords...),
	)
}

// Generators returns the configured generators in output order.
func (c *Config) Generators() []generate.Generator {
	classifier := c.Classifier()
	return []generate.Generator{
		builder.New(
			builder.WithClassifier(classifier),
			builder.WithAttribute(c.Builder.Attribute),
			builder.WithNames(builder.Names{
				Suffix:      c.Builder.Suffix,
				Constructor: c.Builder.Constructor,
				Build:       c.Builder.Build,
			}),
		),
		debugfmt.New(
			debugfmt.WithClassifier(classifier),
			debugfmt.WithAttribute(c.Debug.Attribute),
			debugfmt.WithCapability(c.Debug.Capability),
		),
	}
}

// Options returns the run options for generate.Run.
func (c *Config) Options() generate.Options {
	return generate.Options{
		Generators: c.Generators(),
		Default:    c.Generate.Derives,
		Jobs:       c.Generate.Jobs,
	}
}

// FormatArgs splits FormatCommand with shell quoting rules. It returns nil
// when no formatter is configured.
func (c *Config) FormatArgs() ([]string, error) {
	if c.Generate.FormatCommand == "" {
		return nil, nil
	}
	args, err := shellquote.Split(c.Generate.FormatCommand)
	if err != nil {
		return nil, errors.Wrapf(err, "generate.format_command %q", c.Generate.FormatCommand)
	}
	return args, nil
}

// Debounce is the watch-mode quiet period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Generate.DebounceMS) * time.Millisecond
}
