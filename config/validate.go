package config

import (
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/rust"
	"github.com/teranos/derivegen/version"
)

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Generate.Jobs < 0 {
		return errors.Newf("generate.jobs must be >= 0, got %d", c.Generate.Jobs)
	}
	if c.Generate.DebounceMS < 0 {
		return errors.Newf("generate.debounce_ms must be >= 0, got %d", c.Generate.DebounceMS)
	}
	if _, err := c.FormatArgs(); err != nil {
		return err
	}

	names := map[string]string{
		"builder.attribute":   c.Builder.Attribute,
		"builder.constructor": c.Builder.Constructor,
		"builder.build":       c.Builder.Build,
		"debug.attribute":     c.Debug.Attribute,
	}
	for _, key := range []string{"builder.attribute", "builder.constructor", "builder.build", "debug.attribute"} {
		if err := checkIdent(key, names[key]); err != nil {
			return err
		}
	}
	if c.Builder.Attribute == c.Debug.Attribute {
		return errors.Newf("builder.attribute and debug.attribute must differ, both are %q", c.Builder.Attribute)
	}
	// The suffix is appended to a record name, so it only needs identifier
	// characters.
	if c.Builder.Suffix == "" || !descriptor.IsIdent("X"+c.Builder.Suffix) {
		return errors.Newf("builder.suffix %q is not a valid identifier suffix", c.Builder.Suffix)
	}

	capability, err := descriptor.ParseType(c.Debug.Capability)
	if err != nil || capability.Kind != descriptor.KindPath || capability.QSelf != nil {
		return errors.Newf("debug.capability %q is not a trait path", c.Debug.Capability)
	}

	for key, words := range map[string][]string{
		"shape.option_words":    c.Shape.OptionWords,
		"shape.container_words": c.Shape.ContainerWords,
		"shape.phantom_words":   c.Shape.PhantomWords,
	} {
		for _, w := range words {
			if !descriptor.IsIdent(w) {
				return errors.Newf("%s: %q is not an identifier", key, w)
			}
		}
	}

	return c.CheckVersion(version.Get().Semver())
}

func checkIdent(key, value string) error {
	if !descriptor.IsIdent(value) || rust.IsReserved(value) {
		return errors.Newf("%s %q is not a valid identifier", key, value)
	}
	return nil
}

// CheckVersion verifies that v satisfies MinVersion. Development builds and
// an empty constraint always pass.
func (c *Config) CheckVersion(v string) error {
	if c.MinVersion == "" || v == "" || v == "dev" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.MinVersion)
	if err != nil {
		return errors.Wrapf(err, "min_version %q is not a valid constraint", c.MinVersion)
	}
	current, err := semver.NewVersion(v)
	if err != nil {
		return errors.Wrapf(err, "derivegen version %q is not semantic", v)
	}
	if !constraint.Check(current) {
		return errors.WithHint(
			errors.Newf("derivegen %s does not satisfy min_version %q", current, c.MinVersion),
			"upgrade derivegen or relax min_version")
	}
	return nil
}
