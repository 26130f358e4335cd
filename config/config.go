// Package config loads derivegen settings from derivegen.toml and
// DERIVEGEN_* environment variables.
package config

// FileName is the project configuration file searched for from the working
// directory upwards.
const FileName = "derivegen.toml"

// EnvPrefix prefixes environment overrides: DERIVEGEN_GENERATE_JOBS=4.
const EnvPrefix = "DERIVEGEN"

// Config is the complete derivegen configuration.
type Config struct {
	// MinVersion is a semver constraint the running derivegen must satisfy,
	// e.g. ">= 0.3". Development builds skip the check.
	MinVersion string         `mapstructure:"min_version" toml:"min_version" json:"min_version" yaml:"min_version"`
	Generate   GenerateConfig `mapstructure:"generate" toml:"generate" json:"generate" yaml:"generate"`
	Builder    BuilderConfig  `mapstructure:"builder" toml:"builder" json:"builder" yaml:"builder"`
	Debug      DebugConfig    `mapstructure:"debug" toml:"debug" json:"debug" yaml:"debug"`
	Shape      ShapeConfig    `mapstructure:"shape" toml:"shape" json:"shape" yaml:"shape"`

	// Source is the file the configuration was read from, empty when only
	// defaults and environment applied.
	Source string `mapstructure:"-" toml:"-" json:"-" yaml:"-"`
}

// GenerateConfig controls a generation run.
type GenerateConfig struct {
	// Derives applied to records that list none.
	Derives []string `mapstructure:"derives" toml:"derives" json:"derives" yaml:"derives"`
	// Jobs limits parallel generation calls; 0 uses all CPUs.
	Jobs int `mapstructure:"jobs" toml:"jobs" json:"jobs" yaml:"jobs"`
	// OutDir receives generated files; empty writes to stdout.
	OutDir string `mapstructure:"out_dir" toml:"out_dir" json:"out_dir" yaml:"out_dir"`
	// FormatCommand is run on every generated file, which it receives on
	// stdin and returns on stdout, e.g. "rustfmt --edition 2021 --emit stdout".
	FormatCommand string `mapstructure:"format_command" toml:"format_command" json:"format_command" yaml:"format_command"`
	// DebounceMS is the quiet period before watch mode regenerates.
	DebounceMS int `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`
}

// BuilderConfig names the builder surface.
type BuilderConfig struct {
	Attribute   string `mapstructure:"attribute" toml:"attribute" json:"attribute" yaml:"attribute"`
	Suffix      string `mapstructure:"suffix" toml:"suffix" json:"suffix" yaml:"suffix"`
	Constructor string `mapstructure:"constructor" toml:"constructor" json:"constructor" yaml:"constructor"`
	Build       string `mapstructure:"build" toml:"build" json:"build" yaml:"build"`
}

// DebugConfig configures the Debug generator.
type DebugConfig struct {
	Attribute string `mapstructure:"attribute" toml:"attribute" json:"attribute" yaml:"attribute"`
	// Capability is the trait implemented and required of generic params.
	Capability string `mapstructure:"capability" toml:"capability" json:"capability" yaml:"capability"`
}

// ShapeConfig holds the words type classification matches on.
type ShapeConfig struct {
	OptionWords    []string `mapstructure:"option_words" toml:"option_words" json:"option_words" yaml:"option_words"`
	ContainerWords []string `mapstructure:"container_words" toml:"container_words" json:"container_words" yaml:"container_words"`
	PhantomWords   []string `mapstructure:"phantom_words" toml:"phantom_words" json:"phantom_words" yaml:"phantom_words"`
}
