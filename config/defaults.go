package config

import (
	"github.com/spf13/viper"

	"github.com/teranos/derivegen/builder"
	"github.com/teranos/derivegen/debugfmt"
	"github.com/teranos/derivegen/shape"
)

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("min_version", "")

	v.SetDefault("generate.derives", []string{"Builder", "CustomDebug"})
	v.SetDefault("generate.jobs", 0)
	v.SetDefault("generate.out_dir", "")
	v.SetDefault("generate.format_command", "")
	v.SetDefault("generate.debounce_ms", 500)

	v.SetDefault("builder.attribute", "builder")
	v.SetDefault("builder.suffix", builder.DefaultNames.Suffix)
	v.SetDefault("builder.constructor", builder.DefaultNames.Constructor)
	v.SetDefault("builder.build", builder.DefaultNames.Build)

	v.SetDefault("debug.attribute", "debug")
	v.SetDefault("debug.capability", debugfmt.DefaultCapability)

	v.SetDefault("shape.option_words", shape.DefaultOptionWords)
	v.SetDefault("shape.container_words", shape.DefaultContainerWords)
	v.SetDefault("shape.phantom_words", shape.DefaultPhantomWords)
}

// Default returns the configuration with nothing but defaults applied.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := unmarshal(v)
	if err != nil {
		// Defaults always decode.
		panic(err)
	}
	return cfg
}
