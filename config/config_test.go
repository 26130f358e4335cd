package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/derivegen/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, []string{"Builder", "CustomDebug"}, cfg.Generate.Derives)
	assert.Equal(t, 0, cfg.Generate.Jobs)
	assert.Equal(t, 500, cfg.Generate.DebounceMS)
	assert.Equal(t, "builder", cfg.Builder.Attribute)
	assert.Equal(t, "Builder", cfg.Builder.Suffix)
	assert.Equal(t, "debug", cfg.Debug.Attribute)
	assert.Equal(t, "::std::fmt::Debug", cfg.Debug.Capability)
	assert.Equal(t, []string{"Option"}, cfg.Shape.OptionWords)
	assert.Equal(t, []string{"Vec"}, cfg.Shape.ContainerWords)
	assert.Equal(t, []string{"PhantomData"}, cfg.Shape.PhantomWords)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[generate]
jobs = 4
derives = ["Builder"]
format_command = "rustfmt --edition 2021 --emit stdout"

[builder]
suffix = "Maker"
build = "finish"

[shape]
container_words = ["Vec", "VecDeque"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, 4, cfg.Generate.Jobs)
	assert.Equal(t, []string{"Builder"}, cfg.Generate.Derives)
	assert.Equal(t, "Maker", cfg.Builder.Suffix)
	assert.Equal(t, "finish", cfg.Builder.Build)
	assert.Equal(t, "builder", cfg.Builder.Constructor, "unset keys keep their default")
	assert.Equal(t, []string{"Vec", "VecDeque"}, cfg.Shape.ContainerWords)

	args, err := cfg.FormatArgs()
	require.NoError(t, err)
	assert.Equal(t, []string{"rustfmt", "--edition", "2021", "--emit", "stdout"}, args)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[generate]\njobs = 4\n")
	t.Setenv("DERIVEGEN_GENERATE_JOBS", "2")
	t.Setenv("DERIVEGEN_DEBUG_CAPABILITY", "::core::fmt::Debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Generate.Jobs)
	assert.Equal(t, "::core::fmt::Debug", cfg.Debug.Capability)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "absent.toml")
}

func TestLoadInvalidFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "[generate]\njobs = -1\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate.jobs must be >= 0")
}

func TestFindProjectConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	assert.Equal(t, "", FindProjectConfig(nested))

	path := writeConfig(t, root, "")
	assert.Equal(t, path, FindProjectConfig(nested))
	assert.Equal(t, path, FindProjectConfig(root))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		errContains string
	}{
		{name: "negative debounce", mutate: func(c *Config) { c.Generate.DebounceMS = -5 }, errContains: "debounce_ms"},
		{name: "bad attribute", mutate: func(c *Config) { c.Builder.Attribute = "my-builder" }, errContains: "builder.attribute"},
		{name: "reserved build name", mutate: func(c *Config) { c.Builder.Build = "self" }, errContains: "builder.build"},
		{name: "same attributes", mutate: func(c *Config) { c.Debug.Attribute = "builder" }, errContains: "must differ"},
		{name: "empty suffix", mutate: func(c *Config) { c.Builder.Suffix = "" }, errContains: "builder.suffix"},
		{name: "capability not a path", mutate: func(c *Config) { c.Debug.Capability = "&Debug" }, errContains: "debug.capability"},
		{name: "bad word", mutate: func(c *Config) { c.Shape.PhantomWords = []string{"Phantom Data"} }, errContains: "shape.phantom_words"},
		{name: "unbalanced quote", mutate: func(c *Config) { c.Generate.FormatCommand = `rustfmt "--emit` }, errContains: "format_command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestCheckVersion(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.CheckVersion("0.1.0"), "no constraint")

	cfg.MinVersion = ">= 0.3.0"
	require.NoError(t, cfg.CheckVersion("dev"))
	require.NoError(t, cfg.CheckVersion("0.3.1"))
	require.NoError(t, cfg.CheckVersion("v1.0.0"))

	err := cfg.CheckVersion("0.2.9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not satisfy")
	assert.Contains(t, errors.FlattenHints(err), "upgrade derivegen")

	cfg.MinVersion = "not a constraint"
	assert.Error(t, cfg.CheckVersion("0.3.0"))
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg := Default()
	cfg.Generate.Jobs = 3
	cfg.Builder.Suffix = "Maker"
	require.NoError(t, Write(path, cfg, false))

	loaded, err := Load(path)
	require.NoError(t, err)
	loaded.Source = ""
	assert.Equal(t, cfg, loaded)

	err = Write(path, cfg, false)
	require.Error(t, err)
	assert.Contains(t, errors.FlattenHints(err), "--force")
	require.NoError(t, Write(path, cfg, true))
}

func TestGenerators(t *testing.T) {
	cfg := Default()
	gens := cfg.Generators()
	require.Len(t, gens, 2)
	assert.Equal(t, "Builder", gens[0].Name())
	assert.Equal(t, "CustomDebug", gens[1].Name())

	opts := cfg.Options()
	assert.Equal(t, cfg.Generate.Derives, opts.Default)
	assert.Len(t, opts.Generators, 2)
}
