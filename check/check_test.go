package check

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/generate"
)

const userRS = generate.Header + `
// Source: schemas/user.yaml

pub struct UserBuilder {}
`

func write(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestCompareUpToDate(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "user.rs", userRS)

	res, err := Compare(dir, []generate.File{{Source: "schemas/user.yaml", Name: "user.rs", Content: userRS}})
	require.NoError(t, err)
	assert.True(t, res.UpToDate())
	assert.NoError(t, res.Err(dir))
}

func TestCompareIgnoresSourceLine(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "user.rs", userRS)

	moved := generate.Header + `
// Source: ../schemas/user.yaml

pub struct UserBuilder {}
`
	res, err := Compare(dir, []generate.File{{Name: "user.rs", Content: moved}})
	require.NoError(t, err)
	assert.True(t, res.UpToDate())
}

func TestCompareDetectsChanges(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "user.rs", userRS)
	write(t, dir, "old.rs", generate.Header+"\n\npub struct OldBuilder {}\n")
	write(t, dir, "handwritten.rs", "pub mod user;\n")

	changed := generate.Header + `
// Source: schemas/user.yaml

pub struct UserBuilder { id: u64 }
`
	res, err := Compare(dir, []generate.File{
		{Name: "user.rs", Content: changed},
		{Name: "post.rs", Content: generate.Header + "\n"},
	})
	require.NoError(t, err)
	require.False(t, res.UpToDate())
	require.Len(t, res.Differences, 3)

	modified, missing, orphan := res.Differences[0], res.Differences[1], res.Differences[2]

	assert.Equal(t, "user.rs", modified.File)
	assert.Equal(t, Modified, modified.Status)
	assert.Contains(t, modified.Diff, "--- a/user.rs")
	assert.Contains(t, modified.Diff, "+++ b/user.rs")
	assert.Contains(t, modified.Diff, "-pub struct UserBuilder {}")
	assert.Contains(t, modified.Diff, "+pub struct UserBuilder { id: u64 }")

	assert.Equal(t, "post.rs", missing.File)
	assert.Equal(t, Missing, missing.Status)

	assert.Equal(t, "old.rs", orphan.File, "files without the generated header are left alone")
	assert.Equal(t, Orphaned, orphan.Status)

	err = res.Err(dir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrOutOfDate))
	assert.Contains(t, err.Error(), "user.rs (modified), post.rs (missing), old.rs (orphaned)")
	assert.Contains(t, errors.FlattenHints(err), "derivegen generate --out")
}

func TestCompareMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "absent")
	res, err := Compare(dir, []generate.File{{Name: "user.rs", Content: userRS}})
	require.NoError(t, err)
	require.Len(t, res.Differences, 1)
	assert.Equal(t, Missing, res.Differences[0].Status)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "modified", Modified.String())
	assert.Equal(t, "missing", Missing.String())
	assert.Equal(t, "orphaned", Orphaned.String())
}
