// Package check compares freshly generated files with the copies on disk.
package check

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/generate"
)

// Status classifies a file that is not up to date.
type Status int

const (
	// Modified files exist but differ from the generated content.
	Modified Status = iota
	// Missing files were generated but are not on disk.
	Missing
	// Orphaned files carry the generated header but no schema produces them.
	Orphaned
)

func (s Status) String() string {
	switch s {
	case Missing:
		return "missing"
	case Orphaned:
		return "orphaned"
	}
	return "modified"
}

// Difference describes one out-of-date file.
type Difference struct {
	File   string
	Status Status
	// Diff is a unified diff from the file on disk to the generated content.
	Diff string
}

// Result holds the result of a check.
type Result struct {
	Differences []Difference
}

// UpToDate reports whether nothing differs.
func (r *Result) UpToDate() bool {
	return len(r.Differences) == 0
}

// Err returns an error wrapping errors.ErrOutOfDate when files differ.
func (r *Result) Err(dir string) error {
	if r.UpToDate() {
		return nil
	}
	names := make([]string, len(r.Differences))
	for i, d := range r.Differences {
		names[i] = d.File + " (" + d.Status.String() + ")"
	}
	return errors.WithHintf(
		errors.Wrap(errors.ErrOutOfDate, strings.Join(names, ", ")),
		"run 'derivegen generate --out %s' to refresh them", dir)
}

// Compare checks files against dir. Lines naming the schema source are
// ignored, so checking from another working directory does not report
// spurious changes.
func Compare(dir string, files []generate.File) (*Result, error) {
	res := &Result{}
	expected := make(map[string]bool, len(files))

	for _, f := range files {
		expected[f.Name] = true
		path := filepath.Join(dir, f.Name)

		existing, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			res.Differences = append(res.Differences, Difference{
				File:   f.Name,
				Status: Missing,
				Diff:   unifiedDiff(f.Name, "", f.Content),
			})
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", path)
		}

		if filterMetadataLines(existing) == filterMetadataLines([]byte(f.Content)) {
			continue
		}
		res.Differences = append(res.Differences, Difference{
			File:   f.Name,
			Status: Modified,
			Diff:   unifiedDiff(f.Name, string(existing), f.Content),
		})
	}

	orphans, err := orphaned(dir, expected)
	if err != nil {
		return nil, err
	}
	res.Differences = append(res.Differences, orphans...)
	return res, nil
}

// orphaned finds generated files in dir that are no longer produced.
func orphaned(dir string, expected map[string]bool) ([]Difference, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", dir)
	}

	var out []Difference
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || expected[name] || filepath.Ext(name) != generate.FileExtension {
			continue
		}
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read %s", name)
		}
		if !bytes.HasPrefix(content, []byte(generate.Header)) {
			continue
		}
		out = append(out, Difference{
			File:   name,
			Status: Orphaned,
			Diff:   unifiedDiff(name, string(content), ""),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}

func unifiedDiff(name, from, to string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(from),
		B:        difflib.SplitLines(to),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}

// filterMetadataLines removes the "// Source:" line, which depends on how
// the schema path was spelled on the command line.
func filterMetadataLines(content []byte) string {
	var result strings.Builder
	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "// Source: ") {
			continue
		}
		result.WriteString(line)
		result.WriteString("\n")
	}
	if err := scanner.Err(); err != nil {
		// Unreadable content never compares equal.
		return "\x00" + string(content)
	}
	return result.String()
}
