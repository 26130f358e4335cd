package generate

import (
	"path/filepath"
	"strings"

	"github.com/teranos/derivegen/diag"
)

// Header marks every rendered file as generated.
const Header = "// Code generated by derivegen. DO NOT EDIT."

// FileExtension is appended to the schema base name to form the output name.
const FileExtension = ".rs"

// Render assembles one output file from a run. Failed sections are replaced
// by their diagnostic artifact; sections are separated by a blank line.
func Render(source string, res *Result) string {
	var sb strings.Builder
	sb.WriteString(Header)
	sb.WriteString("\n")
	if source != "" {
		sb.WriteString("// Source: ")
		sb.WriteString(filepath.ToSlash(source))
		sb.WriteString("\n")
	}

	for _, s := range res.Sections {
		sb.WriteString("\n")
		body := s.Code
		if s.Err != nil {
			body = diag.Report(s.Err)
		}
		sb.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// OutputName returns the generated file name for a schema path:
// schemas/command.yaml becomes command.rs.
func OutputName(source string) string {
	base := filepath.Base(source)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base + FileExtension
}

// File is one rendered output file.
type File struct {
	// Source is the schema the file was generated from.
	Source string
	// Name is the output file name relative to the output directory.
	Name    string
	Content string
}

// NewFile renders res as the output for source.
func NewFile(source string, res *Result) File {
	return File{Source: source, Name: OutputName(source), Content: Render(source, res)}
}
