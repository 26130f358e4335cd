package commands

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/teranos/derivegen/config"
	"github.com/teranos/derivegen/errors"
	"github.com/teranos/derivegen/generate"
	"github.com/teranos/derivegen/logger"
	"github.com/teranos/derivegen/schema"
)

// pipeline turns schema paths into rendered files.
type pipeline struct {
	cfg     *config.Config
	derives []string
	format  []string
	// trace logs every section at -vvv.
	trace bool
}

func newPipeline(cfg *config.Config, derives []string, verbosity int) (*pipeline, error) {
	format, err := cfg.FormatArgs()
	if err != nil {
		return nil, err
	}
	return &pipeline{
		cfg:     cfg,
		derives: derives,
		format:  format,
		trace:   logger.ShouldLogTrace(verbosity),
	}, nil
}

// run renders one file per schema. Generation failures do not stop the
// run: their files carry the diagnostic in place of the failed section, and
// the failures are returned together as a generate.Failures.
func (p *pipeline) run(ctx context.Context, paths []string) ([]generate.File, error) {
	opts := p.cfg.Options()
	if len(p.derives) > 0 {
		opts.Default = p.derives
	}

	var files []generate.File
	var failures generate.Failures
	seen := make(map[string]string)

	for _, path := range paths {
		start := time.Now()
		records, err := schema.Load(ctx, path)
		if err != nil {
			return nil, err
		}

		res, err := generate.Run(ctx, records, opts)
		var f generate.Failures
		switch {
		case err == nil:
		case errors.As(err, &f):
			failures = append(failures, f...)
		default:
			return nil, err
		}

		file := generate.NewFile(path, res)
		if prev, dup := seen[file.Name]; dup {
			return nil, errors.WithHint(
				errors.Newf("%s and %s both generate %s", prev, path, file.Name),
				"rename one of the schemas")
		}
		seen[file.Name] = path

		if len(p.format) > 0 {
			formatted, err := formatSource(ctx, p.format, file.Content)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to format %s", file.Name)
			}
			file.Content = formatted
		}
		files = append(files, file)

		logger.Infow("Generated",
			logger.FieldFile, path,
			logger.FieldCount, len(res.Sections),
			logger.FieldDuration, time.Since(start).Milliseconds())
		if p.trace {
			for _, s := range res.Sections {
				logger.Debugw("Section", logger.FieldRecord, s.Record, logger.FieldGenerator, s.Generator, "bytes", len(s.Code))
			}
		}
	}

	if len(failures) > 0 {
		return files, failures
	}
	return files, nil
}

// write saves files under dir.
func write(dir string, files []generate.File) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "failed to create %s", dir)
	}
	for _, f := range files {
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, []byte(f.Content), 0644); err != nil {
			return errors.Wrapf(err, "failed to write %s", path)
		}
	}
	return nil
}

// formatSource pipes src through an external formatter such as rustfmt.
func formatSource(ctx context.Context, argv []string, src string) (string, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = strings.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", errors.WithDetail(errors.Wrap(err, argv[0]), msg)
		}
		return "", errors.Wrap(err, argv[0])
	}
	return stdout.String(), nil
}
