// Package check validates many files concurrently.
package check

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mcncl/jsongraph/internal/diagnostic"
	"github.com/mcncl/jsongraph/internal/errors"
	"github.com/mcncl/jsongraph/internal/formatter"
	"github.com/mcncl/jsongraph/internal/logging"
	"github.com/mcncl/jsongraph/internal/models"
	"github.com/mcncl/jsongraph/internal/parser"
)

// Options are the options passed to Run.
type Options struct {
	// Paths are files or directories to check. Directories are walked for
	// files with a supported extension.
	Paths []string

	// Format forces a decoder; FormatAuto picks one per file extension.
	Format parser.Format

	// Jobs bounds how many files are validated at once.
	Jobs int

	// LinesBefore and LinesAfter size the context excerpt of each diagnostic.
	LinesBefore int
	LinesAfter  int

	// Exclude skips walked files it returns true for. Paths named explicitly are never skipped.
	Exclude func(path string) bool
}

// Result is the outcome for a single file.
type Result struct {
	Path       string
	Text       string
	Diagnostic *models.Diagnostic
	// Err is set when the file could not be read at all.
	Err error
}

// Valid reports whether the file was read and decoded.
func (r Result) Valid() bool {
	return r.Err == nil && r.Diagnostic == nil
}

// Report converts r for output. Unreadable files become a diagnostic at 1:1.
func (r Result) Report() formatter.Report {
	report := formatter.Report{
		Source:     r.Path,
		Valid:      r.Valid(),
		Diagnostic: r.Diagnostic,
		Text:       r.Text,
	}
	if r.Err != nil {
		report.Diagnostic = &models.Diagnostic{Message: errors.UserFriendlyError(r.Err), Line: 1, Column: 1}
	}
	return report
}

// Run validates every file named by opts.Paths. Results are returned in the
// order files were found, whatever order they finish in.
func Run(ctx context.Context, opts Options) ([]Result, error) {
	logger := logging.FromContext(ctx).WithPrefix("check")

	paths, err := Collect(opts.Paths, opts.Exclude)
	if err != nil {
		return nil, err
	}
	logger.Debug("Checking files", "number", len(paths), "jobs", opts.Jobs)

	results := make([]Result, len(paths))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(1, opts.Jobs))

	for i, path := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = checkFile(path, opts)
			logger.Debug("Checked file", "path", path, "valid", results[i].Valid())
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkFile(path string, opts Options) Result {
	result := Result{Path: path}

	text, err := parser.ReadFile(path)
	if err != nil && !stderrors.Is(err, errors.ErrFileEmpty) {
		result.Err = err
		return result
	}
	result.Text = text

	decoder := parser.NewDecoder(parser.Resolve(opts.Format, path))
	builder := diagnostic.NewBuilderWithWindow(decoder, opts.LinesBefore, opts.LinesAfter)
	result.Diagnostic = builder.Diagnose(text)
	return result
}

// Collect expands paths into the list of files to check. Directories are
// walked in lexical order and hidden directories below them are skipped.
func Collect(paths []string, exclude func(string) bool) ([]string, error) {
	if len(paths) == 0 {
		return nil, errors.NewInputError("nothing to check", errors.ErrNoInput)
	}

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewInputError(fmt.Sprintf("'%s' not found", root), errors.ErrFileNotFound)
			}
			return nil, errors.NewInputError(fmt.Sprintf("could not get path info for '%s'", root), err)
		}

		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !parser.SupportedExtension(path) {
				return nil
			}
			if exclude != nil && exclude(path) {
				return nil
			}
			add(path)
			return nil
		})
		if err != nil {
			return nil, errors.NewInputError(fmt.Sprintf("could not walk '%s'", root), err)
		}
	}
	return files, nil
}

// Invalid counts results that are not valid.
func Invalid(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Valid() {
			n++
		}
	}
	return n
}
