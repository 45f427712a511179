package cli

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcncl/jsongraph/internal/diagnostic"
	"github.com/mcncl/jsongraph/internal/errors"
	"github.com/mcncl/jsongraph/internal/formatter"
	"github.com/mcncl/jsongraph/internal/parser"
)

const stdinSource = "<stdin>"

// document is one input together with where it came from.
type document struct {
	source string
	text   string
	format parser.Format
}

// readDocument reads path, or stdin when path is empty. A terminal on stdin
// switches to interactive mode: the user pastes text and ends it with Ctrl+D.
func readDocument(ctx *Context, path string) (document, error) {
	format, err := parser.ParseFormat(ctx.Config.Input.Format)
	if err != nil {
		return document{}, errors.NewInputError("invalid input format", err)
	}

	if path != "" {
		text, err := parser.ReadFile(path)
		if err != nil && !stderrors.Is(err, errors.ErrFileEmpty) {
			return document{}, err
		}
		return document{source: path, text: text, format: parser.Resolve(format, path)}, nil
	}

	if ctx.StdinTerminal {
		text, err := readInteractive(ctx.Stdin, ctx.Stderr)
		if err != nil {
			return document{}, err
		}
		return document{source: stdinSource, text: text, format: parser.Resolve(format, "")}, nil
	}

	if ctx.Stdin == nil {
		return document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}
	text, err := parser.ReadAll(ctx.Stdin)
	if err != nil {
		return document{}, err
	}
	return document{source: stdinSource, text: text, format: parser.Resolve(format, "")}, nil
}

// readInteractive provides an interactive mode for users to paste a document
// and signal completion with Ctrl+D (EOF)
func readInteractive(stdin io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprintln(prompt, "jsongraph interactive mode")
	fmt.Fprintln(prompt, "Paste your document below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(stdin)
	var b strings.Builder
	for {
		line, err := reader.ReadString('\n')
		b.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", errors.NewInputError("error reading input", err)
		}
	}

	fmt.Fprintln(prompt)
	return b.String(), nil
}

// validate decodes doc, printing its diagnostic to stderr when it is invalid.
func validate(ctx *Context, doc document) (diagnostic.Result, error) {
	cfg := ctx.Config
	builder := diagnostic.NewBuilderWithWindow(parser.NewDecoder(doc.format), cfg.Context.LinesBefore, cfg.Context.LinesAfter)
	result := builder.Validate(doc.text)
	if result.Valid() {
		ctx.Logger.Debug("Decoded input", "source", doc.source, "format", doc.format)
		return result, nil
	}

	f := formatter.NewFormatterWithColor(cfg.UseColor(isTerminal(ctx.Stderr)))
	report := formatter.Report{Source: doc.source, Diagnostic: result.Diagnostic, Text: doc.text}
	if err := f.WriteReports(ctx.Stderr, formatter.FormatText, []formatter.Report{report}); err != nil {
		return result, err
	}
	return result, errors.NewParsingError(fmt.Sprintf("'%s' is not valid %s", doc.source, doc.format), errInvalid)
}

// openOutput returns stdout, or a created file when path is set.
func openOutput(ctx *Context, path string) (io.Writer, func() error, error) {
	if path == "" {
		return ctx.Stdout, func() error { return nil }, nil
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.NewOutputError(fmt.Sprintf("failed to create file '%s'", path), err)
	}
	return file, file.Close, nil
}
