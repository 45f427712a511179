package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mcncl/jsongraph/internal/analyzer"
	"github.com/mcncl/jsongraph/internal/check"
	"github.com/mcncl/jsongraph/internal/errors"
	"github.com/mcncl/jsongraph/internal/formatter"
	"github.com/mcncl/jsongraph/internal/generator"
	"github.com/mcncl/jsongraph/internal/graph"
	"github.com/mcncl/jsongraph/internal/parser"
	"github.com/mcncl/jsongraph/internal/server"
)

// CheckCmd validates files and directories.
type CheckCmd struct {
	Paths []string `arg:"" name:"path" help:"Files or directories to validate." type:"path"`
	Jobs  int      `help:"Number of files validated in parallel." short:"j"`
}

// Run implements the check command. It fails when any file is invalid.
func (c *CheckCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	format, err := parser.ParseFormat(cfg.Input.Format)
	if err != nil {
		return errors.NewInputError("invalid input format", err)
	}
	outFormat, err := formatter.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	results, err := check.Run(ctx.Ctx, check.Options{
		Paths:       c.Paths,
		Format:      format,
		Jobs:        cfg.Check.Jobs,
		LinesBefore: cfg.Context.LinesBefore,
		LinesAfter:  cfg.Context.LinesAfter,
		Exclude:     cfg.IsExcluded,
	})
	if err != nil {
		return err
	}

	reports := make([]formatter.Report, len(results))
	for i, result := range results {
		reports[i] = result.Report()
	}
	f := formatter.NewFormatterWithColor(cfg.UseColor(ctx.StdoutTerminal))
	if err := f.WriteReports(ctx.Stdout, outFormat, reports); err != nil {
		return err
	}

	if invalid := check.Invalid(results); invalid > 0 {
		ctx.Logger.Debug("Check failed", "invalid", invalid, "total", len(results))
		return fmt.Errorf("%d of %d files: %w", invalid, len(results), errInvalid)
	}
	return nil
}

// GraphCmd converts one document into a graph.
type GraphCmd struct {
	Input     string `help:"Path to input file. If not specified, reads from stdin." short:"i" type:"path"`
	Output    string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Stats     bool   `help:"Append document statistics."`
	Highlight string `help:"Highlight the node a search for this query selects."`
}

// Run implements the graph command.
func (c *GraphCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	outFormat, err := formatter.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	doc, err := readDocument(ctx, c.Input)
	if err != nil {
		return err
	}
	result, err := validate(ctx, doc)
	if err != nil {
		return err
	}

	g := graph.NewTransformerWithLayout(cfg.Layout).Transform(result.Value)
	if g.IsEmpty() {
		return errors.NewConversionError(fmt.Sprintf("'%s' produced no nodes", doc.source), nil)
	}
	ctx.Logger.Debug("Built graph", "nodes", len(g.Nodes), "edges", len(g.Edges))

	if strings.TrimSpace(c.Highlight) != "" {
		node, found := graph.Search(g.Nodes, c.Highlight)
		if !found {
			ctx.Logger.Warn("Nothing to highlight", "query", c.Highlight)
		}
		g.Nodes = graph.Highlight(g.Nodes, node.ID)
	}

	var stats *analyzer.Stats
	if c.Stats {
		s := analyzer.Analyze(result.Value)
		stats = &s
	}

	w, closeOutput, err := openOutput(ctx, c.Output)
	if err != nil {
		return err
	}
	f := formatter.NewFormatterWithColor(c.Output == "" && cfg.UseColor(ctx.StdoutTerminal))
	if err := f.WriteGraph(w, outFormat, formatter.NewGraphDocument(g, stats)); err != nil {
		_ = closeOutput()
		return err
	}
	if err := closeOutput(); err != nil {
		return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", c.Output), err)
	}
	if c.Output != "" {
		ctx.Logger.Info("Graph written", "path", c.Output, "nodes", len(g.Nodes))
	}
	return nil
}

// SearchCmd finds the node at a path.
type SearchCmd struct {
	Query string `arg:"" help:"Exact path such as $.user.name, or a fragment such as items."`
	Input string `help:"Path to input file. If not specified, reads from stdin." short:"i" type:"path"`
}

// Run implements the search command.
func (c *SearchCmd) Run(ctx *Context) error {
	if strings.TrimSpace(c.Query) == "" {
		return errors.NewSearchError("query is empty", nil)
	}
	cfg := ctx.Config
	outFormat, err := formatter.ParseFormat(cfg.Output.Format)
	if err != nil {
		return err
	}

	doc, err := readDocument(ctx, c.Input)
	if err != nil {
		return err
	}
	result, err := validate(ctx, doc)
	if err != nil {
		return err
	}

	g := graph.NewTransformerWithLayout(cfg.Layout).Transform(result.Value)
	node, found := graph.Search(g.Nodes, c.Query)
	if !found {
		return fmt.Errorf("%q: %w", c.Query, errors.ErrNoMatch)
	}
	node.Highlighted = true

	f := formatter.NewFormatterWithColor(cfg.UseColor(ctx.StdoutTerminal))
	return f.WriteNode(ctx.Stdout, outFormat, node)
}

// SampleCmd prints a document to experiment with.
type SampleCmd struct {
	Broken bool `help:"Print a sample containing syntax errors."`
}

// Run implements the sample command.
func (c *SampleCmd) Run(ctx *Context) error {
	sample := generator.Sample()
	if c.Broken {
		sample = generator.BrokenSample()
	}
	if _, err := io.WriteString(ctx.Stdout, sample); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// ServeCmd runs the HTTP API until interrupted.
type ServeCmd struct {
	Addr string `help:"Address to listen on." placeholder:"HOST:PORT"`
}

// Run implements the serve command.
func (c *ServeCmd) Run(ctx *Context) error {
	cfg := ctx.Config
	srv := server.New(ctx.Logger, server.Options{
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Layout:       cfg.Layout,
		LinesBefore:  cfg.Context.LinesBefore,
		LinesAfter:   cfg.Context.LinesAfter,
	})

	runCtx, stop := signal.NotifyContext(ctx.Ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(runCtx, cfg.Server.Addr)
}
