// Package cli implements the jsongraph command line.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/mcncl/jsongraph/internal/config"
	"github.com/mcncl/jsongraph/internal/errors"
	"github.com/mcncl/jsongraph/internal/logging"
)

// Version information
const (
	Version = "0.1.0"
)

// errInvalid is wrapped by errors of commands that already reported a diagnostic.
var errInvalid = stderrors.New("invalid input")

// CLI defines the command-line interface
type CLI struct {
	Config       string           `help:"Path to config file. Defaults to the nearest .jsongraph.yml." short:"c" type:"path"`
	Format       string           `help:"Input format: auto, json, yaml or toml." short:"f"`
	OutputFormat string           `help:"Output format: text, json, msgpack, dot or outline." short:"O" name:"output-format"`
	Color        string           `help:"Color output: auto, always or never."`
	Debug        bool             `help:"Enable debug logging." short:"d"`
	Version      kong.VersionFlag `help:"Show version information." short:"v"`

	Check  CheckCmd  `cmd:"" help:"Validate files and report diagnostics."`
	Graph  GraphCmd  `cmd:"" help:"Convert a document into a node graph."`
	Search SearchCmd `cmd:"" help:"Find the node at a path."`
	Sample SampleCmd `cmd:"" help:"Print a sample document."`
	Serve  ServeCmd  `cmd:"" help:"Serve the HTTP API."`
}

// overrides collects the flags that take precedence over the config file.
func (c *CLI) overrides() config.Overrides {
	return config.Overrides{
		Format:       c.Format,
		OutputFormat: c.OutputFormat,
		Color:        c.Color,
		Jobs:         c.Check.Jobs,
		Addr:         c.Serve.Addr,
		Debug:        c.Debug,
	}
}

// Context holds the runtime context passed to every command
type Context struct {
	Ctx    context.Context
	Config *config.Config
	Logger *log.Logger

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinTerminal and StdoutTerminal report whether the streams are interactive.
	StdinTerminal  bool
	StdoutTerminal bool
}

// exitCode is raised by the kong exit hook so Main can return instead of exiting.
type exitCode int

// Main parses args, runs the selected command and returns the process exit code.
func Main(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	defer func() {
		if r := recover(); r != nil {
			exit, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(exit)
		}
	}()

	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("jsongraph"),
		kong.Description("Validate JSON, YAML and TOML documents and explore them as graphs"),
		kong.UsageOnError(),
		kong.Writers(stdout, stderr),
		kong.Exit(func(code int) { panic(exitCode(code)) }),
		kong.Vars{"version": Version},
	)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	kctx, err := parser.Parse(args)
	parser.FatalIfErrorf(err)

	cfg, err := config.LoadConfigWithCLI(cli.Config, cli.overrides())
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		return 1
	}

	logger := logging.NewWithLevelName(stderr, cfg.Dev.LogLevel)
	logger.Debug("Loaded configuration", "input", cfg.Input.Format, "output", cfg.Output.Format)

	runCtx := &Context{
		Ctx:            logging.WithLogger(ctx, logger),
		Config:         cfg,
		Logger:         logger,
		Stdin:          stdin,
		Stdout:         stdout,
		Stderr:         stderr,
		StdinTerminal:  isTerminal(stdin),
		StdoutTerminal: isTerminal(stdout),
	}

	if err := kctx.Run(runCtx); err != nil {
		if stderrors.Is(err, errInvalid) {
			return 1
		}
		fmt.Fprintf(stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(stderr, "\nFor help, run: jsongraph --help\n")
		return 1
	}
	return 0
}

func isTerminal(stream any) bool {
	f, ok := stream.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
