package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	flag "github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/dm/fast-go/internal/client"
	"github.com/dm/fast-go/internal/config"
	"github.com/dm/fast-go/internal/engine"
	"github.com/dm/fast-go/internal/tui"
)

const userAgent = "fast-go/1.0"

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitInterrupted = 130
)

const unreachableMessage = "Please check your internet connection."

// options holds the parsed command line.
type options struct {
	upload     bool
	verbose    bool
	config     string
	debugLog   string
	help       bool
	uploadSet  bool
	verboseSet bool
}

// env carries the process collaborators run depends on, so tests can
// substitute them.
type env struct {
	stdin      io.Reader
	stdout     io.Writer
	stderr     io.Writer
	resolver   client.Resolver
	isTerminal func(w io.Writer) bool
	measurer   func(cfg config.Config) (engine.Measurer, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], env{
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		isTerminal: isTerminal,
		measurer:   newMeasurer,
	})
	stop()
	os.Exit(code)
}

func usage(fs *flag.FlagSet, w io.Writer) func() {
	return func() {
		fmt.Fprintln(w, "fast - test your download and upload speed using fast.com")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Usage:")
		fmt.Fprintln(w, "  fast [flags]")
		fmt.Fprintln(w, "  fast [flags] > file")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Examples:")
		fmt.Fprintln(w, "  $ fast --upload > file && cat file")
		fmt.Fprintln(w, "  17 Mbps")
		fmt.Fprintln(w, "  4.4 Mbps")
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "Flags:")
		fs.PrintDefaults()
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options

	fs := flag.NewFlagSet("fast", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SortFlags = false

	fs.BoolVarP(&opts.upload, "upload", "u", false, "Measure upload speed in addition to download speed")
	fs.BoolVar(&opts.verbose, "verbose", false, "Include info on latency and request metadata (implies --upload)")
	fs.StringVar(&opts.config, "config", "", "Read settings from a YAML file")
	fs.StringVar(&opts.debugLog, "debug-log", "", "Write debug logs to this file")
	fs.BoolVarP(&opts.help, "help", "h", false, "Show help")
	fs.Usage = usage(fs, stderr)

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.help {
		fs.Usage()
		return opts, flag.ErrHelp
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}
	opts.uploadSet = fs.Changed("upload")
	opts.verboseSet = fs.Changed("verbose")
	return opts, nil
}

// loadConfig layers the config file, the environment and the flags.
func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.config != "" {
		var err error
		if cfg, err = config.LoadFromFile(opts.config); err != nil {
			return cfg, err
		}
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, err
	}
	if opts.uploadSet {
		cfg.Upload = opts.upload
	}
	if opts.verboseSet {
		cfg.Verbose = opts.verbose
	}
	return cfg, cfg.Validate()
}

func run(ctx context.Context, args []string, e env) int {
	opts, err := parseFlags(args, e.stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		fmt.Fprintf(e.stderr, "error: %v\n", err)
		return exitUsage
	}

	if opts.debugLog != "" {
		f, err := tea.LogToFile(opts.debugLog, "fast")
		if err != nil {
			fmt.Fprintf(e.stderr, "error: %v\n", err)
			return exitFailure
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(e.stderr, "error: %v\n", err)
		return exitFailure
	}

	if err := client.CheckReachable(ctx, e.resolver, cfg.Host); err != nil {
		log.Printf("reachability: %v", err)
		fmt.Fprintln(e.stderr, unreachableMessage)
		return exitFailure
	}

	m, err := e.measurer(cfg)
	if err != nil {
		fmt.Fprintf(e.stderr, "error: %v\n", err)
		return exitFailure
	}

	display := tui.Options{Upload: cfg.MeasureUpload(), Verbose: cfg.Verbose}
	var r tui.Renderer
	if e.isTerminal(e.stdout) {
		r = tui.NewInteractive(display, e.stdout, e.stdin)
	} else {
		r = tui.NewPlain(display, e.stdout)
	}
	log.Printf("starting: upload=%t verbose=%t renderer=%T", display.Upload, display.Verbose, r)

	err = r.Render(ctx, engine.NewAggregator(), m)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, tui.ErrInterrupted), ctx.Err() != nil:
		log.Printf("interrupted: %v", err)
		return exitInterrupted
	default:
		log.Printf("measurement failed: %v", err)
		fmt.Fprintln(e.stderr, err.Error())
		return exitFailure
	}
}

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func newMeasurer(cfg config.Config) (engine.Measurer, error) {
	c, err := client.NewDefaultClient(cfg.Client(userAgent))
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return engine.NewEngine(c, cfg.Engine()), nil
}
