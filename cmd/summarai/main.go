// Command summarai summarizes a page, a file or stdin from the terminal and
// answers follow-up questions about the summary.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"

	"summarai/internal/config"
	"summarai/internal/extract"
	"summarai/internal/llm"
	"summarai/internal/logger"
	"summarai/internal/popup"
	"summarai/internal/render"
	"summarai/internal/settings"
)

var errUsage = errors.New("usage")

type options struct {
	url      string
	file     string
	stdin    bool
	language string
	copy     bool
	setKey   string
	theme    string
}

func (o options) hasSource() bool {
	return o.url != "" || o.file != "" || o.stdin
}

func parseFlags(args []string, errOut io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("summarai", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&o.url, "url", "", "page to summarize")
	fs.StringVar(&o.file, "file", "", "local HTML, text or PDF file to summarize")
	fs.StringVar(&o.language, "lang", "en", "summary language (en, nl, fr, de, es)")
	fs.BoolVar(&o.copy, "copy", false, "copy the summary to the clipboard")
	fs.StringVar(&o.setKey, "set-key", "", "store the API key and exit unless a source is given")
	fs.StringVar(&o.theme, "theme", "", "store the theme (default, purple, ocean, forest)")
	fs.Usage = func() {
		fmt.Fprintln(errOut, "usage: summarai [-url U | -file F | -] [-lang L] [-copy] [-set-key K] [-theme T]")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	switch rest := fs.Args(); {
	case len(rest) == 1 && rest[0] == "-":
		o.stdin = true
	case len(rest) > 0:
		fs.Usage()
		return options{}, errUsage
	}
	sources := 0
	for _, set := range []bool{o.url != "", o.file != "", o.stdin} {
		if set {
			sources++
		}
	}
	if sources > 1 {
		fmt.Fprintln(errOut, "only one of -url, -file or - may be given")
		return options{}, errUsage
	}
	return o, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel, "text")

	store, err := settings.NewFileStore(cfg.SettingsFile)
	if err != nil {
		log.Error("failed to open settings", "err", err)
		os.Exit(1)
	}
	client, err := llm.NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMModel)
	if err != nil {
		log.Error("failed to initialize LLM client", "err", err)
		os.Exit(1)
	}
	extractor := extract.NewHTTPExtractor(log, cfg.FetchTimeout, cfg.MaxPageSize)
	writer := render.Typewriter{Delay: cfg.RenderDelay, BatchSize: render.WordsPerChunk}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	c := &cli{
		ctrl:   popup.New(client, extractor, store, writer, log),
		log:    log,
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
		copy:   clipboard.WriteAll,
	}
	if err := c.run(ctx, opts); err != nil {
		os.Exit(1)
	}
}

type cli struct {
	ctrl   *popup.Controller
	log    *slog.Logger
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	copy   func(string) error
}

func (c *cli) run(ctx context.Context, o options) error {
	var st popup.State
	if o.setKey != "" {
		var err error
		st, err = c.ctrl.SaveCredential(ctx, st, o.setKey)
		fmt.Fprintln(c.errOut, st.Status.Message)
		if err != nil {
			return err
		}
	}
	if o.theme != "" {
		name, _, err := c.ctrl.SetTheme(ctx, o.theme)
		if err != nil {
			fmt.Fprintln(c.errOut, "Error:", err)
			return err
		}
		fmt.Fprintln(c.errOut, "theme:", name)
	}
	if !o.hasSource() {
		return nil
	}

	prefs, err := c.ctrl.Load(ctx)
	if err != nil {
		fmt.Fprintln(c.errOut, "Error:", err)
		return err
	}
	if !prefs.CanSummarize {
		fmt.Fprintln(c.errOut, "No API key stored. Run summarai -set-key <key> first.")
		return errors.New("missing api key")
	}

	src, err := c.source(o)
	if err != nil {
		fmt.Fprintln(c.errOut, "Error:", err)
		return err
	}
	view := newTermView(c.out, c.errOut, prefs.Palette.AccentColor())
	st, err = c.ctrl.Summarize(ctx, st, popup.SummarizeInput{Source: src, Language: o.language}, view)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out)

	if o.copy {
		if err := c.copy(st.Summary); err != nil {
			c.log.Warn("failed to copy summary", "err", err)
		} else {
			view.status(popup.Status{Message: "Summary copied to clipboard", Kind: popup.KindSuccess})
		}
	}

	// stdin already held the page text
	if o.stdin {
		return nil
	}
	return c.questions(ctx, st, view)
}

func (c *cli) source(o options) (extract.Source, error) {
	switch {
	case o.url != "":
		return extract.Source{URL: o.url}, nil
	case o.file != "":
		data, err := os.ReadFile(o.file)
		if err != nil {
			return extract.Source{}, err
		}
		return extract.FileSource(o.file, data)
	default:
		data, err := io.ReadAll(c.in)
		if err != nil {
			return extract.Source{}, fmt.Errorf("failed to read stdin: %w", err)
		}
		return extract.Source{Text: string(data)}, nil
	}
}

func (c *cli) questions(ctx context.Context, st popup.State, view *termView) error {
	scanner := bufio.NewScanner(c.in)
	for {
		view.prompt("Ask a question (empty line to quit): ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		q := strings.TrimSpace(scanner.Text())
		if q == "" {
			return nil
		}
		next, err := c.ctrl.Ask(ctx, st, q, view)
		if err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		st = next
		if err == nil {
			fmt.Fprintln(c.out)
		}
	}
}

// termView prints rendered chunks to out and status changes to errOut.
type termView struct {
	out, errOut io.Writer
	sink        *render.WriterSink
	info        lipgloss.Style
	success     lipgloss.Style
	failure     lipgloss.Style
	last        popup.Status
}

func newTermView(out, errOut io.Writer, accent string) *termView {
	return &termView{
		out:     out,
		errOut:  errOut,
		sink:    render.NewWriterSink(out),
		info:    lipgloss.NewStyle().Foreground(lipgloss.Color(accent)).Italic(true),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	}
}

func (v *termView) Reset() {}

func (v *termView) Append(chunk string) error { return v.sink.Append(chunk) }

func (v *termView) Update(st popup.State) {
	if st.Status == v.last {
		return
	}
	v.last = st.Status
	v.status(st.Status)
}

func (v *termView) status(s popup.Status) {
	if s.Message == "" {
		return
	}
	style := v.info
	switch s.Kind {
	case popup.KindError:
		style = v.failure
	case popup.KindSuccess:
		style = v.success
	}
	fmt.Fprintln(v.errOut, style.Render(s.Message))
}

func (v *termView) prompt(text string) {
	fmt.Fprint(v.errOut, v.info.Render(text))
}
