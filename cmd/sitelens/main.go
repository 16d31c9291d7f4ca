package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/sitelens"
	"github.com/fwojciec/sitelens/cron"
	"github.com/fwojciec/sitelens/gemini"
	"github.com/fwojciec/sitelens/goquery"
	"github.com/fwojciec/sitelens/htmltomarkdown"
	sitehttp "github.com/fwojciec/sitelens/http"
	"github.com/fwojciec/sitelens/pipeline"
	"github.com/fwojciec/sitelens/prompt"
	"github.com/fwojciec/sitelens/readability"
	"github.com/fwojciec/sitelens/rod"
	siteslog "github.com/fwojciec/sitelens/slog"
	"github.com/fwojciec/sitelens/sqlite"
	"github.com/fwojciec/sitelens/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	TaskService sitelens.TaskService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("sitelens"),
		kong.Description("Extract, analyze and compare web pages with an LLM."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'sitelens --help' to see available commands")
	}

	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd, _, _ := strings.Cut(kongCtx.Command(), " ")

	deps.Logger = newLogger(stderr, cli.Verbose, cmd == "serve")

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set SITELENS_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.TaskService = sqlite.NewTaskService(m.DB)
	deps.DB = m.DB
	deps.Tasks = m.TaskService
	runner := &pipeline.Runner{Tasks: m.TaskService}
	deps.Runner = siteslog.NewLoggingTaskRunner(runner, deps.Logger)

	switch cmd {
	case "scrape", "rerun", "ask", "serve":
	default:
		return kongCtx.Run(deps)
	}

	llm, err := newLLM(ctx, stderr, cli.Model, deps.Logger)
	if err != nil {
		return err
	}
	synthesizer := prompt.NewSynthesizer(llm)
	deps.Asker = pipeline.NewAsker(m.TaskService, synthesizer)

	if cmd != "ask" {
		fetcher, err := newFetcher(stderr, cli.NoBrowser, deps.Logger)
		if err != nil {
			return err
		}
		defer fetcher.Close()

		runner.Synthesizer = synthesizer
		runner.Scraper = siteslog.NewLoggingScraper(&pipeline.Processor{
			Fetcher: fetcher,
			Reducer: goquery.NewReducer(
				goquery.WithReadableFallback(newExtractor(cli.Extractor), htmltomarkdown.NewConverter()),
			),
			Prompter:    prompt.NewExtractor(llm),
			Synthesizer: synthesizer,
			RateLimiter: pipeline.NewDomainLimiter(cli.Rate),
		}, deps.Logger)
	}

	if cmd == "serve" {
		deps.Dispatcher = cron.NewScheduler(deps.Runner, m.TaskService, cron.WithLogger(deps.Logger))
	}

	return kongCtx.Run(deps)
}

// newLLM connects to the Gemini API and wraps the client with logging.
func newLLM(ctx context.Context, stderr io.Writer, model string, logger *slog.Logger) (sitelens.LLM, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return nil, fmt.Errorf("GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}
	llm := gemini.NewClient(client, gemini.WithModel(model))

	// Token counts are only logged; an unsupported tokenizer is not fatal.
	counter, err := gemini.NewTokenCounter(tokenizerModel)
	if err != nil {
		logger.Warn("token counting disabled", "err", err)
		return siteslog.NewLoggingLLM(llm, nil, logger), nil
	}
	return siteslog.NewLoggingLLM(llm, counter, logger), nil
}

// newFetcher builds the browser-first fetcher with a plain HTTP fallback.
// With noBrowser set only the HTTP strategy is used.
func newFetcher(stderr io.Writer, noBrowser bool, logger *slog.Logger) (sitelens.Fetcher, error) {
	fallback := siteslog.NewLoggingFetcher(sitehttp.NewFetcher(), logger, "http")
	if noBrowser {
		return pipeline.NewFallbackFetcher(nil, fallback), nil
	}

	browser, err := rod.NewFetcher()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed, or pass --no-browser")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return pipeline.NewFallbackFetcher(siteslog.NewLoggingFetcher(browser, logger, "browser"), fallback), nil
}

// newExtractor returns the readable-content extractor named by the
// --extractor flag.
func newExtractor(name string) sitelens.Extractor {
	if name == "readability" {
		return readability.NewExtractor()
	}
	return trafilatura.NewExtractor()
}

// newLogger returns a text logger on stderr. Commands log warnings only
// unless verbose is set; the server also logs requests.
func newLogger(w io.Writer, verbose, server bool) *slog.Logger {
	level := slog.LevelWarn
	if server {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// tokenizerModel is used for token counting. The local tokenizer does not
// know every model the API serves.
const tokenizerModel = "gemini-2.5-flash"

func defaultDBPath() string {
	if path := os.Getenv("SITELENS_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "sitelens.db"
	}
	dir := filepath.Join(home, ".sitelens")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "sitelens.db")
}
