package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/sitelens"
	"github.com/fwojciec/sitelens/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	DB     *sqlite.DB
	Tasks  sitelens.TaskService
	Runner sitelens.TaskRunner
	Asker  sitelens.Asker

	// Dispatcher runs scheduled tasks while the server is up.
	Dispatcher Dispatcher

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Dispatcher is a scheduler that runs in the background of "serve".
type Dispatcher interface {
	sitelens.Scheduler
	Start()
	Stop(ctx context.Context) error
	Reload(ctx context.Context) (int, error)
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose   bool    `short:"v" help:"Log debug output to stderr"`
	NoBrowser bool    `name:"no-browser" help:"Fetch pages over plain HTTP only"`
	Rate      float64 `default:"1" help:"Requests per second to each site (0 disables limiting)"`
	Model     string  `env:"SITELENS_MODEL" default:"gemini-2.5-flash" help:"Gemini model used for extraction and analysis"`
	Extractor string  `enum:"trafilatura,readability" default:"trafilatura" help:"Readable-content extractor used when a page has no structural content"`

	Scrape   ScrapeCmd   `cmd:"" help:"Scrape URLs and analyze them"`
	Rerun    RerunCmd    `cmd:"" help:"Run an existing task again"`
	List     ListCmd     `cmd:"" help:"List tasks"`
	Show     ShowCmd     `cmd:"" help:"Show a task and its results"`
	Delete   DeleteCmd   `cmd:"" help:"Delete tasks"`
	Star     StarCmd     `cmd:"" help:"Toggle the starred flag of a task"`
	Archive  ArchiveCmd  `cmd:"" help:"Toggle the archived flag of a task"`
	Tag      TagCmd      `cmd:"" help:"Replace the tags of a task"`
	Progress ProgressCmd `cmd:"" help:"Show the progress of a task"`
	Ask      AskCmd      `cmd:"" help:"Ask a question about a completed task"`
	Export   ExportCmd   `cmd:"" help:"Export task results to a file"`
	Schedule ScheduleCmd `cmd:"" help:"Create a task that runs on a schedule"`
	Serve    ServeCmd    `cmd:"" help:"Serve the HTTP API and run scheduled tasks"`
	Domains  DomainsCmd  `cmd:"" help:"List analysis domains"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URLs        []string `arg:"" name:"url" help:"URLs to scrape"`
	Instruction string   `short:"i" help:"What to extract"`
	Domain      string   `short:"d" default:"general" help:"Analysis domain (see 'sitelens domains')"`
	Name        string   `short:"n" help:"Task name"`
	Tags        []string `short:"t" name:"tag" help:"Tag the task (repeatable)"`
	Compare     string   `enum:"auto,on,off" default:"auto" help:"Cross-site comparison (auto, on, off)"`
}

// RerunCmd is the "rerun" subcommand.
type RerunCmd struct {
	ID          int      `arg:"" help:"Task ID"`
	URLs        []string `name:"url" help:"Replace the task URLs (repeatable)"`
	Instruction string   `short:"i" help:"Replace the instruction"`
	Domain      string   `short:"d" help:"Replace the analysis domain"`
	Name        string   `short:"n" help:"Rename the task"`
	Tags        []string `short:"t" name:"tag" help:"Replace the tags (repeatable)"`
	Compare     string   `enum:"auto,on,off" default:"auto" help:"Cross-site comparison (auto, on, off)"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Domain    string `help:"Only tasks of this domain"`
	Status    string `help:"Only tasks with this status"`
	Tag       string `help:"Only tasks with this tag"`
	Starred   bool   `help:"Only starred tasks"`
	Archived  bool   `help:"Show archived tasks instead of active ones"`
	Scheduled bool   `help:"Only scheduled tasks"`
	Search    string `short:"s" help:"Match name, URLs or instruction"`
	Sort      string `default:"created_at" help:"Sort field"`
	Order     string `enum:"asc,desc" default:"desc" help:"Sort order"`
	Limit     int    `default:"50" help:"Maximum number of tasks"`
}

// ShowCmd is the "show" subcommand.
type ShowCmd struct {
	ID   int  `arg:"" help:"Task ID"`
	JSON bool `name:"json" help:"Print the task as JSON"`
}

// DeleteCmd is the "delete" subcommand.
type DeleteCmd struct {
	IDs   []int `arg:"" name:"id" help:"Task IDs"`
	Force bool  `help:"Confirm deletion"`
}

// StarCmd is the "star" subcommand.
type StarCmd struct {
	ID int `arg:"" help:"Task ID"`
}

// ArchiveCmd is the "archive" subcommand.
type ArchiveCmd struct {
	ID int `arg:"" help:"Task ID"`
}

// TagCmd is the "tag" subcommand.
type TagCmd struct {
	ID   int      `arg:"" help:"Task ID"`
	Tags []string `arg:"" optional:"" name:"tag" help:"New tags; none clears them"`
}

// ProgressCmd is the "progress" subcommand.
type ProgressCmd struct {
	ID int `arg:"" help:"Task ID"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	ID       int    `arg:"" help:"Task ID"`
	Question string `arg:"" help:"Question about the task results"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	ID     int    `arg:"" help:"Task ID"`
	Format string `short:"f" enum:"json,csv,txt" default:"json" help:"Export format (json, csv, txt)"`
	Output string `short:"o" default:"." type:"path" help:"Output file or directory"`
	Bundle bool   `help:"Write every format plus per-page reports into a directory"`
}

// ScheduleCmd is the "schedule" subcommand.
type ScheduleCmd struct {
	URLs        []string `arg:"" name:"url" help:"URLs to scrape"`
	Type        string   `enum:"once,daily,weekly" required:"" help:"Schedule type (once, daily, weekly)"`
	At          string   `required:"" help:"When to run: a datetime, HH:MM, or 'monday 09:30'"`
	Instruction string   `short:"i" help:"What to extract"`
	Domain      string   `short:"d" default:"general" help:"Analysis domain"`
	Name        string   `short:"n" help:"Task name"`
	Tags        []string `short:"t" name:"tag" help:"Tag the task (repeatable)"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr string `env:"SITELENS_ADDR" default:":5000" help:"Address to listen on"`
}

// DomainsCmd is the "domains" subcommand.
type DomainsCmd struct{}

// comparison converts a --compare flag into the task override.
func comparison(flag string) *bool {
	switch flag {
	case "on":
		v := true
		return &v
	case "off":
		v := false
		return &v
	}
	return nil
}

// fail prints err the way every command reports errors and returns it.
func fail(deps *Dependencies, err error) error {
	fmt.Fprintf(deps.Stderr, "error: %s\n", sitelens.ErrorMessage(err))
	return err
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
