// Package cmd implements the CLI command structure for todo.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/config"
	"github.com/nibzard/todo-go/internal/dates"
	"github.com/nibzard/todo-go/internal/export"
	"github.com/nibzard/todo-go/internal/logging"
	"github.com/nibzard/todo-go/internal/render"
	"github.com/nibzard/todo-go/internal/shell"
	"github.com/nibzard/todo-go/internal/todo"
	"github.com/nibzard/todo-go/internal/ui"
	"github.com/nibzard/todo-go/internal/utils"
)

// Version is set via ldflags at build time.
var Version = "dev"

var timeNow = time.Now

// streams are the process's standard streams, swapped out in tests.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// Run executes the todo CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, streams{in: os.Stdin, out: os.Stdout, err: os.Stderr})
}

func run(ctx context.Context, args []string, std streams) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("todo", flag.ContinueOnError)
	fs.SetOutput(std.err)
	fs.Usage = func() {
		printUsage(fs, std.err)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")

	cws, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := cws.Config
	if *help {
		printUsage(fs, std.out)
		return nil
	}
	if *showVersion {
		return versionCommand(std.out)
	}

	logger := logging.FromConfig(std.err, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps)
	for _, f := range cfg.Files {
		logger.Debug("loaded config file", "path", f)
	}
	for _, k := range cfg.UnknownKeys {
		logger.Warn("unknown config key", "key", k)
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return shellCommand(ctx, cfg, logger, std, nil)
	}

	subcommand, rest := remaining[0], remaining[1:]
	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, logger, rest)
	case "doctor":
		return doctorCommand(cws, std.out, rest)
	case "export":
		return exportCommand(cfg, logger, std.out, rest)
	case "init":
		return initCommand(cfg, std.out, rest)
	case "version":
		return versionCommand(std.out)
	case "help":
		printUsage(fs, std.out)
		fmt.Fprintln(std.out)
		return shellCommand(ctx, cfg, logger, std, []string{"help"})
	default:
		return shellCommand(ctx, cfg, logger, std, remaining)
	}
}

// shellCommand runs one shell command, or the interactive prompt when args
// is empty.
func shellCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, std streams, args []string) error {
	store, err := todo.Open(cfg.TodoFile, logger)
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}

	sh := shell.New(store, shell.Options{
		Path:             cfg.TodoFile,
		In:               std.in,
		Out:              std.out,
		Logger:           logger,
		ConfirmDelete:    cfg.ConfirmDelete,
		NoColor:          cfg.NoColor,
		DescriptionWidth: cfg.DescriptionWidth,
		SortBy:           cfg.SortBy,
		SortOrder:        cfg.SortOrder,
	})
	if len(args) == 0 {
		return sh.Run(ctx)
	}
	return sh.Exec(args)
}

// tuiCommand launches the full-screen browser.
func tuiCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("todo tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	store, err := todo.Open(cfg.TodoFile, logger)
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	return ui.RunTUI(ctx, store, ui.Options{
		Path:             cfg.TodoFile,
		Logger:           logger,
		NoColor:          cfg.NoColor,
		DescriptionWidth: cfg.DescriptionWidth,
		SortBy:           cfg.SortBy,
		SortOrder:        cfg.SortOrder,
	})
}

// exportCommand writes every task, or those matching -status, in another
// format.
func exportCommand(cfg *config.Config, logger *log.Logger, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("todo export", flag.ContinueOnError)
	formatArg := fs.String("format", "", "Export format (json, yaml, ics); defaults to the -o extension, then json")
	output := fs.String("o", "", "Output file (default stdout)")
	status := fs.String("status", "", "Only export active or completed tasks")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	name := utils.FirstNonEmpty(*formatArg, strings.TrimPrefix(filepath.Ext(*output), "."), string(export.FormatJSON))
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	store, err := todo.Open(cfg.TodoFile, logger)
	if err != nil {
		return fmt.Errorf("loading tasks: %w", err)
	}
	tasks := store.Filter(todo.Filter{Status: *status})

	var buf bytes.Buffer
	if err := export.Write(&buf, format, tasks, timeNow()); err != nil {
		return err
	}

	if *output == "" || *output == "-" {
		_, err := out.Write(buf.Bytes())
		return err
	}
	if err := os.WriteFile(*output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", *output, err)
	}
	fmt.Fprintf(out, "Exported %d %s to %s (%s)\n", len(tasks), utils.Plural(len(tasks), "task"), *output, format)
	return nil
}

// initCommand writes a documented config file, leaving an existing one in
// place unless -force is given.
func initCommand(cfg *config.Config, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("todo init", flag.ContinueOnError)
	user := fs.Bool("user", false, "Write the user config file instead of ./todo.toml")
	force := fs.Bool("force", false, "Overwrite an existing file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args()[1:])
	}

	target := filepath.Join(cfg.ProjectRoot, "todo.toml")
	if *user {
		target = config.UserConfigPath()
		if target == "" {
			return errors.New("cannot determine the user config directory")
		}
	}
	target = utils.FirstNonEmpty(fs.Arg(0), target)

	if _, err := os.Stat(target); err == nil && !*force {
		fmt.Fprintf(out, "Config already exists: %s (use -force to overwrite)\n", target)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(target, []byte(config.ExampleConfig()), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", target)
	return nil
}

// doctorCommand reports the effective config and checks the task file.
func doctorCommand(cws *config.ConfigWithSources, out io.Writer, args []string) error {
	fs := flag.NewFlagSet("todo doctor", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "List every task")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	cfg := cws.Config

	fmt.Fprintln(out, "Todo Doctor")
	fmt.Fprintln(out, "===========")
	fmt.Fprintln(out)

	allOK := true

	fmt.Fprintln(out, "Config files:")
	if len(cfg.Files) == 0 {
		fmt.Fprintln(out, "  (none, using defaults)")
	}
	for _, f := range cfg.Files {
		fmt.Fprintf(out, "  ✅ %s\n", f)
	}
	for _, k := range cfg.UnknownKeys {
		fmt.Fprintf(out, "  ⚠️  Unknown key: %s\n", k)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "Settings:")
	for _, s := range settings(cfg) {
		fmt.Fprintf(out, "  %-18s %-12s (%s)\n", s.key, s.value, cws.Sources[s.key])
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "Todo file: %s\n", cfg.TodoFile)
	if !checkTodoFile(out, cfg.TodoFile, *verbose) {
		allOK = false
	}
	fmt.Fprintln(out)

	if allOK {
		fmt.Fprintln(out, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(out, "⚠️  Some checks failed.")
	return fmt.Errorf("doctor checks failed")
}

type setting struct {
	key   string
	value string
}

func settings(cfg *config.Config) []setting {
	return []setting{
		{"todo_file", filepath.Base(cfg.TodoFile)},
		{"log_level", cfg.LogLevel},
		{"log_format", cfg.LogFormat},
		{"log_timestamps", fmt.Sprint(cfg.LogTimestamps)},
		{"no_color", fmt.Sprint(cfg.NoColor)},
		{"description_width", fmt.Sprint(cfg.DescriptionWidth)},
		{"confirm_delete", fmt.Sprint(cfg.ConfirmDelete)},
		{"sort_by", cfg.SortBy},
		{"sort_order", cfg.SortOrder},
	}
}

// checkTodoFile validates the task file and prints a summary. It reports
// false only for problems that stop the file from loading.
func checkTodoFile(out io.Writer, path string, verbose bool) bool {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(out, "  ⚠️  Not found (created on the first change)")
			return true
		}
		fmt.Fprintf(out, "  ❌ Error: %v\n", err)
		return false
	}
	if info.IsDir() {
		fmt.Fprintln(out, "  ❌ Error: path is a directory")
		return false
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(out, "  ❌ Error: %v\n", err)
		return false
	}
	if len(bytes.TrimSpace(data)) == 0 {
		fmt.Fprintln(out, "  ⚠️  Empty (treated as no tasks)")
		return true
	}

	today := dates.Today(timeNow())
	tasks, err := todo.DecodeTasks(data, today)
	if err != nil {
		fmt.Fprintf(out, "  ❌ Unreadable, would load as an empty list: %v\n", err)
		return false
	}

	if result := todo.ValidateDocument(data); result.Valid {
		fmt.Fprintln(out, "  ✅ Valid")
	} else {
		fmt.Fprintln(out, "  ⚠️  Schema mismatches (fields are back-filled on load):")
		for _, e := range result.Errors {
			fmt.Fprintf(out, "     - %v\n", e)
		}
	}

	var active, completed, overdue, recurring int
	for _, t := range tasks {
		if t.Completed {
			completed++
		} else {
			active++
			if dates.IsOverdue(t.DueDate, today) {
				overdue++
			}
		}
		if t.IsRecurring() {
			recurring++
		}
	}
	fmt.Fprintf(out, "  Tasks: %d (active %d, completed %d, overdue %d, recurring %d)\n",
		len(tasks), active, completed, overdue, recurring)

	if verbose {
		for _, t := range tasks {
			fmt.Fprintf(out, "    - %s #%d (%s) %s\n", render.StatusMark(t), t.ID, t.Priority, t.Description)
		}
	}
	return true
}

// versionCommand prints version information.
func versionCommand(out io.Writer) error {
	fmt.Fprintf(out, "todo version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Todo - a command-line task manager")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  todo [options]                  Start the interactive shell")
	fmt.Fprintln(w, "  todo [options] <command> [args] Run one shell command and exit")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui           Browse tasks in a full-screen terminal UI")
	fmt.Fprintln(w, "  doctor [-v]   Check config and task file validity")
	fmt.Fprintln(w, "  export        Export tasks (-format json|yaml|ics, -o file, -status)")
	fmt.Fprintln(w, "  init          Write an example config (-user, -force, [path])")
	fmt.Fprintln(w, "  version       Show version information")
	fmt.Fprintln(w, "  help          Show this help message")
	fmt.Fprintln(w, "  add, view, update, delete, mark, search, filter, sort")
	fmt.Fprintln(w, "                Shell commands; see 'todo help' or 'help' in the shell")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
