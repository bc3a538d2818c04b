// Package shell implements the todo command language: a tokenizer, the
// command handlers, and the interactive prompt loop.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/render"
	"github.com/nibzard/todo-go/internal/todo"
)

// Prompt is printed before each interactive command.
const Prompt = "> "

// errExit is returned by the exit command to stop the loop.
var errExit = errors.New("exit")

// Options configures a Shell.
type Options struct {
	// Path is the task file saved after every mutation.
	Path string

	In     io.Reader
	Out    io.Writer
	Logger *log.Logger

	ConfirmDelete    bool
	NoColor          bool
	DescriptionWidth int

	// SortBy and SortOrder are the defaults for the sort command and the
	// tie-break order of listings.
	SortBy    string
	SortOrder string
}

// Shell dispatches commands against a task store.
type Shell struct {
	store   *todo.Store
	path    string
	out     io.Writer
	printer *render.Printer
	logger  *log.Logger
	input   *lineReader

	confirmDelete bool
	sortBy        string
	sortOrder     string
}

// New creates a shell over store.
func New(store *todo.Store, opts Options) *Shell {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.SortBy == "" {
		opts.SortBy = todo.SortPriority
	}
	if opts.SortOrder == "" {
		opts.SortOrder = todo.OrderDesc
	}

	return &Shell{
		store: store,
		path:  opts.Path,
		out:   opts.Out,
		printer: render.NewPrinter(opts.Out, render.Options{
			NoColor:          opts.NoColor,
			DescriptionWidth: opts.DescriptionWidth,
		}),
		logger:        opts.Logger,
		input:         newLineReader(opts.In),
		confirmDelete: opts.ConfirmDelete,
		sortBy:        opts.SortBy,
		sortOrder:     opts.SortOrder,
	}
}

// Run reads commands until exit, end of input, or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	s.printer.Println("Todo list manager. Type 'help' for available commands.")

	for {
		fmt.Fprint(s.out, Prompt)
		line, err := s.input.readLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				fmt.Fprintln(s.out, "\nExiting...")
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}

		if err := s.ExecLine(line); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			s.printer.Error("Error: " + err.Error())
		}
	}
}

// ExecLine tokenizes and runs one command line. Blank lines do nothing.
func (s *Shell) ExecLine(line string) error {
	args, err := Tokenize(strings.TrimSpace(line))
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	return s.dispatch(args)
}

// Exec runs one already-split command, as given on the process command
// line. The exit command is accepted and does nothing.
func (s *Shell) Exec(args []string) error {
	if len(args) == 0 {
		return nil
	}
	if err := s.dispatch(args); err != nil && !errors.Is(err, errExit) {
		return err
	}
	return nil
}

func (s *Shell) dispatch(args []string) error {
	name := strings.ToLower(args[0])
	cmd, ok := lookupCommand(name)
	if !ok {
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", args[0])
	}

	parsed, err := parseArgs(args[1:])
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.name, err)
	}

	s.logger.Debug("dispatch", "command", cmd.name, "args", parsed.positional)
	return cmd.run(s, parsed)
}

func (s *Shell) today() time.Time {
	return s.store.Today()
}

// save persists the store after a mutation.
func (s *Shell) save() error {
	if s.path == "" {
		return nil
	}
	if err := s.store.Save(s.path); err != nil {
		return fmt.Errorf("save tasks: %w", err)
	}
	s.logger.Debug("saved tasks", "path", s.path, "count", s.store.Len())
	return nil
}

// confirm asks a yes/no question; only y or yes confirms.
func (s *Shell) confirm(question string) bool {
	fmt.Fprintf(s.out, "%s (y/N): ", question)
	answer, err := s.input.readLine(context.Background())
	if err != nil {
		fmt.Fprintln(s.out)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// lineReader reads lines on a background goroutine so callers can stop
// waiting when their context ends.
type lineReader struct {
	r       *bufio.Reader
	lines   chan lineResult
	started bool
}

type lineResult struct {
	line string
	err  error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r), lines: make(chan lineResult)}
}

func (l *lineReader) start() {
	l.started = true
	go func() {
		for {
			line, err := l.r.ReadString('\n')
			if err != nil && !(errors.Is(err, io.EOF) && line != "") {
				l.lines <- lineResult{err: err}
				close(l.lines)
				return
			}
			l.lines <- lineResult{line: strings.TrimRight(line, "\r\n")}
		}
	}()
}

func (l *lineReader) readLine(ctx context.Context) (string, error) {
	if !l.started {
		l.start()
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return res.line, res.err
	}
}
