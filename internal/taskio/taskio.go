// Package taskio implements the task runner (GitHub Actions) side of the CLI:
// step outputs, log groups and warning annotations.
package taskio

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/slok/csflow/internal/log"
)

// Output names.
const (
	OutputWorkspaceID            = "workspaceId"
	OutputUserID                 = "userId"
	OutputUserEmail              = "userEmail"
	OutputChangeSetID            = "changeSetId"
	OutputChangeSetWebURL        = "changeSetWebUrl"
	OutputComponentWebURL        = "componentWebUrl"
	OutputManagementFunctionLogs = "managementFunctionLogs"
	OutputRunID                  = "runId"
)

// Reporter is the task runner reporting interface used by the workflow.
type Reporter interface {
	SetOutput(name, value string) error
	StartGroup(title string)
	EndGroup()
	Warning(msg string)
}

// Noop is a Reporter that doesn't do anything.
const Noop = noop(0)

type noop int

func (noop) SetOutput(name, value string) error { return nil }
func (noop) StartGroup(title string)            {}
func (noop) EndGroup()                          {}
func (noop) Warning(msg string)                 {}

// Config is the configuration of the task runner IO.
type Config struct {
	// OutputFile is the step output file, if empty outputs are written to Out.
	OutputFile string
	// Annotate enables workflow commands (groups and warnings).
	Annotate bool
	Out      io.Writer
	Logger   log.Logger
}

func (c *Config) defaults() error {
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "taskio.IO"})
	return nil
}

// IO writes step outputs and workflow commands.
type IO struct {
	outputFile string
	annotate   bool
	out        io.Writer
	logger     log.Logger
	mu         sync.Mutex
	groupOpen  bool
}

var _ Reporter = &IO{}

// New returns a new task runner IO.
func New(cfg Config) (*IO, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &IO{
		outputFile: cfg.OutputFile,
		annotate:   cfg.Annotate,
		out:        cfg.Out,
		logger:     cfg.Logger,
	}, nil
}

// SetOutput sets a step output.
func (t *IO) SetOutput(name, value string) error {
	if name == "" {
		return fmt.Errorf("output name is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.outputFile == "" && !strings.Contains(value, "\n") {
		_, err := fmt.Fprintf(t.out, "%s=%s\n", name, value)
		return err
	}

	entry, err := formatHeredocOutput(name, value, "ghadelimiter_"+ulid.Make().String())
	if err != nil {
		return err
	}

	if t.outputFile == "" {
		_, err := io.WriteString(t.out, entry)
		return err
	}

	f, err := os.OpenFile(t.outputFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("could not open output file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("could not write output %q: %w", name, err)
	}

	t.logger.Debugf("Output %q set", name)
	return nil
}

// StartGroup opens a collapsible log group, closing the previous one if still open.
func (t *IO) StartGroup(title string) {
	if !t.annotate {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.groupOpen {
		fmt.Fprintln(t.out, "::endgroup::")
	}
	fmt.Fprintf(t.out, "::group::%s\n", escapeData(title))
	t.groupOpen = true
}

// EndGroup closes the current log group.
func (t *IO) EndGroup() {
	if !t.annotate {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.groupOpen {
		return
	}
	fmt.Fprintln(t.out, "::endgroup::")
	t.groupOpen = false
}

// Warning emits a warning annotation.
func (t *IO) Warning(msg string) {
	if !t.annotate {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	fmt.Fprintf(t.out, "::warning::%s\n", escapeData(msg))
}

func formatHeredocOutput(name, value, delimiter string) (string, error) {
	if strings.Contains(name, delimiter) {
		return "", fmt.Errorf("output name %q must not contain the delimiter %q", name, delimiter)
	}
	if strings.Contains(value, delimiter) {
		return "", fmt.Errorf("output %q value must not contain the delimiter %q", name, delimiter)
	}

	return fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delimiter, value, delimiter), nil
}

func escapeData(s string) string {
	s = strings.ReplaceAll(s, "%", "%25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}
