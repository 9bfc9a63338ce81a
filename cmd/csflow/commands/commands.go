package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alecthomas/kingpin/v2"
	"k8s.io/client-go/util/homedir"

	"github.com/slok/csflow/internal/log"
	"github.com/slok/csflow/internal/metrics"
	metricsprometheus "github.com/slok/csflow/internal/metrics/prometheus"
	"github.com/slok/csflow/internal/printer"
	"github.com/slok/csflow/internal/remote/siapi"
	"github.com/slok/csflow/internal/storage"
	"github.com/slok/csflow/internal/storage/memory"
	"github.com/slok/csflow/internal/storage/sqlite"
	"github.com/slok/csflow/internal/taskio"
	"github.com/slok/csflow/internal/utils/env"
)

const (
	// LoggerTypeDefault is the logger default type.
	LoggerTypeDefault = "default"
	// LoggerTypeJSON is the logger json type.
	LoggerTypeJSON = "json"
)

// Command represents an application command, all commands that want to be executed
// should implement and setup on main.
type Command interface {
	Name() string
	Run(ctx context.Context) error
}

// RootCommand represents the root command configuration and global configuration
// for all the commands.
type RootCommand struct {
	// Global flags.
	Debug           bool
	NoLog           bool
	NoColor         bool
	LoggerType      string
	APIURL          string
	APIToken        string
	WebURL          string
	DBPath          string
	NoHistory       bool
	GitHubOutput    string
	MetricsTextfile string

	// Global instances.
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  log.Logger
	Metrics *metricsprometheus.Recorder
}

// NewRootCommand initializes the main root configuration.
func NewRootCommand(app *kingpin.Application) *RootCommand {
	c := &RootCommand{}

	app.Flag("debug", "Enable debug mode.").BoolVar(&c.Debug)
	app.Flag("no-log", "Disable logger.").BoolVar(&c.NoLog)
	app.Flag("no-color", "Disable logger color.").BoolVar(&c.NoColor)
	app.Flag("logger", "Selects the logger type.").Default(LoggerTypeDefault).EnumVar(&c.LoggerType, LoggerTypeDefault, LoggerTypeJSON)

	app.Flag("api-url", "System Initiative API URL.").Default(inputDefault("apiUrl", siapi.DefaultAPIURL)).StringVar(&c.APIURL)
	app.Flag("api-token", "System Initiative API token.").Default(inputDefault("apiToken", "")).StringVar(&c.APIToken)
	app.Flag("web-url", "System Initiative web application URL used on the output links (defaults to the API URL).").StringVar(&c.WebURL)

	defaultDBPath := filepath.Join(homedir.HomeDir(), ".csflow", "csflow.db")
	app.Flag("db-path", "Path to the SQLite run history database file.").Default(defaultDBPath).StringVar(&c.DBPath)
	app.Flag("no-history", "Don't persist the run history.").BoolVar(&c.NoHistory)
	app.Flag("github-output", "Step outputs file, if empty outputs are printed on stdout as name=value.").Default(env.GitHubOutputFile()).StringVar(&c.GitHubOutput)
	app.Flag("metrics-textfile", "Write Prometheus metrics to this file when finished (node exporter textfile format).").StringVar(&c.MetricsTextfile)

	c.Metrics = metricsprometheus.NewRecorder()

	return c
}

// inputDefault returns the task runner input value as the default of a flag.
func inputDefault(input, def string) string {
	if v := env.Input(input); v != "" {
		return v
	}
	return def
}

func (r *RootCommand) metricsRecorder() metrics.Recorder {
	if r.Metrics == nil {
		return metrics.Noop
	}
	return r.Metrics
}

// WriteMetrics writes the metrics textfile if configured.
func (r *RootCommand) WriteMetrics() error {
	if r.MetricsTextfile == "" || r.Metrics == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(r.MetricsTextfile), 0755); err != nil {
		return fmt.Errorf("could not create metrics directory: %w", err)
	}

	return r.Metrics.WriteToTextfile(r.MetricsTextfile)
}

func (r *RootCommand) newAPI() (*siapi.API, error) {
	if r.APIToken == "" {
		return nil, fmt.Errorf("api token is required (--api-token, CSFLOW_API_TOKEN or INPUT_APITOKEN)")
	}

	client, err := siapi.NewClient(siapi.ClientConfig{
		APIURL:          r.APIURL,
		Token:           r.APIToken,
		MetricsRecorder: r.metricsRecorder(),
		Logger:          r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create api client: %w", err)
	}

	api, err := siapi.NewAPI(siapi.APIConfig{Client: client, WebURL: r.WebURL})
	if err != nil {
		return nil, fmt.Errorf("could not create api: %w", err)
	}

	return api, nil
}

// newRepository returns the run history repository and a function to close it.
func (r *RootCommand) newRepository(ctx context.Context) (storage.Repository, func(), error) {
	if r.NoHistory {
		repo, err := memory.NewRepository(memory.RepositoryConfig{Logger: r.Logger})
		if err != nil {
			return nil, nil, fmt.Errorf("could not create repository: %w", err)
		}
		return repo, func() {}, nil
	}

	repo, err := sqlite.NewRepository(ctx, sqlite.RepositoryConfig{
		DBPath: r.DBPath,
		Logger: r.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("could not create repository: %w", err)
	}

	return repo, func() {
		if err := repo.Close(); err != nil {
			r.Logger.Warningf("Could not close repository: %s", err)
		}
	}, nil
}

func (r *RootCommand) newReporter() (*taskio.IO, error) {
	tio, err := taskio.New(taskio.Config{
		OutputFile: r.GitHubOutput,
		Annotate:   env.InGitHubActions(),
		Out:        r.Stdout,
		Logger:     r.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create task runner io: %w", err)
	}

	return tio, nil
}

func (r *RootCommand) newPrinter(format string) printer.Printer {
	switch format {
	case "json":
		return printer.NewJSONPrinter(r.Stdout)
	default: // table
		return printer.NewTablePrinter(r.Stdout)
	}
}

// setOutputs sets multiple outputs in order.
func setOutputs(tio taskio.Reporter, kvs ...string) error {
	for i := 0; i+1 < len(kvs); i += 2 {
		if err := tio.SetOutput(kvs[i], kvs[i+1]); err != nil {
			return fmt.Errorf("could not set %q output: %w", kvs[i], err)
		}
	}
	return nil
}
