package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/swatch/internal/repositories"
	"github.com/desertthunder/swatch/internal/services"
	"github.com/desertthunder/swatch/internal/shared"
	"github.com/desertthunder/swatch/internal/state"
	"github.com/desertthunder/swatch/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	api        *services.APIService
	ownAPI     bool
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	storage  state.Storage
	db       *sql.DB
	navigate state.Navigator
	session  *state.SessionHolder
	analysis *state.AnalysisHolder
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        *services.APIService
	HTTPClient *http.Client
	Storage    state.Storage
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		storage:    opts.Storage,
	}
	if r.api == nil {
		r.ownAPI = true
		r.api = r.newAPIService()
	}
	return r
}

// SetLogger replaces the logger used by the runner and everything it creates afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	if r.ownAPI {
		r.api = r.newAPIService()
	}
}

func (r *Runner) newAPIService() *services.APIService {
	client := r.httpClient
	if timeout := r.config.API.TimeoutDuration(); timeout > 0 {
		client = &http.Client{Transport: r.httpClient.Transport, Timeout: timeout}
	}
	return services.NewAPIService(r.config.API.BaseURL, client,
		services.WithRateLimit(r.config.API.RateLimit, r.config.API.RateBurst),
		services.WithLogger(r.logger),
	)
}

// configure loads the config file named by --config and applies log settings.
//
// Runs before every command.
func (r *Runner) configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	path := cmd.String("config")
	config, err := shared.ResolveConfig(path)
	if err != nil {
		return ctx, err
	}
	r.config = config
	r.configPath = path

	level, err := shared.ParseLogLevel(config.Log.Level)
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}
	shared.SetLogLevel(r.logger, level)

	if r.ownAPI {
		r.api = r.newAPIService()
	}
	return ctx, nil
}

// holders opens durable storage, builds the state holders and restores any saved session.
func (r *Runner) holders(ctx context.Context) error {
	if r.session != nil {
		return nil
	}

	if r.storage == nil {
		db, err := shared.OpenStore(r.config.DatabasePath(), r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrStorage, err)
		}
		r.db = db
		r.storage = repositories.NewKeyValueRepository(db)
	}

	r.session = state.NewSessionHolder(r.api, r.storage, r.navigate, r.logger)
	r.analysis = state.NewAnalysisHolder(r.api, r.session, r.logger)

	if err := r.session.Restore(ctx); err != nil {
		r.logger.Warn("could not restore session", "error", err)
	}
	return nil
}

// token returns the bearer token of the restored session.
func (r *Runner) token(ctx context.Context) (string, error) {
	if err := r.holders(ctx); err != nil {
		return "", err
	}
	session, ok := r.session.Current()
	if !ok {
		return "", fmt.Errorf("%w: run 'swatch auth login' first", shared.ErrNotAuthenticated)
	}
	return session.Token, nil
}

// exportEngine builds a bulk exporter over the API client.
func (r *Runner) exportEngine() *tasks.ExportEngine {
	return tasks.NewExportEngine(r.api, r.logger)
}

// Close releases the database, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, analyzeCommand, authCommand, sitesCommand, openCommand, apiCommand, stubCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// app builds the root command.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "swatch",
		Usage:   "Analyze website design palettes from the terminal",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.configure,
		Commands: r.register(),
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
