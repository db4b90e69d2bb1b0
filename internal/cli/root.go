// Package cli holds the bin-finder command tree.
package cli

import (
	"fmt"
	"os"

	"bin-finder/internal/calculator"
	"bin-finder/internal/config"
	"bin-finder/internal/dataset"
	"bin-finder/internal/geocoding"
	"bin-finder/internal/geocoding/nominatim"
	"bin-finder/internal/jobs"
	"bin-finder/internal/models"
	"bin-finder/internal/session"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	dataPath   string
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "bin-finder",
		Short: "bin-finder - clothing collection bin lookup service",
		Long: `bin-finder serves clothing collection bin locations.

It supports:
- Address search with province synonyms and highlighting
- Nearest bin and distance sorting from the user's location
- Bounding box and radius queries
- Reverse geocoding through Nominatim
- Batch nearest/radius jobs over Excel workbooks`,
		SilenceUsage: true,
	}
	serve := newServeCommand(g)
	root.RunE = serve.RunE

	root.PersistentFlags().StringVar(&g.configPath, "config", "", "config file path (optional, env vars override it)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (debug, info, warn, error) (default: info)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format (json, console) (default: json)")
	root.PersistentFlags().StringVar(&g.dataPath, "data", "", "bin dataset path (.json or .xlsx)")

	root.AddCommand(serve, newSearchCommand(g), newNearestCommand(g), newBatchCommand(g))
	return root
}

// Execute runs the command tree. It is called by main.main.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (g *globalFlags) load() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	if g.logLevel != "" {
		cfg.Logging.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Logging.Format = g.logFormat
	}
	if g.dataPath != "" {
		cfg.Data.BinsPath = g.dataPath
	}
	return cfg, config.NewLogger(cfg.Logging), nil
}

// app is the set of components built from a Config.
type app struct {
	cfg      config.Config
	logger   zerolog.Logger
	data     *dataset.Dataset
	geocoder *geocoding.Service
	sessions *session.Store
	jobs     *jobs.Manager
	policy   calculator.SortPolicy
}

func newApp(cfg config.Config, logger zerolog.Logger) (*app, error) {
	policy, err := calculator.ParseSortPolicy(cfg.Sort.Policy)
	if err != nil {
		return nil, err
	}

	data, err := dataset.Load(cfg.Data.BinsPath, cfg.Data.Sheet)
	if err != nil {
		return nil, err
	}
	stats := data.Stats()
	logger.Info().
		Str("path", cfg.Data.BinsPath).
		Int("total", stats.Total).
		Int("located", stats.Located).
		Msg("dataset loaded")

	var reverser geocoding.Reverser
	if cfg.Geocoding.Enabled {
		reverser = nominatim.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.Email,
			nominatim.WithRateLimit(cfg.Geocoding.RateLimit),
			nominatim.WithRetries(cfg.Geocoding.Retries),
			nominatim.WithBackoff(cfg.Geocoding.Backoff),
		)
	}

	origin := models.Coordinate{Lat: cfg.Origin.Lat, Lng: cfg.Origin.Lng}
	return &app{
		cfg:      cfg,
		logger:   logger,
		data:     data,
		policy:   policy,
		geocoder: geocoding.NewService(reverser, cfg.Geocoding.CacheSize, logger),
		sessions: session.NewStore(session.Options{
			CookieName:    cfg.Session.CookieName,
			Secret:        []byte(cfg.Session.Secret),
			MaxSessions:   cfg.Session.MaxSessions,
			DefaultOrigin: origin,
			SortPolicy:    policy,
			HistorySize:   cfg.Geocoding.HistorySize,
			Secure:        cfg.Environment == "production",
		}, logger),
		jobs: jobs.NewManager(jobs.Options{
			UploadDir: cfg.Jobs.UploadDir,
			OutputDir: cfg.Jobs.OutputDir,
			Workers:   cfg.Jobs.Workers,
			MaxJobs:   cfg.Jobs.MaxJobs,
		}, func() []models.Bin { return data.Bins }, logger),
	}, nil
}
