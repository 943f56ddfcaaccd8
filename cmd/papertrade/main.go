package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/papertrade-sim/papertrade/internal/config"
	"github.com/papertrade-sim/papertrade/internal/engine"
	"github.com/papertrade-sim/papertrade/internal/ledger"
	"github.com/papertrade-sim/papertrade/internal/logger"
	"github.com/papertrade-sim/papertrade/internal/market"
	"github.com/papertrade-sim/papertrade/internal/server"
	"github.com/papertrade-sim/papertrade/internal/tui"
)

// loadConfig reads the config file when one is given, otherwise the
// defaults, and applies flag overrides on top.
func loadConfig(cmd *cli.Command) (config.Config, error) {
	cfg := config.Defaults()

	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}

		cfg = loaded
	}

	if db := cmd.String("db"); db != "" {
		cfg.DatabasePath = db
	}

	if key := os.Getenv("POLYGON_API_KEY"); key != "" && cfg.PolygonAPIKey == "" {
		cfg.PolygonAPIKey = key
	}

	return cfg, cfg.Validate()
}

// openStore opens and initializes the ledger store.
func openStore(cfg config.Config, log *logger.Logger) (*ledger.Store, error) {
	store, err := ledger.NewStore(cfg.DatabasePath, log)
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		return nil, err
	}

	return store, nil
}

func seedAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	catalogPath := cmd.String("catalog")
	if catalogPath == "" {
		catalogPath = cfg.CatalogPath
	}

	limit := int(cmd.Int("limit"))
	if limit == 0 {
		limit = cfg.SeedLimit
	}

	count, err := store.SeedCatalog(catalogPath, limit)
	if err != nil {
		return err
	}

	fmt.Printf("Seeded %d tickers from %s\n", count, catalogPath)

	return nil
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	source, err := market.NewSource(market.SourceType(cfg.Provider), market.Config{
		Store:         store,
		PolygonAPIKey: cfg.PolygonAPIKey,
	})
	if err != nil {
		return err
	}

	eng := engine.NewEngine(store, source, log)
	srv := server.NewServer(store, eng, source, log)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Start(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func tuiAction(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger()
	if err != nil {
		return err
	}

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	source, err := market.NewSource(market.SourceType(cfg.Provider), market.Config{
		Store:         store,
		PolygonAPIKey: cfg.PolygonAPIKey,
	})
	if err != nil {
		return err
	}

	username := cmd.String("user")

	user, err := store.GetUserByName(username)
	if err != nil {
		return err
	}

	portfolios, err := store.ListPortfolios(user.Username)
	if err != nil {
		return err
	}

	portfolioID := cmd.String("portfolio")
	if portfolioID == "" {
		if len(portfolios) == 0 {
			return fmt.Errorf("user %q has no portfolios, create one first", username)
		}

		portfolioID = portfolios[0].ID
	}

	eng := engine.NewEngine(store, source, log)
	model := tui.NewModel(store, eng, source, user.Username, portfolioID)

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()

	return err
}

func main() {
	configFlags := []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the YAML config file",
		},
		&cli.StringFlag{
			Name:  "db",
			Usage: "Path to the DuckDB database file (overrides config)",
		},
	}

	cmd := &cli.Command{
		Name:  "papertrade",
		Usage: "Simulated stock trading against real or cached prices",
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "Seed the ticker catalog from a company tickers JSON file",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "catalog",
						Usage: "Path to the catalog JSON file (overrides config)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of tickers to seed, 0 for all",
					},
				}, configFlags...),
				Action: seedAction,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Flags:  configFlags,
				Action: serveAction,
			},
			{
				Name:  "tui",
				Usage: "Run the interactive trading terminal",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "user",
						Aliases:  []string{"u"},
						Usage:    "Username to trade as",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "portfolio",
						Usage: "Portfolio id, defaults to the user's first portfolio",
					},
				}, configFlags...),
				Action: tuiAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
