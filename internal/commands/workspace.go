package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/smsledger/internal/categorize"
	"github.com/cleared-dev/smsledger/internal/config"
	"github.com/cleared-dev/smsledger/internal/dedup"
	"github.com/cleared-dev/smsledger/internal/logger"
	"github.com/cleared-dev/smsledger/internal/merchant"
	"github.com/cleared-dev/smsledger/internal/pipeline"
	"github.com/cleared-dev/smsledger/internal/sender"
)

// workspace is a loaded config with its pipeline. dir is the directory of
// the config file, or "" when running on built-in defaults.
type workspace struct {
	dir  string
	pipe *pipeline.Pipeline
}

func loadWorkspace(cmd *cobra.Command, configPath string) (*workspace, error) {
	cfg, dir, err := loadConfig(cmd, configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	pipe, err := buildPipeline(cfg, dir, log)
	if err != nil {
		return nil, err
	}
	cmd.SetContext(logger.WithContext(cmd.Context(), log))
	return &workspace{dir: dir, pipe: pipe}, nil
}

// loadConfig reads configPath. A missing file at the default path means
// the built-in defaults; a missing file named with --config is an error.
func loadConfig(cmd *cobra.Command, configPath string) (*config.Config, string, error) {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("resolving config path: %w", err)
	}
	cfg, err := config.Load(abs)
	if err == nil {
		return cfg, filepath.Dir(abs), nil
	}
	if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.Default(), "", nil
	}
	return nil, "", err
}

// buildPipeline loads every table the config names. Any missing or
// malformed table fails here, before an event is processed.
func buildPipeline(cfg *config.Config, dir string, log zerolog.Logger) (*pipeline.Pipeline, error) {
	senders, err := sender.NewFilter(cfg.Senders)
	if err != nil {
		return nil, fmt.Errorf("loading senders: %w", err)
	}

	merchants := merchant.DefaultTable()
	if p := config.ResolvePath(dir, cfg.Tables.Merchants); p != "" {
		if merchants, err = merchant.LoadTable(p); err != nil {
			return nil, fmt.Errorf("loading merchant table: %w", err)
		}
	}

	categories := categorize.DefaultTable()
	if p := config.ResolvePath(dir, cfg.Tables.Categories); p != "" {
		if categories, err = categorize.LoadTable(p); err != nil {
			return nil, fmt.Errorf("loading category table: %w", err)
		}
	}

	contacts := merchant.EmptyContacts()
	if p := config.ResolvePath(dir, cfg.Tables.Contacts); p != "" {
		if contacts, err = merchant.LoadContacts(p); err != nil {
			return nil, fmt.Errorf("loading contacts: %w", err)
		}
	}

	guard, err := dedup.New(dedup.Options{
		Mode:     dedup.Mode(cfg.Dedup.Mode),
		Window:   cfg.Dedup.Window,
		Capacity: cfg.Dedup.Capacity,
	})
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("merchants", merchants.Len()).
		Int("contacts", contacts.Len()).
		Strs("categories", categories.Names()).
		Msg("tables loaded")

	return pipeline.New(pipeline.Options{
		Senders:    senders,
		Resolver:   merchant.NewResolver(merchants, contacts),
		Categories: categories,
		Guard:      guard,
		Location:   loc,
		Workers:    cfg.Workers,
		MinDisplay: cfg.Thresholds.MinDisplay,
		Logger:     &log,
	})
}
