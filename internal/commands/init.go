package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/smsledger/internal/categorize"
	"github.com/cleared-dev/smsledger/internal/config"
	"github.com/cleared-dev/smsledger/internal/merchant"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a workspace with editable config and tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing smsledger.yaml")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, force bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking config: %w", err)
	}

	// Create directory structure.
	dirs := []string{
		"import",
		filepath.Join("import", "processed"),
		"logs",
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write smsledger.yaml pointing at local copies of the tables.
	cfg := config.Default()
	cfg.Tables = config.TablesConfig{
		Merchants:  "merchants.yaml",
		Categories: "categories.yaml",
		Contacts:   "contacts.csv",
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	files := []struct {
		name string
		data []byte
	}{
		{"merchants.yaml", merchant.DefaultTableYAML()},
		{"categories.yaml", categorize.DefaultTableYAML()},
		{filepath.Join("import", ".gitkeep"), nil},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", f.name, err)
		}
	}

	// Write an empty contact book.
	cf, err := os.Create(filepath.Join(dir, "contacts.csv"))
	if err != nil {
		return fmt.Errorf("creating contacts.csv: %w", err)
	}
	defer cf.Close()
	if err := merchant.WriteContacts(cf, nil); err != nil {
		return fmt.Errorf("writing contacts.csv: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized smsledger workspace at %s\n", dir)
	return nil
}
