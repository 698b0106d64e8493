package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/arrears/internal/config"
	"github.com/cleared-dev/arrears/internal/source"
	"github.com/cleared-dev/arrears/internal/store"
)

func newInitCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new arrears workspace",
		Args:  usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "workspace name, usually the managing organization (required)")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name string) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return withCode(ExitUsage, fmt.Errorf("%s already exists", cfgPath))
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	cfg := config.Default(name)

	// Create directory structure.
	dirs := []string{
		filepath.Dir(cfg.Store.Path),
		cfg.Inbox,
		filepath.Join(cfg.Inbox, source.ProcessedDir),
		cfg.Reports,
		cfg.Logs,
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	// Write arrears.yaml.
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Write .gitignore.
	gitignore := filepath.Dir(cfg.Store.Path) + "/\n" + config.EnvFile + "\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	// Create the database and apply migrations.
	st, err := store.Open(cmd.Context(), filepath.Join(dir, cfg.Store.Path))
	if err != nil {
		return err
	}
	if err := st.Close(); err != nil {
		return fmt.Errorf("closing store: %w", err)
	}

	printInit(cmd.OutOrStdout(), dir, cfg)
	return nil
}

func printInit(w io.Writer, dir string, cfg *config.Config) {
	fmt.Fprintf(w, "Initialized arrears workspace %q at %s\n", cfg.Name, dir)
	fmt.Fprintf(w, "Put ledger extracts (%s) into %s and run \"arrears import\".\n",
		joinExts(source.DefaultRegistry().Extensions()), filepath.Join(dir, cfg.Inbox))
}
