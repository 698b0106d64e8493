package commands

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/arrears/internal/config"
	"github.com/cleared-dev/arrears/internal/logging"
	"github.com/cleared-dev/arrears/internal/store"
)

// workspace is an initialized directory with its loaded config.
type workspace struct {
	root string
	cfg  *config.Config
	log  zerolog.Logger
}

func openWorkspace(cmd *cobra.Command) (*workspace, error) {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(root, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("loading workspace %s (run \"arrears init\" first?): %w", root, err)
	}
	return &workspace{
		root: root,
		cfg:  cfg,
		log:  logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format),
	}, nil
}

func (w *workspace) path(p string) string {
	return config.Resolve(w.root, p)
}

// context attaches the workspace logger to the command context.
func (w *workspace) context(cmd *cobra.Command) context.Context {
	return logging.WithContext(cmd.Context(), w.log)
}

func (w *workspace) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, w.path(w.cfg.Store.Path))
}
