package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"taskflow/internal/backend/apper"
	"taskflow/internal/backend/googletasks"
	"taskflow/internal/backend/sqlitestore"
	"taskflow/internal/commands"
	"taskflow/internal/config"
	"taskflow/internal/engine"
	"taskflow/internal/mapper"
	"taskflow/internal/recordstore"
	"taskflow/internal/repository"
)

// BuildApp opens the configured store and wires the repositories and engine
// over it. The engine is not loaded.
func BuildApp(ctx context.Context, cfg *config.Config, notify engine.Notifier, log zerolog.Logger) (*commands.App, error) {
	store, closer, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return NewApp(cfg, store, closer, notify, log), nil
}

// NewApp wires the repositories and engine over store.
func NewApp(cfg *config.Config, store recordstore.Store, closer io.Closer, notify engine.Notifier, log zerolog.Logger) *commands.App {
	s := cfg.Settings
	tasks := repository.NewTaskRepository(store, s.TaskTable, mapper.New(s.DefaultCategory), log)
	cats := repository.NewCategoryRepository(store, s.CategoryTable, log)
	eng := engine.New(tasks, cats, engine.Options{
		DefaultCategory: s.DefaultCategory,
		Notifier:        notify,
		Logger:          log,
	})
	return commands.NewApp(eng, cats, closer)
}

// OpenStore opens the backend named by the settings. The closer is nil for
// backends with nothing to release.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (recordstore.Store, io.Closer, error) {
	s := cfg.Settings
	switch s.Backend {
	case config.BackendApper:
		creds, err := config.LoadCredentials()
		if err != nil {
			return nil, nil, err
		}
		c, err := apper.New(ctx, apper.Options{
			BaseURL:   s.BaseURL,
			ProjectID: creds.ProjectID,
			PublicKey: creds.PublicKey,
			Timeout:   s.Timeout.Duration,
			Logger:    log,
		})
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil
	case config.BackendGoogleTasks:
		c, err := googletasks.New(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return c, nil, nil
	case config.BackendSQLite:
		st, err := sqlitestore.Open(cfg.DBPath())
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return st, st, nil
	}
	return nil, nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalidSettings, s.Backend)
}
