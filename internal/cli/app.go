package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/idilsaglam/tada/internal/alloc"
	"github.com/idilsaglam/tada/internal/config"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/store/kv"
	"github.com/idilsaglam/tada/internal/ui"
)

// App is everything a subcommand needs.
type App struct {
	Alloc   *alloc.Allocator
	Items   *jsonstore.Store
	Log     *logrus.Logger
	Backend kv.Backend
}

// NewLogger builds the stderr logger. verbose forces debug.
func NewLogger(level string, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.WarnLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)
	return log
}

// Open wires config into an App. The returned func closes the session store.
// A store that is configured but cannot be opened is dropped with a warning
// and ids are counted in memory only; bad settings are still an error.
func Open(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*App, func() error, error) {
	ui.SetTheme(cfg.Theme)

	kc := cfg.KV()
	store, closeFn, err := kv.Open(ctx, kc)
	switch {
	case errors.Is(err, kv.ErrUnknownBackend), errors.Is(err, kv.ErrMisconfigured):
		return nil, nil, fmt.Errorf("open %s store: %w", kc.Backend, err)
	case err != nil:
		log.WithFields(logrus.Fields{"backend": kc.Backend, "error": err}).Warn("session store unavailable, ids are not persisted")
		store, kc.Backend = nil, kv.BackendNone
	default:
		log.WithFields(logrus.Fields{"backend": kc.Backend, "path": kc.Path}).Debug("session store ready")
	}

	a := alloc.New(ctx, store, alloc.WithKey(cfg.Store.Key), alloc.WithLogger(log))
	return &App{
		Alloc:   a,
		Items:   jsonstore.New(cfg.DataFile),
		Log:     log,
		Backend: kc.Backend,
	}, closeFn, nil
}
