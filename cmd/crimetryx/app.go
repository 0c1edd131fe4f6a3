package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crimetryx/crimetryx/internal/backend"
	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/evidence"
	"github.com/crimetryx/crimetryx/internal/logging"
	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/pipeline"
	"github.com/crimetryx/crimetryx/internal/registry"
	"github.com/crimetryx/crimetryx/internal/session"
	"github.com/crimetryx/crimetryx/internal/sqlite"
	"github.com/crimetryx/crimetryx/internal/store"
)

// application bundles the wired-up services the commands operate on.
type application struct {
	cfg      config
	logger   *slog.Logger
	db       *sqlite.Database
	store    *store.Store
	client   *backend.Client
	sessions *session.Store
	registry *registry.Registry
}

func newApplication(ctx context.Context) (*application, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if modeOverride != "" {
		switch modeOverride {
		case modeAuto, modeLive, modeOffline:
			cfg.Mode = modeOverride
		default:
			return nil, errors.New("--mode must be auto, live or offline")
		}
	}

	var level slog.Level
	if err = level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return nil, errors.Wrap(err, "parse log level", slog.String("level", cfg.LogLevel))
	}
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))

	if err = os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create data directory", slog.String("path", cfg.DataDir))
	}
	db, err := sqlite.NewDatabase(ctx, filepath.Join(cfg.DataDir, "crimetryx.sqlite"))
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}

	st := store.New(db, logger)
	if err = st.Seed(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "seed demo data")
	}

	client := backend.NewClient(cfg.APIURL, logger)

	sessions := session.NewStore(cfg.DataDir, logger)
	if err = sessions.Restore(); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &application{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		store:    st,
		client:   client,
		sessions: sessions,
	}
	app.registry = registry.New(app.caseSource(), logger)
	return app, nil
}

func (app *application) Close() error {
	return app.db.Close()
}

func (app *application) caseSource() registry.Source {
	offline := registry.NewOfflineSource(app.store)
	switch app.cfg.Mode {
	case modeLive:
		return registry.NewLiveSource(app.client)
	case modeOffline:
		return offline
	default:
		return registry.NewFallbackSource(registry.NewLiveSource(app.client), offline, app.logger)
	}
}

func (app *application) evidenceSource() evidence.Source {
	offline := evidence.NewOfflineSource(app.store)
	switch app.cfg.Mode {
	case modeLive:
		return evidence.NewLiveSource(app.client)
	case modeOffline:
		return offline
	default:
		return evidence.NewFallbackSource(evidence.NewLiveSource(app.client), offline, app.logger)
	}
}

func (app *application) authenticator() session.Authenticator {
	switch app.cfg.Mode {
	case modeLive:
		return session.NewLiveAuthenticator(app.client)
	case modeOffline:
		return session.NewDemoAuthenticator()
	default:
		return session.NewFallbackAuthenticator(
			session.NewLiveAuthenticator(app.client),
			session.NewDemoAuthenticator(),
			app.logger,
		)
	}
}

func (app *application) executor() pipeline.Executor {
	local := func() pipeline.Executor {
		if app.cfg.OpenAIAPIKey != "" {
			return pipeline.NewDirectExecutor(app.cfg.OpenAIAPIKey, app.logger)
		}
		return pipeline.NewSimulatedExecutor()
	}
	switch app.cfg.Mode {
	case modeLive:
		return pipeline.NewBackendExecutor(app.client)
	case modeOffline:
		return local()
	default:
		return pipeline.NewFallbackExecutor(pipeline.NewBackendExecutor(app.client), local(), app.logger)
	}
}

// collection opens the evidence working set for a case, attributed to the
// logged-in investigator.
func (app *application) collection(ctx context.Context, caseID int64) (*evidence.Collection, error) {
	placedBy := session.DemoInvestigatorID
	if identity, ok := app.sessions.Current(); ok {
		placedBy = identity.InvestigatorID
	}
	coll := evidence.NewCollection(app.evidenceSource(), caseID, placedBy, app.logger)
	if err := coll.Load(ctx); err != nil {
		return nil, err
	}
	return coll, nil
}

// resolveCase turns a case code argument into a case record.
func (app *application) resolveCase(ctx context.Context, code string) (models.Case, error) {
	if err := app.registry.Load(ctx); err != nil {
		return models.Case{}, err
	}
	return app.registry.ByCode(code)
}
