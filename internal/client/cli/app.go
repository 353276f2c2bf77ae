package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/crux/internal/client/config"
	"github.com/dmitrijs2005/crux/internal/client/flow"
	"github.com/dmitrijs2005/crux/internal/client/migrations"
	"github.com/dmitrijs2005/crux/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/crux/internal/client/repositories/nominees"
	"github.com/dmitrijs2005/crux/internal/client/services"
	"github.com/dmitrijs2005/crux/internal/client/session"
	"github.com/dmitrijs2005/crux/internal/client/timer"
	"github.com/dmitrijs2005/crux/internal/dbx"
	"github.com/dmitrijs2005/crux/internal/logging"
)

// mfaSwitch is implemented by providers that let the client turn SMS MFA on
// and off for an account.
type mfaSwitch interface {
	SetMFA(ctx context.Context, identity string, enabled bool) error
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	session   *session.Session
	nominees  services.NomineeService
	settings  services.SettingsService
	mfa       mfaSwitch
	scheduler timer.Scheduler
	reader    *bufio.Reader
	out       io.Writer
	route     flow.Route
	closers   []func() error
}

// NewApp opens the vault database and the configured identity provider.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := dbx.Open(ctx, cfg.VaultDBPath, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	provider, closeProvider, err := newProvider(ctx, cfg, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sess := session.New(provider,
		session.WithProfileStore(session.NewProfileStore(db)),
		session.WithLogger(logger),
		session.WithCodeLength(cfg.CodeLength),
	)
	a := newApp(cfg, logger, sess,
		services.NewNomineeService(nominees.NewSQLiteRepository(db)),
		services.NewSettingsService(metadata.NewSQLiteRepository(db)),
		bufio.NewReader(os.Stdin), os.Stdout)
	if m, ok := provider.(mfaSwitch); ok {
		a.mfa = m
	}
	a.closers = append(a.closers, closeProvider, db.Close)
	return a, nil
}

func newApp(cfg *config.Config, logger logging.Logger, sess *session.Session,
	ns services.NomineeService, ss services.SettingsService, reader *bufio.Reader, out io.Writer) *App {
	return &App{
		config:    cfg,
		logger:    logger.With("module", "cli"),
		session:   sess,
		nominees:  ns,
		settings:  ss,
		scheduler: timer.RealScheduler(),
		reader:    reader,
		out:       out,
		route:     flow.RouteSignin,
	}
}

// Run shows the REPL until the user exits, then releases resources.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()
	a.Root(ctx)
}

// Close waits for background sign-outs and closes the databases.
func (a *App) Close() error {
	a.session.Wait()
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Navigate implements flow.Navigator.
func (a *App) Navigate(r flow.Route) {
	a.route = r
	a.logger.Debug(context.Background(), "navigate", "route", string(r))
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Authenticated
}

// newController builds a verification flow that reports routes to the app.
func (a *App) newController() *flow.Controller {
	return flow.New(a.session, a, flow.Options{
		CodeLength: a.config.CodeLength,
		Cooldown:   int(a.config.ResendCooldown.Seconds()),
		Scheduler:  a.scheduler,
		Logger:     a.logger,
	})
}

// report prints the user-facing outcome of res and turns a failure into an
// error.
func (a *App) report(res session.Result, success string) error {
	switch res.Outcome {
	case session.Success, session.Challenge:
		if success != "" {
			printlnFn(success)
		}
		return nil
	default:
		printlnFn(res.Message)
		return errors.New(res.Message)
	}
}
