package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"

	"github.com/dmitrijs2005/vmgen/internal/client/client"
	"github.com/dmitrijs2005/vmgen/internal/client/config"
	"github.com/dmitrijs2005/vmgen/internal/client/notify"
	"github.com/dmitrijs2005/vmgen/internal/client/repositories"
	"github.com/dmitrijs2005/vmgen/internal/client/services"
	"github.com/dmitrijs2005/vmgen/internal/client/session"
	"github.com/dmitrijs2005/vmgen/internal/logging"
)

// App holds everything a command needs. Commands only talk to the services;
// the HTTP client and the session are exposed for status output.
type App struct {
	config *config.Config
	log    logging.Logger

	db      *sql.DB
	session *session.Store
	client  *client.HTTPClient
	toasts  *notify.Center

	authService         services.AuthService
	projectService      services.ProjectService
	fileService         services.FileService
	notificationService services.NotificationService
	generatorService    services.GeneratorService

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens the session database, restores the session (or injects the
// local one) and builds the client stack. Close releases it.
func NewApp(ctx context.Context, cfg *config.Config, in io.Reader, out, errOut io.Writer) (*App, error) {
	log, err := logging.New(cfg.LogBackend, cfg.LogLevel, errOut)
	if err != nil {
		return nil, err
	}

	db, err := repositories.InitDatabase(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open session database: %w", err)
	}

	store := session.NewStore(db, log.With("component", "session"))
	if cfg.LocalMode {
		store.InitLocal(ctx)
	} else if err := store.Restore(ctx); err != nil {
		db.Close()
		return nil, err
	}

	center := notify.NewCenter(notify.NewTerminalRenderer(errOut))
	hc := client.New(client.Options{
		RemoteURL:    cfg.RemoteURL,
		LocalURL:     cfg.LocalURL,
		Local:        cfg.LocalMode,
		ProbeTimeout: cfg.ProbeTimeout,
		HTTP:         &http.Client{},
		Session:      store,
		Notifier:     center,
		Logger:       log.With("component", "http"),
	})

	return &App{
		config:              cfg,
		log:                 log,
		db:                  db,
		session:             store,
		client:              hc,
		toasts:              center,
		authService:         services.NewAuthService(hc, store, log),
		projectService:      services.NewProjectService(hc),
		fileService:         services.NewFileService(hc),
		notificationService: services.NewNotificationService(hc),
		generatorService:    services.NewGeneratorService(hc),
		reader:              bufio.NewReader(in),
		out:                 out,
	}, nil
}

func (a *App) Close() error {
	if a.toasts != nil {
		a.toasts.Close()
	}
	if a.client != nil {
		a.client.Close()
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) isLoggedIn() bool {
	return a.session != nil && a.session.IsAuthenticated()
}

// currentUserID is the signed-in user's id, or an error telling the user to
// log in.
func (a *App) currentUserID() (string, error) {
	if u, ok := a.session.User(); ok && u.ID != "" {
		return u.ID, nil
	}
	return "", errNotLoggedIn
}

func (a *App) newEditor() *services.Editor {
	return services.NewEditor(a.projectService, a.fileService, a.log)
}

func (a *App) openEditor(ctx context.Context, projectID string) (*services.Editor, error) {
	return services.OpenEditor(ctx, a.projectService, a.fileService, a.log, projectID)
}

// status is the prompt prefix: user and backend mode.
func (a *App) status() string {
	mode := "remote"
	switch {
	case a.config != nil && a.config.LocalMode:
		mode = "local"
	case a.client != nil && a.client.UsingFallback():
		mode = "fallback"
	}
	if u, ok := a.session.User(); ok {
		return u.Email + " " + mode
	}
	return mode
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
