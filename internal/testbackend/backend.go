// Package testbackend is an in-memory stand-in for the generation backend,
// served over httptest for client and service tests. It speaks the same
// REST dialect under /api and issues HS256 tokens.
package testbackend

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/labstack/echo/v4"
)

// Prefix is the mount point of every route.
const Prefix = "/api"

type account struct {
	user     models.User
	password string
}

type storedFile struct {
	info    models.FileInfo
	content []byte
}

type injected struct {
	status int
	body   any
	times  int // remaining uses, <=0 means forever
}

// Backend is safe for concurrent use.
type Backend struct {
	Echo *echo.Echo
	srv  *httptest.Server

	secret    []byte
	AccessTTL time.Duration

	mu            sync.Mutex
	generation    int
	accounts      map[string]*account // by email
	refreshTokens map[string]string   // token -> user id
	projects      map[string]*models.Project
	mappings      map[string][]models.ProjectMapping
	files         map[string]*storedFile
	notifications map[string][]models.Notification
	settings      map[string]models.NotificationSettings
	calls         map[string]int
	unauthorized  int
	failures      map[string]*injected
	refreshHook   func()
}

// New starts a backend and stops it when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := NewUnstarted()
	b.srv = httptest.NewServer(b.Echo)
	t.Cleanup(b.Close)
	return b
}

// NewUnstarted builds the router without listening.
func NewUnstarted() *Backend {
	b := &Backend{
		Echo:          echo.New(),
		secret:        []byte("testbackend-secret"),
		AccessTTL:     time.Hour,
		accounts:      make(map[string]*account),
		refreshTokens: make(map[string]string),
		projects:      make(map[string]*models.Project),
		mappings:      make(map[string][]models.ProjectMapping),
		files:         make(map[string]*storedFile),
		notifications: make(map[string][]models.Notification),
		settings:      make(map[string]models.NotificationSettings),
		calls:         make(map[string]int),
		failures:      make(map[string]*injected),
	}
	b.Echo.HideBanner = true
	b.Echo.HidePort = true
	b.routes()
	return b
}

// URL is the API base URL, including the /api prefix.
func (b *Backend) URL() string {
	return b.srv.URL + Prefix
}

// Close stops the server. It is safe to call twice.
func (b *Backend) Close() {
	if b.srv != nil {
		b.srv.CloseClientConnections()
		b.srv.Close()
	}
}

func (b *Backend) routes() {
	api := b.Echo.Group(Prefix, b.record, b.inject)
	api.GET("/health", func(c echo.Context) error { return c.JSON(http.StatusOK, echo.Map{"status": "ok"}) })

	auth := api.Group("/auth")
	auth.POST("/create", b.register)
	auth.POST("/login", b.login)
	auth.POST("/refresh", b.refresh)
	auth.GET("/me", b.me, b.requireAuth)
	auth.POST("/me", b.updateMe, b.requireAuth)
	auth.GET("/user/:id", b.userByID, b.requireAuth)
	auth.GET("/users", b.users, b.requireAuth, b.requireAdmin)
	auth.PUT("/user/:id/role", b.updateRole, b.requireAuth, b.requireAdmin)

	projects := api.Group("/projects", b.requireAuth)
	projects.GET("/", b.listProjects)
	projects.POST("/", b.createProject)
	projects.POST("/full", b.createProjectWithFiles)
	projects.GET("/:id", b.getProject)
	projects.PUT("/:id", b.updateProject)
	projects.DELETE("/:id", b.deleteProject)
	projects.GET("/:id/mappings", b.projectMappings)

	files := api.Group("/files", b.requireAuth)
	files.POST("/upload", b.uploadFile)
	files.GET("/project/:id", b.projectFiles)
	files.GET("/:id", b.getFile)
	files.GET("/:id/download", b.downloadFile)
	files.DELETE("/:id", b.deleteFile)

	notif := api.Group("/notification", b.requireAuth)
	notif.GET("/:user", b.listNotifications)
	notif.POST("/:user", b.createNotification)
	notif.POST("/:user/notify", b.sendNotification)
	notif.GET("/:user/settings", b.getSettings)
	notif.POST("/:user/settings", b.updateSettings)

	api.POST("/generator/api/complete/generate", b.generate, b.requireAuth)
}

func callKey(method, path string) string {
	return method + " " + strings.TrimPrefix(path, Prefix)
}

func (b *Backend) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		b.mu.Lock()
		b.calls[callKey(c.Request().Method, c.Request().URL.Path)]++
		b.mu.Unlock()
		return next(c)
	}
}

func (b *Backend) inject(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		key := callKey(c.Request().Method, c.Request().URL.Path)
		b.mu.Lock()
		f, ok := b.failures[key]
		if ok {
			if f.times > 0 {
				f.times--
				if f.times == 0 {
					delete(b.failures, key)
				}
			}
		}
		b.mu.Unlock()
		if !ok {
			return next(c)
		}
		if f.body == nil {
			return c.NoContent(f.status)
		}
		return c.JSON(f.status, f.body)
	}
}

// Fail makes method+path (without the /api prefix) answer status with body.
// times <= 0 keeps failing until ClearFailures.
func (b *Backend) Fail(method, path string, status int, body any, times int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[callKey(method, path)] = &injected{status: status, body: body, times: times}
}

func (b *Backend) ClearFailures() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = make(map[string]*injected)
}

// Calls reports how often method+path (without the /api prefix) was hit.
func (b *Backend) Calls(method, path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[callKey(method, path)]
}

// Unauthorized counts the 401 answers issued by the auth middleware.
func (b *Backend) Unauthorized() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unauthorized
}

// OnRefresh runs hook at the start of every refresh request.
func (b *Backend) OnRefresh(hook func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshHook = hook
}

func detail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"detail": msg})
}
