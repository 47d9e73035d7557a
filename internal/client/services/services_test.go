package services

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/vmgen/internal/client/client"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/client/notify"
	"github.com/dmitrijs2005/vmgen/internal/client/session"
	"github.com/dmitrijs2005/vmgen/internal/testbackend"
	"github.com/stretchr/testify/require"
)

const (
	jsonSchema = `{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"integer"}}}`
	xsdSchema  = `<?xml version="1.0"?><xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"><xs:element name="name" type="xs:string"/><xs:element name="age" type="xs:int"/></xs:schema>`
)

type env struct {
	b     *testbackend.Backend
	c     *client.HTTPClient
	store *session.Store
	toast *notify.Recorder

	auth          AuthService
	projects      ProjectService
	files         FileService
	notifications NotificationService
	generator     GeneratorService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		b:     testbackend.New(t),
		store: session.NewStore(nil, nil),
		toast: &notify.Recorder{},
	}
	e.c = client.New(client.Options{
		RemoteURL: e.b.URL(),
		HTTP:      &http.Client{Transport: &http.Transport{}},
		Session:   e.store,
		Notifier:  e.toast,
	})
	t.Cleanup(e.c.Close)

	e.auth = NewAuthService(e.c, e.store, nil)
	e.projects = NewProjectService(e.c)
	e.files = NewFileService(e.c)
	e.notifications = NewNotificationService(e.c)
	e.generator = NewGeneratorService(e.c)
	return e
}

// signIn creates an account and stores a session for it without going
// through the login endpoint.
func (e *env) signIn(t *testing.T, email string, role models.Role) models.User {
	t.Helper()
	u := e.b.AddUser(email, "secret", role)
	access, refresh := e.b.Tokens(u)
	require.NoError(t, e.store.Login(context.Background(), access, refresh, u))
	return u
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}
