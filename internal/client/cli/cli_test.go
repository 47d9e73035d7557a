package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/dmitrijs2005/vmgen/internal/client/client"
	"github.com/dmitrijs2005/vmgen/internal/client/config"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/client/services"
	"github.com/dmitrijs2005/vmgen/internal/testbackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	jsonSchema = `{"type":"object","properties":{"name":{"type":"string"},"age":{"type":"integer"}}}`
	xsdSchema  = `<?xml version="1.0"?><xs:schema xmlns:xs="http://www.w3.org/2001/XMLSchema"><xs:element name="name" type="xs:string"/><xs:element name="age" type="xs:int"/></xs:schema>`
	template   = "<age>$data.age</age>\n<name>$data.name</name>\n"
)

type harness struct {
	b   *testbackend.Backend
	dir string
	db  string
}

type result struct {
	out    string
	errOut string
	err    error
}

// newHarness runs the CLI in an empty directory against a fresh backend
// with the local fallback disabled.
func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, k := range []string{config.EnvBackendLocal, config.EnvAPIBaseURL, config.EnvLocalURL, config.EnvConfig, config.EnvLogLevel} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	return &harness{b: testbackend.New(t), dir: dir, db: filepath.Join(dir, "session.db")}
}

// withPassword answers every password prompt with pw.
func withPassword(t *testing.T, pw string) {
	t.Helper()
	old := getPassword
	t.Cleanup(func() { getPassword = old })
	getPassword = func(*bufio.Reader, string, io.Writer) ([]byte, error) {
		return []byte(pw), nil
	}
}

func (h *harness) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	full := append([]string{
		"--remote-url", h.b.URL(),
		"--local-url=",
		"--db", h.db,
		"--download-dir", h.dir,
	}, args...)
	err := Execute(context.Background(), full, strings.NewReader(stdin), &out, &errOut)
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func (h *harness) login(t *testing.T, email string, role models.Role) models.User {
	t.Helper()
	u := h.b.AddUser(email, "secret", role)
	withPassword(t, "secret")
	r := h.run(t, "", "login", "-e", email)
	require.NoError(t, r.err, r.errOut)
	return u
}

func (h *harness) write(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(h.dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestHelpDoesNotOpenDatabase(t *testing.T) {
	h := newHarness(t)

	r := h.run(t, "")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "projects")

	r = h.run(t, "", "projects")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "mappings")

	assert.NoFileExists(t, h.db)
}

func TestLoginPersistsSessionAcrossRuns(t *testing.T) {
	h := newHarness(t)
	h.b.AddUser("ann@example.com", "secret", models.RoleUser)
	withPassword(t, "secret")

	r := h.run(t, "", "login", "-e", "ann@example.com")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Logged in as ann@example.com.")

	r = h.run(t, "", "whoami")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "ann@example.com")
	assert.Contains(t, r.out, "Token expires:")

	r = h.run(t, "", "logout")
	require.NoError(t, r.err)

	r = h.run(t, "", "whoami")
	assert.ErrorIs(t, r.err, errNotLoggedIn)
}

func TestLoginPromptsForEmail(t *testing.T) {
	h := newHarness(t)
	h.b.AddUser("ann@example.com", "secret", models.RoleUser)
	withPassword(t, "secret")

	r := h.run(t, "ann@example.com\n", "login")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Enter email")
	assert.Contains(t, r.out, "Logged in as ann@example.com.")
}

func TestLoginWrongPasswordShowsToast(t *testing.T) {
	h := newHarness(t)
	h.b.AddUser("ann@example.com", "secret", models.RoleUser)
	withPassword(t, "wrong")

	r := h.run(t, "", "login", "-e", "ann@example.com")
	require.ErrorIs(t, r.err, client.ErrUnauthorized)
	assert.Contains(t, r.errOut, "Invalid email or password")
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	withPassword(t, "pw")

	r := h.run(t, "", "register", "-e", "new@example.com")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Registered new@example.com")

	r = h.run(t, "", "login", "-e", "new@example.com")
	require.NoError(t, r.err, r.errOut)
}

func TestLocalModeDisablesAuthentication(t *testing.T) {
	h := newHarness(t)

	r := h.run(t, "", "--local", "login", "-e", "x@example.com")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, services.ErrLocalMode.Error())
	assert.Zero(t, h.b.Calls("POST", "/auth/login"))

	r = h.run(t, "", "--local", "whoami")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "local@user.com")
	assert.Contains(t, r.out, "local")
}

func TestProjectsListShowUpdateDelete(t *testing.T) {
	h := newHarness(t)
	u := h.login(t, "ann@example.com", models.RoleUser)
	p := h.b.AddProject(u, "Alpha", models.StatusDraft)
	h.b.AddProject(u, "Beta", models.StatusCompleted)

	r := h.run(t, "", "projects", "list", "--sort", "name", "--order", "asc")
	require.NoError(t, r.err, r.errOut)
	assert.Regexp(t, `(?s)Alpha.*Beta`, r.out)
	assert.Contains(t, r.out, "Page 1 of 1 (2 total)")

	r = h.run(t, "", "projects", "list", "--status", "completed")
	require.NoError(t, r.err)
	assert.NotContains(t, r.out, "Alpha")
	assert.Contains(t, r.out, "Beta")

	r = h.run(t, "", "projects", "list", "--status", "bogus")
	assert.Error(t, r.err)

	r = h.run(t, "", "projects", "update", p.ID, "--name", "Gamma", "--status", "in_progress")
	require.NoError(t, r.err, r.errOut)
	got, ok := h.b.Project(p.ID)
	require.True(t, ok)
	assert.Equal(t, "Gamma", got.Name)
	assert.Equal(t, models.StatusInProgress, got.Status)

	r = h.run(t, "", "projects", "update", p.ID)
	assert.ErrorContains(t, r.err, "nothing to update")

	r = h.run(t, "", "projects", "show", p.ID)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Gamma")
	assert.Contains(t, r.out, "No files.")

	r = h.run(t, "n\n", "projects", "delete", p.ID)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Cancelled.")
	_, ok = h.b.Project(p.ID)
	assert.True(t, ok)

	r = h.run(t, "", "projects", "delete", "-f", p.ID)
	require.NoError(t, r.err)
	_, ok = h.b.Project(p.ID)
	assert.False(t, ok)
}

func TestProjectsCreate(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ann@example.com", models.RoleUser)

	r := h.run(t, "", "projects", "create", "-n", "  Drafty ", "-d", "first")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Created project Drafty")

	r = h.run(t, "", "projects", "create")
	assert.ErrorContains(t, r.err, `required flag(s) "name" not set`)
}

func TestFilesUploadInfoDownloadDelete(t *testing.T) {
	h := newHarness(t)
	u := h.login(t, "ann@example.com", models.RoleUser)
	p := h.b.AddProject(u, "Alpha", models.StatusDraft)
	path := h.write(t, "schema.json", jsonSchema)

	r := h.run(t, "", "files", "upload", p.ID, path)
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Uploaded schema.json as JSON_SCHEMA")
	assert.Equal(t, []string{"schema.json"}, h.b.ProjectFileNames(p.ID))

	r = h.run(t, "", "files", "upload", p.ID, h.write(t, "notes.pdf", "x"))
	assert.ErrorIs(t, r.err, services.ErrExtensionNotAllowed)

	list := h.run(t, "", "projects", "files", p.ID)
	require.NoError(t, list.err)
	fileID := regexp.MustCompile(`[0-9a-f]{8}-[0-9a-f-]{27}`).FindString(list.out)
	require.NotEmpty(t, fileID)

	r = h.run(t, "", "files", "info", fileID)
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "JSON_SCHEMA")

	out := filepath.Join(h.dir, "out")
	r = h.run(t, "", "files", "download", fileID, "-o", out, "-n", "copy.json")
	require.NoError(t, r.err, r.errOut)
	data, err := os.ReadFile(filepath.Join(out, "copy.json"))
	require.NoError(t, err)
	assert.Equal(t, jsonSchema, string(data))

	r = h.run(t, "y\n", "files", "delete", fileID)
	require.NoError(t, r.err)
	assert.Empty(t, h.b.ProjectFileNames(p.ID))
}

func TestGenerateDownloadsTemplate(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ann@example.com", models.RoleUser)
	js := h.write(t, "schema.json", jsonSchema)
	xsd := h.write(t, "schema.xsd", xsdSchema)
	out := filepath.Join(h.dir, "templates")

	r := h.run(t, "", "generate", "Invoices", js, xsd, "-o", out)
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Generated generated_template.vm")
	assert.Contains(t, r.out, "2 mappings")

	data, err := os.ReadFile(filepath.Join(out, "generated_template.vm"))
	require.NoError(t, err)
	assert.Equal(t, template, string(data))
}

func TestGenerateRejectsIncompleteFileSet(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ann@example.com", models.RoleUser)

	r := h.run(t, "", "generate", "Invoices", h.write(t, "a.json", jsonSchema), h.write(t, "b.json", jsonSchema))
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "only one JSON schema")
	assert.Zero(t, h.b.Calls("POST", "/projects/full"))
}

func TestComplete(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ann@example.com", models.RoleUser)
	js := h.write(t, "schema.json", jsonSchema)
	xsd := h.write(t, "schema.xsd", xsdSchema)

	r := h.run(t, "", "complete", "--json", js, "--xsd", xsd)
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, template)
	assert.Contains(t, r.out, "VARIABLE")
}

func TestEditNewProject(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ann@example.com", models.RoleUser)
	js := h.write(t, "schema.json", jsonSchema)
	xsd := h.write(t, "schema.xsd", xsdSchema)

	script := strings.Join([]string{
		"name Demo",
		"add " + js + " " + xsd,
		"status",
		"save",
		"exit",
	}, "\n")
	r := h.run(t, script, "edit")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Ready to generate.")

	m := regexp.MustCompile(`Saved project Demo \(([^)]+)\)`).FindStringSubmatch(r.out)
	require.Len(t, m, 2, r.out)
	assert.ElementsMatch(t, []string{"schema.json", "schema.xsd"}, h.b.ProjectFileNames(m[1]))
}

func TestEditExistingProjectGenerates(t *testing.T) {
	h := newHarness(t)
	u := h.login(t, "ann@example.com", models.RoleUser)
	p := h.b.AddProject(u, "Alpha", models.StatusDraft)
	h.b.AddFile(p.ID, "schema.json", []byte(jsonSchema))
	xsd := h.write(t, "schema.xsd", xsdSchema)
	out := filepath.Join(h.dir, "gen")

	script := strings.Join([]string{
		"generate",
		"add " + xsd,
		"ls",
		"generate",
		"exit",
	}, "\n")
	r := h.run(t, script, "edit", p.ID, "-o", out)
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Error: invalid file set")
	assert.Contains(t, r.out, "Generated generated_template.vm")

	data, err := os.ReadFile(filepath.Join(out, "generated_template.vm"))
	require.NoError(t, err)
	assert.Equal(t, template, string(data))
}

func TestNotifications(t *testing.T) {
	h := newHarness(t)
	h.login(t, "ann@example.com", models.RoleUser)

	r := h.run(t, "", "notifications", "send", "--title", "Hello", "--message", "world")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "Sent notification")

	r = h.run(t, "", "notifications", "list")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, "Hello")

	r = h.run(t, "", "notifications", "set", "--email=false")
	require.NoError(t, r.err, r.errOut)
	assert.Regexp(t, `Email:\s+off`, r.out)

	r = h.run(t, "", "notifications", "create", "--title", "x", "--type", "carrier-pigeon")
	assert.ErrorIs(t, r.err, services.ErrInvalidArgument)
}

func TestUsersAdmin(t *testing.T) {
	h := newHarness(t)
	h.login(t, "root@example.com", models.RoleAdmin)
	bob := h.b.AddUser("bob@example.com", "pw", models.RoleUser)

	r := h.run(t, "", "users", "list")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "bob@example.com")

	r = h.run(t, "", "users", "role", bob.ID, "admin")
	require.NoError(t, r.err, r.errOut)
	assert.Contains(t, r.out, "is now ADMIN")

	r = h.run(t, "", "users", "role", bob.ID, "owner")
	assert.ErrorIs(t, r.err, services.ErrInvalidArgument)
}

func TestPing(t *testing.T) {
	h := newHarness(t)
	r := h.run(t, "", "ping")
	require.NoError(t, r.err)
	assert.Contains(t, r.out, h.b.URL()+" is up.")
}
