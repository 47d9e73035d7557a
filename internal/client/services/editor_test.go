package services

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/vmgen/internal/client/fileset"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statuses(files []models.LocalFile) map[string]models.FileStatus {
	out := make(map[string]models.FileStatus, len(files))
	for _, f := range files {
		out[f.Name] = f.Status
	}
	return out
}

func fileByName(t *testing.T, e *Editor, name string) models.LocalFile {
	t.Helper()
	for _, f := range e.Files() {
		if f.Name == name {
			return f
		}
	}
	t.Fatalf("no file %q in session", name)
	return models.LocalFile{}
}

func TestEditor_NewProjectStagesAndGenerates(t *testing.T) {
	e := newEnv(t)
	e.signIn(t, "ann@example.com", models.RoleUser)
	dir := t.TempDir()
	ed := NewEditor(e.projects, e.files, nil)
	ctx := context.Background()

	added, err := ed.Add(writeFile(t, dir, "in.json", jsonSchema), writeFile(t, dir, "out.xsd", xsdSchema))
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, models.FilePending, added[0].Status)
	assert.Zero(t, added[0].Progress)

	require.NoError(t, ed.UploadPending(ctx))
	for _, f := range ed.Files() {
		assert.Equal(t, models.FileSuccess, f.Status)
		assert.Equal(t, 100, f.Progress)
		assert.Empty(t, f.ServerFileID)
	}
	assert.Zero(t, e.b.Calls(http.MethodPost, "/files/upload"))

	assert.True(t, ed.Validation().Valid)
	assert.False(t, ed.CanGenerate(), "name is blank")
	_, err = ed.Generate(ctx)
	require.ErrorIs(t, err, ErrNameRequired)

	ed.SetName("orders")
	require.True(t, ed.CanGenerate())

	res, err := ed.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultTemplateName, res.TemplateFileName)
	assert.Equal(t, 2, res.MappingsCount)

	p, ok := e.b.Project(res.ProjectID)
	require.True(t, ok)
	assert.Equal(t, models.StatusCompleted, p.Status)
	tpl, ok := e.b.FileContent(res.TemplateFileID)
	require.True(t, ok)
	assert.Contains(t, string(tpl), "<name>$data.name</name>")
}

func TestEditor_AddRejectsSelections(t *testing.T) {
	e := newEnv(t)
	dir := t.TempDir()
	ed := NewEditor(e.projects, e.files, nil)

	_, err := ed.Add(writeFile(t, dir, "doc.pdf", "x"))
	require.ErrorIs(t, err, ErrExtensionNotAllowed)

	_, err = ed.Add(filepath.Join(dir, "absent.json"))
	require.Error(t, err)

	_, err = ed.Add(writeFile(t, dir, "a.xsd", xsdSchema))
	require.NoError(t, err)
	_, err = ed.Add(writeFile(t, dir, "b.json", jsonSchema), writeFile(t, dir, "c.xml", "<a/>"))
	require.ErrorIs(t, err, fileset.ErrSchemaConflict)

	// a rejected selection adds nothing
	assert.Len(t, ed.Files(), 1)
}

func TestEditor_OpenDropsTemplatesAndTracksChanges(t *testing.T) {
	e := newEnv(t)
	u := e.signIn(t, "ann@example.com", models.RoleUser)
	p := e.b.AddProject(u, "orders", models.StatusCompleted)
	e.b.AddFile(p.ID, "in.json", []byte(jsonSchema))
	e.b.AddFile(p.ID, "out.xsd", []byte(xsdSchema))
	e.b.AddFile(p.ID, "generated_template.vm", []byte("tpl"))
	ctx := context.Background()

	ed, err := OpenEditor(ctx, e.projects, e.files, nil, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, ed.ProjectID())
	assert.Equal(t, "orders", ed.Name())
	assert.Len(t, ed.Files(), 2)
	assert.False(t, ed.FilesChanged())
	assert.False(t, ed.CanGenerate(), "completed project without changes")

	_, err = ed.Generate(ctx)
	require.ErrorIs(t, err, ErrCannotGenerate)

	_, err = ed.Add(writeFile(t, t.TempDir(), "sample.txt", "hello"))
	require.NoError(t, err)
	assert.False(t, ed.FilesChanged(), "pending files do not count")

	require.NoError(t, ed.UploadPending(ctx))
	f := fileByName(t, ed, "sample.txt")
	assert.Equal(t, models.FileSuccess, f.Status)
	assert.NotEmpty(t, f.ServerFileID)
	assert.True(t, ed.FilesChanged())
	assert.True(t, ed.CanGenerate())
	assert.ElementsMatch(t, []string{"in.json", "out.xsd", "generated_template.vm", "sample.txt"}, e.b.ProjectFileNames(p.ID))
}

func TestEditor_UploadFailureMarksOnlyThatFile(t *testing.T) {
	e := newEnv(t)
	u := e.signIn(t, "ann@example.com", models.RoleUser)
	p := e.b.AddProject(u, "orders", models.StatusDraft)
	ctx := context.Background()

	ed, err := OpenEditor(ctx, e.projects, e.files, nil, p.ID)
	require.NoError(t, err)
	dir := t.TempDir()
	_, err = ed.Add(writeFile(t, dir, "a.txt", "a"), writeFile(t, dir, "b.txt", "b"), writeFile(t, dir, "c.txt", "c"))
	require.NoError(t, err)

	e.b.Fail(http.MethodPost, "/files/upload", http.StatusInternalServerError, map[string]string{"detail": "disk full"}, 1)
	err = ed.UploadPending(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	var failed, ok int
	for _, f := range ed.Files() {
		switch f.Status {
		case models.FileError:
			failed++
			assert.Zero(t, f.Progress)
			assert.Contains(t, f.Error, "disk full")
		case models.FileSuccess:
			ok++
			assert.NotEmpty(t, f.ServerFileID)
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 3, e.b.Calls(http.MethodPost, "/files/upload"))
}

func TestEditor_RemoveDeletesServerCopyBestEffort(t *testing.T) {
	e := newEnv(t)
	u := e.signIn(t, "ann@example.com", models.RoleUser)
	p := e.b.AddProject(u, "orders", models.StatusDraft)
	keep := e.b.AddFile(p.ID, "in.json", []byte(jsonSchema))
	broken := e.b.AddFile(p.ID, "out.xsd", []byte(xsdSchema))
	ctx := context.Background()

	ed, err := OpenEditor(ctx, e.projects, e.files, nil, p.ID)
	require.NoError(t, err)

	e.b.Fail(http.MethodDelete, "/files/"+broken.ID, http.StatusInternalServerError, nil, 0)
	require.NoError(t, ed.Remove(ctx, fileByName(t, ed, "out.xsd").ID))
	assert.Len(t, ed.Files(), 1)
	_, stillThere := e.b.FileContent(broken.ID)
	assert.True(t, stillThere)

	require.NoError(t, ed.Remove(ctx, fileByName(t, ed, "in.json").ID))
	assert.Empty(t, ed.Files())
	_, stillThere = e.b.FileContent(keep.ID)
	assert.False(t, stillThere)

	assert.ErrorIs(t, ed.Remove(ctx, "missing"), ErrUnknownFile)
}

func TestEditor_RemoveStagedFileSkipsServer(t *testing.T) {
	e := newEnv(t)
	ed := NewEditor(e.projects, e.files, nil)
	added, err := ed.Add(writeFile(t, t.TempDir(), "a.json", "{}"))
	require.NoError(t, err)

	require.NoError(t, ed.Remove(context.Background(), added[0].ID))
	assert.Empty(t, ed.Files())
	assert.Zero(t, e.b.Calls(http.MethodDelete, "/files/"))
}

func TestEditor_SaveExistingOnlyWhenDirty(t *testing.T) {
	e := newEnv(t)
	u := e.signIn(t, "ann@example.com", models.RoleUser)
	p := e.b.AddProject(u, "orders", models.StatusDraft)
	ctx := context.Background()

	ed, err := OpenEditor(ctx, e.projects, e.files, nil, p.ID)
	require.NoError(t, err)

	_, err = ed.Save(ctx)
	require.NoError(t, err)
	assert.Zero(t, e.b.Calls(http.MethodPut, "/projects/"+p.ID))

	ed.SetName("invoices")
	ed.SetDescription("monthly")
	require.True(t, ed.MetadataDirty())
	saved, err := ed.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, "invoices", saved.Name)
	assert.False(t, ed.MetadataDirty())

	stored, _ := e.b.Project(p.ID)
	assert.Equal(t, "invoices", stored.Name)
	assert.Equal(t, "monthly", stored.Description)
}

func TestEditor_SaveNewCreatesDraftAndUploads(t *testing.T) {
	e := newEnv(t)
	e.signIn(t, "ann@example.com", models.RoleUser)
	dir := t.TempDir()
	ctx := context.Background()

	ed := NewEditor(e.projects, e.files, nil)
	_, err := ed.Save(ctx)
	require.ErrorIs(t, err, ErrNameRequired)

	ed.SetName("orders")
	_, err = ed.Add(writeFile(t, dir, "in.json", jsonSchema), writeFile(t, dir, "out.xsd", xsdSchema))
	require.NoError(t, err)
	require.NoError(t, ed.UploadPending(ctx))

	p, err := ed.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, p.Status)
	assert.False(t, ed.IsNew())
	assert.Equal(t, p.ID, ed.ProjectID())
	assert.ElementsMatch(t, []string{"in.json", "out.xsd"}, e.b.ProjectFileNames(p.ID))
	for _, f := range ed.Files() {
		assert.NotEmpty(t, f.ServerFileID, f.Name)
	}
	assert.False(t, ed.FilesChanged())
}

func TestEditor_GenerateFetchesServerOnlyFiles(t *testing.T) {
	e := newEnv(t)
	u := e.signIn(t, "ann@example.com", models.RoleUser)
	p := e.b.AddProject(u, "orders", models.StatusDraft)
	in := e.b.AddFile(p.ID, "in.json", []byte(jsonSchema))
	out := e.b.AddFile(p.ID, "out.xsd", []byte(xsdSchema))
	ctx := context.Background()

	ed, err := OpenEditor(ctx, e.projects, e.files, nil, p.ID)
	require.NoError(t, err)
	require.True(t, ed.CanGenerate(), "drafts can always generate")

	res, err := ed.Generate(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, p.ID, res.ProjectID)
	assert.Equal(t, 1, e.b.Calls(http.MethodGet, "/files/"+in.ID+"/download"))
	assert.Equal(t, 1, e.b.Calls(http.MethodGet, "/files/"+out.ID+"/download"))

	tpl, ok := e.b.FileContent(res.TemplateFileID)
	require.True(t, ok)
	assert.Equal(t, 2, strings.Count(string(tpl), "$data."))
}

func TestEditor_GenerateWithoutTemplate(t *testing.T) {
	e := newEnv(t)
	e.signIn(t, "ann@example.com", models.RoleUser)
	dir := t.TempDir()
	ctx := context.Background()

	ed := NewEditor(e.projects, e.files, nil)
	ed.SetName("orders")
	_, err := ed.Add(writeFile(t, dir, "in.json", jsonSchema), writeFile(t, dir, "out.xsd", xsdSchema))
	require.NoError(t, err)
	require.NoError(t, ed.UploadPending(ctx))

	e.b.Fail(http.MethodPost, "/projects/full", http.StatusCreated, map[string]any{
		"success": true,
		"project": map[string]any{"id": "p1", "name": "orders", "status": "DRAFT", "files": []any{}},
	}, 1)
	_, err = ed.Generate(ctx)
	assert.ErrorIs(t, err, ErrNotGenerated)
}

func TestEditor_CanGenerateTruthTable(t *testing.T) {
	valid := []string{"in.json", "out.xsd"}
	original := []fileset.Snapshot{fileset.SnapshotOf("in.json", "f1"), fileset.SnapshotOf("out.xsd", "f2")}

	tests := []struct {
		name    string
		project *models.Project
		title   string
		files   []string
		changed bool
		want    bool
	}{
		{"new with valid files", nil, "x", valid, false, true},
		{"blank name", nil, "  ", valid, false, false},
		{"invalid set", nil, "x", []string{"in.json"}, false, false},
		{"draft unchanged", &models.Project{Status: models.StatusDraft}, "x", valid, false, true},
		{"completed unchanged", &models.Project{Status: models.StatusCompleted}, "x", valid, false, false},
		{"completed changed", &models.Project{Status: models.StatusCompleted}, "x", valid, true, true},
		{"archived changed but invalid", &models.Project{Status: models.StatusArchived}, "x", []string{"in.json", "a.xsd", "b.xml"}, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := &Editor{project: tt.project, name: tt.title}
			for i, n := range tt.files {
				id := ""
				if i < len(original) {
					id = original[i].ServerFileID
				}
				if tt.changed {
					id += "-new"
				}
				f := models.NewLocalFile(n, "", 0)
				f.Succeed(id)
				ed.items = append(ed.items, f)
			}
			if tt.project != nil {
				ed.original = original
			}
			assert.Equal(t, tt.want, ed.CanGenerate())
		})
	}
}
