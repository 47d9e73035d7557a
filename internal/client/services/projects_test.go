package services

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/dmitrijs2005/vmgen/internal/client/client"
	"github.com/dmitrijs2005/vmgen/internal/client/fileset"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListParams_Query(t *testing.T) {
	tests := []struct {
		name string
		in   ListParams
		want url.Values
	}{
		{
			name: "defaults",
			want: url.Values{"skip": {"0"}, "limit": {"100"}},
		},
		{
			name: "everything",
			in: ListParams{
				Status: models.StatusDraft, Skip: 20, Limit: 10, Search: "  invoice ",
				SortBy: models.SortByName, SortOrder: models.SortAsc,
			},
			want: url.Values{
				"skip": {"20"}, "limit": {"10"}, "status": {"DRAFT"}, "search": {"invoice"},
				"sort_by": {"name"}, "sort_order": {"asc"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.query()
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("query mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListParams_RejectsBadValues(t *testing.T) {
	for _, p := range []ListParams{
		{Skip: -1},
		{Status: "LOST"},
		{SortBy: "owner"},
		{SortOrder: "up"},
	} {
		_, err := p.query()
		assert.ErrorIs(t, err, ErrInvalidArgument, "%+v", p)
	}
}

func TestProjects_ListFiltersAndPages(t *testing.T) {
	e := newEnv(t)
	u := e.signIn(t, "ann@example.com", models.RoleUser)
	e.b.AddProject(u, "alpha", models.StatusDraft)
	e.b.AddProject(u, "beta", models.StatusDraft)
	e.b.AddProject(u, "gamma", models.StatusCompleted)
	stranger := e.b.AddUser("bob@example.com", "pw", models.RoleUser)
	e.b.AddProject(stranger, "hidden", models.StatusDraft)

	ctx := context.Background()
	drafts, err := e.projects.List(ctx, ListParams{Status: models.StatusDraft, SortBy: models.SortByName, SortOrder: models.SortAsc})
	require.NoError(t, err)
	assert.Equal(t, 2, drafts.Total)
	require.Len(t, drafts.Projects, 2)
	assert.Equal(t, "alpha", drafts.Projects[0].Name)
	assert.Equal(t, "beta", drafts.Projects[1].Name)

	page := Page{Number: 2, Size: 2}
	second, err := e.projects.List(ctx, page.Params(ListParams{SortBy: models.SortByName, SortOrder: models.SortAsc}))
	require.NoError(t, err)
	assert.Equal(t, 3, second.Total)
	assert.Equal(t, 2, page.TotalPages(second.Total))
	require.Len(t, second.Projects, 1)
	assert.Equal(t, "gamma", second.Projects[0].Name)

	found, err := e.projects.List(ctx, ListParams{Search: "AMM"})
	require.NoError(t, err)
	require.Len(t, found.Projects, 1)
	assert.Equal(t, "gamma", found.Projects[0].Name)
}

func TestProjects_CRUD(t *testing.T) {
	e := newEnv(t)
	e.signIn(t, "ann@example.com", models.RoleUser)
	ctx := context.Background()

	p, err := e.projects.Create(ctx, models.CreateProjectRequest{Name: "orders", Description: "d"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, p.Status)

	got, err := e.projects.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "orders", got.Name)

	name := "orders v2"
	status := models.StatusArchived
	upd, err := e.projects.Update(ctx, p.ID, models.UpdateProjectRequest{Name: &name, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, name, upd.Name)
	assert.Equal(t, "d", upd.Description)
	assert.Equal(t, models.StatusArchived, upd.Status)

	require.NoError(t, e.projects.Delete(ctx, p.ID))
	_, err = e.projects.Get(ctx, p.ID)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestProjects_CreateRequiresName(t *testing.T) {
	e := newEnv(t)
	_, err := e.projects.Create(context.Background(), models.CreateProjectRequest{Name: " "})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Zero(t, e.b.Calls(http.MethodPost, "/projects/"))
}

func TestProjects_Mappings(t *testing.T) {
	e := newEnv(t)
	u := e.signIn(t, "ann@example.com", models.RoleUser)
	p := e.b.AddProject(u, "orders", models.StatusCompleted)
	e.b.SetMappings(p.ID, []models.ProjectMapping{
		{ID: "m1", JSONFieldLabel: "name - Full name", XMLElementName: "name", ConfidenceScore: 0.87},
	})

	list, err := e.projects.Mappings(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, list.Mappings, 1)
	assert.Equal(t, "name", list.Mappings[0].FieldName())
	assert.Equal(t, 87, list.Mappings[0].ConfidencePercent())
}

func TestProjects_CreateWithFilesAndGenerate(t *testing.T) {
	e := newEnv(t)
	e.signIn(t, "ann@example.com", models.RoleUser)
	dir := t.TempDir()

	resp, err := e.projects.CreateWithFiles(context.Background(), NewProject{
		Name: "orders",
		Files: []UploadFile{
			{Path: writeFile(t, dir, "schema.json", jsonSchema)},
			{Name: "schema.xsd", Content: []byte(xsdSchema)},
			{Name: "sample.txt", Content: []byte("hello")},
		},
		Generate: true,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Generation)
	assert.True(t, resp.Generation.Success)
	assert.Equal(t, 2, resp.Generation.MappingsCount)
	assert.Equal(t, models.StatusCompleted, resp.Project.Status)

	types := map[string]fileset.FileType{}
	for _, f := range resp.UploadedFiles {
		types[f.FileName] = f.FileType
	}
	assert.Equal(t, map[string]fileset.FileType{
		"schema.json": fileset.JSONSchema,
		"schema.xsd":  fileset.XSDSchema,
		"sample.txt":  fileset.TestData,
	}, types)

	tpl, ok := func() (models.ProjectFileSummary, bool) {
		for _, f := range resp.Project.Files {
			if f.ID == resp.Generation.TemplateFileID {
				return f, true
			}
		}
		return models.ProjectFileSummary{}, false
	}()
	require.True(t, ok)
	assert.Equal(t, DefaultTemplateName, tpl.FileName)
}

func TestProjects_CreateWithFilesNeedsFiles(t *testing.T) {
	e := newEnv(t)
	_, err := e.projects.CreateWithFiles(context.Background(), NewProject{Name: "x"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
