package testbackend

import (
	"cmp"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/vmgen/internal/client/fileset"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AddProject stores a project owned by owner.
func (b *Backend) AddProject(owner models.User, name string, status models.ProjectStatus) models.Project {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.addProjectLocked(owner.ID, name, "", status)
}

func (b *Backend) addProjectLocked(owner, name, description string, status models.ProjectStatus) *models.Project {
	p := &models.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Description: description,
		Status:      status,
		CreatedBy:   owner,
		CreatedAt:   models.Timestamp{Time: time.Now().UTC()},
	}
	b.projects[p.ID] = p
	return p
}

// Project returns a copy of the stored project.
func (b *Backend) Project(id string) (models.Project, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.projects[id]
	if !ok {
		return models.Project{}, false
	}
	return *p, true
}

// SetMappings replaces the stored mappings of a project.
func (b *Backend) SetMappings(projectID string, m []models.ProjectMapping) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mappings[projectID] = m
}

func (b *Backend) visibleLocked(c echo.Context, p *models.Project) bool {
	u := current(c)
	return u.Role == models.RoleAdmin || p.CreatedBy == u.ID
}

func (b *Backend) listProjects(c echo.Context) error {
	q := c.QueryParams()
	skip, err := strconv.Atoi(cmp.Or(q.Get("skip"), "0"))
	if err != nil || skip < 0 {
		return detail(c, http.StatusUnprocessableEntity, "invalid skip")
	}
	limit, err := strconv.Atoi(cmp.Or(q.Get("limit"), "100"))
	if err != nil || limit < 1 {
		return detail(c, http.StatusUnprocessableEntity, "invalid limit")
	}
	status := models.ProjectStatus(q.Get("status"))
	search := strings.ToLower(q.Get("search"))
	sortBy := models.SortField(cmp.Or(q.Get("sort_by"), string(models.SortByCreatedAt)))
	desc := cmp.Or(q.Get("sort_order"), string(models.SortDesc)) == string(models.SortDesc)

	b.mu.Lock()
	var out []models.Project
	for _, p := range b.projects {
		if !b.visibleLocked(c, p) {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		out = append(out, *p)
	}
	b.mu.Unlock()

	slices.SortStableFunc(out, func(a, z models.Project) int {
		var r int
		switch sortBy {
		case models.SortByName:
			r = strings.Compare(a.Name, z.Name)
		case models.SortByStatus:
			r = strings.Compare(string(a.Status), string(z.Status))
		case models.SortByTotalSize:
			r = cmp.Compare(a.TotalSize, z.TotalSize)
		default:
			r = a.CreatedAt.Compare(z.CreatedAt.Time)
		}
		if r == 0 {
			r = strings.Compare(a.ID, z.ID)
		}
		if desc {
			return -r
		}
		return r
	})

	total := len(out)
	start := min(skip, total)
	end := min(start+limit, total)
	page := out[start:end]
	if page == nil {
		page = []models.Project{}
	}
	return c.JSON(http.StatusOK, models.ProjectList{Projects: page, Total: total})
}

func (b *Backend) createProject(c echo.Context) error {
	var req models.CreateProjectRequest
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		return detail(c, http.StatusUnprocessableEntity, "name is required")
	}
	status := cmp.Or(req.Status, models.StatusDraft)
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.addProjectLocked(current(c).ID, req.Name, req.Description, status)
	return c.JSON(http.StatusCreated, p)
}

func (b *Backend) lookupProject(c echo.Context) (*models.Project, error) {
	p, ok := b.projects[c.Param("id")]
	if !ok || !b.visibleLocked(c, p) {
		return nil, detail(c, http.StatusNotFound, "Project not found")
	}
	return p, nil
}

func (b *Backend) getProject(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.lookupProject(c)
	if p == nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (b *Backend) updateProject(c echo.Context) error {
	var req models.UpdateProjectRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.lookupProject(c)
	if p == nil {
		return err
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
	p.UpdatedAt = models.Timestamp{Time: time.Now().UTC()}
	return c.JSON(http.StatusOK, p)
}

func (b *Backend) deleteProject(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.lookupProject(c)
	if p == nil {
		return err
	}
	delete(b.projects, p.ID)
	for id, f := range b.files {
		if f.info.ProjectID == p.ID {
			delete(b.files, id)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (b *Backend) projectMappings(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, err := b.lookupProject(c)
	if p == nil {
		return err
	}
	m := b.mappings[p.ID]
	if m == nil {
		m = []models.ProjectMapping{}
	}
	return c.JSON(http.StatusOK, models.MappingList{Mappings: m, Total: len(m)})
}

func (b *Backend) createProjectWithFiles(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return detail(c, http.StatusBadRequest, "multipart body required")
	}
	name := strings.TrimSpace(c.FormValue("name"))
	if name == "" {
		return detail(c, http.StatusUnprocessableEntity, "name is required")
	}
	headers := form.File["files"]
	types := strings.Split(c.FormValue("file_types"), ",")
	if len(headers) == 0 || len(types) != len(headers) {
		return detail(c, http.StatusUnprocessableEntity,
			fmt.Sprintf("got %d files and %d file types", len(headers), len(types)))
	}
	generate := c.FormValue("generate") == "true"

	contents := make([][]byte, len(headers))
	for i, h := range headers {
		ft := fileset.FileType(strings.TrimSpace(types[i]))
		if !ft.Valid() {
			return detail(c, http.StatusUnprocessableEntity, fmt.Sprintf("unknown file type %q", types[i]))
		}
		f, err := h.Open()
		if err != nil {
			return detail(c, http.StatusBadRequest, err.Error())
		}
		contents[i], err = io.ReadAll(f)
		f.Close()
		if err != nil {
			return detail(c, http.StatusBadRequest, err.Error())
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	owner := current(c)
	p := b.addProjectLocked(owner.ID, name, c.FormValue("description"), models.StatusDraft)

	resp := models.CreateWithFilesResponse{Success: true}
	var jsonSchema, xsdSchema []byte
	for i, h := range headers {
		ft := fileset.FileType(strings.TrimSpace(types[i]))
		sf := b.addFileLocked(p.ID, h.Filename, ft, owner.ID, contents[i])
		resp.UploadedFiles = append(resp.UploadedFiles, sf.info)
		switch ft {
		case fileset.JSONSchema:
			jsonSchema = contents[i]
		case fileset.XSDSchema:
			xsdSchema = contents[i]
		}
	}

	if generate {
		if jsonSchema == nil || xsdSchema == nil {
			return detail(c, http.StatusUnprocessableEntity, "generation needs a JSON schema and an XSD schema")
		}
		g := render(jsonSchema, xsdSchema)
		tpl := b.addFileLocked(p.ID, "generated_template.vm", fileset.VMTemplate, owner.ID, []byte(g.Template))
		mappings := make([]models.ProjectMapping, len(g.Mappings))
		for i, m := range g.Mappings {
			mappings[i] = models.ProjectMapping{
				ID:              uuid.NewString(),
				JSONFieldPath:   m.JSONFieldPath,
				JSONFieldLabel:  m.JSONFieldLabel,
				XMLElementName:  m.XMLElementName,
				XMLElementPath:  m.XMLElementPath,
				VariableName:    m.VariableName,
				ConfidenceScore: m.ConfidenceScore,
				IsAutoMapped:    true,
			}
		}
		b.mappings[p.ID] = mappings
		p.Status = models.StatusCompleted
		p.TotalSize = tpl.info.FileSize
		resp.Generation = &models.GenerationSummary{
			Success:        true,
			TemplateFileID: tpl.info.ID,
			MappingsCount:  len(mappings),
			Validation:     g.Validation,
		}
	}

	resp.Project = models.ProjectDetail{Project: *p}
	for _, f := range b.files {
		if f.info.ProjectID == p.ID {
			resp.Project.Files = append(resp.Project.Files, models.ProjectFileSummary{
				ID: f.info.ID, FileName: f.info.FileName, FileType: string(f.info.FileType),
				FileSize: f.info.FileSize, MimeType: f.info.MimeType, CreatedAt: f.info.CreatedAt,
			})
		}
	}
	return c.JSON(http.StatusCreated, resp)
}
