package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/vmgen/internal/client/client"
	"github.com/dmitrijs2005/vmgen/internal/client/fileset"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/netx"
)

// DefaultLimit is the page size sent when ListParams.Limit is unset.
const DefaultLimit = 100

// ListParams filters and orders GET /projects/. Zero values are omitted,
// except skip and limit which always go out.
type ListParams struct {
	Status    models.ProjectStatus
	Skip      int
	Limit     int
	Search    string
	SortBy    models.SortField
	SortOrder models.SortOrder
}

func (p ListParams) query() (url.Values, error) {
	if p.Skip < 0 {
		return nil, fmt.Errorf("skip %d: %w", p.Skip, ErrInvalidArgument)
	}
	if p.Status != "" && !p.Status.Valid() {
		return nil, fmt.Errorf("status %q: %w", p.Status, ErrInvalidArgument)
	}
	if p.SortBy != "" && !p.SortBy.Valid() {
		return nil, fmt.Errorf("sort field %q: %w", p.SortBy, ErrInvalidArgument)
	}
	if p.SortOrder != "" && !p.SortOrder.Valid() {
		return nil, fmt.Errorf("sort order %q: %w", p.SortOrder, ErrInvalidArgument)
	}

	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	q := url.Values{}
	q.Set("skip", strconv.Itoa(p.Skip))
	q.Set("limit", strconv.Itoa(limit))
	if p.Status != "" {
		q.Set("status", string(p.Status))
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		q.Set("search", s)
	}
	if p.SortBy != "" {
		q.Set("sort_by", string(p.SortBy))
	}
	if p.SortOrder != "" {
		q.Set("sort_order", string(p.SortOrder))
	}
	return q, nil
}

// NewProject is the input of CreateWithFiles.
type NewProject struct {
	Name        string
	Description string
	Files       []UploadFile
	Generate    bool
}

// ProjectService covers the /projects endpoints.
type ProjectService interface {
	List(ctx context.Context, p ListParams) (models.ProjectList, error)
	Get(ctx context.Context, id string) (models.Project, error)
	Create(ctx context.Context, req models.CreateProjectRequest) (models.Project, error)
	Update(ctx context.Context, id string, req models.UpdateProjectRequest) (models.Project, error)
	Delete(ctx context.Context, id string) error
	Mappings(ctx context.Context, id string) (models.MappingList, error)
	CreateWithFiles(ctx context.Context, np NewProject) (models.CreateWithFilesResponse, error)
}

type projectService struct {
	doer Doer
}

func NewProjectService(doer Doer) ProjectService {
	return &projectService{doer: doer}
}

func (s *projectService) List(ctx context.Context, p ListParams) (models.ProjectList, error) {
	q, err := p.query()
	if err != nil {
		return models.ProjectList{}, err
	}
	return get[models.ProjectList](ctx, s.doer, "/projects/", q)
}

func (s *projectService) Get(ctx context.Context, id string) (models.Project, error) {
	return get[models.Project](ctx, s.doer, "/projects/"+seg(id), nil)
}

func (s *projectService) Create(ctx context.Context, req models.CreateProjectRequest) (models.Project, error) {
	if strings.TrimSpace(req.Name) == "" {
		return models.Project{}, fmt.Errorf("project name is empty: %w", ErrInvalidArgument)
	}
	return callJSON[models.Project](ctx, s.doer, http.MethodPost, "/projects/", req)
}

func (s *projectService) Update(ctx context.Context, id string, req models.UpdateProjectRequest) (models.Project, error) {
	return callJSON[models.Project](ctx, s.doer, http.MethodPut, "/projects/"+seg(id), req)
}

func (s *projectService) Delete(ctx context.Context, id string) error {
	_, err := s.doer.Do(ctx, client.Request{Method: http.MethodDelete, Path: "/projects/" + seg(id)})
	return err
}

func (s *projectService) Mappings(ctx context.Context, id string) (models.MappingList, error) {
	return get[models.MappingList](ctx, s.doer, "/projects/"+seg(id)+"/mappings", nil)
}

// CreateWithFiles creates a project and stores its files in one multipart
// call, optionally generating the template right away.
func (s *projectService) CreateWithFiles(ctx context.Context, np NewProject) (models.CreateWithFilesResponse, error) {
	if strings.TrimSpace(np.Name) == "" {
		return models.CreateWithFilesResponse{}, fmt.Errorf("project name is empty: %w", ErrInvalidArgument)
	}
	if len(np.Files) == 0 {
		return models.CreateWithFilesResponse{}, fmt.Errorf("no files: %w", ErrInvalidArgument)
	}

	form := netx.NewForm().Field("name", np.Name)
	if np.Description != "" {
		form.Field("description", np.Description)
	}
	types := make([]string, len(np.Files))
	for i, f := range np.Files {
		f.addTo(form, "files")
		types[i] = string(f.fileType())
	}
	form.Field("file_types", strings.Join(types, ","))
	form.Field("generate", strconv.FormatBool(np.Generate))

	body, ct, err := form.Encode()
	if err != nil {
		return models.CreateWithFilesResponse{}, fmt.Errorf("build form: %w", err)
	}
	return call[models.CreateWithFilesResponse](ctx, s.doer, client.Request{
		Method:      http.MethodPost,
		Path:        "/projects/full",
		Body:        body,
		ContentType: ct,
	})
}

// UploadFile is a file to send. Content wins over Path when both are set.
type UploadFile struct {
	Name    string
	Path    string
	Content []byte
	// Type defaults to the classification of Name.
	Type fileset.FileType
}

func (f UploadFile) name() string {
	if f.Name != "" {
		return f.Name
	}
	return filepath.Base(f.Path)
}

func (f UploadFile) fileType() fileset.FileType {
	if f.Type != "" {
		return f.Type
	}
	return fileset.TypeByExtension(f.name())
}

func (f UploadFile) addTo(form *netx.Form, field string) {
	if f.Content != nil || f.Path == "" {
		form.File(field, f.name(), bytes.NewReader(f.Content))
		return
	}
	form.FileNamed(field, f.name(), f.Path)
}
