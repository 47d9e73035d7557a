package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/dmitrijs2005/vmgen/internal/client/fileset"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/logging"
	"golang.org/x/sync/errgroup"
)

var (
	ErrExtensionNotAllowed = errors.New("file extension is not allowed")
	ErrUnknownFile         = errors.New("no such file in the edit session")
	ErrNameRequired        = errors.New("project name is required")
	ErrCannotGenerate      = errors.New("nothing to generate")
	ErrNotGenerated        = errors.New("template was not generated")
)

// DefaultTemplateName is used when the server does not name the template.
const DefaultTemplateName = "generated_template.vm"

// GenerateResult identifies the project and template a generation produced.
type GenerateResult struct {
	ProjectID        string
	TemplateFileID   string
	TemplateFileName string
	MappingsCount    int
	Validation       models.TemplateValidation
}

// Editor is an interactive edit session over one project's name,
// description and input files. A new editor has no server project until
// Save creates a draft; until then added files are only staged locally.
//
// Editor is safe for concurrent use.
type Editor struct {
	projects ProjectService
	files    FileService
	log      logging.Logger

	mu          sync.Mutex
	project     *models.Project
	name        string
	description string
	metaDirty   bool
	items       []*models.LocalFile
	original    []fileset.Snapshot
}

// NewEditor starts an empty session for a project that does not exist yet.
func NewEditor(projects ProjectService, files FileService, log logging.Logger) *Editor {
	if log == nil {
		log = logging.Nop()
	}
	return &Editor{projects: projects, files: files, log: log}
}

// OpenEditor loads an existing project and its input files. Generated
// templates are not part of the session.
func OpenEditor(ctx context.Context, projects ProjectService, files FileService, log logging.Logger, projectID string) (*Editor, error) {
	p, err := projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}
	list, err := files.ProjectFiles(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project files: %w", err)
	}

	e := NewEditor(projects, files, log)
	e.project = &p
	e.name = p.Name
	e.description = p.Description
	for _, fi := range list.Files {
		if fi.FileType == fileset.VMTemplate {
			continue
		}
		lf := models.RemoteFile(fi)
		e.items = append(e.items, lf)
		e.original = append(e.original, lf.Snapshot())
	}
	return e, nil
}

func (e *Editor) ProjectID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.project == nil {
		return ""
	}
	return e.project.ID
}

// Project returns the bound server project, if any.
func (e *Editor) Project() (models.Project, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.project == nil {
		return models.Project{}, false
	}
	return *e.project, true
}

func (e *Editor) IsNew() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.project == nil
}

func (e *Editor) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.name
}

func (e *Editor) Description() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.description
}

func (e *Editor) SetName(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.name = name
	e.metaDirty = true
}

func (e *Editor) SetDescription(desc string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.description = desc
	e.metaDirty = true
}

// MetadataDirty reports unsaved name or description changes.
func (e *Editor) MetadataDirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.metaDirty
}

// Files returns copies of the session's files in insertion order.
func (e *Editor) Files() []models.LocalFile {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.LocalFile, len(e.items))
	for i, f := range e.items {
		out[i] = *f
	}
	return out
}

// Add stages files from disk as pending. The whole selection is rejected if
// any file has a disallowed extension or if the result would mix XSD and
// XML schemas.
func (e *Editor) Add(paths ...string) ([]models.LocalFile, error) {
	incoming := make([]*models.LocalFile, 0, len(paths))
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if !fileset.IsAllowedExtension(name) {
			return nil, fmt.Errorf("%s: %w", name, ErrExtensionNotAllowed)
		}
		st, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if st.IsDir() {
			return nil, fmt.Errorf("%s is a directory", p)
		}
		incoming = append(incoming, models.NewLocalFile(name, p, st.Size()))
		names = append(names, name)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	existing := make([]string, len(e.items))
	for i, f := range e.items {
		existing[i] = f.Name
	}
	if err := fileset.CheckSelection(existing, names); err != nil {
		return nil, err
	}
	e.items = append(e.items, incoming...)

	out := make([]models.LocalFile, len(incoming))
	for i, f := range incoming {
		out[i] = *f
	}
	return out, nil
}

// UploadPending sends every pending file to the bound project in parallel.
// Each file ends in success or error on its own; the first failure is
// returned. Without a project the files are only marked as staged.
func (e *Editor) UploadPending(ctx context.Context) error {
	e.mu.Lock()
	var pending []*models.LocalFile
	for _, f := range e.items {
		if f.Status == models.FilePending {
			f.StartUpload()
			pending = append(pending, f)
		}
	}
	if e.project == nil {
		for _, f := range pending {
			f.Succeed("")
		}
		e.mu.Unlock()
		return nil
	}
	projectID := e.project.ID
	e.mu.Unlock()

	return e.upload(ctx, projectID, pending)
}

func (e *Editor) upload(ctx context.Context, projectID string, files []*models.LocalFile) error {
	var g errgroup.Group
	for _, f := range files {
		g.Go(func() error {
			info, err := e.files.Upload(ctx, projectID, UploadFile{Name: f.Name, Path: f.Path}, "")

			e.mu.Lock()
			defer e.mu.Unlock()
			if err != nil {
				f.Fail(err)
				e.log.Warn(ctx, "upload failed", "file", f.Name, "error", err)
				return fmt.Errorf("upload %s: %w", f.Name, err)
			}
			f.Succeed(info.ID)
			return nil
		})
	}
	return g.Wait()
}

// Remove drops a file from the session. A server copy is deleted on a best
// effort basis: a failed delete is logged and the file is removed anyway.
func (e *Editor) Remove(ctx context.Context, id string) error {
	e.mu.Lock()
	i := slices.IndexFunc(e.items, func(f *models.LocalFile) bool { return f.ID == id })
	if i < 0 {
		e.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrUnknownFile)
	}
	f := e.items[i]
	serverID := f.ServerFileID
	e.mu.Unlock()

	if serverID != "" {
		if err := e.files.Delete(ctx, serverID); err != nil {
			e.log.Warn(ctx, "failed to delete file on server", "file", f.Name, "error", err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = slices.DeleteFunc(e.items, func(x *models.LocalFile) bool { return x.ID == id })
	return nil
}

func (e *Editor) successLocked() []*models.LocalFile {
	var out []*models.LocalFile
	for _, f := range e.items {
		if f.Status == models.FileSuccess {
			out = append(out, f)
		}
	}
	return out
}

func (e *Editor) validationLocked() fileset.Result {
	ok := e.successLocked()
	names := make([]string, len(ok))
	for i, f := range ok {
		names[i] = f.Name
	}
	return fileset.Validate(names)
}

// Validation checks the successfully staged or uploaded files.
func (e *Editor) Validation() fileset.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.validationLocked()
}

// FilesChanged compares the successful files with the set loaded by
// OpenEditor. A session that started without files never reports a change.
func (e *Editor) FilesChanged() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filesChangedLocked()
}

func (e *Editor) filesChangedLocked() bool {
	if len(e.original) == 0 {
		return false
	}
	ok := e.successLocked()
	current := make([]fileset.Snapshot, len(ok))
	for i, f := range ok {
		current[i] = f.Snapshot()
	}
	return fileset.Changed(e.original, current)
}

func (e *Editor) CanGenerate() bool {
	return e.GenerateErr() == nil
}

// GenerateErr tells why Generate would be refused, or nil.
func (e *Editor) GenerateErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canGenerateLocked()
}

func (e *Editor) canGenerateLocked() error {
	if strings.TrimSpace(e.name) == "" {
		return ErrNameRequired
	}
	if err := e.validationLocked().Err(); err != nil {
		return err
	}
	if e.project == nil || e.project.Status == models.StatusDraft || e.filesChangedLocked() {
		return nil
	}
	return fmt.Errorf("%w: project is %s and its files are unchanged", ErrCannotGenerate, e.project.Status)
}

// Save stores the session. A new session is created on the server as a
// draft and its staged files are uploaded; an existing one has its name
// and description updated when they changed.
func (e *Editor) Save(ctx context.Context) (models.Project, error) {
	e.mu.Lock()
	name, desc := e.name, e.description
	project, dirty := e.project, e.metaDirty
	staged := e.successLocked()
	e.mu.Unlock()

	if strings.TrimSpace(name) == "" {
		return models.Project{}, ErrNameRequired
	}

	if project != nil {
		if !dirty {
			return *project, nil
		}
		p, err := e.projects.Update(ctx, project.ID, models.UpdateProjectRequest{Name: &name, Description: &desc})
		if err != nil {
			return models.Project{}, err
		}
		e.mu.Lock()
		e.project = &p
		e.metaDirty = e.name != name || e.description != desc
		e.mu.Unlock()
		return p, nil
	}

	p, err := e.projects.Create(ctx, models.CreateProjectRequest{
		Name:        name,
		Description: desc,
		Status:      models.StatusDraft,
	})
	if err != nil {
		return models.Project{}, err
	}
	e.mu.Lock()
	e.project = &p
	e.metaDirty = e.name != name || e.description != desc
	for _, f := range staged {
		f.StartUpload()
	}
	e.mu.Unlock()
	e.log.Info(ctx, "draft created", "project", p.ID)

	err = e.upload(ctx, p.ID, staged)

	e.mu.Lock()
	for _, f := range staged {
		if f.Status == models.FileSuccess {
			e.original = append(e.original, f.Snapshot())
		}
	}
	e.mu.Unlock()
	return p, err
}

// Generate submits the successful files as a new project with generation
// enabled. Files known only to the server are fetched first.
func (e *Editor) Generate(ctx context.Context) (GenerateResult, error) {
	e.mu.Lock()
	if err := e.canGenerateLocked(); err != nil {
		e.mu.Unlock()
		return GenerateResult{}, err
	}
	name, desc := e.name, e.description
	ok := e.successLocked()
	uploads := make([]UploadFile, len(ok))
	for i, f := range ok {
		uploads[i] = UploadFile{Name: f.Name, Path: f.Path}
	}
	serverIDs := make([]string, len(ok))
	for i, f := range ok {
		if f.Path == "" {
			serverIDs[i] = f.ServerFileID
		}
	}
	e.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range serverIDs {
		if id == "" {
			continue
		}
		g.Go(func() error {
			content, err := e.files.Content(gctx, id)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", uploads[i].Name, err)
			}
			uploads[i].Content = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return GenerateResult{}, err
	}

	resp, err := e.projects.CreateWithFiles(ctx, NewProject{
		Name:        name,
		Description: desc,
		Files:       uploads,
		Generate:    true,
	})
	if err != nil {
		return GenerateResult{}, err
	}
	gen := resp.Generation
	if gen == nil || !gen.Success || gen.TemplateFileID == "" {
		return GenerateResult{}, ErrNotGenerated
	}

	res := GenerateResult{
		ProjectID:        resp.Project.ID,
		TemplateFileID:   gen.TemplateFileID,
		TemplateFileName: DefaultTemplateName,
		MappingsCount:    gen.MappingsCount,
		Validation:       gen.Validation,
	}
	for _, f := range resp.Project.Files {
		if f.ID == gen.TemplateFileID && f.FileName != "" {
			res.TemplateFileName = f.FileName
		}
	}
	e.log.Info(ctx, "template generated", "project", res.ProjectID, "template", res.TemplateFileID)
	return res, nil
}
