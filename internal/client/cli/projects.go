package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vmgen/internal/client/fileset"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/client/services"
)

type listOptions struct {
	status    string
	search    string
	sortBy    string
	sortOrder string
	page      int
	size      int
}

func (o listOptions) params() (services.ListParams, services.Page, error) {
	var p services.ListParams
	if o.status != "" {
		st, err := models.ParseProjectStatus(o.status)
		if err != nil {
			return p, services.Page{}, err
		}
		p.Status = st
	}
	p.Search = o.search
	p.SortBy = models.SortField(strings.ToLower(o.sortBy))
	p.SortOrder = models.SortOrder(strings.ToLower(o.sortOrder))

	page := services.Page{Number: o.page, Size: o.size}
	return page.Params(p), page, nil
}

// ListProjects prints one page of projects and the page position.
func (a *App) ListProjects(ctx context.Context, o listOptions) error {
	params, page, err := o.params()
	if err != nil {
		return err
	}
	list, err := a.projectService.List(ctx, params)
	if err != nil {
		return err
	}
	if len(list.Projects) == 0 {
		a.println("No projects found.")
		return nil
	}
	if err := a.printProjects(list.Projects); err != nil {
		return err
	}
	a.printf("Page %d of %d (%d total)\n", max(page.Number, 1), page.TotalPages(list.Total), list.Total)
	return nil
}

// ShowProject prints the project with its files and the template, if any.
func (a *App) ShowProject(ctx context.Context, id string) error {
	p, err := a.projectService.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := a.printProject(p); err != nil {
		return err
	}
	files, err := a.fileService.ProjectFiles(ctx, id)
	if err != nil {
		return err
	}
	a.println()
	if len(files.Files) == 0 {
		a.println("No files.")
		return nil
	}
	if err := a.printFiles(files.Files); err != nil {
		return err
	}
	if tpl, ok := files.Template(); ok {
		a.printf("\nTemplate: %s (%s)\n", tpl.FileName, tpl.ID)
	}
	return nil
}

func (a *App) CreateProject(ctx context.Context, name, description string) error {
	p, err := a.projectService.Create(ctx, models.CreateProjectRequest{
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Status:      models.StatusDraft,
	})
	if err != nil {
		return err
	}
	a.printf("Created project %s (%s).\n", p.Name, p.ID)
	return nil
}

// projectUpdate holds the flags actually passed to "projects update".
type projectUpdate struct {
	name        *string
	description *string
	status      *string
}

func (a *App) UpdateProject(ctx context.Context, id string, u projectUpdate) error {
	var req models.UpdateProjectRequest
	if u.name != nil {
		n := strings.TrimSpace(*u.name)
		if n == "" {
			return services.ErrNameRequired
		}
		req.Name = &n
	}
	if u.description != nil {
		d := strings.TrimSpace(*u.description)
		req.Description = &d
	}
	if u.status != nil {
		st, err := models.ParseProjectStatus(*u.status)
		if err != nil {
			return err
		}
		req.Status = &st
	}
	if req.Name == nil && req.Description == nil && req.Status == nil {
		return fmt.Errorf("nothing to update: pass --name, --description or --status")
	}
	p, err := a.projectService.Update(ctx, id, req)
	if err != nil {
		return err
	}
	a.printf("Updated project %s.\n", p.ID)
	return a.printProject(p)
}

// DeleteProject asks for confirmation unless force is set.
func (a *App) DeleteProject(ctx context.Context, id string, force bool) error {
	if !force {
		ok, err := Confirm(a.reader, fmt.Sprintf("Delete project %s and all its files?", id), a.out)
		if err != nil {
			return err
		}
		if !ok {
			a.println("Cancelled.")
			return nil
		}
	}
	if err := a.projectService.Delete(ctx, id); err != nil {
		return err
	}
	a.printf("Deleted project %s.\n", id)
	return nil
}

func (a *App) ShowMappings(ctx context.Context, id string) error {
	list, err := a.projectService.Mappings(ctx, id)
	if err != nil {
		return err
	}
	if len(list.Mappings) == 0 {
		a.println("No mappings.")
		return nil
	}
	return a.printMappings(list.Mappings)
}

func (a *App) ProjectFiles(ctx context.Context, id string) error {
	files, err := a.fileService.ProjectFiles(ctx, id)
	if err != nil {
		return err
	}
	if len(files.Files) == 0 {
		a.println("No files.")
		return nil
	}
	if err := a.printFiles(files.Files); err != nil {
		return err
	}
	if files.VMTemplateSize > 0 {
		a.printf("Template size: %s\n", fileset.FormatSize(files.VMTemplateSize))
	}
	return nil
}
