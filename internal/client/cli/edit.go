package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/vmgen/internal/client/services"
)

// editCommands runs edit-loop commands against one Editor.
type editCommands struct {
	app    *App
	editor *services.Editor
	dir    string
}

// Edit opens an interactive session over an existing project, or over a new
// one when projectID is empty.
func (a *App) Edit(ctx context.Context, projectID, dir string) error {
	var (
		e   *services.Editor
		err error
	)
	if projectID == "" {
		e = a.newEditor()
	} else if e, err = a.openEditor(ctx, projectID); err != nil {
		return err
	}

	s := &editCommands{app: a, editor: e, dir: dir}
	if e.IsNew() {
		a.println("Editing a new project. Set a name with 'name', add files with 'add'. Type 'help' for commands.")
	} else {
		a.printf("Editing project %s (%s). Type 'help' for commands.\n", e.Name(), e.ProjectID())
	}
	runREPL(ctx, s, s.prompt, bufio.NewScanner(a.reader), a.out)
	return nil
}

func (s *editCommands) prompt() string {
	name := s.editor.Name()
	if name == "" {
		name = "untitled"
	}
	if s.editor.MetadataDirty() {
		name += "*"
	}
	return fmt.Sprintf("(%s) %s", s.app.status(), name)
}

// Add stages the files and, for a saved project, uploads them right away.
func (s *editCommands) Add(ctx context.Context, paths []string) error {
	added, err := s.editor.Add(paths...)
	if err != nil {
		return err
	}
	err = s.editor.UploadPending(ctx)
	for _, f := range added {
		s.app.printf("Added %s.\n", f.Name)
	}
	if err != nil {
		return err
	}
	if s.editor.IsNew() {
		s.app.println("Files are staged until the project is saved or generated.")
	}
	return nil
}

// Remove accepts a file id, an id prefix or a file name.
func (s *editCommands) Remove(ctx context.Context, ref string) error {
	id := ref
	for _, f := range s.editor.Files() {
		if f.ID == ref || f.Name == ref || (len(ref) >= 4 && strings.HasPrefix(f.ID, ref)) {
			id = f.ID
			break
		}
	}
	if err := s.editor.Remove(ctx, id); err != nil {
		return err
	}
	s.app.printf("Removed %s.\n", ref)
	return nil
}

func (s *editCommands) List() error {
	files := s.editor.Files()
	if len(files) == 0 {
		s.app.println("No files.")
		return nil
	}
	return s.app.printLocalFiles(files)
}

func (s *editCommands) Status() error {
	e := s.editor
	t := newTable(s.app.out)
	if p, ok := e.Project(); ok {
		t.row("Project:", p.ID)
		t.row("Status:", string(p.Status))
	} else {
		t.row("Project:", "new (not saved)")
	}
	t.row("Name:", orDash(e.Name()))
	t.row("Description:", orDash(e.Description()))
	t.row("Unsaved changes:", yesNo(e.MetadataDirty()))
	t.row("Files changed:", yesNo(e.FilesChanged()))
	if err := t.flush(); err != nil {
		return err
	}

	if v := e.Validation(); !v.Valid {
		s.app.println("File set problems:")
		for _, p := range v.Errors {
			s.app.println("  - " + p)
		}
	}
	if err := e.GenerateErr(); err != nil {
		s.app.println("Cannot generate:", err)
	} else {
		s.app.println("Ready to generate.")
	}
	return nil
}

func (s *editCommands) SetName(name string) {
	s.editor.SetName(name)
}

func (s *editCommands) SetDescription(desc string) {
	s.editor.SetDescription(desc)
}

func (s *editCommands) Save(ctx context.Context) error {
	p, err := s.editor.Save(ctx)
	if err != nil {
		return err
	}
	s.app.printf("Saved project %s (%s).\n", p.Name, p.ID)
	return nil
}

func (s *editCommands) Generate(ctx context.Context) error {
	res, err := s.editor.Generate(ctx)
	if err != nil {
		return err
	}
	return s.app.reportGenerated(ctx, res, true, s.dir)
}

func (s *editCommands) Dirty() bool {
	return s.editor.MetadataDirty()
}
