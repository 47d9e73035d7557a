package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/vmgen/internal/client/fileset"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
)

var errNotLoggedIn = errors.New("not logged in, run 'vmgen login' first")

// table writes tab-separated rows aligned into columns.
type table struct {
	tw *tabwriter.Writer
}

func newTable(w io.Writer, header ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	if len(header) > 0 {
		t.row(header...)
	}
	return t
}

func (t *table) row(cols ...string) {
	fmt.Fprintln(t.tw, strings.Join(cols, "\t"))
}

func (t *table) flush() error {
	return t.tw.Flush()
}

func (a *App) printProjects(list []models.Project) error {
	t := newTable(a.out, "ID", "NAME", "STATUS", "SIZE", "CREATED", "UPDATED")
	for _, p := range list {
		t.row(p.ID, p.Name, string(p.Status), fileset.FormatSize(p.TotalSize), p.CreatedAt.String(), p.UpdatedAt.String())
	}
	return t.flush()
}

func (a *App) printProject(p models.Project) error {
	t := newTable(a.out)
	t.row("ID:", p.ID)
	t.row("Name:", p.Name)
	t.row("Description:", orDash(p.Description))
	t.row("Status:", string(p.Status))
	t.row("Template size:", fileset.FormatSize(p.TotalSize))
	t.row("Created:", p.CreatedAt.String())
	t.row("Updated:", p.UpdatedAt.String())
	return t.flush()
}

func (a *App) printFiles(list []models.FileInfo) error {
	t := newTable(a.out, "ID", "NAME", "TYPE", "SIZE", "CREATED")
	for _, f := range list {
		t.row(f.ID, f.FileName, string(f.FileType), fileset.FormatSize(f.FileSize), f.CreatedAt.String())
	}
	return t.flush()
}

func (a *App) printFile(f models.FileInfo) error {
	t := newTable(a.out)
	t.row("ID:", f.ID)
	t.row("Project:", f.ProjectID)
	t.row("Name:", f.FileName)
	t.row("Type:", string(f.FileType))
	t.row("Size:", fileset.FormatSize(f.FileSize))
	t.row("MIME type:", orDash(f.MimeType))
	t.row("Checksum:", orDash(f.Checksum))
	t.row("Created:", f.CreatedAt.String())
	return t.flush()
}

func (a *App) printLocalFiles(list []models.LocalFile) error {
	t := newTable(a.out, "ID", "NAME", "TYPE", "SIZE", "STATUS", "SERVER ID")
	for _, f := range list {
		status := string(f.Status)
		if f.Error != "" {
			status += ": " + f.Error
		}
		t.row(f.ID, f.Name, string(f.Type()), fileset.FormatSize(f.Size), status, orDash(f.ServerFileID))
	}
	return t.flush()
}

func (a *App) printMappings(list []models.ProjectMapping) error {
	t := newTable(a.out, "FIELD", "JSON PATH", "XML ELEMENT", "VARIABLE", "CONFIDENCE", "AUTO")
	for _, m := range list {
		t.row(m.FieldName(), m.JSONFieldPath, m.XMLElementName, m.VariableName,
			fmt.Sprintf("%d%%", m.ConfidencePercent()), yesNo(m.IsAutoMapped))
	}
	return t.flush()
}

func (a *App) printUsers(list []models.User) error {
	t := newTable(a.out, "ID", "EMAIL", "ROLE")
	for _, u := range list {
		t.row(u.ID, u.Email, orDash(string(u.Role)))
	}
	return t.flush()
}

func (a *App) printNotifications(list []models.Notification) error {
	t := newTable(a.out, "ID", "TYPE", "STATUS", "TITLE", "CREATED", "SENT")
	for _, n := range list {
		t.row(n.ID, string(n.Type), string(n.Status), n.Title, n.CreatedAt.String(), n.SentAt.String())
	}
	return t.flush()
}

func (a *App) printSettings(s models.NotificationSettings) error {
	t := newTable(a.out)
	t.row("Email:", onOff(s.EmailNotifications))
	t.row("System:", onOff(s.SystemNotifications))
	t.row("Registration:", onOff(s.RegistrationNotifications))
	t.row("Updated:", s.UpdatedAt.String())
	return t.flush()
}

func (a *App) printValidation(v models.TemplateValidation) {
	if v.IsValid {
		a.println("Template is valid.")
		return
	}
	issues, err := v.Issues()
	if err != nil || len(issues) == 0 {
		a.println("Template has validation errors.")
		return
	}
	for _, is := range issues {
		if is.Line != nil {
			a.printf("  line %d: %s (%s)\n", *is.Line, is.Message, is.Severity)
		} else {
			a.printf("  %s (%s)\n", is.Message, is.Severity)
		}
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
