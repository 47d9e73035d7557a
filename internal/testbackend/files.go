package testbackend

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/vmgen/internal/client/fileset"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/netx"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AddFile stores content under projectID, classified by extension.
func (b *Backend) AddFile(projectID, name string, content []byte) models.FileInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	owner := ""
	if p, ok := b.projects[projectID]; ok {
		owner = p.CreatedBy
	}
	ft := fileset.TypeByExtension(name)
	if strings.HasSuffix(strings.ToLower(name), ".vm") {
		ft = fileset.VMTemplate
	}
	return b.addFileLocked(projectID, name, ft, owner, content).info
}

// FileContent returns the stored bytes of a file.
func (b *Backend) FileContent(id string) ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.files[id]
	if !ok {
		return nil, false
	}
	return f.content, true
}

// ProjectFileNames lists the names stored for a project.
func (b *Backend) ProjectFileNames(projectID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for _, f := range b.files {
		if f.info.ProjectID == projectID {
			out = append(out, f.info.FileName)
		}
	}
	return out
}

func (b *Backend) addFileLocked(projectID, name string, ft fileset.FileType, uploadedBy string, content []byte) *storedFile {
	sum := sha256.Sum256(content)
	sf := &storedFile{
		info: models.FileInfo{
			ID:         uuid.NewString(),
			ProjectID:  projectID,
			FileName:   name,
			FileType:   ft,
			FilePath:   projectID + "/" + name,
			FileSize:   int64(len(content)),
			MimeType:   netx.ContentTypeOf(name),
			Checksum:   hex.EncodeToString(sum[:]),
			UploadedBy: uploadedBy,
			CreatedAt:  models.Timestamp{Time: time.Now().UTC()},
		},
		content: content,
	}
	if ft == fileset.VMTemplate {
		s := string(content)
		sf.info.Template = &s
	}
	b.files[sf.info.ID] = sf
	return sf
}

func (b *Backend) uploadFile(c echo.Context) error {
	projectID := c.FormValue("project_id")
	ft := fileset.FileType(c.FormValue("file_type"))
	if projectID == "" || !ft.Valid() {
		return detail(c, http.StatusUnprocessableEntity, "project_id and a valid file_type are required")
	}
	h, err := c.FormFile("file")
	if err != nil {
		return detail(c, http.StatusUnprocessableEntity, "file is required")
	}
	f, err := h.Open()
	if err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return detail(c, http.StatusBadRequest, err.Error())
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.projects[projectID]; !ok {
		return detail(c, http.StatusNotFound, "Project not found")
	}
	uploadedBy := c.FormValue("uploaded_by")
	if uploadedBy == "" {
		uploadedBy = current(c).ID
	}
	sf := b.addFileLocked(projectID, h.Filename, ft, uploadedBy, content)
	return c.JSON(http.StatusCreated, sf.info)
}

func (b *Backend) projectFiles(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	list := models.FileList{Files: []models.FileInfo{}}
	for _, f := range b.files {
		if f.info.ProjectID != c.Param("id") {
			continue
		}
		list.Files = append(list.Files, f.info)
		if f.info.FileType == fileset.VMTemplate {
			info := f.info
			list.VMTemplateFile = &info
			list.VMTemplateSize = info.FileSize
		}
	}
	list.Total = len(list.Files)
	return c.JSON(http.StatusOK, list)
}

func (b *Backend) getFile(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.files[c.Param("id")]
	if !ok {
		return detail(c, http.StatusNotFound, "File not found")
	}
	return c.JSON(http.StatusOK, f.info)
}

func (b *Backend) downloadFile(c echo.Context) error {
	b.mu.Lock()
	f, ok := b.files[c.Param("id")]
	b.mu.Unlock()
	if !ok {
		return detail(c, http.StatusNotFound, "File not found")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+f.info.FileName+`"`)
	return c.Blob(http.StatusOK, echo.MIMEOctetStream, f.content)
}

func (b *Backend) deleteFile(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.files[c.Param("id")]; !ok {
		return detail(c, http.StatusNotFound, "File not found")
	}
	delete(b.files, c.Param("id"))
	return c.JSON(http.StatusOK, models.MessageResponse{Message: "File deleted"})
}
