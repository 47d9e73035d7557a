package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/http"

	"github.com/dmitrijs2005/vmgen/internal/client/client"
	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/filex"
	"github.com/dmitrijs2005/vmgen/internal/netx"
)

const contentTypeOctetStream = "application/octet-stream"

// FileService covers the /files endpoints.
type FileService interface {
	Upload(ctx context.Context, projectID string, f UploadFile, uploadedBy string) (models.FileInfo, error)
	ProjectFiles(ctx context.Context, projectID string) (models.FileList, error)
	Get(ctx context.Context, id string) (models.FileInfo, error)
	Content(ctx context.Context, id string) ([]byte, error)
	// Download saves the file into dir and returns the written path. An empty
	// fileName uses the name the server reports.
	Download(ctx context.Context, id, fileName, dir string) (string, error)
	Delete(ctx context.Context, id string) error
}

type fileService struct {
	doer Doer
}

func NewFileService(doer Doer) FileService {
	return &fileService{doer: doer}
}

func (s *fileService) Upload(ctx context.Context, projectID string, f UploadFile, uploadedBy string) (models.FileInfo, error) {
	if projectID == "" {
		return models.FileInfo{}, fmt.Errorf("project id is empty: %w", ErrInvalidArgument)
	}
	form := netx.NewForm()
	f.addTo(form, "file")
	form.Field("project_id", projectID).Field("file_type", string(f.fileType()))
	if uploadedBy != "" {
		form.Field("uploaded_by", uploadedBy)
	}
	body, ct, err := form.Encode()
	if err != nil {
		return models.FileInfo{}, fmt.Errorf("build form: %w", err)
	}
	return call[models.FileInfo](ctx, s.doer, client.Request{
		Method:      http.MethodPost,
		Path:        "/files/upload",
		Body:        body,
		ContentType: ct,
	})
}

func (s *fileService) ProjectFiles(ctx context.Context, projectID string) (models.FileList, error) {
	return get[models.FileList](ctx, s.doer, "/files/project/"+seg(projectID), nil)
}

func (s *fileService) Get(ctx context.Context, id string) (models.FileInfo, error) {
	return get[models.FileInfo](ctx, s.doer, "/files/"+seg(id), nil)
}

func (s *fileService) download(ctx context.Context, id string) (*client.Response, error) {
	return s.doer.Do(ctx, client.Request{
		Method: http.MethodGet,
		Path:   "/files/" + seg(id) + "/download",
		Accept: contentTypeOctetStream,
	})
}

func (s *fileService) Content(ctx context.Context, id string) ([]byte, error) {
	resp, err := s.download(ctx, id)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (s *fileService) Download(ctx context.Context, id, fileName, dir string) (string, error) {
	resp, err := s.download(ctx, id)
	if err != nil {
		return "", err
	}
	if fileName == "" {
		fileName = dispositionName(resp.Header.Get("Content-Disposition"))
	}
	if fileName == "" {
		info, err := s.Get(ctx, id)
		if err != nil {
			return "", err
		}
		fileName = info.FileName
	}
	path, err := filex.SaveAs(dir, fileName, bytes.NewReader(resp.Body))
	if err != nil {
		return "", fmt.Errorf("save %s: %w", fileName, err)
	}
	return path, nil
}

func dispositionName(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return params["filename"]
}

func (s *fileService) Delete(ctx context.Context, id string) error {
	_, err := s.doer.Do(ctx, client.Request{Method: http.MethodDelete, Path: "/files/" + seg(id)})
	return err
}
