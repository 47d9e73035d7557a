package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/vmgen/internal/client/fileset"
	"github.com/dmitrijs2005/vmgen/internal/client/services"
)

// UploadFile sends one local file to a project. An empty fileType is
// derived from the extension.
func (a *App) UploadFile(ctx context.Context, projectID, path, fileType string) error {
	if !fileset.IsAllowedExtension(path) {
		return fmt.Errorf("%s: %w", filepath.Base(path), services.ErrExtensionNotAllowed)
	}
	f := services.UploadFile{Path: path}
	if fileType != "" {
		ft := fileset.FileType(strings.ToUpper(fileType))
		if !ft.Valid() {
			return fmt.Errorf("file type %q: %w", fileType, services.ErrInvalidArgument)
		}
		f.Type = ft
	}
	uploadedBy, _ := a.currentUserID()

	info, err := a.fileService.Upload(ctx, projectID, f, uploadedBy)
	if err != nil {
		return err
	}
	a.printf("Uploaded %s as %s (%s).\n", info.FileName, info.FileType, info.ID)
	return nil
}

func (a *App) ShowFile(ctx context.Context, id string) error {
	info, err := a.fileService.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := a.printFile(info); err != nil {
		return err
	}
	if info.Template != nil {
		a.println()
		a.println(*info.Template)
	}
	return nil
}

// DownloadFile saves a file into dir, or the configured download directory
// when dir is empty.
func (a *App) DownloadFile(ctx context.Context, id, name, dir string) error {
	if dir == "" {
		dir = a.config.DownloadDir
	}
	path, err := a.fileService.Download(ctx, id, name, dir)
	if err != nil {
		return err
	}
	a.printf("Saved %s.\n", path)
	return nil
}

func (a *App) DeleteFile(ctx context.Context, id string, force bool) error {
	if !force {
		ok, err := Confirm(a.reader, fmt.Sprintf("Delete file %s?", id), a.out)
		if err != nil {
			return err
		}
		if !ok {
			a.println("Cancelled.")
			return nil
		}
	}
	if err := a.fileService.Delete(ctx, id); err != nil {
		return err
	}
	a.printf("Deleted file %s.\n", id)
	return nil
}
