package models

import (
	"github.com/dmitrijs2005/vmgen/internal/client/fileset"
	"github.com/google/uuid"
)

// FileStatus is the upload state of a LocalFile.
type FileStatus string

const (
	FilePending   FileStatus = "pending"
	FileUploading FileStatus = "uploading"
	FileSuccess   FileStatus = "success"
	FileError     FileStatus = "error"
)

// LocalFile is a file taking part in an edit session. Path is empty for files
// that so far exist only on the server.
type LocalFile struct {
	ID           string
	Name         string
	Path         string
	Size         int64
	Progress     int
	Status       FileStatus
	Error        string
	ServerFileID string
}

// NewLocalFile returns a pending file read from path.
func NewLocalFile(name, path string, size int64) *LocalFile {
	return &LocalFile{
		ID:     uuid.NewString(),
		Name:   name,
		Path:   path,
		Size:   size,
		Status: FilePending,
	}
}

// RemoteFile wraps an already stored server file.
func RemoteFile(fi FileInfo) *LocalFile {
	return &LocalFile{
		ID:           uuid.NewString(),
		Name:         fi.FileName,
		Size:         fi.FileSize,
		Progress:     100,
		Status:       FileSuccess,
		ServerFileID: fi.ID,
	}
}

func (f *LocalFile) Type() fileset.FileType {
	return fileset.TypeByExtension(f.Name)
}

func (f *LocalFile) StartUpload() {
	f.Status = FileUploading
	f.Progress = 50
	f.Error = ""
}

func (f *LocalFile) Succeed(serverFileID string) {
	f.Status = FileSuccess
	f.Progress = 100
	f.ServerFileID = serverFileID
	f.Error = ""
}

func (f *LocalFile) Fail(err error) {
	f.Status = FileError
	f.Progress = 0
	f.Error = err.Error()
}

func (f *LocalFile) Snapshot() fileset.Snapshot {
	return fileset.SnapshotOf(f.Name, f.ServerFileID)
}
