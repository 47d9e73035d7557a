package models

import "github.com/dmitrijs2005/vmgen/internal/client/fileset"

// FileInfo is the server's metadata for a stored project file.
type FileInfo struct {
	ID         string           `json:"id"`
	ProjectID  string           `json:"project_id"`
	FileName   string           `json:"file_name"`
	FileType   fileset.FileType `json:"file_type"`
	FilePath   string           `json:"file_path,omitempty"`
	FileSize   int64            `json:"file_size"`
	MimeType   string           `json:"mime_type"`
	Checksum   string           `json:"checksum,omitempty"`
	UploadedBy string           `json:"uploaded_by,omitempty"`
	CreatedAt  Timestamp        `json:"created_at"`
	UpdatedAt  Timestamp        `json:"updated_at"`
	// Template holds the rendered content of VM_TEMPLATE files.
	Template *string `json:"template,omitempty"`
}

func (f FileInfo) Validate() error {
	if f.ID == "" {
		return invalid("file id is empty")
	}
	if !f.FileType.Valid() {
		return invalid("file %s: unknown type %q", f.ID, f.FileType)
	}
	if f.FileSize < 0 {
		return invalid("file %s: negative size", f.ID)
	}
	return nil
}

type FileList struct {
	Files          []FileInfo `json:"files"`
	Total          int        `json:"total"`
	VMTemplateSize int64      `json:"vm_template_size"`
	VMTemplateFile *FileInfo  `json:"vm_template_file,omitempty"`
}

func (l FileList) Validate() error {
	for i, f := range l.Files {
		if err := f.Validate(); err != nil {
			return invalid("files[%d]: %v", i, err)
		}
	}
	if l.VMTemplateFile != nil {
		return l.VMTemplateFile.Validate()
	}
	return nil
}

// Template returns the project's VM_TEMPLATE file, if any.
func (l FileList) Template() (FileInfo, bool) {
	if l.VMTemplateFile != nil {
		return *l.VMTemplateFile, true
	}
	for _, f := range l.Files {
		if f.FileType == fileset.VMTemplate {
			return f, true
		}
	}
	return FileInfo{}, false
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (MessageResponse) Validate() error { return nil }
