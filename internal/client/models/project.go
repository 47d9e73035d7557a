package models

import "strings"

type ProjectStatus string

const (
	StatusDraft      ProjectStatus = "DRAFT"
	StatusInProgress ProjectStatus = "IN_PROGRESS"
	StatusCompleted  ProjectStatus = "COMPLETED"
	StatusArchived   ProjectStatus = "ARCHIVED"
)

func (s ProjectStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// ParseProjectStatus accepts any letter case.
func ParseProjectStatus(s string) (ProjectStatus, error) {
	st := ProjectStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", invalid("unknown project status %q", s)
	}
	return st, nil
}

type Project struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status"`
	CreatedBy   string        `json:"created_by"`
	CreatedAt   Timestamp     `json:"created_at"`
	UpdatedAt   Timestamp     `json:"updated_at"`
	// TotalSize is the size of the project's generated template in bytes.
	TotalSize int64 `json:"total_size"`
}

func (p Project) Validate() error {
	if p.ID == "" {
		return invalid("project id is empty")
	}
	if !p.Status.Valid() {
		return invalid("project %s: unknown status %q", p.ID, p.Status)
	}
	return nil
}

type ProjectList struct {
	Projects []Project `json:"projects"`
	Total    int       `json:"total"`
}

func (l ProjectList) Validate() error {
	if l.Total < 0 {
		return invalid("negative total %d", l.Total)
	}
	for i, p := range l.Projects {
		if err := p.Validate(); err != nil {
			return invalid("projects[%d]: %v", i, err)
		}
	}
	return nil
}

type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByTotalSize SortField = "total_size"
	SortByName      SortField = "name"
	SortByStatus    SortField = "status"
)

func (f SortField) Valid() bool {
	switch f {
	case SortByCreatedAt, SortByTotalSize, SortByName, SortByStatus:
		return true
	}
	return false
}

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool {
	return o == SortAsc || o == SortDesc
}

type CreateProjectRequest struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `json:"status,omitempty"`
}

// UpdateProjectRequest carries only the fields being changed.
type UpdateProjectRequest struct {
	Name        *string        `json:"name,omitempty"`
	Description *string        `json:"description,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
}

// ProjectMapping is one stored JSON field to XML element binding.
type ProjectMapping struct {
	ID              string  `json:"id"`
	JSONFieldPath   string  `json:"json_field_path"`
	JSONFieldLabel  string  `json:"json_field_label"`
	XMLElementName  string  `json:"xml_element_name"`
	XMLElementPath  string  `json:"xml_element_path"`
	VariableName    string  `json:"variable_name"`
	ConfidenceScore float64 `json:"confidence_score"`
	IsAutoMapped    bool    `json:"is_auto_mapped"`
}

// FieldName is the label text before the first dash.
func (m ProjectMapping) FieldName() string {
	name, _, _ := strings.Cut(m.JSONFieldLabel, "-")
	return strings.TrimSpace(name)
}

// ConfidencePercent rounds the score to a whole percentage.
func (m ProjectMapping) ConfidencePercent() int {
	return int(m.ConfidenceScore*100 + 0.5)
}

type MappingList struct {
	Mappings []ProjectMapping `json:"mappings"`
	Total    int              `json:"total"`
}

func (l MappingList) Validate() error {
	for i, m := range l.Mappings {
		if m.ConfidenceScore < 0 || m.ConfidenceScore > 1 {
			return invalid("mappings[%d]: confidence %v out of range", i, m.ConfidenceScore)
		}
	}
	return nil
}
