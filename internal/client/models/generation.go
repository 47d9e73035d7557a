package models

import "encoding/json"

type TemplateIssue struct {
	Line     *int   `json:"line"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
}

type TemplateValidation struct {
	IsValid  bool            `json:"is_valid"`
	Errors   json.RawMessage `json:"errors,omitempty"`
	Warnings json.RawMessage `json:"warnings,omitempty"`
}

// Issues decodes Errors when they follow the line/message/severity shape.
func (v TemplateValidation) Issues() ([]TemplateIssue, error) {
	if len(v.Errors) == 0 {
		return nil, nil
	}
	var out []TemplateIssue
	if err := json.Unmarshal(v.Errors, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GenerationSummary is the generation block of a /projects/full response.
type GenerationSummary struct {
	Success        bool               `json:"success"`
	TemplateFileID string             `json:"template_file_id"`
	MappingsCount  int                `json:"mappings_count"`
	Validation     TemplateValidation `json:"validation"`
}

type ProjectFileSummary struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	FileType  string    `json:"file_type"`
	FileSize  int64     `json:"file_size"`
	MimeType  string    `json:"mime_type"`
	CreatedAt Timestamp `json:"created_at"`
}

type ProjectDetail struct {
	Project
	Mappings json.RawMessage      `json:"mappings,omitempty"`
	History  json.RawMessage      `json:"history,omitempty"`
	Files    []ProjectFileSummary `json:"files"`
}

// CreateWithFilesResponse is returned by POST /projects/full.
type CreateWithFilesResponse struct {
	Success       bool               `json:"success"`
	Project       ProjectDetail      `json:"project"`
	UploadedFiles []FileInfo         `json:"uploaded_files"`
	Generation    *GenerationSummary `json:"generation,omitempty"`
}

func (r CreateWithFilesResponse) Validate() error {
	if err := r.Project.Validate(); err != nil {
		return err
	}
	for i, f := range r.UploadedFiles {
		if err := f.Validate(); err != nil {
			return invalid("uploaded_files[%d]: %v", i, err)
		}
	}
	return nil
}

type GenerateRequest struct {
	JSONSchemaContent string         `json:"json_schema_content"`
	XSDSchemaContent  string         `json:"xsd_schema_content"`
	TestData          map[string]any `json:"test_data,omitempty"`
	IncludePreview    *bool          `json:"include_preview,omitempty"`
	IncludeComments   *bool          `json:"include_comments,omitempty"`
	IncludeNullChecks *bool          `json:"include_null_checks,omitempty"`
}

type ParsedJSONField struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

type ParsedXSDElement struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// FieldMapping binds a parsed JSON field to an XSD element.
type FieldMapping struct {
	JSONFieldID     string  `json:"json_field_id"`
	JSONFieldPath   string  `json:"json_field_path"`
	JSONFieldLabel  string  `json:"json_field_label"`
	XMLElementName  string  `json:"xml_element_name"`
	XMLElementPath  string  `json:"xml_element_path"`
	VariableName    string  `json:"variable_name"`
	ConfidenceScore float64 `json:"confidence_score"`
	IsAutoMapped    bool    `json:"is_auto_mapped"`
}

type GenerationStats struct {
	TotalMappings       int     `json:"total_mappings"`
	AutoMapped          int     `json:"auto_mapped"`
	ManualMapped        int     `json:"manual_mapped"`
	AvgConfidence       float64 `json:"avg_confidence"`
	UnmappedJSONFields  int     `json:"unmapped_json_fields"`
	UnmappedXMLElements int     `json:"unmapped_xml_elements"`
}

type GenerateResponse struct {
	Success    bool `json:"success"`
	ParsedJSON struct {
		Fields      []ParsedJSONField `json:"fields"`
		TotalFields int               `json:"total_fields"`
	} `json:"parsed_json"`
	ParsedXSD struct {
		Elements      []ParsedXSDElement `json:"elements"`
		TotalElements int                `json:"total_elements"`
	} `json:"parsed_xsd"`
	Mappings   []FieldMapping     `json:"mappings"`
	Template   string             `json:"template"`
	Validation TemplateValidation `json:"validation"`
	Preview    string             `json:"preview,omitempty"`
	Stats      GenerationStats    `json:"stats"`
}

func (r GenerateResponse) Validate() error {
	if r.Success && r.Template == "" {
		return invalid("successful generation returned no template")
	}
	return nil
}
