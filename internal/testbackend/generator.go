package testbackend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"slices"
	"strings"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/labstack/echo/v4"
)

var xsdElement = regexp.MustCompile(`<(?:xs:|xsd:)?element\s+[^>]*name="([^"]+)"`)

// render produces a deterministic template: every top-level JSON property
// is mapped to the XSD element of the same name, ignoring case.
func render(jsonSchema, xsdSchema []byte) models.GenerateResponse {
	var schema struct {
		Properties map[string]struct {
			Type  string `json:"type"`
			Title string `json:"title"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	_ = json.Unmarshal(jsonSchema, &schema)

	var out models.GenerateResponse
	names := make([]string, 0, len(schema.Properties))
	for n := range schema.Properties {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		p := schema.Properties[n]
		label := n
		if p.Title != "" {
			label = n + " - " + p.Title
		}
		out.ParsedJSON.Fields = append(out.ParsedJSON.Fields, models.ParsedJSONField{
			ID: n, Path: "$." + n, Type: p.Type, Label: label, Required: slices.Contains(schema.Required, n),
		})
	}
	out.ParsedJSON.TotalFields = len(out.ParsedJSON.Fields)

	for _, m := range xsdElement.FindAllSubmatch(xsdSchema, -1) {
		name := string(m[1])
		out.ParsedXSD.Elements = append(out.ParsedXSD.Elements, models.ParsedXSDElement{Name: name, Path: "/" + name, Type: "string"})
	}
	out.ParsedXSD.TotalElements = len(out.ParsedXSD.Elements)

	var tpl strings.Builder
	for _, f := range out.ParsedJSON.Fields {
		for _, e := range out.ParsedXSD.Elements {
			if !strings.EqualFold(f.ID, e.Name) {
				continue
			}
			out.Mappings = append(out.Mappings, models.FieldMapping{
				JSONFieldID: f.ID, JSONFieldPath: f.Path, JSONFieldLabel: f.Label,
				XMLElementName: e.Name, XMLElementPath: e.Path, VariableName: "$" + f.ID,
				ConfidenceScore: 1, IsAutoMapped: true,
			})
			fmt.Fprintf(&tpl, "<%s>$data.%s</%s>\n", e.Name, f.ID, e.Name)
		}
	}
	if tpl.Len() == 0 {
		tpl.WriteString("## no matching fields\n")
	}
	out.Template = tpl.String()
	out.Success = true
	out.Validation = models.TemplateValidation{IsValid: true, Errors: json.RawMessage("[]"), Warnings: json.RawMessage("[]")}
	out.Stats = models.GenerationStats{
		TotalMappings:       len(out.Mappings),
		AutoMapped:          len(out.Mappings),
		UnmappedJSONFields:  len(out.ParsedJSON.Fields) - len(out.Mappings),
		UnmappedXMLElements: len(out.ParsedXSD.Elements) - len(out.Mappings),
	}
	if len(out.Mappings) > 0 {
		out.Stats.AvgConfidence = 1
	}
	return out
}

func (b *Backend) generate(c echo.Context) error {
	var req models.GenerateRequest
	if err := c.Bind(&req); err != nil {
		return detail(c, http.StatusBadRequest, "invalid body")
	}
	if req.JSONSchemaContent == "" || req.XSDSchemaContent == "" {
		return detail(c, http.StatusUnprocessableEntity, "json_schema_content and xsd_schema_content are required")
	}
	out := render([]byte(req.JSONSchemaContent), []byte(req.XSDSchemaContent))
	if req.IncludePreview != nil && *req.IncludePreview {
		out.Preview = out.Template
	}
	return c.JSON(http.StatusOK, out)
}
