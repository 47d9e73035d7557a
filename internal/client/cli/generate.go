package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/client/services"
)

type generateOptions struct {
	description string
	dir         string
	noDownload  bool
}

// Generate creates a project from local files and has the backend build its
// template. The template is downloaded unless noDownload is set.
func (a *App) Generate(ctx context.Context, name string, paths []string, o generateOptions) error {
	e := a.newEditor()
	e.SetName(name)
	e.SetDescription(o.description)
	if _, err := e.Add(paths...); err != nil {
		return err
	}
	if err := e.UploadPending(ctx); err != nil {
		return err
	}
	if err := e.Validation().Err(); err != nil {
		return err
	}
	res, err := e.Generate(ctx)
	if err != nil {
		return err
	}
	return a.reportGenerated(ctx, res, !o.noDownload, o.dir)
}

func (a *App) reportGenerated(ctx context.Context, res services.GenerateResult, download bool, dir string) error {
	a.printf("Generated %s in project %s (%d mappings).\n", res.TemplateFileName, res.ProjectID, res.MappingsCount)
	a.printValidation(res.Validation)
	if !download {
		return nil
	}
	return a.DownloadFile(ctx, res.TemplateFileID, res.TemplateFileName, dir)
}

type completeOptions struct {
	jsonPath     string
	xsdPath      string
	testDataPath string
	preview      bool
	output       string
}

// Complete runs the stateless generator over two schema files and prints or
// saves the template.
func (a *App) Complete(ctx context.Context, o completeOptions) error {
	jsonSchema, err := os.ReadFile(o.jsonPath)
	if err != nil {
		return err
	}
	xsdSchema, err := os.ReadFile(o.xsdPath)
	if err != nil {
		return err
	}
	req := models.GenerateRequest{
		JSONSchemaContent: string(jsonSchema),
		XSDSchemaContent:  string(xsdSchema),
	}
	if o.testDataPath != "" {
		raw, err := os.ReadFile(o.testDataPath)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(raw, &req.TestData); err != nil {
			return fmt.Errorf("test data %s: %w", o.testDataPath, err)
		}
	}
	if o.preview {
		req.IncludePreview = &o.preview
	}

	res, err := a.generatorService.Complete(ctx, req)
	if err != nil {
		return err
	}
	if !res.Success {
		a.printValidation(res.Validation)
		return services.ErrNotGenerated
	}

	if len(res.Mappings) > 0 {
		mappings := make([]models.ProjectMapping, len(res.Mappings))
		for i, m := range res.Mappings {
			mappings[i] = models.ProjectMapping{
				JSONFieldPath:   m.JSONFieldPath,
				JSONFieldLabel:  m.JSONFieldLabel,
				XMLElementName:  m.XMLElementName,
				XMLElementPath:  m.XMLElementPath,
				VariableName:    m.VariableName,
				ConfidenceScore: m.ConfidenceScore,
				IsAutoMapped:    m.IsAutoMapped,
			}
		}
		if err := a.printMappings(mappings); err != nil {
			return err
		}
		a.println()
	}
	a.printValidation(res.Validation)

	if o.output != "" {
		if err := os.WriteFile(o.output, []byte(res.Template), 0o644); err != nil {
			return err
		}
		a.printf("Saved %s.\n", o.output)
	} else {
		a.println(res.Template)
	}
	if res.Preview != "" {
		a.println("Preview:")
		a.println(res.Preview)
	}
	return nil
}
