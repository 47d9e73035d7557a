package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
)

// GeneratorService runs the stateless generation pipeline: parse both
// schemas, map fields and render the template, without storing a project.
type GeneratorService interface {
	Complete(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error)
}

type generatorService struct {
	doer Doer
}

func NewGeneratorService(doer Doer) GeneratorService {
	return &generatorService{doer: doer}
}

func (s *generatorService) Complete(ctx context.Context, req models.GenerateRequest) (models.GenerateResponse, error) {
	if req.JSONSchemaContent == "" || req.XSDSchemaContent == "" {
		return models.GenerateResponse{}, fmt.Errorf("both schemas are required: %w", ErrInvalidArgument)
	}
	return callJSON[models.GenerateResponse](ctx, s.doer, http.MethodPost, "/generator/api/complete/generate", req)
}
