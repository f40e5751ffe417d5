package service

import (
	"context"
	"strings"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ProjectService handles project (construction site) business logic
type ProjectService struct {
	projectRepo    domain.ProjectRepository
	eventPublisher websocket.EventPublisher
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo domain.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ProjectService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ProjectService) publishEvent(companyID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(companyID, event)
	}
}

// ProjectInput holds the writable fields of a project
type ProjectInput struct {
	Name        string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

func (in ProjectInput) toProject(companyID uuid.UUID) *domain.Project {
	project := &domain.Project{
		CompanyID: companyID,
		Name:      strings.TrimSpace(in.Name),
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
	}
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			project.Description = &d
		}
	}
	return project
}

// CreateProject creates a new project
func (s *ProjectService) CreateProject(ctx context.Context, companyID uuid.UUID, input ProjectInput) (*domain.Project, error) {
	project := input.toProject(companyID)
	if err := project.Validate(); err != nil {
		return nil, err
	}

	created, err := s.projectRepo.Create(ctx, project)
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID.String()).Msg("Failed to create project")
		return nil, err
	}

	s.publishEvent(companyID, websocket.ProjectCreated(created))
	return created, nil
}

// GetProjects returns the company's projects, newest first
func (s *ProjectService) GetProjects(ctx context.Context, companyID uuid.UUID) ([]*domain.Project, error) {
	return s.projectRepo.GetAllByCompany(ctx, companyID)
}

// GetProjectByID retrieves a project within a company
func (s *ProjectService) GetProjectByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Project, error) {
	return s.projectRepo.GetByID(ctx, companyID, id)
}

// UpdateProject replaces the writable fields of a project
func (s *ProjectService) UpdateProject(ctx context.Context, companyID, id uuid.UUID, input ProjectInput) (*domain.Project, error) {
	project := input.toProject(companyID)
	project.ID = id
	if err := project.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.projectRepo.Update(ctx, project)
	if err != nil {
		return nil, err
	}

	s.publishEvent(companyID, websocket.ProjectUpdated(updated))
	return updated, nil
}

// DeleteProject deletes a project. Projects still referenced by transactions
// are rejected with domain.ErrProjectInUse.
func (s *ProjectService) DeleteProject(ctx context.Context, companyID, id uuid.UUID) error {
	if err := s.projectRepo.Delete(ctx, companyID, id); err != nil {
		return err
	}

	s.publishEvent(companyID, websocket.ProjectDeleted(map[string]interface{}{"id": id}))
	return nil
}
