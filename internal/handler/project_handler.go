package handler

import (
	"net/http"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/middleware"
	"github.com/dafibh/canteiro/canteiro-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ProjectHandler handles project-related HTTP requests
type ProjectHandler struct {
	projectService *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ProjectRequest is the body of create and update
type ProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	StartDate   *string `json:"startDate,omitempty"`
	EndDate     *string `json:"endDate,omitempty"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		StartDate:   formatOptionalDate(p.StartDate),
		EndDate:     formatOptionalDate(p.EndDate),
		CreatedAt:   formatTimestamp(p.CreatedAt),
		UpdatedAt:   formatTimestamp(p.UpdatedAt),
	}
}

func (req ProjectRequest) toInput() (service.ProjectInput, *ValidationError) {
	startDate, err := optionalDate(req.StartDate)
	if err != nil {
		return service.ProjectInput{}, &ValidationError{Field: "startDate", Message: "Must be in YYYY-MM-DD format"}
	}
	endDate, err := optionalDate(req.EndDate)
	if err != nil {
		return service.ProjectInput{}, &ValidationError{Field: "endDate", Message: "Must be in YYYY-MM-DD format"}
	}

	return service.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   startDate,
		EndDate:     endDate,
	}, nil
}

// CreateProject godoc
// @Summary Create a project
// @Tags projects
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProjectRequest true "Project"
// @Success 201 {object} ProjectResponse
// @Failure 400 {object} ProblemDetails
// @Router /projects [post]
func (h *ProjectHandler) CreateProject(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}

	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, fieldErr := req.toInput()
	if fieldErr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*fieldErr})
	}

	project, err := h.projectService.CreateProject(c.Request().Context(), companyID, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toProjectResponse(project))
}

// GetProjects godoc
// @Summary List projects, newest first
// @Tags projects
// @Produce json
// @Security BearerAuth
// @Success 200 {array} ProjectResponse
// @Router /projects [get]
func (h *ProjectHandler) GetProjects(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}

	projects, err := h.projectService.GetProjects(c.Request().Context(), companyID)
	if err != nil {
		return respondError(c, err)
	}

	response := make([]ProjectResponse, len(projects))
	for i, p := range projects {
		response[i] = toProjectResponse(p)
	}
	return c.JSON(http.StatusOK, response)
}

// GetProject handles GET /projects/:id
func (h *ProjectHandler) GetProject(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewFieldError(c, "id", "Invalid project ID")
	}

	project, err := h.projectService.GetProjectByID(c.Request().Context(), companyID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toProjectResponse(project))
}

// UpdateProject handles PUT /projects/:id
func (h *ProjectHandler) UpdateProject(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewFieldError(c, "id", "Invalid project ID")
	}

	var req ProjectRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	input, fieldErr := req.toInput()
	if fieldErr != nil {
		return NewValidationError(c, "Validation failed", []ValidationError{*fieldErr})
	}

	project, err := h.projectService.UpdateProject(c.Request().Context(), companyID, id, input)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toProjectResponse(project))
}

// DeleteProject godoc
// @Summary Delete a project
// @Description Projects still referenced by transactions cannot be deleted.
// @Tags projects
// @Security BearerAuth
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /projects/{id} [delete]
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewFieldError(c, "id", "Invalid project ID")
	}

	if err := h.projectService.DeleteProject(c.Request().Context(), companyID, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
