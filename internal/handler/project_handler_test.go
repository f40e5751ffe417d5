package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject(t *testing.T) {
	f := newFixture()
	h := NewProjectHandler(f.project)

	rec := f.call(jsonRequest(t, http.MethodPost, "/api/v1/projects", map[string]string{
		"name":        "  Residencial Aurora ",
		"description": "Torre A",
		"startDate":   "2024-03-01",
		"endDate":     "2025-06-30",
	}), h.CreateProject)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var response ProjectResponse
	decode(t, rec, &response)
	assert.Equal(t, "Residencial Aurora", response.Name)
	require.NotNil(t, response.StartDate)
	assert.Equal(t, "2024-03-01", *response.StartDate)
	assert.Equal(t, "2025-06-30", *response.EndDate)
	assert.Equal(t, []string{"project.created"}, f.publisher.Types())
}

func TestCreateProject_Validation(t *testing.T) {
	tests := []struct {
		name  string
		body  map[string]string
		field string
	}{
		{"missing name", map[string]string{"name": "  "}, "name"},
		{"bad start date", map[string]string{"name": "A", "startDate": "01/03/2024"}, "startDate"},
		{"end before start", map[string]string{"name": "A", "startDate": "2024-03-01", "endDate": "2024-02-01"}, "endDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			h := NewProjectHandler(f.project)

			rec := f.call(jsonRequest(t, http.MethodPost, "/api/v1/projects", tt.body), h.CreateProject)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			problem := decodeProblem(t, rec)
			require.Len(t, problem.Errors, 1)
			assert.Equal(t, tt.field, problem.Errors[0].Field)
			assert.Empty(t, f.projects.Projects)
		})
	}
}

func TestGetProjects_CompanyScoped(t *testing.T) {
	f := newFixture()
	f.addProject("Mine")
	other := newFixture()
	f.projects.AddProject(other.addProject("Theirs"))
	h := NewProjectHandler(f.project)

	rec := f.call(httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil), h.GetProjects)

	require.Equal(t, http.StatusOK, rec.Code)
	var response []ProjectResponse
	decode(t, rec, &response)
	require.Len(t, response, 1)
	assert.Equal(t, "Mine", response[0].Name)
}

func TestGetProject(t *testing.T) {
	f := newFixture()
	p := f.addProject("Galpao")
	h := NewProjectHandler(f.project)

	rec := f.call(httptest.NewRequest(http.MethodGet, "/", nil), h.GetProject, "id", p.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.call(httptest.NewRequest(http.MethodGet, "/", nil), h.GetProject, "id", uuid.NewString())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.call(httptest.NewRequest(http.MethodGet, "/", nil), h.GetProject, "id", "42")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateProject(t *testing.T) {
	f := newFixture()
	p := f.addProject("Old")
	h := NewProjectHandler(f.project)

	rec := f.call(jsonRequest(t, http.MethodPut, "/", map[string]string{"name": "New"}), h.UpdateProject, "id", p.ID.String())

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New", f.projects.Projects[p.ID].Name)
}

func TestDeleteProject(t *testing.T) {
	f := newFixture()
	free := f.addProject("Free")
	used := f.addProject("Used")
	f.projects.InUse[used.ID] = true
	h := NewProjectHandler(f.project)

	rec := f.call(httptest.NewRequest(http.MethodDelete, "/", nil), h.DeleteProject, "id", used.ID.String())
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, ErrorTypeConflict, decodeProblem(t, rec).Type)

	rec = f.call(httptest.NewRequest(http.MethodDelete, "/", nil), h.DeleteProject, "id", free.ID.String())
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, f.projects.Projects, free.ID)
}

func TestProjectHandler_MissingCompany(t *testing.T) {
	f := newFixture()
	h := NewProjectHandler(f.project)

	rec := f.callAs(uuid.Nil, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil), h.GetProjects)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
