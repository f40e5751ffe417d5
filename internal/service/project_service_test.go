package service

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProject_Success(t *testing.T) {
	repo := testutil.NewMockProjectRepository()
	publisher := testutil.NewMockEventPublisher()
	svc := NewProjectService(repo)
	svc.SetEventPublisher(publisher)
	companyID := uuid.New()

	desc := "  Four-storey residential  "
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	project, err := svc.CreateProject(context.Background(), companyID, ProjectInput{
		Name:        "  Riverside Tower ",
		Description: &desc,
		StartDate:   &start,
		EndDate:     &end,
	})

	require.NoError(t, err)
	assert.Equal(t, "Riverside Tower", project.Name)
	assert.Equal(t, "Four-storey residential", *project.Description)
	assert.Equal(t, companyID, project.CompanyID)
	assert.Equal(t, []string{"project.created"}, publisher.Types())
}

func TestCreateProject_Validation(t *testing.T) {
	svc := NewProjectService(testutil.NewMockProjectRepository())
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	before := start.AddDate(0, 0, -1)
	longDesc := strings.Repeat("d", domain.MaxProjectDescriptionLength+1)

	tests := []struct {
		name    string
		input   ProjectInput
		wantErr error
	}{
		{"blank name", ProjectInput{Name: "   "}, domain.ErrNameRequired},
		{"long name", ProjectInput{Name: strings.Repeat("n", domain.MaxProjectNameLength+1)}, domain.ErrNameTooLong},
		{"long description", ProjectInput{Name: "P", Description: &longDesc}, domain.ErrProjectDescriptionLen},
		{"end before start", ProjectInput{Name: "P", StartDate: &start, EndDate: &before}, domain.ErrProjectDatesInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProject(context.Background(), uuid.New(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateProject_AccentedTextCountsCharacters(t *testing.T) {
	svc := NewProjectService(testutil.NewMockProjectRepository())
	desc := strings.Repeat("ção ", domain.MaxProjectDescriptionLength/4)

	project, err := svc.CreateProject(context.Background(), uuid.New(), ProjectInput{
		Name:        strings.Repeat("é", domain.MaxProjectNameLength),
		Description: &desc,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.MaxProjectNameLength, utf8.RuneCountInString(project.Name))
}

func TestCreateProject_BlankDescriptionStoredAsNil(t *testing.T) {
	svc := NewProjectService(testutil.NewMockProjectRepository())
	blank := "   "

	project, err := svc.CreateProject(context.Background(), uuid.New(), ProjectInput{Name: "P", Description: &blank})

	require.NoError(t, err)
	assert.Nil(t, project.Description)
}

func TestGetProjects_ScopedToCompany(t *testing.T) {
	repo := testutil.NewMockProjectRepository()
	svc := NewProjectService(repo)
	mine, other := uuid.New(), uuid.New()

	repo.AddProject(&domain.Project{ID: uuid.New(), CompanyID: mine, Name: "Old", CreatedAt: time.Now().Add(-time.Hour)})
	repo.AddProject(&domain.Project{ID: uuid.New(), CompanyID: mine, Name: "New", CreatedAt: time.Now()})
	repo.AddProject(&domain.Project{ID: uuid.New(), CompanyID: other, Name: "Theirs", CreatedAt: time.Now()})

	projects, err := svc.GetProjects(context.Background(), mine)

	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "New", projects[0].Name)
	assert.Equal(t, "Old", projects[1].Name)
}

func TestGetProjectByID_OtherCompanyNotFound(t *testing.T) {
	repo := testutil.NewMockProjectRepository()
	svc := NewProjectService(repo)
	project := &domain.Project{ID: uuid.New(), CompanyID: uuid.New(), Name: "P"}
	repo.AddProject(project)

	_, err := svc.GetProjectByID(context.Background(), uuid.New(), project.ID)

	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestUpdateProject(t *testing.T) {
	repo := testutil.NewMockProjectRepository()
	publisher := testutil.NewMockEventPublisher()
	svc := NewProjectService(repo)
	svc.SetEventPublisher(publisher)
	companyID := uuid.New()
	project := &domain.Project{ID: uuid.New(), CompanyID: companyID, Name: "Old name"}
	repo.AddProject(project)

	updated, err := svc.UpdateProject(context.Background(), companyID, project.ID, ProjectInput{Name: "New name"})

	require.NoError(t, err)
	assert.Equal(t, "New name", updated.Name)
	assert.Equal(t, []string{"project.updated"}, publisher.Types())

	_, err = svc.UpdateProject(context.Background(), uuid.New(), project.ID, ProjectInput{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrProjectNotFound)
}

func TestDeleteProject_InUse(t *testing.T) {
	repo := testutil.NewMockProjectRepository()
	publisher := testutil.NewMockEventPublisher()
	svc := NewProjectService(repo)
	svc.SetEventPublisher(publisher)
	companyID := uuid.New()
	project := &domain.Project{ID: uuid.New(), CompanyID: companyID, Name: "P"}
	repo.AddProject(project)
	repo.InUse[project.ID] = true

	err := svc.DeleteProject(context.Background(), companyID, project.ID)

	assert.ErrorIs(t, err, domain.ErrProjectInUse)
	assert.Empty(t, publisher.Types())

	delete(repo.InUse, project.ID)
	require.NoError(t, svc.DeleteProject(context.Background(), companyID, project.ID))
	assert.Equal(t, []string{"project.deleted"}, publisher.Types())
}
