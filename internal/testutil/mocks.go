package testutil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/websocket"
	"github.com/google/uuid"
)

// MockUserRepository is a mock implementation of domain.UserRepository
type MockUserRepository struct {
	Users       map[string]*domain.User
	Companies   *MockCompanyRepository
	GetErr      error
	CreateErr   error
	CreateCalls int
}

// NewMockUserRepository creates a new MockUserRepository. Provisioned companies are stored in companies.
func NewMockUserRepository(companies *MockCompanyRepository) *MockUserRepository {
	return &MockUserRepository{
		Users:     make(map[string]*domain.User),
		Companies: companies,
	}
}

// AddUser adds a user to the mock repository
func (m *MockUserRepository) AddUser(user *domain.User) {
	m.Users[user.Auth0ID] = user
}

func (m *MockUserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.User, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if user, ok := m.Users[auth0ID]; ok {
		return user, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) CreateWithCompany(ctx context.Context, company *domain.Company, user *domain.User) (*domain.User, *domain.Company, error) {
	m.CreateCalls++
	if m.CreateErr != nil {
		return nil, nil, m.CreateErr
	}
	company, _ = m.Companies.Create(ctx, company)
	user.ID = uuid.New()
	user.CompanyID = company.ID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.Users[user.Auth0ID] = user
	return user, company, nil
}

// MockCompanyRepository is a mock implementation of domain.CompanyRepository
type MockCompanyRepository struct {
	Companies map[uuid.UUID]*domain.Company
}

func NewMockCompanyRepository() *MockCompanyRepository {
	return &MockCompanyRepository{Companies: make(map[uuid.UUID]*domain.Company)}
}

// AddCompany adds a company to the mock repository
func (m *MockCompanyRepository) AddCompany(company *domain.Company) {
	m.Companies[company.ID] = company
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *domain.Company) (*domain.Company, error) {
	company.ID = uuid.New()
	company.CreatedAt = time.Now()
	company.UpdatedAt = company.CreatedAt
	m.Companies[company.ID] = company
	return company, nil
}

func (m *MockCompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Company, error) {
	if company, ok := m.Companies[id]; ok {
		return company, nil
	}
	return nil, domain.ErrCompanyNotFound
}

func (m *MockCompanyRepository) UpdateLogoPath(ctx context.Context, id uuid.UUID, logoPath string) (*domain.Company, error) {
	company, ok := m.Companies[id]
	if !ok {
		return nil, domain.ErrCompanyNotFound
	}
	company.LogoPath = &logoPath
	company.UpdatedAt = time.Now()
	return company, nil
}

// MockProjectRepository is a mock implementation of domain.ProjectRepository.
// InUse marks projects that transactions still reference.
type MockProjectRepository struct {
	Projects map[uuid.UUID]*domain.Project
	InUse    map[uuid.UUID]bool
}

func NewMockProjectRepository() *MockProjectRepository {
	return &MockProjectRepository{
		Projects: make(map[uuid.UUID]*domain.Project),
		InUse:    make(map[uuid.UUID]bool),
	}
}

// AddProject adds a project to the mock repository
func (m *MockProjectRepository) AddProject(project *domain.Project) {
	m.Projects[project.ID] = project
}

func (m *MockProjectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	project.ID = uuid.New()
	project.CreatedAt = time.Now()
	project.UpdatedAt = project.CreatedAt
	m.Projects[project.ID] = project
	return project, nil
}

func (m *MockProjectRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Project, error) {
	project, ok := m.Projects[id]
	if !ok || project.CompanyID != companyID {
		return nil, domain.ErrProjectNotFound
	}
	return project, nil
}

func (m *MockProjectRepository) GetAllByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Project, error) {
	var result []*domain.Project
	for _, p := range m.Projects {
		if p.CompanyID == companyID {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *MockProjectRepository) Update(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	existing, ok := m.Projects[project.ID]
	if !ok || existing.CompanyID != project.CompanyID {
		return nil, domain.ErrProjectNotFound
	}
	project.CreatedAt = existing.CreatedAt
	project.UpdatedAt = time.Now()
	m.Projects[project.ID] = project
	return project, nil
}

func (m *MockProjectRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	project, ok := m.Projects[id]
	if !ok || project.CompanyID != companyID {
		return domain.ErrProjectNotFound
	}
	if m.InUse[id] {
		return domain.ErrProjectInUse
	}
	delete(m.Projects, id)
	return nil
}

// MockCategoryRepository is a mock implementation of domain.CategoryRepository
type MockCategoryRepository struct {
	Categories map[uuid.UUID]*domain.Category
	InUse      map[uuid.UUID]bool
}

func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		Categories: make(map[uuid.UUID]*domain.Category),
		InUse:      make(map[uuid.UUID]bool),
	}
}

// AddCategory adds a category to the mock repository
func (m *MockCategoryRepository) AddCategory(category *domain.Category) {
	m.Categories[category.ID] = category
}

func (m *MockCategoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	category.ID = uuid.New()
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	m.Categories[category.ID] = category
	return category, nil
}

func (m *MockCategoryRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Category, error) {
	category, ok := m.Categories[id]
	if !ok || category.CompanyID != companyID {
		return nil, domain.ErrCategoryNotFound
	}
	return category, nil
}

func (m *MockCategoryRepository) GetByName(ctx context.Context, companyID uuid.UUID, name string, txType domain.TransactionType) (*domain.Category, error) {
	for _, c := range m.Categories {
		if c.CompanyID == companyID && c.Type == txType && strings.EqualFold(c.Name, name) {
			return c, nil
		}
	}
	return nil, domain.ErrCategoryNotFound
}

func (m *MockCategoryRepository) GetAllByCompany(ctx context.Context, companyID uuid.UUID, txType *domain.TransactionType) ([]*domain.Category, error) {
	var result []*domain.Category
	for _, c := range m.Categories {
		if c.CompanyID != companyID {
			continue
		}
		if txType != nil && c.Type != *txType {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *MockCategoryRepository) Update(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	existing, ok := m.Categories[category.ID]
	if !ok || existing.CompanyID != category.CompanyID {
		return nil, domain.ErrCategoryNotFound
	}
	category.CreatedAt = existing.CreatedAt
	category.UpdatedAt = time.Now()
	m.Categories[category.ID] = category
	return category, nil
}

func (m *MockCategoryRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	category, ok := m.Categories[id]
	if !ok || category.CompanyID != companyID {
		return domain.ErrCategoryNotFound
	}
	if m.InUse[id] {
		return domain.ErrCategoryInUse
	}
	delete(m.Categories, id)
	return nil
}

func (m *MockCategoryRepository) HasTransactions(ctx context.Context, companyID, id uuid.UUID) (bool, error) {
	return m.InUse[id], nil
}

// MockTransactionRepository is a mock implementation of domain.TransactionRepository.
// Failing CreateBatch leaves the store untouched, like the database transaction does.
type MockTransactionRepository struct {
	Transactions map[uuid.UUID]*domain.Transaction
	CreateErr    error
	BatchErr     error
	ListErr      error
	BatchCalls   int
}

func NewMockTransactionRepository() *MockTransactionRepository {
	return &MockTransactionRepository{Transactions: make(map[uuid.UUID]*domain.Transaction)}
}

// AddTransaction adds a transaction to the mock repository
func (m *MockTransactionRepository) AddTransaction(tx *domain.Transaction) {
	if tx.ID == uuid.Nil {
		tx.ID = uuid.New()
	}
	m.Transactions[tx.ID] = tx
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	tx.ID = uuid.New()
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt
	m.Transactions[tx.ID] = tx
	return tx, nil
}

func (m *MockTransactionRepository) CreateBatch(ctx context.Context, txs []*domain.Transaction) ([]*domain.Transaction, error) {
	m.BatchCalls++
	if m.BatchErr != nil {
		return nil, m.BatchErr
	}
	now := time.Now()
	for _, tx := range txs {
		tx.ID = uuid.New()
		tx.CreatedAt = now
		tx.UpdatedAt = now
		m.Transactions[tx.ID] = tx
	}
	return txs, nil
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, companyID, id uuid.UUID) (*domain.Transaction, error) {
	tx, ok := m.Transactions[id]
	if !ok || tx.CompanyID != companyID {
		return nil, domain.ErrTransactionNotFound
	}
	return tx, nil
}

func (m *MockTransactionRepository) matches(tx *domain.Transaction, companyID uuid.UUID, f *domain.TransactionFilters) bool {
	if tx.CompanyID != companyID {
		return false
	}
	if f == nil {
		return true
	}
	if f.StartDate != nil && tx.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && tx.Date.After(*f.EndDate) {
		return false
	}
	if f.Type != nil && tx.Type != *f.Type {
		return false
	}
	if f.ProjectID != nil && (tx.ProjectID == nil || *tx.ProjectID != *f.ProjectID) {
		return false
	}
	if f.CategoryID != nil && tx.CategoryID != *f.CategoryID {
		return false
	}
	return true
}

func (m *MockTransactionRepository) GetByCompany(ctx context.Context, companyID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var all []*domain.Transaction
	for _, tx := range m.Transactions {
		if m.matches(tx, companyID, filters) {
			all = append(all, tx)
		}
	}
	// newest first, like the list query
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Date.Equal(all[j].Date) {
			return all[i].Date.After(all[j].Date)
		}
		return all[i].ID.String() < all[j].ID.String()
	})

	page, pageSize := filters.Page, filters.PageSize
	total := int64(len(all))
	start := int((page - 1) * pageSize)
	if start > len(all) {
		start = len(all)
	}
	end := start + int(pageSize)
	if end > len(all) {
		end = len(all)
	}

	totalPages := int32(total / int64(pageSize))
	if total%int64(pageSize) != 0 {
		totalPages++
	}

	return &domain.PaginatedTransactions{
		Data:       all[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: totalPages,
	}, nil
}

func (m *MockTransactionRepository) GetAllByCompany(ctx context.Context, companyID uuid.UUID) ([]*domain.Transaction, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var result []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.CompanyID == companyID {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *MockTransactionRepository) GetByInstallmentGroup(ctx context.Context, companyID, groupID uuid.UUID) ([]*domain.Transaction, error) {
	var result []*domain.Transaction
	for _, tx := range m.Transactions {
		if tx.CompanyID == companyID && tx.InstallmentGroupID != nil && *tx.InstallmentGroupID == groupID {
			result = append(result, tx)
		}
	}
	sort.Slice(result, func(i, j int) bool { return *result[i].InstallmentNumber < *result[j].InstallmentNumber })
	return result, nil
}

func (m *MockTransactionRepository) CountByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	for _, tx := range m.Transactions {
		if tx.CompanyID == companyID {
			count++
		}
	}
	return count, nil
}

func (m *MockTransactionRepository) Update(ctx context.Context, companyID, id uuid.UUID, data *domain.UpdateTransactionData) (*domain.Transaction, error) {
	tx, ok := m.Transactions[id]
	if !ok || tx.CompanyID != companyID {
		return nil, domain.ErrTransactionNotFound
	}
	tx.Description = data.Description
	tx.Amount = data.Amount
	tx.Date = data.Date
	tx.Type = data.Type
	tx.ProjectID = data.ProjectID
	tx.CategoryID = data.CategoryID
	tx.UpdatedAt = time.Now()
	return tx, nil
}

func (m *MockTransactionRepository) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	tx, ok := m.Transactions[id]
	if !ok || tx.CompanyID != companyID {
		return domain.ErrTransactionNotFound
	}
	delete(m.Transactions, id)
	return nil
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

type PublishedEvent struct {
	CompanyID uuid.UUID
	Event     websocket.Event
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{}
}

func (m *MockEventPublisher) Publish(companyID uuid.UUID, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{CompanyID: companyID, Event: event})
}

// Types returns the published event types in order
func (m *MockEventPublisher) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0, len(m.Events))
	for _, e := range m.Events {
		types = append(types, e.Event.Type)
	}
	return types
}

// MockObjectStorage is an in-memory storage.ObjectStorage
type MockObjectStorage struct {
	Objects   map[string][]byte
	UploadErr error
}

func NewMockObjectStorage() *MockObjectStorage {
	return &MockObjectStorage{Objects: make(map[string][]byte)}
}

func (m *MockObjectStorage) Upload(ctx context.Context, objectPath string, data io.Reader, contentType string, size int64) (string, error) {
	if m.UploadErr != nil {
		return "", m.UploadErr
	}
	buf, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.Objects[objectPath] = buf
	return objectPath, nil
}

func (m *MockObjectStorage) Delete(ctx context.Context, objectPath string) error {
	delete(m.Objects, objectPath)
	return nil
}

func (m *MockObjectStorage) GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error) {
	if _, ok := m.Objects[objectPath]; !ok {
		return "", errors.New("object not found")
	}
	return fmt.Sprintf("https://storage.test/%s?expires=%d", objectPath, int(expiry.Seconds())), nil
}
