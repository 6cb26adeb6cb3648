package service

import (
	"context"
	"sync"

	"orderdesk/internal/models"
	"orderdesk/internal/queue"
	"orderdesk/internal/repository"
)

// MockOrderRepository mocks OrderRepository
type MockOrderRepository struct {
	GetByIDFunc        func(ctx context.Context, id string) (*models.Order, error)
	UpsertFunc         func(ctx context.Context, order *models.Order) error
	UpdateStatusFunc   func(ctx context.Context, id string, status models.OrderStatus) (string, error)
	UpdateDetailsFunc  func(ctx context.Context, id string, details repository.OrderDetails) error
	ListFunc           func(ctx context.Context, filters repository.OrderFilters) ([]*models.Order, error)
	ListForExportFunc  func(ctx context.Context, filters repository.ExportFilters) ([]*models.Order, error)
	ListByPhoneFunc    func(ctx context.Context, phone string) ([]*models.Order, error)
	DeleteByIDsFunc    func(ctx context.Context, ids []string) (int64, error)
	DeleteByStatusFunc func(ctx context.Context, status models.OrderStatus) (int64, error)
	DailySummaryFunc   func(ctx context.Context) ([]*models.DailySummary, error)

	Calls map[string]int // Track method calls
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{Calls: make(map[string]int)}
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	m.Calls["GetByID"]++
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *MockOrderRepository) Upsert(ctx context.Context, order *models.Order) error {
	m.Calls["Upsert"]++
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, order)
	}
	return nil
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) (string, error) {
	m.Calls["UpdateStatus"]++
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return "", nil
}

func (m *MockOrderRepository) UpdateDetails(ctx context.Context, id string, details repository.OrderDetails) error {
	m.Calls["UpdateDetails"]++
	if m.UpdateDetailsFunc != nil {
		return m.UpdateDetailsFunc(ctx, id, details)
	}
	return nil
}

func (m *MockOrderRepository) List(ctx context.Context, filters repository.OrderFilters) ([]*models.Order, error) {
	m.Calls["List"]++
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filters)
	}
	return []*models.Order{}, nil
}

func (m *MockOrderRepository) ListForExport(ctx context.Context, filters repository.ExportFilters) ([]*models.Order, error) {
	m.Calls["ListForExport"]++
	if m.ListForExportFunc != nil {
		return m.ListForExportFunc(ctx, filters)
	}
	return []*models.Order{}, nil
}

func (m *MockOrderRepository) ListByPhone(ctx context.Context, phone string) ([]*models.Order, error) {
	m.Calls["ListByPhone"]++
	if m.ListByPhoneFunc != nil {
		return m.ListByPhoneFunc(ctx, phone)
	}
	return []*models.Order{}, nil
}

func (m *MockOrderRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	m.Calls["DeleteByIDs"]++
	if m.DeleteByIDsFunc != nil {
		return m.DeleteByIDsFunc(ctx, ids)
	}
	return int64(len(ids)), nil
}

func (m *MockOrderRepository) DeleteByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	m.Calls["DeleteByStatus"]++
	if m.DeleteByStatusFunc != nil {
		return m.DeleteByStatusFunc(ctx, status)
	}
	return 0, nil
}

func (m *MockOrderRepository) DailySummary(ctx context.Context) ([]*models.DailySummary, error) {
	m.Calls["DailySummary"]++
	if m.DailySummaryFunc != nil {
		return m.DailySummaryFunc(ctx)
	}
	return []*models.DailySummary{}, nil
}

// MockCustomerRepository mocks CustomerRepository
type MockCustomerRepository struct {
	GetByPhoneFunc           func(ctx context.Context, phone string) (*models.Customer, error)
	CreateFunc               func(ctx context.Context, customer *models.Customer) error
	UpdateStatsFunc          func(ctx context.Context, phone string, stats *models.CustomerStats) error
	GetSummariesByPhonesFunc func(ctx context.Context, phones []string) (map[string]*models.CustomerSummary, error)
	ListFunc                 func(ctx context.Context, filters repository.CustomerFilters) ([]*models.Customer, error)
	OverviewFunc             func(ctx context.Context) (*models.CustomerOverview, error)
	AppendNoteFunc           func(ctx context.Context, phone, entry string) error

	Calls map[string]int // Track method calls
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{Calls: make(map[string]int)}
}

func (m *MockCustomerRepository) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	m.Calls["GetByPhone"]++
	if m.GetByPhoneFunc != nil {
		return m.GetByPhoneFunc(ctx, phone)
	}
	return nil, repository.ErrNotFound
}

func (m *MockCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	m.Calls["Create"]++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, customer)
	}
	return nil
}

func (m *MockCustomerRepository) UpdateStats(ctx context.Context, phone string, stats *models.CustomerStats) error {
	m.Calls["UpdateStats"]++
	if m.UpdateStatsFunc != nil {
		return m.UpdateStatsFunc(ctx, phone, stats)
	}
	return nil
}

func (m *MockCustomerRepository) GetSummariesByPhones(ctx context.Context, phones []string) (map[string]*models.CustomerSummary, error) {
	m.Calls["GetSummariesByPhones"]++
	if m.GetSummariesByPhonesFunc != nil {
		return m.GetSummariesByPhonesFunc(ctx, phones)
	}
	return map[string]*models.CustomerSummary{}, nil
}

func (m *MockCustomerRepository) List(ctx context.Context, filters repository.CustomerFilters) ([]*models.Customer, error) {
	m.Calls["List"]++
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filters)
	}
	return []*models.Customer{}, nil
}

func (m *MockCustomerRepository) Overview(ctx context.Context) (*models.CustomerOverview, error) {
	m.Calls["Overview"]++
	if m.OverviewFunc != nil {
		return m.OverviewFunc(ctx)
	}
	return &models.CustomerOverview{}, nil
}

func (m *MockCustomerRepository) AppendNote(ctx context.Context, phone, entry string) error {
	m.Calls["AppendNote"]++
	if m.AppendNoteFunc != nil {
		return m.AppendNoteFunc(ctx, phone, entry)
	}
	return nil
}

// recordingNotifier captures emitted events
type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(ctx context.Context, event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

// memoryOrderStore is an OrderRepository backed by a map, used to check
// write-then-read behaviour
type memoryOrderStore struct {
	*MockOrderRepository
	rows map[string]models.Order
}

func newMemoryOrderStore() *memoryOrderStore {
	s := &memoryOrderStore{MockOrderRepository: NewMockOrderRepository(), rows: map[string]models.Order{}}
	s.GetByIDFunc = func(ctx context.Context, id string) (*models.Order, error) {
		row, ok := s.rows[id]
		if !ok {
			return nil, repository.ErrNotFound
		}
		return &row, nil
	}
	s.UpsertFunc = func(ctx context.Context, order *models.Order) error {
		s.rows[order.ID] = *order
		return nil
	}
	return s
}

type fakePublisher struct {
	jobs    []queue.RecomputeJob
	ctxErrs []error
	err     error
}

func (p *fakePublisher) PublishRecompute(ctx context.Context, job queue.RecomputeJob) error {
	p.ctxErrs = append(p.ctxErrs, ctx.Err())
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, job)
	return nil
}

type fakeRecomputer struct {
	phones  []string
	ctxErrs []error
	err     error
}

func (r *fakeRecomputer) Recompute(ctx context.Context, phone string) error {
	r.phones = append(r.phones, phone)
	r.ctxErrs = append(r.ctxErrs, ctx.Err())
	return r.err
}
