package service

import (
	"context"
	"sync"
	"time"

	"bagportal/internal/models"
	"bagportal/internal/notifications"
	"bagportal/internal/quota"
	"bagportal/internal/repository"
	"bagportal/internal/sectordoc"
)

type bagRequestRepoStub struct {
	createFn                 func(context.Context, *models.BagRequest) error
	getByIDFn                func(context.Context, uint) (*models.BagRequest, error)
	getDetailedFn            func(context.Context, uint) (*models.BagRequest, error)
	listByRequesterFn        func(context.Context, uint) ([]models.BagRequest, error)
	listByStatusFn           func(context.Context, models.BagRequestStatus, int, int) ([]models.BagRequest, error)
	listDetailedByStatusFn   func(context.Context, models.BagRequestStatus) ([]models.BagRequest, error)
	listEntriesForPropertyFn func(context.Context, uint, int) ([]quota.Entry, error)
	listEntriesFn            func(context.Context) ([]quota.Entry, error)
	transitionFn             func(context.Context, uint, uint, repository.DecideFunc) (*models.BagRequest, error)
}

func (s *bagRequestRepoStub) Create(ctx context.Context, req *models.BagRequest) error {
	return s.createFn(ctx, req)
}
func (s *bagRequestRepoStub) GetByID(ctx context.Context, id uint) (*models.BagRequest, error) {
	return s.getByIDFn(ctx, id)
}
func (s *bagRequestRepoStub) GetDetailed(ctx context.Context, id uint) (*models.BagRequest, error) {
	return s.getDetailedFn(ctx, id)
}
func (s *bagRequestRepoStub) ListByRequester(ctx context.Context, requesterID uint) ([]models.BagRequest, error) {
	return s.listByRequesterFn(ctx, requesterID)
}
func (s *bagRequestRepoStub) ListByStatus(ctx context.Context, status models.BagRequestStatus, limit, offset int) ([]models.BagRequest, error) {
	return s.listByStatusFn(ctx, status, limit, offset)
}
func (s *bagRequestRepoStub) ListDetailedByStatus(ctx context.Context, status models.BagRequestStatus) ([]models.BagRequest, error) {
	return s.listDetailedByStatusFn(ctx, status)
}
func (s *bagRequestRepoStub) ListEntriesForProperty(ctx context.Context, propertyID uint, year int) ([]quota.Entry, error) {
	return s.listEntriesForPropertyFn(ctx, propertyID, year)
}
func (s *bagRequestRepoStub) ListEntries(ctx context.Context) ([]quota.Entry, error) {
	return s.listEntriesFn(ctx)
}
func (s *bagRequestRepoStub) Transition(ctx context.Context, id uint, reviewerID uint, decide repository.DecideFunc) (*models.BagRequest, error) {
	return s.transitionFn(ctx, id, reviewerID, decide)
}

// memRequests backs a bagRequestRepoStub with an in-memory table.
type memRequests struct {
	mu     sync.Mutex
	rows   map[uint]*models.BagRequest
	nextID uint
	now    time.Time
	writes int
}

func newMemRequests(rows ...models.BagRequest) *memRequests {
	m := &memRequests{
		rows:   make(map[uint]*models.BagRequest),
		nextID: 100,
		now:    time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
	for i := range rows {
		r := rows[i]
		m.rows[r.ID] = &r
	}
	return m
}

func (m *memRequests) get(id uint) (*models.BagRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, false
	}
	cp := *r
	return &cp, true
}

func (m *memRequests) entries() []quota.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]quota.Entry, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, EntryOf(r))
	}
	return out
}

func (m *memRequests) stub() *bagRequestRepoStub {
	return &bagRequestRepoStub{
		createFn: func(_ context.Context, req *models.BagRequest) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.nextID++
			req.ID = m.nextID
			req.CreatedAt = m.now
			for i := range req.Attachments {
				req.Attachments[i].ID = req.ID*10 + uint(i)
				req.Attachments[i].BagRequestID = req.ID
			}
			cp := *req
			m.rows[req.ID] = &cp
			return nil
		},
		getByIDFn: func(_ context.Context, id uint) (*models.BagRequest, error) {
			if r, ok := m.get(id); ok {
				return r, nil
			}
			return nil, models.NewNotFoundError("BagRequest", id)
		},
		getDetailedFn: func(_ context.Context, id uint) (*models.BagRequest, error) {
			if r, ok := m.get(id); ok {
				return r, nil
			}
			return nil, models.NewNotFoundError("BagRequest", id)
		},
		listByRequesterFn: func(_ context.Context, requesterID uint) ([]models.BagRequest, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			var out []models.BagRequest
			for _, r := range m.rows {
				if r.RequesterID == requesterID {
					out = append(out, *r)
				}
			}
			return out, nil
		},
		listByStatusFn: func(_ context.Context, status models.BagRequestStatus, _, _ int) ([]models.BagRequest, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			var out []models.BagRequest
			for _, r := range m.rows {
				if status == "" || r.Status == status {
					out = append(out, *r)
				}
			}
			return out, nil
		},
		listDetailedByStatusFn: func(_ context.Context, status models.BagRequestStatus) ([]models.BagRequest, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			var out []models.BagRequest
			for _, r := range m.rows {
				if r.Status == status {
					out = append(out, *r)
				}
			}
			return out, nil
		},
		listEntriesForPropertyFn: func(_ context.Context, propertyID uint, year int) ([]quota.Entry, error) {
			var out []quota.Entry
			for _, e := range m.entries() {
				if e.PropertyID == propertyID && quota.Year(e.CreatedAt) == year {
					out = append(out, e)
				}
			}
			return out, nil
		},
		listEntriesFn: func(context.Context) ([]quota.Entry, error) {
			return m.entries(), nil
		},
		transitionFn: func(_ context.Context, id uint, reviewerID uint, decide repository.DecideFunc) (*models.BagRequest, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			r, ok := m.rows[id]
			if !ok {
				return nil, models.NewNotFoundError("BagRequest", id)
			}
			cp := *r
			next, err := decide(&cp)
			if err != nil {
				return nil, err
			}
			decidedAt := m.now
			r.Status = next
			r.ReviewedByID = &reviewerID
			r.DecidedAt = &decidedAt
			m.writes++
			out := *r
			return &out, nil
		},
	}
}

type upsertCall struct {
	ctxErr     error
	sectorID   uint
	sectorName string
	record     sectordoc.Record
}

type exporterStub struct {
	mu      sync.Mutex
	upserts []upsertCall
	revokes []uint
	changed int
}

func (s *exporterStub) Upsert(ctx context.Context, sectorID uint, sectorName string, rec sectordoc.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts = append(s.upserts, upsertCall{ctxErr: ctx.Err(), sectorID: sectorID, sectorName: sectorName, record: rec})
}

func (s *exporterStub) MarkRevoked(_ context.Context, requestID uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revokes = append(s.revokes, requestID)
	return s.changed
}

func (s *exporterStub) calls() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.upserts), len(s.revokes)
}

type allocatorStub struct {
	allocateFn func(context.Context, quota.Entry) (quota.Allocation, error)
}

func (s *allocatorStub) Allocate(ctx context.Context, target quota.Entry) (quota.Allocation, error) {
	return s.allocateFn(ctx, target)
}

type publisherStub struct {
	mu     sync.Mutex
	events []notifications.DecisionEvent
	err    error
}

func (s *publisherStub) PublishDecision(_ context.Context, ev notifications.DecisionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
	return s.err
}

type propertyRepoStub struct {
	getByIDFn         func(context.Context, uint) (*models.Property, error)
	listByRequesterFn func(context.Context, uint) ([]models.Property, error)
	findOrCreateFn    func(context.Context, *models.Property) (*models.Property, error)
}

func (s *propertyRepoStub) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	return s.getByIDFn(ctx, id)
}
func (s *propertyRepoStub) ListByRequester(ctx context.Context, requesterID uint) ([]models.Property, error) {
	return s.listByRequesterFn(ctx, requesterID)
}
func (s *propertyRepoStub) FindOrCreate(ctx context.Context, p *models.Property) (*models.Property, error) {
	return s.findOrCreateFn(ctx, p)
}

type requesterRepoStub struct {
	getByIDFn func(context.Context, uint) (*models.Requester, error)
	createFn  func(context.Context, *models.Requester) error
	updateFn  func(context.Context, *models.Requester) error
}

func (s *requesterRepoStub) GetByID(ctx context.Context, id uint) (*models.Requester, error) {
	return s.getByIDFn(ctx, id)
}
func (s *requesterRepoStub) Create(ctx context.Context, r *models.Requester) error {
	return s.createFn(ctx, r)
}
func (s *requesterRepoStub) Update(ctx context.Context, r *models.Requester) error {
	return s.updateFn(ctx, r)
}

type sectorRepoStub struct {
	listFn           func(context.Context) ([]models.Sector, error)
	getByIDFn        func(context.Context, uint) (*models.Sector, error)
	ensureDefaultsFn func(context.Context) error
}

func (s *sectorRepoStub) List(ctx context.Context) ([]models.Sector, error) {
	return s.listFn(ctx)
}
func (s *sectorRepoStub) GetByID(ctx context.Context, id uint) (*models.Sector, error) {
	return s.getByIDFn(ctx, id)
}
func (s *sectorRepoStub) EnsureDefaults(ctx context.Context) error {
	return s.ensureDefaultsFn(ctx)
}

type attachmentRepoStub struct {
	getByIDFn func(context.Context, uint) (*models.Attachment, error)
	ownerOfFn func(context.Context, uint) (uint, error)
}

func (s *attachmentRepoStub) GetByID(ctx context.Context, id uint) (*models.Attachment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *attachmentRepoStub) OwnerOf(ctx context.Context, id uint) (uint, error) {
	return s.ownerOfFn(ctx, id)
}

func detailedRequest(id uint, status models.BagRequestStatus, bags int, created time.Time) models.BagRequest {
	return models.BagRequest{
		ID:          id,
		PropertyID:  7,
		RequesterID: 3,
		Status:      status,
		BagCount:    bags,
		CreatedAt:   created,
		Requester:   &models.Requester{ID: 3, FirstName: "Anna", LastName: "Nowak", Email: "anna@example.pl", Phone: "+48 600 100 200", Address: "ul. Tumska 5"},
		Property: &models.Property{
			ID: 7, RequesterID: 3, SectorID: 4, Kind: models.PropertyKindHouse,
			PostalCode: "09-400", Street: "Tumska", Building: "5",
			Sector: &models.Sector{ID: 4, Name: "Stare Miasto"},
		},
	}
}
