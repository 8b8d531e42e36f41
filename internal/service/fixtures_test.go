package service

import (
	"context"
	"sync"

	"tink/internal/logger"
	"tink/internal/model"

	"github.com/shopspring/decimal"
)

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func int64Ptr(v int64) *int64 {
	return &v
}

// exampleApplications are two tenants competing for rooms of property 1
func exampleApplications() []model.Application {
	return []model.Application{
		{ID: 1, TenantName: "Ana Lima", PropertyID: 1, RentBudget: dec("1000"), PriorityScore: 90, Status: model.ApplicationStatusPending},
		{ID: 2, TenantName: "Ben Ortiz", PropertyID: 1, RentBudget: dec("1200"), PriorityScore: 55, Status: model.ApplicationStatusPending},
	}
}

func exampleRooms() []model.Room {
	return []model.Room{
		{ID: 10, PropertyID: 1, Name: "Room A", MonthlyRent: dec("950"), IsVacant: true},
		{ID: 11, PropertyID: 1, Name: "Room B", MonthlyRent: dec("1300"), IsVacant: true},
	}
}

func newTestResolver() *Resolver {
	return NewResolver(NewScorer(DefaultWeights()), DefaultThresholds())
}

type apiCall struct {
	ApplicationID int64
	Action        model.Action
	RoomID        *int64
}

// fakeAPI records calls and fails the configured applications
type fakeAPI struct {
	mu       sync.Mutex
	calls    []apiCall
	failures map[int64]error
	block    chan struct{}
	started  chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{failures: make(map[int64]error)}
}

func (f *fakeAPI) ApplyResolution(ctx context.Context, applicationID int64, action model.Action, roomID *int64) error {
	if f.started != nil {
		select {
		case f.started <- struct{}{}:
		default:
		}
	}
	if f.block != nil {
		<-f.block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, apiCall{ApplicationID: applicationID, Action: action, RoomID: roomID})
	return f.failures[applicationID]
}

func (f *fakeAPI) setFailure(applicationID int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failures, applicationID)
		return
	}
	f.failures[applicationID] = err
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) callsFor(applicationID int64) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.ApplicationID == applicationID {
			out = append(out, c)
		}
	}
	return out
}

// fakeSource serves fixed snapshots
type fakeSource struct {
	apps        []model.Application
	rooms       []model.Room
	err         error
	invalidated []int64
}

func (f *fakeSource) ListPendingApplications(ctx context.Context, propertyID int64) ([]model.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Application, 0)
	for _, app := range f.apps {
		if app.PropertyID == propertyID && app.IsPending() {
			out = append(out, app)
		}
	}
	return out, nil
}

func (f *fakeSource) ListAllPendingApplications(ctx context.Context) ([]model.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Application, 0)
	for _, app := range f.apps {
		if app.IsPending() {
			out = append(out, app)
		}
	}
	return out, nil
}

func (f *fakeSource) GetApplication(ctx context.Context, id int64) (*model.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, app := range f.apps {
		if app.ID == id {
			a := app
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeSource) ListRooms(ctx context.Context, propertyID int64) ([]model.Room, error) {
	if f.err != nil {
		return nil, f.err
	}
	return model.RoomsForProperty(f.rooms, propertyID), nil
}

func (f *fakeSource) ListRoomsForProperties(ctx context.Context, propertyIDs []int64) ([]model.Room, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]model.Room, 0)
	for _, id := range propertyIDs {
		out = append(out, model.RoomsForProperty(f.rooms, id)...)
	}
	return out, nil
}

func (f *fakeSource) Invalidate(ctx context.Context, propertyID int64) error {
	f.invalidated = append(f.invalidated, propertyID)
	return nil
}

func newTestSession(api ApplicationsAPI) *Session {
	return NewSession("test-session", 1, exampleApplications(), exampleRooms(),
		newTestResolver(), api, logger.NewNoOpLogger())
}
