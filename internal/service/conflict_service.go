package service

import (
	"context"
	"fmt"

	"tink/internal/logger"
	"tink/internal/model"
)

// ApplicationSource reads applications from the system of record
type ApplicationSource interface {
	ListPendingApplications(ctx context.Context, propertyID int64) ([]model.Application, error)
	ListAllPendingApplications(ctx context.Context) ([]model.Application, error)
	GetApplication(ctx context.Context, id int64) (*model.Application, error)
}

// RoomSource reads rooms
type RoomSource interface {
	ListRooms(ctx context.Context, propertyID int64) ([]model.Room, error)
	ListRoomsForProperties(ctx context.Context, propertyIDs []int64) ([]model.Room, error)
}

// DataSource is the read side consumed by the services
type DataSource interface {
	ApplicationSource
	RoomSource
}

// invalidator is implemented by caching data sources
type invalidator interface {
	Invalidate(ctx context.Context, propertyID int64) error
}

// ConflictService loads conflict sets and opens resolution sessions over them
type ConflictService struct {
	source   DataSource
	sessions *SessionManager
	logger   logger.Logger
}

// NewConflictService creates a conflict service
func NewConflictService(source DataSource, sessions *SessionManager, log logger.Logger) *ConflictService {
	return &ConflictService{
		source:   source,
		sessions: sessions,
		logger:   log,
	}
}

// Conflicts returns the competing pending applications of a property
func (s *ConflictService) Conflicts(ctx context.Context, propertyID int64) (*model.ConflictGroup, error) {
	apps, rooms, err := s.snapshot(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	group := ConflictForProperty(propertyID, apps, rooms)
	return &group, nil
}

// AllConflicts scans every property with pending applications and returns
// the groups that are in conflict
func (s *ConflictService) AllConflicts(ctx context.Context) ([]model.ConflictGroup, error) {
	apps, err := s.source.ListAllPendingApplications(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load applications: %w", err)
	}

	propertyIDs := make([]int64, 0)
	seen := make(map[int64]bool)
	for _, app := range apps {
		if !seen[app.PropertyID] {
			seen[app.PropertyID] = true
			propertyIDs = append(propertyIDs, app.PropertyID)
		}
	}

	rooms, err := s.source.ListRoomsForProperties(ctx, propertyIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	conflicts := make([]model.ConflictGroup, 0)
	for _, group := range DetectConflicts(apps, rooms) {
		if group.InConflict {
			conflicts = append(conflicts, group)
		}
	}
	return conflicts, nil
}

// OpenSession snapshots the property's pending applications and rooms into a
// new session. applicationIDs narrows the conflict set when non-empty.
func (s *ConflictService) OpenSession(ctx context.Context, propertyID int64, req model.CreateSessionRequest) (*Session, error) {
	mode, err := ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}

	apps, rooms, err := s.snapshot(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	if len(req.ApplicationIDs) > 0 {
		apps, err = selectApplications(apps, req.ApplicationIDs)
		if err != nil {
			return nil, err
		}
	}

	return s.sessions.Create(propertyID, apps, rooms, mode)
}

// Submit submits a session and drops cached snapshots of its property once
// the Applications API accepted at least one change
func (s *ConflictService) Submit(ctx context.Context, sessionID string) (*model.SubmitResponse, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	resp, submitErr := sess.Submit(ctx)
	if resp != nil && resp.Applied > 0 {
		if inv, ok := s.source.(invalidator); ok {
			if err := inv.Invalidate(ctx, sess.propertyID); err != nil {
				s.logger.WithError(err).Warn("Failed to invalidate snapshot cache", map[string]interface{}{
					"property_id": sess.propertyID,
				})
			}
		}
	}
	return resp, submitErr
}

func (s *ConflictService) snapshot(ctx context.Context, propertyID int64) ([]model.Application, []model.Room, error) {
	apps, err := s.source.ListPendingApplications(ctx, propertyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load applications: %w", err)
	}
	rooms, err := s.source.ListRooms(ctx, propertyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load rooms: %w", err)
	}
	return apps, rooms, nil
}

func selectApplications(apps []model.Application, ids []int64) ([]model.Application, error) {
	byID := make(map[int64]model.Application, len(apps))
	for _, app := range apps {
		byID[app.ID] = app
	}

	seen := make(map[int64]bool, len(ids))
	out := make([]model.Application, 0, len(ids))
	for _, id := range ids {
		app, ok := byID[id]
		if !ok {
			return nil, newValidationError("application_ids", "application %d is not pending for this property", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, app)
	}
	return out, nil
}
