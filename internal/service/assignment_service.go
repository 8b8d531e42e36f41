package service

import (
	"context"
	"fmt"

	"tink/internal/logger"
	"tink/internal/model"
)

// AssignmentService drives the single application room assignment flow
type AssignmentService struct {
	source       DataSource
	recommender  *Recommender
	api          ApplicationsAPI
	minScore     float64
	defaultLimit int
	logger       logger.Logger
}

// NewAssignmentService creates an assignment service
func NewAssignmentService(source DataSource, recommender *Recommender, api ApplicationsAPI,
	minScore float64, defaultLimit int, log logger.Logger) *AssignmentService {
	return &AssignmentService{
		source:       source,
		recommender:  recommender,
		api:          api,
		minScore:     minScore,
		defaultLimit: defaultLimit,
		logger:       log,
	}
}

// RecommendationOptions overrides the configured defaults for one request
type RecommendationOptions struct {
	MinScore *float64
	Limit    *int
	Filter   RoomFilter
}

// Recommend ranks the rooms of the application's property
func (s *AssignmentService) Recommend(ctx context.Context, applicationID int64, opts RecommendationOptions) (*model.RecommendationResponse, error) {
	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	rooms, err := s.source.ListRooms(ctx, app.PropertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rooms: %w", err)
	}

	minScore := s.minScore
	if opts.MinScore != nil {
		minScore = *opts.MinScore
	}
	limit := s.defaultLimit
	if opts.Limit != nil {
		limit = *opts.Limit
	}

	matches := s.recommender.RecommendFiltered(*app, rooms, minScore, opts.Filter)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	return &model.RecommendationResponse{
		ApplicationID:   app.ID,
		MinScore:        minScore,
		Matches:         matches,
		RoomsConsidered: len(model.RoomsForProperty(rooms, app.PropertyID)),
	}, nil
}

// AssignRoom commits a room for one application through the Applications API
func (s *AssignmentService) AssignRoom(ctx context.Context, applicationID, roomID int64) error {
	app, err := s.loadApplication(ctx, applicationID)
	if err != nil {
		return err
	}

	rooms, err := s.source.ListRooms(ctx, app.PropertyID)
	if err != nil {
		return fmt.Errorf("failed to load rooms: %w", err)
	}
	found := false
	for _, room := range rooms {
		if room.ID == roomID && room.PropertyID == app.PropertyID {
			found = true
			break
		}
	}
	if !found {
		return newValidationError("room_id", "room %d does not belong to property %d", roomID, app.PropertyID)
	}

	if err := s.api.ApplyResolution(ctx, app.ID, model.ActionAssignRoom, &roomID); err != nil {
		return err
	}

	if inv, ok := s.source.(invalidator); ok {
		if err := inv.Invalidate(ctx, app.PropertyID); err != nil {
			s.logger.WithError(err).Warn("Failed to invalidate snapshot cache", map[string]interface{}{
				"property_id": app.PropertyID,
			})
		}
	}

	s.logger.Info("Assigned room", map[string]interface{}{
		"application_id": app.ID,
		"room_id":        roomID,
	})
	return nil
}

func (s *AssignmentService) loadApplication(ctx context.Context, id int64) (*model.Application, error) {
	app, err := s.source.GetApplication(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}
	return app, nil
}
