package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tink/internal/logger"
	"tink/internal/metrics"
	"tink/internal/model"
)

// Mode selects how resolutions are produced
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

// ParseMode validates a mode received from a client
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAuto, ModeManual:
		return Mode(s), nil
	case "":
		return ModeAuto, nil
	}
	return "", newValidationError("mode", "unknown mode %q", s)
}

// SessionState is the lifecycle position of a session
type SessionState string

const (
	StateIdle          SessionState = "idle"
	StateAutoGenerated SessionState = "auto_generated"
	StateSubmitted     SessionState = "submitted"
)

// ApplicationsAPI applies one resolution to the backend that owns applications
type ApplicationsAPI interface {
	ApplyResolution(ctx context.Context, applicationID int64, action model.Action, roomID *int64) error
}

// Session holds the working set of resolutions for one conflict set.
// All methods are safe for concurrent use.
type Session struct {
	mu sync.Mutex

	id           string
	propertyID   int64
	mode         Mode
	state        SessionState
	applications []model.Application
	rooms        []model.Room
	resolutions  map[int64]model.Resolution
	applied      map[int64]model.Resolution
	submitting   bool
	lastError    string
	createdAt    time.Time
	updatedAt    time.Time

	resolver *Resolver
	api      ApplicationsAPI
	logger   logger.Logger
	now      func() time.Time
}

// NewSession creates an idle session over a snapshot of applications and rooms
func NewSession(id string, propertyID int64, apps []model.Application, rooms []model.Room,
	resolver *Resolver, api ApplicationsAPI, log logger.Logger) *Session {
	s := &Session{
		id:           id,
		propertyID:   propertyID,
		mode:         ModeAuto,
		state:        StateIdle,
		applications: append([]model.Application(nil), apps...),
		rooms:        append([]model.Room(nil), rooms...),
		resolutions:  make(map[int64]model.Resolution),
		applied:      make(map[int64]model.Resolution),
		resolver:     resolver,
		api:          api,
		logger:       log.WithFields(map[string]interface{}{"session_id": id, "property_id": propertyID}),
		now:          time.Now,
	}
	s.createdAt = s.now()
	s.updatedAt = s.createdAt
	return s
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// GenerateRecommendations replaces the working set with the resolver's
// proposals, manual edits included, and switches the session to auto mode
func (s *Session) GenerateRecommendations() ([]model.Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkEditableLocked(); err != nil {
		return nil, err
	}

	proposed := s.resolver.Resolve(s.applications, s.rooms)
	s.resolutions = make(map[int64]model.Resolution, len(proposed))
	for _, r := range proposed {
		s.resolutions[r.ApplicationID] = r
		metrics.ResolutionsGenerated.WithLabelValues(string(r.Action)).Inc()
	}
	s.mode = ModeAuto
	s.state = StateAutoGenerated
	s.lastError = ""
	s.touchLocked()

	s.logger.Info("Generated resolutions", map[string]interface{}{
		"count": len(proposed),
	})
	return s.orderedLocked(), nil
}

// SetMode switches between auto and manual without touching resolutions
func (s *Session) SetMode(mode Mode) error {
	if mode != ModeAuto && mode != ModeManual {
		return newValidationError("mode", "unknown mode %q", mode)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitted {
		return ErrSessionSubmitted
	}
	s.mode = mode
	s.touchLocked()
	return nil
}

// SetManualAction upserts the resolution of one application. Every other
// resolution is left untouched.
func (s *Session) SetManualAction(applicationID int64, action model.Action, roomID *int64) (model.Resolution, error) {
	if !action.Valid() {
		return model.Resolution{}, newValidationError("action", "unknown action %q", action)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkEditableLocked(); err != nil {
		return model.Resolution{}, err
	}

	app, ok := s.applicationLocked(applicationID)
	if !ok {
		return model.Resolution{}, newValidationError("application_id", "application %d is not part of this conflict", applicationID)
	}

	if action == model.ActionAssignRoom {
		if roomID == nil {
			return model.Resolution{}, newValidationError("room_id", "a room is required to assign")
		}
		if !s.hasRoomLocked(app.PropertyID, *roomID) {
			return model.Resolution{}, newValidationError("room_id", "room %d does not belong to property %d", *roomID, app.PropertyID)
		}
		id := *roomID
		roomID = &id
	} else {
		roomID = nil
	}

	res, exists := s.resolutions[applicationID]
	if !exists {
		res = model.Resolution{
			ApplicationID: applicationID,
			Reason:        fmt.Sprintf("Manual %s", action),
			ReasonCode:    model.ReasonManual,
		}
	}
	res.Action = action
	res.RoomID = roomID
	res.Source = model.SourceManual
	s.resolutions[applicationID] = res
	s.touchLocked()

	return res.Clone(), nil
}

// Resolutions returns the working set in application order
func (s *Session) Resolutions() []model.Resolution {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orderedLocked()
}

// Submit applies every resolution through the Applications API. Network calls
// run outside the session lock; the submitting flag rejects concurrent calls.
func (s *Session) Submit(ctx context.Context) (*model.SubmitResponse, error) {
	s.mu.Lock()
	switch {
	case s.state == StateSubmitted:
		s.mu.Unlock()
		return nil, ErrSessionSubmitted
	case s.submitting:
		s.mu.Unlock()
		return nil, ErrSubmitInProgress
	case len(s.resolutions) == 0:
		s.mu.Unlock()
		return nil, ErrNoResolutions
	}
	pending := s.orderedLocked()
	alreadyApplied := make(map[int64]model.Resolution, len(s.applied))
	for id, r := range s.applied {
		alreadyApplied[id] = r
	}
	s.submitting = true
	s.mu.Unlock()

	start := time.Now()
	resp := &model.SubmitResponse{}
	succeeded := make([]model.Resolution, 0, len(pending))

	for _, res := range pending {
		if prev, ok := alreadyApplied[res.ApplicationID]; ok && sameDecision(prev, res) {
			resp.Applied++
			metrics.ResolutionsSubmitted.WithLabelValues(string(res.Action), metrics.OutcomeSkipped).Inc()
			continue
		}

		err := s.api.ApplyResolution(ctx, res.ApplicationID, res.Action, res.RoomID)
		if err != nil {
			resp.Failures = append(resp.Failures, model.SubmitFailure{
				ApplicationID: res.ApplicationID,
				Action:        res.Action,
				Message:       err.Error(),
			})
			metrics.ResolutionsSubmitted.WithLabelValues(string(res.Action), metrics.OutcomeFailed).Inc()
			s.logger.WithError(err).Warn("Failed to apply resolution", map[string]interface{}{
				"application_id": res.ApplicationID,
				"action":         res.Action,
			})
			continue
		}

		resp.Applied++
		succeeded = append(succeeded, res)
		metrics.ResolutionsSubmitted.WithLabelValues(string(res.Action), metrics.OutcomeApplied).Inc()
	}
	metrics.SubmitDuration.Observe(time.Since(start).Seconds())
	resp.Failed = len(resp.Failures)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.submitting = false
	for _, res := range succeeded {
		s.applied[res.ApplicationID] = res
	}
	s.touchLocked()

	if resp.Failed > 0 {
		submitErr := &SubmitError{Applied: resp.Applied, Failures: resp.Failures}
		s.lastError = submitErr.Error()
		resp.Message = fmt.Sprintf("%d of %d resolutions failed", resp.Failed, len(pending))
		return resp, submitErr
	}

	s.state = StateSubmitted
	s.lastError = ""
	resp.Success = true
	resp.Message = fmt.Sprintf("Applied %d resolutions", resp.Applied)

	s.logger.Info("Submitted resolutions", map[string]interface{}{
		"applied":  resp.Applied,
		"duration": time.Since(start).String(),
	})
	return resp, nil
}

// View returns a copy of the session suitable for rendering
func (s *Session) View() model.SessionResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	return model.SessionResponse{
		ID:           s.id,
		PropertyID:   s.propertyID,
		Mode:         string(s.mode),
		State:        string(s.state),
		Submitting:   s.submitting,
		Applications: append([]model.Application(nil), s.applications...),
		Rooms:        append([]model.Room(nil), s.rooms...),
		Resolutions:  s.orderedLocked(),
		LastError:    s.lastError,
		CreatedAt:    s.createdAt,
		UpdatedAt:    s.updatedAt,
	}
}

// idleSince reports when the session last changed, and whether it may be
// expired right now
func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt, !s.submitting
}

func (s *Session) checkEditableLocked() error {
	if s.state == StateSubmitted {
		return ErrSessionSubmitted
	}
	if s.submitting {
		return ErrSubmitInProgress
	}
	return nil
}

func (s *Session) orderedLocked() []model.Resolution {
	out := make([]model.Resolution, 0, len(s.resolutions))
	for _, app := range s.applications {
		if r, ok := s.resolutions[app.ID]; ok {
			out = append(out, r.Clone())
		}
	}
	return out
}

func (s *Session) applicationLocked(id int64) (model.Application, bool) {
	for _, app := range s.applications {
		if app.ID == id {
			return app, true
		}
	}
	return model.Application{}, false
}

func (s *Session) hasRoomLocked(propertyID, roomID int64) bool {
	for _, room := range s.rooms {
		if room.ID == roomID && room.PropertyID == propertyID {
			return true
		}
	}
	return false
}

func (s *Session) touchLocked() {
	s.updatedAt = s.now()
}

func sameDecision(a, b model.Resolution) bool {
	if a.Action != b.Action {
		return false
	}
	if a.RoomID == nil || b.RoomID == nil {
		return a.RoomID == nil && b.RoomID == nil
	}
	return *a.RoomID == *b.RoomID
}
