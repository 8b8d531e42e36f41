package model

import "time"

// ConflictGroup lists competing pending applications for one property
type ConflictGroup struct {
	PropertyID    int64         `json:"property_id"`
	Applications  []Application `json:"applications"`
	Rooms         []Room        `json:"rooms"`
	VacantRooms   int           `json:"vacant_rooms"`
	SharedRoomIDs []int64       `json:"shared_room_ids,omitempty"`
	InConflict    bool          `json:"in_conflict"`
}

// CreateSessionRequest opens a conflict resolution session for a property
type CreateSessionRequest struct {
	Mode           string  `json:"mode,omitempty"` // auto (default) or manual
	ApplicationIDs []int64 `json:"application_ids,omitempty"`
}

// SetModeRequest switches a session between auto and manual mode
type SetModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// ManualActionRequest overrides the resolution of one application
type ManualActionRequest struct {
	Action string `json:"action" binding:"required"` // approve, reject, assign_room
	RoomID *int64 `json:"room_id,omitempty"`
}

// SessionResponse is the externally visible state of a conflict session
type SessionResponse struct {
	ID           string        `json:"id"`
	PropertyID   int64         `json:"property_id"`
	Mode         string        `json:"mode"`
	State        string        `json:"state"`
	Submitting   bool          `json:"submitting"`
	Applications []Application `json:"applications"`
	Rooms        []Room        `json:"rooms"`
	Resolutions  []Resolution  `json:"resolutions"`
	LastError    string        `json:"last_error,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// SubmitFailure describes one resolution the Applications API refused
type SubmitFailure struct {
	ApplicationID int64  `json:"application_id"`
	Action        Action `json:"action"`
	Message       string `json:"message"`
}

// SubmitResponse represents the result of submitting a session
type SubmitResponse struct {
	Success  bool            `json:"success"`
	Applied  int             `json:"applied"`
	Failed   int             `json:"failed"`
	Failures []SubmitFailure `json:"failures,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// RecommendationResponse lists ranked rooms for a single application
type RecommendationResponse struct {
	ApplicationID   int64       `json:"application_id"`
	MinScore        float64     `json:"min_score"`
	Matches         []RoomMatch `json:"matches"`
	RoomsConsidered int         `json:"rooms_considered"`
}

// AssignRoomRequest commits a room for a single application
type AssignRoomRequest struct {
	RoomID int64 `json:"room_id" binding:"required"`
}

// CompatibilityRequest scores an ad hoc application/room pair
type CompatibilityRequest struct {
	Application Application `json:"application"`
	Room        Room        `json:"room"`
}
