package model

// Action is the decision proposed for one application
type Action string

const (
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionAssignRoom Action = "assign_room"
)

// Valid reports whether a is one of the known actions
func (a Action) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionAssignRoom:
		return true
	}
	return false
}

// ResolutionReason classifies why a resolution was proposed
type ResolutionReason string

const (
	ReasonHighPriorityBestRoom ResolutionReason = "high_priority_best_room"
	ReasonMediumPriority       ResolutionReason = "medium_priority_manual_assignment"
	ReasonLowPriority          ResolutionReason = "low_priority_reject"
	ReasonManual               ResolutionReason = "manual"
)

// ResolutionSource tells auto-generated and operator-chosen resolutions apart
type ResolutionSource string

const (
	SourceAuto   ResolutionSource = "auto"
	SourceManual ResolutionSource = "manual"
)

// Resolution is the proposed decision for one conflicting application.
// It lives only for the duration of a conflict session.
type Resolution struct {
	ApplicationID int64            `json:"application_id"`
	Action        Action           `json:"action"`
	RoomID        *int64           `json:"room_id,omitempty"`
	Reason        string           `json:"reason"`
	ReasonCode    ResolutionReason `json:"reason_code"`
	Source        ResolutionSource `json:"source"`
}

// Clone returns a deep copy so callers never share the RoomID pointer
func (r Resolution) Clone() Resolution {
	if r.RoomID != nil {
		id := *r.RoomID
		r.RoomID = &id
	}
	return r
}

// CompatibilityReason is the banded explanation of a compatibility score
type CompatibilityReason string

const (
	CompatibilityExcellent CompatibilityReason = "excellent_match"
	CompatibilityGood      CompatibilityReason = "good_match"
	CompatibilityFair      CompatibilityReason = "fair_match"
	CompatibilityPoor      CompatibilityReason = "poor_match"
)

// Compatibility is the scored fit between one application and one room
type Compatibility struct {
	Score      float64             `json:"score"`
	ReasonCode CompatibilityReason `json:"reason_code"`
	ReasonText string              `json:"reason_text"`
}

// RoomMatch pairs a room with its compatibility for a given application
type RoomMatch struct {
	Room          Room          `json:"room"`
	Compatibility Compatibility `json:"compatibility"`
}
