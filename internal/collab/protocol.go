package collab

import (
	"encoding/json"
	"time"
)

// Client → server events.
const (
	EventJoinForm    = "join-form"
	EventLeaveForm   = "leave-form"
	EventFormChange  = "form-change"
	EventFieldUpdate = "field-update"
	EventFieldLock   = "field-lock"
	EventFieldUnlock = "field-unlock"
)

// Server → client events.
const (
	EventUserJoined    = "user-joined"
	EventUserLeft      = "user-left"
	EventCollaborators = "collaborators"
	EventFormData      = "form-data"
	EventFormUpdate    = "form-update"
	EventFieldUpdated  = "field-updated"
	EventFieldLocked   = "field-locked"
	EventFieldUnlocked = "field-unlocked"
	EventError         = "error"
)

// ClientMessage is the envelope for every inbound frame. The payload stays
// raw until the event name tells us which struct to decode into.
type ClientMessage struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// ServerMessage is the envelope for every outbound frame.
type ServerMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type JoinIdentity struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type JoinPayload struct {
	FormID string       `json:"formId"`
	User   JoinIdentity `json:"user"`
}

type LeavePayload struct {
	FormID string `json:"formId"`
}

type FormChangePayload struct {
	FormID string         `json:"formId"`
	Data   map[string]any `json:"data"`
}

type FieldUpdatePayload struct {
	FormID string `json:"formId"`
	Field  string `json:"field"`
	Value  any    `json:"value"`
}

type FieldPayload struct {
	FormID string `json:"formId"`
	Field  string `json:"field"`
}

// Collaborator is one roster entry.
type Collaborator struct {
	UserID   string    `json:"userId"`
	Name     string    `json:"name,omitempty"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joinedAt"`
}

type UserJoinedPayload struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Color  string `json:"color"`
}

type UserLeftPayload struct {
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
}

type FormUpdatePayload struct {
	Data   map[string]any `json:"data"`
	UserID string         `json:"userId"`
}

type FieldUpdatedPayload struct {
	Field  string `json:"field"`
	Value  any    `json:"value"`
	UserID string `json:"userId"`
}

type FieldLockedPayload struct {
	Field  string `json:"field"`
	UserID string `json:"userId"`
}

type FieldUnlockedPayload struct {
	Field string `json:"field"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
