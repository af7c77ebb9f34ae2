package collab

import (
	"sort"
	"time"
)

// member is one session's membership in one room. Name and color belong to
// the membership, not the session, because they are chosen at join time.
type member struct {
	sess     *Session
	name     string
	color    string
	joinedAt time.Time
}

// Room is the ephemeral per-form state: who is editing and which fields carry
// an advisory lock. Rooms are only ever touched from the hub loop.
type Room struct {
	formID       string
	members      map[string]*member // by session id
	lockedFields map[string]string  // field path -> session id of the holder
}

func newRoom(formID string) *Room {
	return &Room{
		formID:       formID,
		members:      make(map[string]*member),
		lockedFields: make(map[string]string),
	}
}

// roster returns the current collaborator list, oldest join first.
func (r *Room) roster() []Collaborator {
	collaborators := make([]Collaborator, 0, len(r.members))
	for id, m := range r.members {
		collaborators = append(collaborators, Collaborator{
			UserID:   id,
			Name:     m.name,
			Color:    m.color,
			JoinedAt: m.joinedAt,
		})
	}
	sort.Slice(collaborators, func(i, j int) bool {
		if collaborators[i].JoinedAt.Equal(collaborators[j].JoinedAt) {
			return collaborators[i].UserID < collaborators[j].UserID
		}
		return collaborators[i].JoinedAt.Before(collaborators[j].JoinedAt)
	})
	return collaborators
}

// locksHeldBy returns the fields locked by a session, sorted for stable
// release order.
func (r *Room) locksHeldBy(sessionID string) []string {
	var fields []string
	for field, holder := range r.lockedFields {
		if holder == sessionID {
			fields = append(fields, field)
		}
	}
	sort.Strings(fields)
	return fields
}

// Registry is the process-wide form id → room map. No persistence: a restart
// starts empty and reconnecting clients rebuild it by rejoining.
type Registry struct {
	rooms map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

func (reg *Registry) getOrCreate(formID string) *Room {
	room, ok := reg.rooms[formID]
	if !ok {
		room = newRoom(formID)
		reg.rooms[formID] = room
	}
	return room
}

func (reg *Registry) room(formID string) (*Room, bool) {
	room, ok := reg.rooms[formID]
	return room, ok
}

// roomsWith lists every room a session belongs to, used on disconnect.
func (reg *Registry) roomsWith(sessionID string) []*Room {
	var rooms []*Room
	for _, room := range reg.rooms {
		if _, ok := room.members[sessionID]; ok {
			rooms = append(rooms, room)
		}
	}
	return rooms
}

func (reg *Registry) drop(formID string) {
	delete(reg.rooms, formID)
}
