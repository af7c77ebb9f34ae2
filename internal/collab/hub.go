package collab

import (
	"context"
	"log"
	"time"
)

// SnapshotSource provides the authoritative payload sent to a joining
// session. A nil document (no error) means the form does not exist yet and no
// snapshot is sent.
type SnapshotSource interface {
	FormData(ctx context.Context, formID string) (map[string]any, error)
}

type cmdKind int

const (
	cmdJoin cmdKind = iota
	cmdLeave
	cmdDisconnect
	cmdFormChange
	cmdFieldUpdate
	cmdFieldLock
	cmdFieldUnlock
)

type command struct {
	kind   cmdKind
	sess   *Session
	formID string
	name   string
	color  string
	data   map[string]any
	field  string
	value  any
}

// Hub owns the room registry and runs the single event loop every room
// mutation and fan-out goes through. Within a room, delivery order equals the
// order commands arrive here. Snapshot reads and persistence writes are the
// only work that leaves the loop.
type Hub struct {
	registry *Registry
	store    SnapshotSource
	bridge   *Bridge
	commands chan command
}

func NewHub(store SnapshotSource, bridge *Bridge) *Hub {
	return &Hub{
		registry: NewRegistry(),
		store:    store,
		bridge:   bridge,
		commands: make(chan command, 256),
	}
}

// NewSession creates a session that is not yet in any room.
func (h *Hub) NewSession() *Session {
	return newSession()
}

// Run processes commands until the context is cancelled. Start it exactly
// once.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case cmd := <-h.commands:
			h.handle(cmd)
		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) Join(s *Session, formID, name, color string) {
	h.commands <- command{kind: cmdJoin, sess: s, formID: formID, name: name, color: color}
}

func (h *Hub) Leave(s *Session, formID string) {
	h.commands <- command{kind: cmdLeave, sess: s, formID: formID}
}

// Disconnect removes the session from every room it joined and ends it.
func (h *Hub) Disconnect(s *Session) {
	h.commands <- command{kind: cmdDisconnect, sess: s}
}

func (h *Hub) FormChange(s *Session, formID string, data map[string]any) {
	h.commands <- command{kind: cmdFormChange, sess: s, formID: formID, data: data}
}

func (h *Hub) FieldUpdate(s *Session, formID, field string, value any) {
	h.commands <- command{kind: cmdFieldUpdate, sess: s, formID: formID, field: field, value: value}
}

func (h *Hub) LockField(s *Session, formID, field string) {
	h.commands <- command{kind: cmdFieldLock, sess: s, formID: formID, field: field}
}

func (h *Hub) UnlockField(s *Session, formID, field string) {
	h.commands <- command{kind: cmdFieldUnlock, sess: s, formID: formID, field: field}
}

func (h *Hub) handle(cmd command) {
	switch cmd.kind {
	case cmdJoin:
		h.handleJoin(cmd)
	case cmdLeave:
		if room, ok := h.registry.room(cmd.formID); ok {
			h.removeFromRoom(room, cmd.sess)
		}
	case cmdDisconnect:
		h.handleDisconnect(cmd.sess)
	case cmdFormChange:
		h.handleFormChange(cmd)
	case cmdFieldUpdate:
		h.handleFieldUpdate(cmd)
	case cmdFieldLock:
		h.handleFieldLock(cmd)
	case cmdFieldUnlock:
		h.handleFieldUnlock(cmd)
	}
}

func (h *Hub) handleJoin(cmd command) {
	room := h.registry.getOrCreate(cmd.formID)

	color := cmd.color
	if color == "" {
		color = pickColor()
	}
	room.members[cmd.sess.ID] = &member{
		sess:     cmd.sess,
		name:     cmd.name,
		color:    color,
		joinedAt: time.Now().UTC(),
	}

	log.Printf("Collaborator %s joined form %s", cmd.sess.ID, cmd.formID)

	h.broadcast(room, ServerMessage{
		Event:   EventUserJoined,
		Payload: UserJoinedPayload{UserID: cmd.sess.ID, Name: cmd.name, Color: color},
	}, cmd.sess)

	h.broadcast(room, ServerMessage{
		Event:   EventCollaborators,
		Payload: room.roster(),
	}, nil)

	// Snapshot fetch hits the repository; keep it off the loop so a slow
	// read cannot stall other rooms.
	go h.sendSnapshot(cmd.sess, cmd.formID)
}

func (h *Hub) sendSnapshot(s *Session, formID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	data, err := h.store.FormData(ctx, formID)
	if err != nil {
		log.Printf("Error fetching snapshot for form %s: %v", formID, err)
		return
	}
	if data == nil {
		// Form not created yet; the joiner starts from a blank view.
		return
	}
	s.trySend(ServerMessage{Event: EventFormData, Payload: data})
}

func (h *Hub) handleFormChange(cmd command) {
	if room, ok := h.registry.room(cmd.formID); ok {
		h.broadcast(room, ServerMessage{
			Event:   EventFormUpdate,
			Payload: FormUpdatePayload{Data: cmd.data, UserID: cmd.sess.ID},
		}, cmd.sess)
	}

	// Persistence is fire-and-forget: the broadcast above already happened
	// and is not rolled back on a storage failure.
	h.bridge.SaveForm(cmd.formID, cmd.data)
}

func (h *Hub) handleFieldUpdate(cmd command) {
	if room, ok := h.registry.room(cmd.formID); ok {
		h.broadcast(room, ServerMessage{
			Event:   EventFieldUpdated,
			Payload: FieldUpdatedPayload{Field: cmd.field, Value: cmd.value, UserID: cmd.sess.ID},
		}, cmd.sess)
	}

	h.bridge.SaveField(cmd.formID, cmd.field, cmd.value)
}

// Locks are advisory. A lock request for a field someone else holds is
// silently ignored, and the write path never consults the lock table.
func (h *Hub) handleFieldLock(cmd command) {
	room, ok := h.registry.room(cmd.formID)
	if !ok {
		return
	}
	if _, ok := room.members[cmd.sess.ID]; !ok {
		return
	}
	if holder, locked := room.lockedFields[cmd.field]; locked && holder != cmd.sess.ID {
		return
	}

	room.lockedFields[cmd.field] = cmd.sess.ID
	h.broadcast(room, ServerMessage{
		Event:   EventFieldLocked,
		Payload: FieldLockedPayload{Field: cmd.field, UserID: cmd.sess.ID},
	}, nil)
}

func (h *Hub) handleFieldUnlock(cmd command) {
	room, ok := h.registry.room(cmd.formID)
	if !ok {
		return
	}
	if room.lockedFields[cmd.field] != cmd.sess.ID {
		return
	}

	delete(room.lockedFields, cmd.field)
	h.broadcast(room, ServerMessage{
		Event:   EventFieldUnlocked,
		Payload: FieldUnlockedPayload{Field: cmd.field},
	}, nil)
}

func (h *Hub) handleDisconnect(s *Session) {
	for _, room := range h.registry.roomsWith(s.ID) {
		h.removeFromRoom(room, s)
	}
	s.close()
}

// removeFromRoom evicts a session from one room: membership goes first, then
// its locks are released, then the remaining members hear user-left and the
// new roster.
func (h *Hub) removeFromRoom(room *Room, s *Session) {
	m, ok := room.members[s.ID]
	if !ok {
		return
	}
	delete(room.members, s.ID)

	for _, field := range room.locksHeldBy(s.ID) {
		delete(room.lockedFields, field)
		h.broadcast(room, ServerMessage{
			Event:   EventFieldUnlocked,
			Payload: FieldUnlockedPayload{Field: field},
		}, nil)
	}

	h.broadcast(room, ServerMessage{
		Event:   EventUserLeft,
		Payload: UserLeftPayload{UserID: s.ID, Name: m.name},
	}, nil)

	h.broadcast(room, ServerMessage{
		Event:   EventCollaborators,
		Payload: room.roster(),
	}, nil)

	log.Printf("Collaborator %s left form %s", s.ID, room.formID)

	if len(room.members) == 0 {
		h.registry.drop(room.formID)
	}
}

// broadcast fans a message out to every member except the optional sender.
// Members whose buffers are full are treated as dead and evicted, the same
// way a disconnect would.
func (h *Hub) broadcast(room *Room, msg ServerMessage, except *Session) {
	var stale []*Session
	for _, m := range room.members {
		if except != nil && m.sess.ID == except.ID {
			continue
		}
		if !m.sess.trySend(msg) {
			stale = append(stale, m.sess)
		}
	}
	for _, s := range stale {
		log.Printf("Dropping unresponsive collaborator %s", s.ID)
		h.handleDisconnect(s)
	}
}
