// Package ws tracks live WebSocket sessions in a connection directory keyed
// by user ID. The directory is process-local; entries are added when a client
// sends a register message and removed on disconnect.
package ws

import "sync"

// Session represents a single registered WebSocket connection.
type Session struct {
	ID     string
	UserID string
	Name   string
	Role   string
	Send   chan []byte
}

// Directory maps user IDs to their active sessions. A user may hold several
// sessions (multiple tabs); admins are additionally indexed for broadcast.
type Directory struct {
	mu     sync.RWMutex
	byUser map[string]map[*Session]struct{}
	admins map[*Session]struct{}
	all    map[*Session]struct{}
}

func NewDirectory() *Directory {
	return &Directory{
		byUser: make(map[string]map[*Session]struct{}),
		admins: make(map[*Session]struct{}),
		all:    make(map[*Session]struct{}),
	}
}

// Add registers a session under its user ID.
func (d *Directory) Add(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.byUser[s.UserID] == nil {
		d.byUser[s.UserID] = make(map[*Session]struct{})
	}
	d.byUser[s.UserID][s] = struct{}{}
	d.all[s] = struct{}{}
	if s.Role == "admin" {
		d.admins[s] = struct{}{}
	}
}

// Remove drops a session from every index and closes its send channel.
// Safe to call for sessions that were never added.
func (d *Directory) Remove(s *Session) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.all[s]; !ok {
		return
	}

	if sessions, ok := d.byUser[s.UserID]; ok {
		delete(sessions, s)
		if len(sessions) == 0 {
			delete(d.byUser, s.UserID)
		}
	}
	delete(d.admins, s)
	delete(d.all, s)
	close(s.Send)
}

// SendToUser delivers a payload to every session of the given user. Sessions
// with full buffers are skipped; delivery is fire-and-forget. Returns the
// number of sessions reached.
func (d *Directory) SendToUser(userID string, data []byte) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sent := 0
	for s := range d.byUser[userID] {
		select {
		case s.Send <- data:
			sent++
		default:
		}
	}
	return sent
}

// SendToAdmins delivers a payload to every admin session. Returns the number
// of sessions reached.
func (d *Directory) SendToAdmins(data []byte) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	sent := 0
	for s := range d.admins {
		select {
		case s.Send <- data:
			sent++
		default:
		}
	}
	return sent
}

// Connected reports whether the user has at least one live session.
func (d *Directory) Connected(userID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byUser[userID]) > 0
}

// Count returns the total number of registered sessions.
func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.all)
}
