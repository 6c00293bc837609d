package ws

import (
	"sync"

	"github.com/dmitrijs2005/hugmood/internal/server/models"
)

// Registry tracks the live connections of one gateway process and how many
// of them each user has authenticated. It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*Conn
	users map[int64]int
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[string]*Conn), users: make(map[int64]int)}
}

func (r *Registry) Add(c *Conn) {
	r.mu.Lock()
	r.conns[c.id] = c
	r.mu.Unlock()
}

// Authenticate tags c with identity and reports whether c is the user's
// first authenticated connection. Connections that are not registered or
// already authenticated are left alone and report false.
func (r *Registry) Authenticate(c *Conn, identity *models.Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[c.id]; !ok || c.Identity() != nil {
		return false
	}
	c.setIdentity(identity)
	r.users[identity.ID]++
	return r.users[identity.ID] == 1
}

// Remove unregisters c. When c was its user's last authenticated connection
// the identity is returned, otherwise nil.
func (r *Registry) Remove(c *Conn) *models.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[c.id]; !ok {
		return nil
	}
	delete(r.conns, c.id)

	identity := c.Identity()
	if identity == nil {
		return nil
	}
	r.users[identity.ID]--
	if r.users[identity.ID] > 0 {
		return nil
	}
	delete(r.users, identity.ID)
	return identity
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}

// Snapshot returns the current connections. The slice is owned by the
// caller.
func (r *Registry) Snapshot() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// UserConnections counts the authenticated connections of userID.
func (r *Registry) UserConnections(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.users[userID]
}

// Broadcast queues msg on every connection accepted by filter (all when
// filter is nil) and returns how many accepted it. Full buffers drop the
// message.
func (r *Registry) Broadcast(msg []byte, filter func(*Conn) bool) int {
	sent := 0
	for _, c := range r.Snapshot() {
		if filter != nil && !filter(c) {
			continue
		}
		if c.enqueue(msg) {
			sent++
		}
	}
	return sent
}

// CloseAll closes every connection.
func (r *Registry) CloseAll() {
	for _, c := range r.Snapshot() {
		c.Close()
	}
}
