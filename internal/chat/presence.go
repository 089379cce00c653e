package chat

import "sync"

// Presence maps user ids to their live connections. A user may hold several
// connections at once; removal drops one handle and only the last one going
// away makes the user offline. The hub mutates it exclusively from its
// dispatch goroutine, the read side is safe for HTTP handlers too.
type Presence struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewPresence() *Presence {
	return &Presence{clients: map[string]map[*Client]struct{}{}}
}

// Add registers a connection and reports whether it is the user's first.
func (p *Presence) Add(c *Client) (first bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.clients[c.UserID]
	if !ok {
		set = map[*Client]struct{}{}
		p.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	return len(set) == 1
}

// Remove deregisters one connection. It reports whether the handle was known
// (guarding against double unregister) and whether the user is now offline.
func (p *Presence) Remove(c *Client) (known, last bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	set, ok := p.clients[c.UserID]
	if !ok {
		return false, false
	}
	if _, ok := set[c]; !ok {
		return false, false
	}
	delete(set, c)
	if len(set) == 0 {
		delete(p.clients, c.UserID)
		return true, true
	}
	return true, false
}

// Lookup returns a snapshot of the user's live connections.
func (p *Presence) Lookup(userID string) []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	set := p.clients[userID]
	if len(set) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}

func (p *Presence) IsOnline(userID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients[userID]) > 0
}

// Snapshot returns every connection, used for presence broadcasts.
func (p *Presence) Snapshot() []*Client {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []*Client
	for _, set := range p.clients {
		for c := range set {
			out = append(out, c)
		}
	}
	return out
}

// OnlineCount reports the number of distinct online users.
func (p *Presence) OnlineCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.clients)
}
