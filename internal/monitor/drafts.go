package monitor

import (
	"strings"
	"sync"
)

// Drafts keeps unsent compose text per session id. Drafts survive refreshes
// and focus changes and are cleared only by a successful send or a delete.
type Drafts struct {
	mu   sync.Mutex
	byID map[string]string
}

func NewDrafts() *Drafts {
	return &Drafts{byID: map[string]string{}}
}

func (d *Drafts) Get(id string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.byID[id]
}

// Set stores text for id; whitespace-only text removes the draft.
func (d *Drafts) Set(id, text string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if strings.TrimSpace(text) == "" {
		delete(d.byID, id)
		return
	}
	d.byID[id] = text
}

func (d *Drafts) Clear(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.byID, id)
}

func (d *Drafts) All() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.byID))
	for id, text := range d.byID {
		out[id] = text
	}
	return out
}

func (d *Drafts) Restore(drafts map[string]string) {
	for id, text := range drafts {
		d.Set(id, text)
	}
}
