package settings

import (
	"sync"
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/db/models"
)

// autosaver debounces preference writes per user. Each key owns at most one
// pending timer; scheduling again cancels the previous timer and restarts the
// delay with the newer snapshot, so only the last state within a burst is
// written.
type autosaver struct {
	mu      sync.Mutex
	delay   time.Duration
	pending map[string]*pendingSave
	write   func(*models.Preference)
	closed  bool
}

type pendingSave struct {
	timer *time.Timer
	pref  *models.Preference
}

func newAutosaver(delay time.Duration, write func(*models.Preference)) *autosaver {
	return &autosaver{
		delay:   delay,
		pending: make(map[string]*pendingSave),
		write:   write,
	}
}

func (a *autosaver) schedule(key string, pref *models.Preference) {
	if a.delay <= 0 {
		a.write(pref)
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		a.write(pref)
		return
	}

	if current, ok := a.pending[key]; ok {
		current.timer.Stop()
	}
	save := &pendingSave{pref: pref}
	save.timer = time.AfterFunc(a.delay, func() {
		a.fire(key, save)
	})
	a.pending[key] = save
}

func (a *autosaver) fire(key string, save *pendingSave) {
	a.mu.Lock()
	// A newer schedule may have superseded this timer between firing and
	// acquiring the lock; only the current owner writes.
	if a.pending[key] != save {
		a.mu.Unlock()
		return
	}
	delete(a.pending, key)
	a.mu.Unlock()

	a.write(save.pref)
}

// close stops all timers and flushes their snapshots synchronously.
func (a *autosaver) close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	remaining := make([]*models.Preference, 0, len(a.pending))
	for key, save := range a.pending {
		save.timer.Stop()
		remaining = append(remaining, save.pref)
		delete(a.pending, key)
	}
	a.mu.Unlock()

	for _, pref := range remaining {
		a.write(pref)
	}
}
