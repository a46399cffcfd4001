package config

import (
	"sync"
	"time"

	"github.com/bep/debounce"

	"go-arp/debug"
)

// DefaultAutoSaveDelay is how long edits must settle before a save
const DefaultAutoSaveDelay = 2 * time.Second

// AutoSaver coalesces bursts of edits into one save
type AutoSaver struct {
	debounced func(func())
	save      func() error

	mu  sync.Mutex
	err error
}

// NewAutoSaver runs save once edits have been quiet for delay
func NewAutoSaver(delay time.Duration, save func() error) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{
		debounced: debounce.New(delay),
		save:      save,
	}
}

// Touch marks the state dirty
func (a *AutoSaver) Touch() {
	a.debounced(a.run)
}

// Flush saves right away, e.g. on quit
func (a *AutoSaver) Flush() error {
	a.run()
	return a.Err()
}

// Err returns the result of the last save
func (a *AutoSaver) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *AutoSaver) run() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.err = a.save()
	if a.err != nil {
		debug.Log("config", "autosave failed: %v", a.err)
	}
}
