package web

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"goldshop/internal/categorytree"
)

type screen struct {
	controller *categorytree.Controller
	expiresAt  time.Time
	// ready is closed once the first Mount returned.
	ready chan struct{}
}

// Registry keeps one Controller per browser session. Entries expire after
// ttl without use; expired controllers are unmounted by a janitor goroutine.
type Registry struct {
	mu      sync.RWMutex
	screens map[string]*screen
	ttl     time.Duration
	factory func() *categorytree.Controller
	now     func() time.Time

	stop chan struct{}
	once sync.Once
}

func NewRegistry(ttl, cleanupInterval time.Duration, factory func() *categorytree.Controller) *Registry {
	r := &Registry{
		screens: make(map[string]*screen),
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
		stop:    make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				r.evictExpired()
			case <-r.stop:
				return
			}
		}
	}()

	return r
}

// Get returns the session's controller, mounting a new one on first use or
// after expiry. Every call extends the session's lifetime. Concurrent calls
// for a screen that is still mounting wait for it.
func (r *Registry) Get(ctx context.Context, sessionID string) (*categorytree.Controller, error) {
	r.mu.Lock()
	s, ok := r.screens[sessionID]
	now := r.now()
	if ok && now.After(s.expiresAt) {
		s.controller.Unmount()
		ok = false
	}
	if ok {
		s.expiresAt = now.Add(r.ttl)
		r.mu.Unlock()

		select {
		case <-s.ready:
			return s.controller, nil
		case <-ctx.Done():
			return s.controller, ctx.Err()
		}
	}

	s = &screen{controller: r.factory(), expiresAt: now.Add(r.ttl), ready: make(chan struct{})}
	r.screens[sessionID] = s
	r.mu.Unlock()
	defer close(s.ready)

	zap.L().Debug("Mounting category screen", zap.String("session", sessionID))
	// A failed first load is kept on the screen; the next Snapshot retries.
	if err := s.controller.Mount(ctx); err != nil {
		return s.controller, err
	}
	return s.controller, nil
}

// Remove unmounts and forgets the session's controller.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	s, ok := r.screens[sessionID]
	delete(r.screens, sessionID)
	r.mu.Unlock()

	if ok {
		s.controller.Unmount()
	}
}

// InvalidateAll marks every live tree stale.
func (r *Registry) InvalidateAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.screens {
		s.controller.Invalidate()
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.screens)
}

// Close stops the janitor and unmounts every controller.
func (r *Registry) Close() {
	r.once.Do(func() { close(r.stop) })

	r.mu.Lock()
	screens := r.screens
	r.screens = make(map[string]*screen)
	r.mu.Unlock()

	for _, s := range screens {
		s.controller.Unmount()
	}
}

func (r *Registry) evictExpired() {
	now := r.now()

	r.mu.Lock()
	var expired []*screen
	for id, s := range r.screens {
		if now.After(s.expiresAt) {
			expired = append(expired, s)
			delete(r.screens, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.controller.Unmount()
	}
	if len(expired) > 0 {
		zap.L().Debug("Evicted idle category screens", zap.Int("count", len(expired)))
	}
}
