package localauth

import (
	"sync"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
)

// broadcaster fans auth events out to registered listeners. Listeners are
// invoked synchronously in registration-independent order; unsubscribing is
// safe from inside a callback.
type broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(domainauth.Event)
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]func(domainauth.Event))}
}

func (b *broadcaster) subscribe(fn func(domainauth.Event)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *broadcaster) emit(ev domainauth.Event) {
	b.mu.Lock()
	fns := make([]func(domainauth.Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	// Call outside the lock so callbacks can subscribe or unsubscribe.
	for _, fn := range fns {
		fn(ev)
	}
}
