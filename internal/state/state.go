package state

import (
	"context"
	"sync"
)

// Route names a view the holders can navigate to.
type Route string

const (
	RouteHome Route = "home"
	RouteAuth Route = "auth"
)

// Navigator switches the active view.
type Navigator func(Route)

// Storage is the durable key/value store the session is persisted to.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Keys under which the session is persisted.
const (
	StorageKeyToken = "token"
	StorageKeyUser  = "user"
)

// listeners is a set of change callbacks.
type listeners struct {
	mu   sync.Mutex
	next int
	fns  map[int]func()
}

// add registers fn and returns a function that removes it.
func (l *listeners) add(fn func()) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func())
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

func (l *listeners) notify() {
	l.mu.Lock()
	fns := make([]func(), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
