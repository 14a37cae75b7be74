package engine

import (
	"context"
	"errors"
	"sync"
)

// errRequestCancelled is the cancel cause for requests the client cancelled.
var errRequestCancelled = errors.New("request cancelled by client")

// inflight tracks the cancel funcs of requests being handled, keyed by
// RequestID.Key.
type inflight struct {
	mu      sync.Mutex
	cancels map[string]context.CancelCauseFunc
}

func newInflight() *inflight {
	return &inflight{cancels: make(map[string]context.CancelCauseFunc)}
}

// add registers cancel under key. It reports false when key is already in
// flight.
func (f *inflight) add(key string, cancel context.CancelCauseFunc) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.cancels[key]; exists {
		return false
	}
	f.cancels[key] = cancel
	return true
}

func (f *inflight) remove(key string) {
	f.mu.Lock()
	delete(f.cancels, key)
	f.mu.Unlock()
}

// cancel cancels the request under key. Unknown or finished ids are ignored.
func (f *inflight) cancel(key string, cause error) bool {
	f.mu.Lock()
	fn, ok := f.cancels[key]
	f.mu.Unlock()
	if ok {
		fn(cause)
	}
	return ok
}

func (f *inflight) cancelAll(cause error) {
	f.mu.Lock()
	fns := make([]context.CancelCauseFunc, 0, len(f.cancels))
	for _, fn := range f.cancels {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(cause)
	}
}

func (f *inflight) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cancels)
}
