package resolver

import (
	"context"
	"sync"
)

// OperationCache memoizes resolutions by key and deduplicates in-flight
// ones. The map is only touched for the check-and-insert; the operation
// itself runs outside any lock.
type OperationCache struct {
	operations sync.Map // key -> *operationState
}

// operationState holds the state of an in-flight operation
type operationState struct {
	done chan struct{}
	item *Item
	err  error
}

// NewOperationCache creates a new operation cache
func NewOperationCache() *OperationCache {
	return &OperationCache{}
}

// GetOrStart returns the result for key, running operation if no other
// caller has started it. The second result reports whether the value came
// from an earlier or concurrent caller.
func (oc *OperationCache) GetOrStart(
	ctx context.Context,
	key string,
	operation func(context.Context) (*Item, error),
) (*Item, bool, error) {
	state := &operationState{done: make(chan struct{})}
	actual, loaded := oc.operations.LoadOrStore(key, state)
	state = actual.(*operationState)

	if !loaded {
		state.item, state.err = operation(ctx)
		if state.err != nil {
			// Failed operations are not memoized.
			oc.operations.Delete(key)
		}
		close(state.done)
		return state.item, false, state.err
	}

	select {
	case <-ctx.Done():
		return nil, true, ctx.Err()
	case <-state.done:
		return state.item, true, state.err
	}
}

// Len returns the number of memoized keys.
func (oc *OperationCache) Len() int {
	n := 0
	oc.operations.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Clear removes all cached operations
func (oc *OperationCache) Clear() {
	oc.operations.Range(func(key, _ any) bool {
		oc.operations.Delete(key)
		return true
	})
}
