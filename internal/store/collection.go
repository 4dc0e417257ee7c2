package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Collection is a typed handle over one slice of the snapshot.
type Collection[T any] struct {
	store *Store
	name  string
	items func(*Snapshot) *[]T
	id    func(*T) *int
	// prepare fills defaults before validation on Add and on every update.
	prepare func(*T, time.Time)
}

// Name is the collection's key in the snapshot.
func (c *Collection[T]) Name() string { return c.name }

// List returns copies of every record in insertion order.
func (c *Collection[T]) List() []T {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	return clone(*c.items(&c.store.data))
}

// Filter returns copies of the records accepted by keep.
func (c *Collection[T]) Filter(keep func(T) bool) []T {
	out := make([]T, 0)
	for _, v := range c.List() {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

// Get returns a copy of the record with the given id.
func (c *Collection[T]) Get(id int) (T, bool) {
	c.store.mu.RLock()
	defer c.store.mu.RUnlock()
	idx := c.indexLocked(id)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return clone((*c.items(&c.store.data))[idx]), true
}

// Add assigns the next id, validates and stores v. The caller's id is
// ignored.
func (c *Collection[T]) Add(ctx context.Context, v T) (T, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.addLocked(ctx, v)
}

func (c *Collection[T]) addLocked(ctx context.Context, v T) (T, error) {
	var zero T
	rec := clone(v)
	if c.prepare != nil {
		c.prepare(&rec, c.store.now())
	}

	items := c.items(&c.store.data)
	next := c.nextIDLocked()
	*c.id(&rec) = next
	if err := c.store.validateRecord(rec); err != nil {
		return zero, err
	}

	prevItems := *items
	prevSeq, hadSeq := c.store.data.Sequences[c.name]
	*items = append(append(make([]T, 0, len(prevItems)+1), prevItems...), rec)
	c.store.data.Sequences[c.name] = next

	if err := c.store.persistLocked(ctx); err != nil {
		*items = prevItems
		if hadSeq {
			c.store.data.Sequences[c.name] = prevSeq
		} else {
			delete(c.store.data.Sequences, c.name)
		}
		return zero, err
	}
	return clone(rec), nil
}

// Update applies fn to a copy of the record and stores the result. The id
// cannot be changed by fn. found is false when no record has the id.
func (c *Collection[T]) Update(ctx context.Context, id int, fn func(*T)) (T, bool, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.updateLocked(ctx, id, func(rec *T) error {
		fn(rec)
		return nil
	})
}

// Mutate is Update for changes that can be refused: an error from fn
// leaves the record untouched and is returned as is.
func (c *Collection[T]) Mutate(ctx context.Context, id int, fn func(*T) error) (T, bool, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.updateLocked(ctx, id, fn)
}

// Merge overlays the JSON object patch onto the record. Each top-level key
// in the patch replaces that field whole; keys absent from the patch keep
// their current value.
func (c *Collection[T]) Merge(ctx context.Context, id int, patch json.RawMessage) (T, bool, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.updateLocked(ctx, id, func(rec *T) error {
		merged, err := mergeTopLevel(*rec, patch)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
		}
		*rec = merged
		return nil
	})
}

// mergeTopLevel decodes into a fresh value so nested maps from rec are
// never merged with the patch.
func mergeTopLevel[T any](rec T, patch json.RawMessage) (T, error) {
	var out T
	var overlay map[string]json.RawMessage
	if err := json.Unmarshal(patch, &overlay); err != nil {
		return out, err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return out, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return out, err
	}
	for k, v := range overlay {
		fields[k] = v
	}
	if raw, err = json.Marshal(fields); err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

func (c *Collection[T]) updateLocked(ctx context.Context, id int, apply func(*T) error) (T, bool, error) {
	var zero T
	idx := c.indexLocked(id)
	if idx < 0 {
		return zero, false, nil
	}

	items := c.items(&c.store.data)
	rec := clone((*items)[idx])
	if err := apply(&rec); err != nil {
		return zero, true, err
	}
	*c.id(&rec) = id
	if c.prepare != nil {
		c.prepare(&rec, c.store.now())
	}
	if err := c.store.validateRecord(rec); err != nil {
		return zero, true, err
	}

	prevItems := *items
	updated := make([]T, len(prevItems))
	copy(updated, prevItems)
	updated[idx] = rec
	*items = updated

	if err := c.store.persistLocked(ctx); err != nil {
		*items = prevItems
		return zero, true, err
	}
	return clone(rec), true, nil
}

// Remove deletes the record. found is false when no record has the id.
func (c *Collection[T]) Remove(ctx context.Context, id int) (bool, error) {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	return c.removeWhereLocked(ctx, func(v *T) bool { return *c.id(v) == id })
}

// removeWhereLocked drops every record matched by drop and persists once.
func (c *Collection[T]) removeWhereLocked(ctx context.Context, drop func(*T) bool) (bool, error) {
	items := c.items(&c.store.data)
	prevItems := *items
	kept := make([]T, 0, len(prevItems))
	for i := range prevItems {
		if !drop(&prevItems[i]) {
			kept = append(kept, prevItems[i])
		}
	}
	if len(kept) == len(prevItems) {
		return false, nil
	}
	*items = kept
	if err := c.store.persistLocked(ctx); err != nil {
		*items = prevItems
		return true, err
	}
	return true, nil
}

func (c *Collection[T]) indexLocked(id int) int {
	items := *c.items(&c.store.data)
	for i := range items {
		if *c.id(&items[i]) == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T]) nextIDLocked() int {
	highest := c.store.data.Sequences[c.name]
	items := *c.items(&c.store.data)
	for i := range items {
		if id := *c.id(&items[i]); id > highest {
			highest = id
		}
	}
	return highest + 1
}
