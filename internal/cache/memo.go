// Package cache holds explicit memoization objects: values are filled once
// per key, failed fills are never stored, and entries can be invalidated.
package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FillFunc computes the value for a missing key.
type FillFunc[V any] func(ctx context.Context) (V, error)

// Memo caches one value per key.
type Memo[K comparable, V any] struct {
	mu     sync.RWMutex
	values map[K]V
	gen    uint64
	group  singleflight.Group
}

// NewMemo builds an empty memo.
func NewMemo[K comparable, V any]() *Memo[K, V] {
	return &Memo[K, V]{values: map[K]V{}}
}

// Get returns the cached value for key or runs fill once, sharing the
// result with concurrent callers asking for the same key. A fill that
// overlaps an Invalidate or Reset is returned to its callers but not stored.
func (m *Memo[K, V]) Get(ctx context.Context, key K, fill FillFunc[V]) (V, error) {
	m.mu.RLock()
	v, ok := m.values[key]
	gen := m.gen
	m.mu.RUnlock()
	if ok {
		return v, nil
	}

	res, err, _ := m.group.Do(fmt.Sprintf("%d/%v", gen, key), func() (any, error) {
		if v, ok := m.Peek(key); ok {
			return v, nil
		}
		v, err := fill(ctx)
		if err != nil {
			return v, err
		}
		m.mu.Lock()
		if m.gen == gen {
			m.values[key] = v
		}
		m.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

// Peek returns the cached value without filling.
func (m *Memo[K, V]) Peek(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

// Invalidate drops a single key.
func (m *Memo[K, V]) Invalidate(key K) {
	m.mu.Lock()
	delete(m.values, key)
	m.gen++
	m.mu.Unlock()
}

// Reset drops every key.
func (m *Memo[K, V]) Reset() {
	m.mu.Lock()
	m.values = map[K]V{}
	m.gen++
	m.mu.Unlock()
}

// Len reports the number of cached keys.
func (m *Memo[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}

// Value is a single-slot Memo.
type Value[V any] struct {
	memo *Memo[struct{}, V]
}

// NewValue builds an empty single-slot cache.
func NewValue[V any]() *Value[V] {
	return &Value[V]{memo: NewMemo[struct{}, V]()}
}

// Get returns the cached value or fills it.
func (v *Value[V]) Get(ctx context.Context, fill FillFunc[V]) (V, error) {
	return v.memo.Get(ctx, struct{}{}, fill)
}

// Loaded reports whether a value is cached.
func (v *Value[V]) Loaded() bool {
	_, ok := v.memo.Peek(struct{}{})
	return ok
}

// Invalidate forces the next Get to fill again.
func (v *Value[V]) Invalidate() {
	v.memo.Reset()
}
