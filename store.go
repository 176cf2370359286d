// FILE: lixenwraith/zconfig/store.go
package zconfig

import (
	"fmt"
	"iter"
	"slices"
	"sync"
)

// Mapping is implemented by anything that can be deep-merged into a Store.
type Mapping interface {
	Keys() []string
	Value(key string) (any, bool)
}

// Map is a plain mapping literal usable wherever a Mapping is expected.
type Map map[string]any

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Value returns the entry for key.
func (m Map) Value(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Store is a thread-safe nested mapping addressed by paths.
// Length and iteration cover top-level keys only.
type Store struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: make(map[string]any)}
}

// NewStoreFrom creates a store holding a deep copy of m.
func NewStoreFrom(m Mapping) *Store {
	s := NewStore()
	s.DeepUpdate(m)
	return s
}

// asMapping reports whether v can be merged key by key.
func asMapping(v any) (Mapping, bool) {
	switch m := v.(type) {
	case map[string]any:
		return Map(m), true
	case Map:
		return m, true
	case map[any]any:
		conv := make(Map, len(m))
		for k, val := range m {
			conv[mapKey(k)] = val
		}
		return conv, true
	case Mapping:
		return m, true
	}
	return nil, false
}

// copyValue deep-copies mappings and lists so stored data never aliases caller data.
func copyValue(v any) any {
	if m, ok := asMapping(v); ok {
		out := make(map[string]any)
		for _, k := range m.Keys() {
			val, _ := m.Value(k)
			out[k] = copyValue(val)
		}
		return out
	}
	switch l := v.(type) {
	case []any:
		out := make([]any, len(l))
		for i, e := range l {
			out[i] = copyValue(e)
		}
		return out
	case []map[string]any:
		out := make([]any, len(l))
		for i, e := range l {
			out[i] = copyValue(e)
		}
		return out
	}
	return v
}

func deepMerge(dst map[string]any, src Mapping) {
	for _, k := range src.Keys() {
		v, _ := src.Value(k)
		if sm, ok := asMapping(v); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				deepMerge(dm, sm)
				continue
			}
		}
		dst[k] = copyValue(v)
	}
}

// navigate resolves p to its parent mapping and final key.
// With create set, missing or non-mapping intermediates are replaced by empty mappings.
func (s *Store) navigate(p Path, create bool) (map[string]any, string, bool) {
	if len(p) == 0 {
		return nil, "", false
	}
	if s.data == nil {
		if !create {
			return nil, "", false
		}
		s.data = make(map[string]any)
	}
	parent := s.data
	for _, k := range p[:len(p)-1] {
		next, ok := parent[k].(map[string]any)
		if !ok {
			if !create {
				return nil, "", false
			}
			next = make(map[string]any)
			parent[k] = next
		}
		parent = next
	}
	return parent, p[len(p)-1], true
}

// Get returns the value at key and whether it exists. Mappings and lists
// are returned as private copies.
func (s *Store) Get(key any) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parent, k, ok := s.navigate(normalizeKey(key), false)
	if !ok {
		return nil, false
	}
	v, ok := parent[k]
	return copyValue(v), ok
}

// Lookup is like Get but reports a missing path as ErrKeyNotFound.
func (s *Store) Lookup(key any) (any, error) {
	v, ok := s.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, normalizeKey(key))
	}
	return v, nil
}

// GetDefault returns the value at key, or def when the path is unresolved.
func (s *Store) GetDefault(key any, def any) any {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// Set writes value at key, creating intermediate mappings as needed.
func (s *Store) Set(key any, value any) error {
	p := normalizeKey(key)
	if len(p) == 0 {
		return ErrEmptyPath
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parent, k, _ := s.navigate(p, true)
	parent[k] = copyValue(value)
	return nil
}

// Delete removes key. A missing parent is not an error.
func (s *Store) Delete(key any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if parent, k, ok := s.navigate(normalizeKey(key), false); ok {
		delete(parent, k)
	}
}

// Pop removes key and returns its value, or def when absent.
func (s *Store) Pop(key any, def any) any {
	s.mu.Lock()
	defer s.mu.Unlock()

	parent, k, ok := s.navigate(normalizeKey(key), false)
	if !ok {
		return def
	}
	v, ok := parent[k]
	if !ok {
		return def
	}
	delete(parent, k)
	return v
}

// Has reports whether key resolves to a value.
func (s *Store) Has(key any) bool {
	_, ok := s.Get(key)
	return ok
}

// DeepUpdate merges src recursively: mappings present on both sides are
// merged key by key, anything else is overwritten by src.
func (s *Store) DeepUpdate(src Mapping) {
	if other, ok := src.(*Store); ok {
		if other == s {
			return
		}
		src = Map(other.Snapshot())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]any)
	}
	deepMerge(s.data, src)
}

// Update overwrites top-level keys with those of src.
func (s *Store) Update(src Mapping) {
	if other, ok := src.(*Store); ok {
		if other == s {
			return
		}
		src = Map(other.Snapshot())
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]any)
	}
	for _, k := range src.Keys() {
		v, _ := src.Value(k)
		s.data[k] = copyValue(v)
	}
}

// Len returns the number of top-level keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Keys returns the top-level keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Map(s.data).Keys()
}

// Value returns a copy of the top-level entry for key. It satisfies Mapping.
func (s *Store) Value(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return copyValue(v), ok
}

// All iterates the top-level entries in key order.
func (s *Store) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		s.mu.RLock()
		keys := Map(s.data).Keys()
		vals := make([]any, len(keys))
		for i, k := range keys {
			vals[i] = copyValue(s.data[k])
		}
		s.mu.RUnlock()

		for i, k := range keys {
			if !yield(k, vals[i]) {
				return
			}
		}
	}
}

// Snapshot returns a deep copy of the whole tree.
func (s *Store) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyValue(Map(s.data)).(map[string]any)
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]any)
}

// replace swaps in the backing tree of fresh in one step.
func (s *Store) replace(fresh *Store) {
	fresh.mu.RLock()
	data := fresh.data
	fresh.mu.RUnlock()

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
}
