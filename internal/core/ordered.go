package core

import "iter"

// OrderedMap is a map that iterates in first-insertion order.
// Values are stored behind pointers so GetOrInsert results stay valid
// while the map grows. Read methods accept a nil map.
type OrderedMap[K comparable, V any] struct {
	keys []K
	vals map[K]*V
}

// NewOrderedMap returns an empty OrderedMap.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{vals: make(map[K]*V)}
}

// GetOrInsert returns the value stored under key, inserting init() first
// when the key has not been seen yet.
func (m *OrderedMap[K, V]) GetOrInsert(key K, init func() V) *V {
	if v, ok := m.vals[key]; ok {
		return v
	}
	v := new(V)
	if init != nil {
		*v = init()
	}
	m.vals[key] = v
	m.keys = append(m.keys, key)
	return v
}

// Get returns the value stored under key.
func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	if v, ok := m.vals[key]; ok {
		return *v, true
	}
	var zero V
	return zero, false
}

// Keys returns the keys in first-seen order.
func (m *OrderedMap[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	return append([]K(nil), m.keys...)
}

// Len returns the number of distinct keys.
func (m *OrderedMap[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// All iterates key/value pairs in first-seen order.
func (m *OrderedMap[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, *m.vals[k]) {
				return
			}
		}
	}
}
