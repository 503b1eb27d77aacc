package vsdx

import (
	"fmt"
	"iter"
	"slices"
)

// Index is an id keyed collection which remembers insertion order. All id maps
// of the model (pages, masters, styles, themes, shapes, connects) are kept in
// it so duplicate detection happens in a single place.
type Index[K comparable, V any] struct {
	what  string
	keys  []K
	items map[K]V
}

// NewIndex creates empty index, "what" is only used in error messages.
func NewIndex[K comparable, V any](what string) *Index[K, V] {
	return &Index[K, V]{what: what, items: make(map[K]V)}
}

// Insert adds new item, it never overwrites existing one.
func (ix *Index[K, V]) Insert(key K, value V) error {
	if _, exists := ix.items[key]; exists {
		return fmt.Errorf("%s [%v]: %w", ix.what, key, ErrDuplicateKey)
	}
	ix.keys = append(ix.keys, key)
	ix.items[key] = value
	return nil
}

// Set adds or replaces item. Replaced item keeps its original position.
func (ix *Index[K, V]) Set(key K, value V) {
	if _, exists := ix.items[key]; !exists {
		ix.keys = append(ix.keys, key)
	}
	ix.items[key] = value
}

func (ix *Index[K, V]) Get(key K) (V, bool) {
	if ix == nil {
		var zero V
		return zero, false
	}
	v, ok := ix.items[key]
	return v, ok
}

func (ix *Index[K, V]) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.keys)
}

// Keys returns copy of keys in insertion order.
func (ix *Index[K, V]) Keys() []K {
	if ix == nil {
		return nil
	}
	return slices.Clone(ix.keys)
}

// All iterates over items in insertion order.
func (ix *Index[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if ix == nil {
			return
		}
		for _, k := range ix.keys {
			if !yield(k, ix.items[k]) {
				return
			}
		}
	}
}

// Values iterates over items in insertion order.
func (ix *Index[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range ix.All() {
			if !yield(v) {
				return
			}
		}
	}
}
