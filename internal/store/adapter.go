package store

import (
	"iter"

	"github.com/google/btree"
)

// MapAdapter is the pluggable backing map behind a store index. The store
// serializes all access globally, so implementations need no internal
// locking.
type MapAdapter[K, V any] interface {
	Get(key K) (V, bool)
	Put(key K, value V)
	Remove(key K)
}

// OrderedMapAdapter additionally supports key-ordered iteration with cursor
// resume. Both iterators are lazy, single-pass and forward-only, and reflect
// a snapshot of the map taken when iteration begins.
type OrderedMapAdapter[K, V any] interface {
	MapAdapter[K, V]
	// Values iterates all values in key order.
	Values() iter.Seq[V]
	// ValuesFrom iterates values in key order starting strictly after the
	// key of the given value.
	ValuesFrom(after V) iter.Seq[V]
}

type treeItem[K, V any] struct {
	key   K
	value V
}

// treeMap is an OrderedMapAdapter backed by a B-tree. Snapshot iteration
// uses the tree's copy-on-write clone, which is O(1) to take.
type treeMap[K, V any] struct {
	tree  *btree.BTreeG[treeItem[K, V]]
	keyOf func(V) K
	cmp   func(K, K) int
}

// NewTreeMap builds an ordered adapter over the given key comparison.
// keyOf extracts the key under which a value is stored, which is what lets
// ValuesFrom resume from a value rather than a key.
func NewTreeMap[K, V any](cmp func(K, K) int, keyOf func(V) K) OrderedMapAdapter[K, V] {
	return &treeMap[K, V]{
		tree: btree.NewG(32, func(a, b treeItem[K, V]) bool {
			return cmp(a.key, b.key) < 0
		}),
		keyOf: keyOf,
		cmp:   cmp,
	}
}

func (m *treeMap[K, V]) Get(key K) (V, bool) {
	item, ok := m.tree.Get(treeItem[K, V]{key: key})
	if !ok {
		var zero V
		return zero, false
	}
	return item.value, true
}

func (m *treeMap[K, V]) Put(key K, value V) {
	m.tree.ReplaceOrInsert(treeItem[K, V]{key: key, value: value})
}

func (m *treeMap[K, V]) Remove(key K) {
	m.tree.Delete(treeItem[K, V]{key: key})
}

func (m *treeMap[K, V]) Values() iter.Seq[V] {
	snapshot := m.tree.Clone()
	return func(yield func(V) bool) {
		snapshot.Ascend(func(item treeItem[K, V]) bool {
			return yield(item.value)
		})
	}
}

func (m *treeMap[K, V]) ValuesFrom(after V) iter.Seq[V] {
	snapshot := m.tree.Clone()
	start := m.keyOf(after)
	return func(yield func(V) bool) {
		snapshot.AscendGreaterOrEqual(treeItem[K, V]{key: start}, func(item treeItem[K, V]) bool {
			if m.cmp(item.key, start) == 0 {
				return true
			}
			return yield(item.value)
		})
	}
}

// hashMap is a MapAdapter over a plain map, for indices that are only ever
// read by point lookup.
type hashMap[K comparable, V any] struct {
	values map[K]V
}

// NewHashMap builds an unordered adapter.
func NewHashMap[K comparable, V any]() MapAdapter[K, V] {
	return &hashMap[K, V]{values: make(map[K]V)}
}

func (m *hashMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *hashMap[K, V]) Put(key K, value V) {
	m.values[key] = value
}

func (m *hashMap[K, V]) Remove(key K) {
	delete(m.values, key)
}
