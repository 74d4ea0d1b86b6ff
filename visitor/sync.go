package visitor

import "sync"

//SyncMap caches values safe for concurrent readers and writers; conversion
//metadata is built once per key and shared afterwards
type SyncMap[K comparable, V any] struct {
	values sync.Map
}

//Get returns a cached value
func (m *SyncMap[K, V]) Get(key K) (V, bool) {
	item, ok := m.values.Load(key)
	if !ok {
		var zero V
		return zero, false
	}
	return item.(V), true
}

//GetOrPut returns the cached value for supplied key, building and caching it
//on first use; concurrent builders agree on the first stored value
func (m *SyncMap[K, V]) GetOrPut(key K, build func() V) V {
	if item, ok := m.values.Load(key); ok {
		return item.(V)
	}
	item, _ := m.values.LoadOrStore(key, build())
	return item.(V)
}

//Put caches supplied value
func (m *SyncMap[K, V]) Put(key K, value V) {
	m.values.Store(key, value)
}

//NewSyncMap creates a cache
func NewSyncMap[K comparable, V any]() *SyncMap[K, V] {
	return &SyncMap[K, V]{}
}
