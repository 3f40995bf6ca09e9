package addrtable

import (
	"sort"

	"github.com/meshprov/addrspace/pkg/meshaddr"
)

// Iterator walks the claimed entries in ascending address order over a
// snapshot taken at creation.
type Iterator[T any] struct {
	current int
	keys    []meshaddr.Address
	entries map[meshaddr.Address]T
}

func (r *table[T]) Iterate() *Iterator[T] {
	r.m.RLock()
	defer r.m.RUnlock()

	keys := make([]meshaddr.Address, 0, len(r.entries))
	entries := make(map[meshaddr.Address]T, len(r.entries))
	for addr, d := range r.entries {
		keys = append(keys, addr)
		entries[addr] = d
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	return &Iterator[T]{current: -1, keys: keys, entries: entries}
}

func (i *Iterator[T]) Next() bool {
	i.current++
	return i.current < len(i.keys)
}

func (i *Iterator[T]) Address() meshaddr.Address {
	return i.keys[i.current]
}

func (i *Iterator[T]) Value() T {
	return i.entries[i.keys[i.current]]
}

// IsConsecutive reports whether the current address directly follows the
// previous one.
func (i *Iterator[T]) IsConsecutive() bool {
	if i.current < 1 {
		return false
	}
	return i.keys[i.current-1] == i.keys[i.current]-1
}
