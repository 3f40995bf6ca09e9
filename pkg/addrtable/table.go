package addrtable

import (
	"errors"
	"fmt"
	"sync"

	"github.com/meshprov/addrspace/pkg/meshaddr"
)

// Table tracks which addresses of a bounded band are claimed and carries
// per-address data. Span operations act on runs of consecutive addresses,
// the way a node's elements occupy consecutive unicast addresses.
type Table[T any] interface {
	Get(addr meshaddr.Address) (T, error)
	Claim(addr meshaddr.Address, d T) error
	ClaimSpan(start meshaddr.Address, count int, d T) error
	ClaimFree(d T) (meshaddr.Address, error)
	ClaimFreeSpan(count int, d T) (meshaddr.Address, error)
	Release(addr meshaddr.Address) error
	ReleaseSpan(start meshaddr.Address, count int) error
	Update(addr meshaddr.Address, d T) error

	Iterate() *Iterator[T]

	Count() int
	Has(addr meshaddr.Address) bool
	IsFree(addr meshaddr.Address) bool
	IsFreeSpan(start meshaddr.Address, count int) bool
	FindFree() (meshaddr.Address, error)
	FindFreeSpan(count int) (meshaddr.Address, error)

	All() map[meshaddr.Address]T
}

// ValidationFn rejects individual addresses beyond the band bounds check,
// e.g. addresses not allocated to the owning provisioner.
type ValidationFn func(addr meshaddr.Address) error

func New[T any](first, last meshaddr.Address, initEntries map[meshaddr.Address]T, v ValidationFn) (Table[T], error) {
	if first > last {
		return nil, fmt.Errorf("invalid band: first %s is after last %s", first, last)
	}
	r := &table[T]{
		m:          new(sync.RWMutex),
		entries:    map[meshaddr.Address]T{},
		first:      first,
		last:       last,
		validateFn: v,
	}

	var errm error
	for addr, d := range initEntries {
		if err := r.claim(addr, d, true); err != nil {
			errm = errors.Join(errm, err)
		}
	}
	return r, errm
}

type table[T any] struct {
	m          *sync.RWMutex
	entries    map[meshaddr.Address]T
	first      meshaddr.Address
	last       meshaddr.Address
	validateFn ValidationFn
}

func (r *table[T]) validate(addr meshaddr.Address, init bool) error {
	if addr < r.first || addr > r.last {
		return fmt.Errorf("address %s does not fit in the band from %s to %s", addr, r.first, r.last)
	}
	if r.validateFn != nil && !init {
		return r.validateFn(addr)
	}
	return nil
}

func (r *table[T]) Get(addr meshaddr.Address) (T, error) {
	r.m.RLock()
	defer r.m.RUnlock()
	var d T

	if addr < r.first || addr > r.last {
		return d, fmt.Errorf("address %s does not fit in the band from %s to %s", addr, r.first, r.last)
	}
	d, ok := r.entries[addr]
	if !ok {
		return d, fmt.Errorf("no entry for address %s", addr)
	}
	return d, nil
}

func (r *table[T]) Claim(addr meshaddr.Address, d T) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.claim(addr, d, false)
}

func (r *table[T]) ClaimSpan(start meshaddr.Address, count int, d T) error {
	r.m.Lock()
	defer r.m.Unlock()

	count = atLeastOne(count)
	if run := r.freeRun(start, count); run < count {
		return fmt.Errorf("span of %d starting at %s is not free", count, start)
	}
	for i := 0; i < count; i++ {
		// cannot fail after the freeRun check, we hold the lock
		if err := r.claim(start+meshaddr.Address(i), d, false); err != nil {
			return err
		}
	}
	return nil
}

func (r *table[T]) ClaimFree(d T) (meshaddr.Address, error) {
	addr, err := r.ClaimFreeSpan(1, d)
	if err != nil {
		return meshaddr.Unassigned, err
	}
	return addr, nil
}

func (r *table[T]) ClaimFreeSpan(count int, d T) (meshaddr.Address, error) {
	r.m.Lock()
	defer r.m.Unlock()

	count = atLeastOne(count)
	start, err := r.findFreeSpan(count)
	if err != nil {
		return meshaddr.Unassigned, err
	}
	for i := 0; i < count; i++ {
		if err := r.claim(start+meshaddr.Address(i), d, false); err != nil {
			return meshaddr.Unassigned, err
		}
	}
	return start, nil
}

func (r *table[T]) Release(addr meshaddr.Address) error {
	r.m.Lock()
	defer r.m.Unlock()

	return r.release(addr)
}

func (r *table[T]) ReleaseSpan(start meshaddr.Address, count int) error {
	r.m.Lock()
	defer r.m.Unlock()

	count = atLeastOne(count)
	var errm error
	for i := 0; i < count; i++ {
		if err := r.release(start + meshaddr.Address(i)); err != nil {
			errm = errors.Join(errm, err)
		}
	}
	return errm
}

func (r *table[T]) Update(addr meshaddr.Address, d T) error {
	r.m.Lock()
	defer r.m.Unlock()

	if err := r.validate(addr, false); err != nil {
		return err
	}
	if _, ok := r.entries[addr]; !ok {
		return fmt.Errorf("no entry for address %s", addr)
	}
	r.entries[addr] = d
	return nil
}

func (r *table[T]) Count() int {
	r.m.RLock()
	defer r.m.RUnlock()

	return len(r.entries)
}

func (r *table[T]) Has(addr meshaddr.Address) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	_, ok := r.entries[addr]
	return ok
}

func (r *table[T]) IsFree(addr meshaddr.Address) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.freeRun(addr, 1) == 1
}

func (r *table[T]) IsFreeSpan(start meshaddr.Address, count int) bool {
	r.m.RLock()
	defer r.m.RUnlock()

	count = atLeastOne(count)
	return r.freeRun(start, count) == count
}

func (r *table[T]) FindFree() (meshaddr.Address, error) {
	return r.FindFreeSpan(1)
}

func (r *table[T]) FindFreeSpan(count int) (meshaddr.Address, error) {
	r.m.RLock()
	defer r.m.RUnlock()

	return r.findFreeSpan(atLeastOne(count))
}

func (r *table[T]) All() map[meshaddr.Address]T {
	r.m.RLock()
	defer r.m.RUnlock()

	entries := make(map[meshaddr.Address]T, len(r.entries))
	for addr, d := range r.entries {
		entries[addr] = d
	}
	return entries
}

func (r *table[T]) claim(addr meshaddr.Address, d T, init bool) error {
	if err := r.validate(addr, init); err != nil {
		return err
	}
	if _, ok := r.entries[addr]; ok {
		return fmt.Errorf("address %s is already claimed", addr)
	}
	r.entries[addr] = d
	return nil
}

func (r *table[T]) release(addr meshaddr.Address) error {
	if addr < r.first || addr > r.last {
		return fmt.Errorf("address %s does not fit in the band from %s to %s", addr, r.first, r.last)
	}
	delete(r.entries, addr)
	return nil
}

// freeRun returns how many consecutive addresses starting at start are
// free and claimable, capped at max.
func (r *table[T]) freeRun(start meshaddr.Address, max int) int {
	for i := 0; i < max; i++ {
		a := int(start) + i
		if a > int(r.last) {
			return i
		}
		addr := meshaddr.Address(a)
		if err := r.validate(addr, false); err != nil {
			return i
		}
		if _, ok := r.entries[addr]; ok {
			return i
		}
	}
	return max
}

func (r *table[T]) findFreeSpan(count int) (meshaddr.Address, error) {
	limit := int(r.last) - count + 1
	for a := int(r.first); a <= limit; {
		run := r.freeRun(meshaddr.Address(a), count)
		if run == count {
			return meshaddr.Address(a), nil
		}
		a += run + 1
	}
	return meshaddr.Unassigned, fmt.Errorf("no free span of %d addresses", count)
}

func atLeastOne(count int) int {
	if count < 1 {
		return 1
	}
	return count
}
