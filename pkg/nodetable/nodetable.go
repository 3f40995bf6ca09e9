// Package nodetable assigns node unicast addresses out of one
// provisioner's allocated ranges. A node with n elements occupies n
// consecutive addresses, all of which must sit inside a single allocated
// range.
package nodetable

import (
	"fmt"

	"k8s.io/apimachinery/pkg/labels"

	"github.com/meshprov/addrspace/pkg/addrtable"
	"github.com/meshprov/addrspace/pkg/meshaddr"
	"github.com/meshprov/addrspace/pkg/provisioner"
)

type NodeTable interface {
	Get(addr meshaddr.Address) (labels.Set, error)
	Assign(addr meshaddr.Address, elementCount int, d labels.Set) error
	AssignNext(elementCount int, d labels.Set) (meshaddr.Address, error)
	Release(addr meshaddr.Address, elementCount int) error

	Count() int
	Has(addr meshaddr.Address) bool
	IsFree(addr meshaddr.Address, elementCount int) bool

	All() map[meshaddr.Address]labels.Set
	GetByLabel(selector labels.Selector) map[meshaddr.Address]labels.Set
}

func New(p *provisioner.Provisioner) (NodeTable, error) {
	if p == nil {
		return nil, fmt.Errorf("cannot create a node table without a provisioner")
	}
	t, err := addrtable.New[labels.Set](meshaddr.MinUnicast, meshaddr.MaxUnicast, nil,
		func(addr meshaddr.Address) error {
			if !p.HasAllocated(addr, 1) {
				return fmt.Errorf("address %s is not allocated to provisioner %s", addr, p.Name())
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}
	return &nodeTable{
		table: t,
		p:     p,
	}, nil
}

type nodeTable struct {
	table addrtable.Table[labels.Set]
	p     *provisioner.Provisioner
}

func (r *nodeTable) Get(addr meshaddr.Address) (labels.Set, error) {
	return r.table.Get(addr)
}

func (r *nodeTable) Assign(addr meshaddr.Address, elementCount int, d labels.Set) error {
	if elementCount < 1 {
		elementCount = 1
	}
	// The element run must fit inside one allocated range, not just the
	// first address.
	if !r.p.HasAllocated(addr, elementCount) {
		return fmt.Errorf("span of %d starting at %s is not allocated to provisioner %s",
			elementCount, addr, r.p.Name())
	}
	return r.table.ClaimSpan(addr, elementCount, d)
}

func (r *nodeTable) AssignNext(elementCount int, d labels.Set) (meshaddr.Address, error) {
	if elementCount < 1 {
		elementCount = 1
	}
	return r.table.ClaimFreeSpan(elementCount, d)
}

func (r *nodeTable) Release(addr meshaddr.Address, elementCount int) error {
	return r.table.ReleaseSpan(addr, elementCount)
}

func (r *nodeTable) Count() int {
	return r.table.Count()
}

func (r *nodeTable) Has(addr meshaddr.Address) bool {
	return r.table.Has(addr)
}

func (r *nodeTable) IsFree(addr meshaddr.Address, elementCount int) bool {
	return r.table.IsFreeSpan(addr, elementCount)
}

func (r *nodeTable) All() map[meshaddr.Address]labels.Set {
	return r.table.All()
}

func (r *nodeTable) GetByLabel(selector labels.Selector) map[meshaddr.Address]labels.Set {
	entries := map[meshaddr.Address]labels.Set{}

	iter := r.table.Iterate()
	for iter.Next() {
		if selector.Matches(iter.Value()) {
			entries[iter.Address()] = iter.Value()
		}
	}
	return entries
}
