// Package provisioner holds the address-space allocations of one mesh
// provisioner: three independent normalized range sets (unicast, group,
// scene) plus identity. Allocation is permissive: input that cannot be
// classified is dropped without an error, and every mutation leaves the
// sets in canonical form.
package provisioner

import (
	"github.com/google/uuid"

	"github.com/meshprov/addrspace/pkg/meshaddr"
	"github.com/meshprov/addrspace/pkg/rangeset"
)

type Provisioner struct {
	id   uuid.UUID
	name string

	unicast *rangeset.Set[meshaddr.AddressRange]
	group   *rangeset.Set[meshaddr.AddressRange]
	scenes  *rangeset.Set[meshaddr.SceneRange]
}

// New creates a provisioner owning the full unicast, group and scene
// spaces.
func New(name string) *Provisioner {
	return NewWithRanges(name,
		[]meshaddr.AddressRange{meshaddr.AllUnicastRange()},
		[]meshaddr.AddressRange{meshaddr.AllGroupRange()},
		[]meshaddr.SceneRange{meshaddr.AllScenesRange()},
	)
}

// NewWithRanges creates a provisioner with explicit ranges. The ranges
// are normalized immediately.
func NewWithRanges(name string, unicast, group []meshaddr.AddressRange, scenes []meshaddr.SceneRange) *Provisioner {
	return NewWithID(uuid.New(), name, unicast, group, scenes)
}

// NewWithID rebuilds a provisioner with a known identity, typically from
// stored state. Stored ranges are not trusted to be canonical and are
// normalized here.
func NewWithID(id uuid.UUID, name string, unicast, group []meshaddr.AddressRange, scenes []meshaddr.SceneRange) *Provisioner {
	return &Provisioner{
		id:      id,
		name:    name,
		unicast: rangeset.New(unicast...),
		group:   rangeset.New(group...),
		scenes:  rangeset.New(scenes...),
	}
}

func (p *Provisioner) ID() uuid.UUID { return p.id }

func (p *Provisioner) Name() string { return p.name }

func (p *Provisioner) SetName(name string) { p.name = name }

func (p *Provisioner) UnicastRanges() []meshaddr.AddressRange {
	return p.unicast.Ranges()
}

func (p *Provisioner) GroupRanges() []meshaddr.AddressRange {
	return p.group.Ranges()
}

func (p *Provisioner) SceneRanges() []meshaddr.SceneRange {
	return p.scenes.Ranges()
}

// AllocateRange adds r to the unicast or group set depending on its
// kind. A range that is invalid, straddles bands or lies in a
// non-allocatable band is ignored and nothing mutates.
func (p *Provisioner) AllocateRange(r meshaddr.AddressRange) {
	switch r.Kind() {
	case meshaddr.KindUnicast:
		p.unicast.Add(r)
	case meshaddr.KindGroup:
		p.group.Add(r)
	default:
		// Permissive allocator: wrong-kind input is dropped.
	}
}

// AllocateSceneRange adds r to the scene set; invalid input is ignored.
func (p *Provisioner) AllocateSceneRange(r meshaddr.SceneRange) {
	if !r.IsValid() {
		return
	}
	p.scenes.Add(r)
}

// HasAllocated reports whether addr and the count-1 addresses after it
// all fall within one single allocated range of the matching kind.
// Addresses that are neither unicast nor group are never allocated.
// A count below 1 is treated as 1.
func (p *Provisioner) HasAllocated(addr meshaddr.Address, count int) bool {
	if count < 1 {
		count = 1
	}
	last := uint64(addr) + uint64(count) - 1
	switch addr.Kind() {
	case meshaddr.KindUnicast:
		return p.unicast.Covers(uint64(addr), last)
	case meshaddr.KindGroup:
		return p.group.Covers(uint64(addr), last)
	default:
		return false
	}
}

func (p *Provisioner) HasOverlappingUnicastRanges(other *Provisioner) bool {
	return other != nil && p.unicast.Overlaps(other.unicast)
}

func (p *Provisioner) HasOverlappingGroupRanges(other *Provisioner) bool {
	return other != nil && p.group.Overlaps(other.group)
}

func (p *Provisioner) HasOverlappingSceneRanges(other *Provisioner) bool {
	return other != nil && p.scenes.Overlaps(other.scenes)
}

// HasOverlappingRanges reports whether any of the three range sets of p
// intersects the corresponding set of other.
func (p *Provisioner) HasOverlappingRanges(other *Provisioner) bool {
	return p.HasOverlappingUnicastRanges(other) ||
		p.HasOverlappingGroupRanges(other) ||
		p.HasOverlappingSceneRanges(other)
}

// FirstAllocatedUnicastAddress scans the allocated unicast ranges in
// ascending order and returns from when some range contains it or has a
// low bound at or above it. The queried address is returned unchanged in
// both cases; callers depending on this behavior get it verbatim.
func (p *Provisioner) FirstAllocatedUnicastAddress(from meshaddr.Address) (meshaddr.Address, bool) {
	for _, r := range p.unicast.Ranges() {
		if r.Low() >= from || r.Contains(from) {
			return from, true
		}
	}
	return meshaddr.Unassigned, false
}

// Equal reports whether p and other are the same provisioner. Identity
// is the UUID; name and ranges do not participate.
func (p *Provisioner) Equal(other *Provisioner) bool {
	return other != nil && p.id == other.id
}

// IsValid reports whether all three range sets are non-empty and every
// range lies within the band of its kind.
func (p *Provisioner) IsValid() bool {
	if !p.unicast.IsValid() || !p.group.IsValid() || !p.scenes.IsValid() {
		return false
	}
	for _, r := range p.unicast.Ranges() {
		if r.Kind() != meshaddr.KindUnicast {
			return false
		}
	}
	for _, r := range p.group.Ranges() {
		if r.Kind() != meshaddr.KindGroup {
			return false
		}
	}
	return true
}
