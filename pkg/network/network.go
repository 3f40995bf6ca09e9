// Package network aggregates the provisioners sharing one mesh network
// and detects address-plan conflicts before admitting a new member.
package network

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/meshprov/addrspace/pkg/provisioner"
)

type Network struct {
	name         string
	provisioners []*provisioner.Provisioner
}

func New(name string) *Network {
	return &Network{name: name}
}

func (n *Network) Name() string { return n.name }

// Provisioners returns a copy of the member list.
func (n *Network) Provisioners() []*provisioner.Provisioner {
	out := make([]*provisioner.Provisioner, len(n.provisioners))
	copy(out, n.provisioners)
	return out
}

func (n *Network) Provisioner(id uuid.UUID) (*provisioner.Provisioner, bool) {
	for _, p := range n.provisioners {
		if p.ID() == id {
			return p, true
		}
	}
	return nil, false
}

// ConflictsWith returns the members whose unicast, group or scene ranges
// intersect those of p.
func (n *Network) ConflictsWith(p *provisioner.Provisioner) []*provisioner.Provisioner {
	var out []*provisioner.Provisioner
	for _, e := range n.provisioners {
		if e.Equal(p) {
			continue
		}
		if e.HasOverlappingRanges(p) {
			out = append(out, e)
		}
	}
	return out
}

// AddProvisioner admits p into the network. Admission fails when p is
// invalid, already a member, or its ranges overlap an existing member's.
func (n *Network) AddProvisioner(p *provisioner.Provisioner) error {
	if p == nil {
		return fmt.Errorf("cannot add a nil provisioner")
	}
	if !p.IsValid() {
		return fmt.Errorf("provisioner %q has no valid ranges", p.Name())
	}
	for _, e := range n.provisioners {
		if e.Equal(p) {
			return fmt.Errorf("provisioner %s is already a member", p.ID())
		}
	}
	if conflicts := n.ConflictsWith(p); len(conflicts) > 0 {
		return fmt.Errorf("ranges of provisioner %q overlap those of provisioner %q",
			p.Name(), conflicts[0].Name())
	}
	n.provisioners = append(n.provisioners, p)
	return nil
}

// RemoveProvisioner removes the member with the given id and reports
// whether it was present.
func (n *Network) RemoveProvisioner(id uuid.UUID) bool {
	for i, p := range n.provisioners {
		if p.ID() == id {
			n.provisioners = append(n.provisioners[:i], n.provisioners[i+1:]...)
			return true
		}
	}
	return false
}
