package meshaddr

import "fmt"

// Address is a 16-bit mesh address.
type Address uint16

// Bands of the mesh addressing scheme. Only unicast and group addresses
// are allocatable; virtual and fixed group addresses are classified but
// never handed out.
const (
	Unassigned Address = 0x0000

	MinUnicast Address = 0x0001
	MaxUnicast Address = 0x7FFF

	MinVirtual Address = 0x8000
	MaxVirtual Address = 0xBFFF

	MinGroup Address = 0xC000
	MaxGroup Address = 0xFEFF

	MinFixedGroup Address = 0xFF00
	MaxFixedGroup Address = 0xFFFF
)

type Kind int

const (
	KindUnassigned Kind = iota
	KindUnicast
	KindVirtual
	KindGroup
	KindFixedGroup
)

func (k Kind) String() string {
	switch k {
	case KindUnicast:
		return "unicast"
	case KindVirtual:
		return "virtual"
	case KindGroup:
		return "group"
	case KindFixedGroup:
		return "fixed-group"
	default:
		return "unassigned"
	}
}

// Kind classifies the address by the band it falls in.
func (a Address) Kind() Kind {
	switch {
	case a == Unassigned:
		return KindUnassigned
	case a <= MaxUnicast:
		return KindUnicast
	case a <= MaxVirtual:
		return KindVirtual
	case a <= MaxGroup:
		return KindGroup
	default:
		return KindFixedGroup
	}
}

func (a Address) IsUnicast() bool { return a.Kind() == KindUnicast }

func (a Address) IsGroup() bool { return a.Kind() == KindGroup }

func (a Address) String() string {
	return fmt.Sprintf("0x%04x", uint16(a))
}
