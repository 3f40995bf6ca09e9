package meshaddr

import (
	"fmt"
	"strconv"
	"strings"
)

// AddressRange is a closed interval of mesh addresses.
type AddressRange struct {
	low  Address
	high Address
}

func RangeFrom(low, high Address) AddressRange {
	return AddressRange{low: low, high: high}
}

// AllUnicastRange covers the whole unicast band.
func AllUnicastRange() AddressRange {
	return RangeFrom(MinUnicast, MaxUnicast)
}

// AllGroupRange covers the whole allocatable group band.
func AllGroupRange() AddressRange {
	return RangeFrom(MinGroup, MaxGroup)
}

// Low returns the lower bound of r.
func (r AddressRange) Low() Address { return r.low }

// High returns the upper bound of r.
func (r AddressRange) High() Address { return r.high }

func (r AddressRange) From() uint64 { return uint64(r.low) }

func (r AddressRange) To() uint64 { return uint64(r.high) }

func (r AddressRange) SetTo(to uint64) AddressRange {
	r.high = Address(to)
	return r
}

func (r AddressRange) IsValid() bool {
	return r.low != Unassigned && r.low <= r.high
}

// Kind classifies the range. A range is unicast or group only if both
// bounds fall in that band; a range straddling bands has no kind and is
// not allocatable.
func (r AddressRange) Kind() Kind {
	if !r.IsValid() {
		return KindUnassigned
	}
	k := r.low.Kind()
	if k != r.high.Kind() {
		return KindUnassigned
	}
	return k
}

func (r AddressRange) Contains(a Address) bool {
	return r.low <= a && a <= r.high
}

func (r AddressRange) Overlaps(other AddressRange) bool {
	return r.low <= other.high && other.low <= r.high
}

func (r AddressRange) String() string {
	return fmt.Sprintf("%s-%s", r.low, r.high)
}

// ParseRange parses an address range in the form "low-high". Bounds are
// decimal or 0x-prefixed hex.
func ParseRange(s string) (AddressRange, error) {
	low, high, err := parseBounds(s)
	if err != nil {
		return AddressRange{}, err
	}
	return RangeFrom(Address(low), Address(high)), nil
}

// SceneRange is a closed interval of scene numbers.
type SceneRange struct {
	low  SceneNumber
	high SceneNumber
}

func SceneRangeFrom(low, high SceneNumber) SceneRange {
	return SceneRange{low: low, high: high}
}

// AllScenesRange covers the whole scene number space.
func AllScenesRange() SceneRange {
	return SceneRangeFrom(MinScene, MaxScene)
}

func (r SceneRange) Low() SceneNumber { return r.low }

func (r SceneRange) High() SceneNumber { return r.high }

func (r SceneRange) From() uint64 { return uint64(r.low) }

func (r SceneRange) To() uint64 { return uint64(r.high) }

func (r SceneRange) SetTo(to uint64) SceneRange {
	r.high = SceneNumber(to)
	return r
}

func (r SceneRange) IsValid() bool {
	return r.low.IsValid() && r.low <= r.high
}

func (r SceneRange) Contains(s SceneNumber) bool {
	return r.low <= s && s <= r.high
}

func (r SceneRange) Overlaps(other SceneRange) bool {
	return r.low <= other.high && other.low <= r.high
}

func (r SceneRange) String() string {
	return fmt.Sprintf("%s-%s", r.low, r.high)
}

// ParseSceneRange parses a scene range in the form "low-high".
func ParseSceneRange(s string) (SceneRange, error) {
	low, high, err := parseBounds(s)
	if err != nil {
		return SceneRange{}, err
	}
	return SceneRangeFrom(SceneNumber(low), SceneNumber(high)), nil
}

func parseBounds(s string) (uint64, uint64, error) {
	h := strings.IndexByte(s, '-')
	if h == -1 {
		return 0, 0, fmt.Errorf("no hyphen in range %q", s)
	}
	from, to := s[:h], s[h+1:]
	low, err := strconv.ParseUint(from, 0, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid low bound %q in range %q", from, s)
	}
	high, err := strconv.ParseUint(to, 0, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid high bound %q in range %q", to, s)
	}
	return low, high, nil
}
