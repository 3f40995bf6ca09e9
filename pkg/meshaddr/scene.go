package meshaddr

import "fmt"

// SceneNumber identifies a scene. Scene numbers have no unicast/group
// distinction; 0x0000 is invalid.
type SceneNumber uint16

const (
	MinScene SceneNumber = 0x0001
	MaxScene SceneNumber = 0xFFFF
)

func (s SceneNumber) IsValid() bool { return s >= MinScene }

func (s SceneNumber) String() string {
	return fmt.Sprintf("0x%04x", uint16(s))
}
