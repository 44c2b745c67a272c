package geom

import "fmt"

// Normal is the outward axis direction a rectangle faces. NormalFlat marks
// a footprint that has not been extruded yet.
type Normal int8

const (
	NormalFlat   Normal = 0
	NormalXPlus  Normal = 1
	NormalXMinus Normal = -1
	NormalYPlus  Normal = 2
	NormalYMinus Normal = -2
	NormalZPlus  Normal = 3
	NormalZMinus Normal = -3
)

// Axis returns 0, 1 or 2 for x, y or z. A flat normal reports z.
func (n Normal) Axis() int {
	switch n {
	case NormalXPlus, NormalXMinus:
		return 0
	case NormalYPlus, NormalYMinus:
		return 1
	}
	return 2
}

// Sign returns +1 for outward-positive normals, -1 for negative ones and
// +1 for a flat footprint, which is treated as facing up.
func (n Normal) Sign() int {
	if n < 0 {
		return -1
	}
	return 1
}

func (n Normal) String() string {
	switch n {
	case NormalFlat:
		return "flat"
	case NormalXPlus:
		return "+x"
	case NormalXMinus:
		return "-x"
	case NormalYPlus:
		return "+y"
	case NormalYMinus:
		return "-y"
	case NormalZPlus:
		return "+z"
	case NormalZMinus:
		return "-z"
	default:
		return fmt.Sprintf("Normal(%d)", int(n))
	}
}
