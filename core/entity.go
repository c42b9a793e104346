package core

import "strconv"

// Entity is an opaque identifier grouping zero or more components
type Entity uint64

// NoEntity is the zero id, never handed out by a world
const NoEntity Entity = 0

func (e Entity) String() string {
	if e == NoEntity {
		return "Entity(none)"
	}
	return "Entity(" + strconv.FormatUint(uint64(e), 10) + ")"
}
