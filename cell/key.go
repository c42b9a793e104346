package cell

import (
	"fmt"
	"math"
	"strings"

	"github.com/lixenwraith/geomap/vmath"
)

// Key is a quadtree address: one base-4 digit per level, root is the empty key
// A key of length L extends its length L-1 parent, so prefix order is containment order
// Digit = xbit | ybit<<1 with y growing downward
type Key string

// Root is the level-0 cell covering the whole world
const Root Key = ""

// FromTile builds the key of tile (x, y) at level
func FromTile(x, y, level int) Key {
	var b strings.Builder
	b.Grow(level)
	for i := level; i > 0; i-- {
		mask := 1 << (i - 1)
		digit := byte('0')
		if x&mask != 0 {
			digit++
		}
		if y&mask != 0 {
			digit += 2
		}
		b.WriteByte(digit)
	}
	return Key(b.String())
}

// Parse validates s as a key
func Parse(s string) (Key, error) {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '3' {
			return Root, fmt.Errorf("cell key %q: invalid digit %q at %d", s, s[i], i)
		}
	}
	return Key(s), nil
}

// Level returns the quadtree depth of k
func (k Key) Level() int {
	return len(k)
}

// Tile decodes k into tile coordinates at its level
func (k Key) Tile() (x, y, level int) {
	level = len(k)
	for i := 0; i < level; i++ {
		d := k[i] - '0'
		x = x<<1 | int(d&1)
		y = y<<1 | int(d>>1)
	}
	return x, y, level
}

// Parent returns the enclosing cell, Root for Root
func (k Key) Parent() Key {
	if len(k) == 0 {
		return Root
	}
	return k[:len(k)-1]
}

// Ancestor returns the enclosing cell at level, k itself when level >= k.Level()
func (k Key) Ancestor(level int) Key {
	if level >= len(k) {
		return k
	}
	return k[:max(level, 0)]
}

// Children returns the four sub-cells in digit order
func (k Key) Children() [4]Key {
	return [4]Key{k + "0", k + "1", k + "2", k + "3"}
}

// Contains reports whether other lies inside k (k is a prefix of other)
func (k Key) Contains(other Key) bool {
	return strings.HasPrefix(string(other), string(k))
}

// Bounds returns the world-space square covered by k in a world of side worldSize
func (k Key) Bounds(worldSize float64) vmath.Rect {
	x, y, level := k.Tile()
	side := worldSize / float64(int(1)<<level)
	origin := vmath.V2(float64(x)*side, float64(y)*side)
	return vmath.Rect{Min: origin, Max: origin.Add(vmath.V2(side, side))}
}

// String returns the digits, "root" for the empty key
func (k Key) String() string {
	if k == Root {
		return "root"
	}
	return string(k)
}

// Cover returns the keys at level whose bounds intersect r, row-major from the top-left
// With wrapX, columns outside the world repeat modulo the tile count and are deduplicated
// Without it, r is clipped to the world
func Cover(r vmath.Rect, level int, worldSize float64, wrapX bool) []Key {
	if level < 0 || r.Empty() || worldSize <= 0 {
		return nil
	}
	n := 1 << level
	side := worldSize / float64(n)

	y0 := max(int(math.Floor(r.Min.Y/side)), 0)
	y1 := min(int(math.Ceil(r.Max.Y/side))-1, n-1)
	x0 := int(math.Floor(r.Min.X / side))
	x1 := int(math.Ceil(r.Max.X/side)) - 1
	if !wrapX {
		x0 = max(x0, 0)
		x1 = min(x1, n-1)
	} else if x1-x0+1 > n {
		x1 = x0 + n - 1
	}
	if y0 > y1 || x0 > x1 {
		return nil
	}

	keys := make([]Key, 0, (y1-y0+1)*(x1-x0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			keys = append(keys, FromTile(((x%n)+n)%n, y, level))
		}
	}
	return keys
}
