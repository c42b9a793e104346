package cell

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/geomap/vmath"
)

func TestKeyTileRoundTrip(t *testing.T) {
	tests := []struct {
		x, y, level int
		want        Key
	}{
		{0, 0, 0, Root},
		{1, 0, 1, "1"},
		{0, 1, 1, "2"},
		{1, 1, 1, "3"},
		{3, 5, 3, "213"},
		{35210, 21493, 16, FromTile(35210, 21493, 16)},
	}
	for _, tt := range tests {
		k := FromTile(tt.x, tt.y, tt.level)
		assert.Equal(t, tt.want, k)
		x, y, level := k.Tile()
		assert.Equal(t, [3]int{tt.x, tt.y, tt.level}, [3]int{x, y, level}, "key %s", k)
	}
}

func TestKeyHierarchy(t *testing.T) {
	k := Key("0312")
	assert.Equal(t, Key("031"), k.Parent())
	assert.Equal(t, Root, Root.Parent())
	assert.Equal(t, Key("03"), k.Ancestor(2))
	assert.Equal(t, k, k.Ancestor(9))
	assert.True(t, Key("03").Contains(k))
	assert.False(t, Key("1").Contains(k))

	for _, c := range k.Children() {
		assert.Equal(t, k, c.Parent())
		assert.Equal(t, k.Level()+1, c.Level())
		assert.True(t, k.Contains(c))
	}

	// Child bounds tile the parent bounds
	parent := k.Bounds(256)
	var union vmath.Rect
	for i, c := range k.Children() {
		b := c.Bounds(256)
		if i == 0 {
			union = b
		} else {
			union = union.Union(b)
		}
	}
	assert.Equal(t, parent, union)
}

func TestParse(t *testing.T) {
	k, err := Parse("0123")
	require.NoError(t, err)
	assert.Equal(t, Key("0123"), k)
	_, err = Parse("014")
	assert.Error(t, err)
}

func TestCover(t *testing.T) {
	t.Run("clipped", func(t *testing.T) {
		keys := Cover(vmath.R(-10, -10, 100, 100), 1, 256, false)
		assert.Equal(t, []Key{"0"}, keys)
	})
	t.Run("exact tiles", func(t *testing.T) {
		keys := Cover(vmath.R(0, 0, 256, 256), 1, 256, false)
		assert.Equal(t, []Key{"0", "1", "2", "3"}, keys)
	})
	t.Run("wrapped", func(t *testing.T) {
		keys := Cover(vmath.R(-64, 0, 64, 100), 1, 256, true)
		assert.Equal(t, []Key{"1", "0"}, keys)
	})
	t.Run("wrap wider than world", func(t *testing.T) {
		keys := Cover(vmath.R(-300, 0, 600, 10), 1, 256, true)
		assert.Len(t, keys, 2)
	})
	t.Run("outside", func(t *testing.T) {
		assert.Empty(t, Cover(vmath.R(300, 300, 400, 400), 2, 256, false))
	})
}
