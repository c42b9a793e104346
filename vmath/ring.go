package vmath

// RingContains tests p against a closed ring with the even-odd ray rule
// The ring may or may not repeat its first vertex at the end
func RingContains(ring []Vec2, p Vec2) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := ring[i], ring[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// RingsContain tests a ring set: first ring is the shell, following rings are holes
// Rings are combined with the even-odd rule so nested islands inside holes also count
func RingsContain(rings [][]Vec2, p Vec2) bool {
	inside := false
	for _, ring := range rings {
		if RingContains(ring, p) {
			inside = !inside
		}
	}
	return inside
}

// RingArea returns the signed shoelace area, positive for counter-clockwise in y-up space
func RingArea(ring []Vec2) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	var sum float64
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		sum += ring[j].X*ring[i].Y - ring[i].X*ring[j].Y
	}
	return sum / 2
}
