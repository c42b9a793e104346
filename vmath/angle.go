package vmath

import "math"

const TwoPi = 2 * math.Pi

// NormalizeAngle maps a radian angle into [0, 2π)
func NormalizeAngle(a float64) float64 {
	return Mod(a, TwoPi)
}

// Radians converts degrees to radians
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

// Degrees converts radians to degrees
func Degrees(rad float64) float64 { return rad * 180 / math.Pi }

// ScreenPolarAngle returns the angle of p around c measured counter-clockwise as seen on screen
// (screen y grows downward) starting from 12 o'clock, in [0, 2π)
func ScreenPolarAngle(c, p Vec2) float64 {
	dx := p.X - c.X
	dyUp := c.Y - p.Y
	return NormalizeAngle(math.Atan2(dyUp, dx) - math.Pi/2)
}

// ScreenPolarPoint is the inverse of ScreenPolarAngle: the point at radius r and angle a around c
func ScreenPolarPoint(c Vec2, r, a float64) Vec2 {
	return Vec2{X: c.X - r*math.Sin(a), Y: c.Y - r*math.Cos(a)}
}
