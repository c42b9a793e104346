// Package terminal hosts the map in a tcell screen
// Each cell shows two vertically stacked pixels with a half-block glyph,
// so a W x H terminal renders a W x 2(H-1) map above a one-row status line
package terminal
