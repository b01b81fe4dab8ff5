// Package color provides basic color definitions for a chess game
package color

// Color represent a chess color
type Color string

// Possible color variations in a chess game
const (
	None  Color = ""
	White Color = "white"
	Black Color = "black"
)

// Opp returns the opposite color for the given color.
func (c Color) Opp() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	}

	return None
}

// Valid reports whether c names one of the two sides
func (c Color) Valid() bool {
	return c == White || c == Black
}

// Title returns the capitalized color name used in player facing text
func (c Color) Title() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	}

	return ""
}

// Parse accepts the long and short spellings used by clients ("white", "w")
func Parse(s string) (Color, bool) {
	switch s {
	case "white", "w", "White":
		return White, true
	case "black", "b", "Black":
		return Black, true
	}

	return None, false
}
