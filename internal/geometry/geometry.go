// Package geometry provides the positioned primitives shared by every
// entity in an annotation document: unit-tagged rectangles and line
// segments, containment and overlap tests, and coordinate composition.
//
// No unit conversion happens implicitly. Mixing units inside one form is
// a validation concern, never a silent conversion; the explicit helpers
// at the bottom of this file exist only for callers that compare against
// external measurements (such as PDF page dimensions in points).
package geometry

import "fmt"

// Unit represents the measurement unit a page declares for all of its
// coordinates. Positions never carry their own unit; they inherit the
// owning page's.
type Unit string

const (
	UnitInches Unit = "inches"
	UnitPoints Unit = "points"
	UnitMM     Unit = "mm"
	UnitCM     Unit = "cm"
)

// Epsilon is the tolerance used for all floating-point coordinate
// comparisons. Annotation coordinates are hand-authored decimals, so
// anything closer than this is treated as touching, not overlapping.
const Epsilon = 1e-6

// pointsPer maps each unit to its size in PDF points (1/72 inch).
var pointsPer = map[Unit]float64{
	UnitInches: 72.0,
	UnitPoints: 1.0,
	UnitMM:     72.0 / 25.4,
	UnitCM:     72.0 / 2.54,
}

// ValidUnit reports whether u is one of the supported page units.
func ValidUnit(u Unit) bool {
	_, ok := pointsPer[u]
	return ok
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line is a straight segment between two points, used by layout
// elements whose element_type draws a stroke rather than fills a box.
type Line struct {
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`
}

// NewRect constructs a rectangle, rejecting negative dimensions.
func NewRect(startX, startY, width, height float64) (Rect, error) {
	if width < 0 || height < 0 {
		return Rect{}, fmt.Errorf("rectangle dimensions must be non-negative, got width=%g height=%g", width, height)
	}
	return Rect{StartX: startX, StartY: startY, Width: width, Height: height}, nil
}

// NewLine constructs a line segment, rejecting degenerate zero-length lines.
func NewLine(startX, startY, endX, endY float64) (Line, error) {
	if nearlyEqual(startX, endX) && nearlyEqual(startY, endY) {
		return Line{}, fmt.Errorf("line endpoints must differ, got (%g,%g)", startX, startY)
	}
	return Line{StartX: startX, StartY: startY, EndX: endX, EndY: endY}, nil
}

// EndX returns the rectangle's right edge coordinate.
func (r Rect) EndX() float64 { return r.StartX + r.Width }

// EndY returns the rectangle's bottom edge coordinate.
func (r Rect) EndY() float64 { return r.StartY + r.Height }

// IsZero reports whether the rectangle is the zero value.
func (r Rect) IsZero() bool {
	return r.StartX == 0 && r.StartY == 0 && r.Width == 0 && r.Height == 0
}

// Contains reports whether inner lies entirely within outer, inclusive
// of edges. A rectangle contains itself.
func Contains(outer, inner Rect) bool {
	return inner.StartX >= outer.StartX-Epsilon &&
		inner.StartY >= outer.StartY-Epsilon &&
		inner.EndX() <= outer.EndX()+Epsilon &&
		inner.EndY() <= outer.EndY()+Epsilon
}

// ContainsLine reports whether both endpoints of the line lie within
// the rectangle, inclusive of edges.
func ContainsLine(outer Rect, l Line) bool {
	return pointIn(outer, l.StartX, l.StartY) && pointIn(outer, l.EndX, l.EndY)
}

// Overlaps reports whether the interiors of a and b intersect. Shared
// edges and corners do not count: two boxes that merely touch are
// considered adjacent, which is the normal layout for segmented inputs.
func Overlaps(a, b Rect) bool {
	return a.StartX+Epsilon < b.EndX() &&
		b.StartX+Epsilon < a.EndX() &&
		a.StartY+Epsilon < b.EndY() &&
		b.StartY+Epsilon < a.EndY()
}

// Compose translates a child's parent-relative rectangle into the
// parent's coordinate space by vector addition of origins. Chaining
// Compose from the page origin down yields absolute page coordinates.
func Compose(parent, child Rect) Rect {
	return Rect{
		StartX: parent.StartX + child.StartX,
		StartY: parent.StartY + child.StartY,
		Width:  child.Width,
		Height: child.Height,
	}
}

// ComposeLine translates a line by the parent rectangle's origin.
func ComposeLine(parent Rect, l Line) Line {
	return Line{
		StartX: parent.StartX + l.StartX,
		StartY: parent.StartY + l.StartY,
		EndX:   parent.StartX + l.EndX,
		EndY:   parent.StartY + l.EndY,
	}
}

// ToPoints converts a length in the given unit to PDF points. Callers
// use this when comparing annotation geometry against a real PDF; the
// engine itself never converts between page units.
func ToPoints(v float64, u Unit) (float64, error) {
	f, ok := pointsPer[u]
	if !ok {
		return 0, fmt.Errorf("unknown unit: %q", u)
	}
	return v * f, nil
}

func pointIn(r Rect, x, y float64) bool {
	return x >= r.StartX-Epsilon && x <= r.EndX()+Epsilon &&
		y >= r.StartY-Epsilon && y <= r.EndY()+Epsilon
}

func nearlyEqual(a, b float64) bool {
	d := a - b
	return d < Epsilon && d > -Epsilon
}
