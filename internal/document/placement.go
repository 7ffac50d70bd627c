package document

import (
	"encoding/json"
	"fmt"

	"github.com/formlab/annotate/internal/geometry"
)

// Placement is the position of a layout element, which is either a
// rectangle {startX, startY, width, height} or a line segment
// {startX, startY, endX, endY} depending on the element type. Exactly
// one of Rect and Line is set.
type Placement struct {
	Rect *geometry.Rect
	Line *geometry.Line
}

// placementWire distinguishes the two position shapes on decode. Width
// and height win when both shapes' keys are present, matching the
// rectangle-first reading of the annotation format.
type placementWire struct {
	StartX float64  `json:"startX"`
	StartY float64  `json:"startY"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	EndX   *float64 `json:"endX,omitempty"`
	EndY   *float64 `json:"endY,omitempty"`
}

// IsRect reports whether the placement is a rectangle.
func (p Placement) IsRect() bool { return p.Rect != nil }

// IsLine reports whether the placement is a line segment.
func (p Placement) IsLine() bool { return p.Line != nil }

// UnmarshalJSON decodes either position shape.
func (p *Placement) UnmarshalJSON(data []byte) error {
	var w placementWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch {
	case w.Width != nil && w.Height != nil:
		p.Rect = &geometry.Rect{StartX: w.StartX, StartY: w.StartY, Width: *w.Width, Height: *w.Height}
		p.Line = nil
	case w.EndX != nil && w.EndY != nil:
		p.Line = &geometry.Line{StartX: w.StartX, StartY: w.StartY, EndX: *w.EndX, EndY: *w.EndY}
		p.Rect = nil
	default:
		return fmt.Errorf("position requires width/height or endX/endY")
	}
	return nil
}

// MarshalJSON encodes whichever shape is set.
func (p Placement) MarshalJSON() ([]byte, error) {
	switch {
	case p.Rect != nil:
		return json.Marshal(p.Rect)
	case p.Line != nil:
		return json.Marshal(p.Line)
	default:
		return nil, fmt.Errorf("placement has neither rectangle nor line")
	}
}
