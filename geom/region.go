// Package geom resolves 2D points against annotated regions on drawing
// pages. Coordinates are normalized to [0,1] relative to the rendered page;
// range enforcement belongs to the layer that stores annotations, not here.
package geom

import (
	"encoding/json"

	"github.com/calibrant/gdtbench/errors"
)

// Region kinds as stored in annotation rows.
const (
	KindBox     = "box"
	KindPolygon = "polygon"
)

// Point is a normalized page coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Region is a closed variant: Box or Polygon.
type Region interface {
	isRegion()
}

// Box is an axis-aligned rectangle anchored at its top-left corner.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Polygon is an implicitly closed ring; the last point connects back to the
// first. Fewer than three points never match anything.
type Polygon struct {
	Points []Point `json:"points"`
}

func (Box) isRegion()     {}
func (Polygon) isRegion() {}

// epsilon pads the ray-casting denominator so near-horizontal edges do not
// divide by zero.
const epsilon = 1e-12

// Contains reports whether p lies inside r. Box bounds are inclusive.
// Polygon containment uses the ray-casting parity test: a horizontal ray
// from p crosses an edge when exactly one endpoint's y is strictly greater
// than p's, and the crossing lies to the right of p. An odd crossing count
// means inside.
func Contains(r Region, p Point) bool {
	switch v := r.(type) {
	case Box:
		return p.X >= v.X && p.X <= v.X+v.W && p.Y >= v.Y && p.Y <= v.Y+v.H
	case Polygon:
		n := len(v.Points)
		if n < 3 {
			return false
		}
		inside := false
		for i := 0; i < n; i++ {
			a := v.Points[i]
			b := v.Points[(i+1)%n]
			if (a.Y > p.Y) == (b.Y > p.Y) {
				continue
			}
			xCross := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y+epsilon) + a.X
			if p.X < xCross {
				inside = !inside
			}
		}
		return inside
	default:
		return false
	}
}

// ParseRegion decodes stored annotation coordinates into a Region. Box
// coordinates are an {x,y,w,h} object; polygon coordinates are a {points}
// object with a list of {x,y} pairs.
func ParseRegion(kind string, coords json.RawMessage) (Region, error) {
	switch kind {
	case KindBox:
		var b Box
		if err := json.Unmarshal(coords, &b); err != nil {
			return nil, err
		}
		return b, nil
	case KindPolygon:
		var poly Polygon
		if err := json.Unmarshal(coords, &poly); err != nil {
			return nil, err
		}
		return poly, nil
	default:
		return nil, errors.Newf("unknown region kind: %s", kind)
	}
}
