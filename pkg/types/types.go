package types

import "math"

// Box is an axis-aligned bounding box in XYXY pixel coordinates.
type Box [4]float64

func (b Box) Width() float64  { return b[2] - b[0] }
func (b Box) Height() float64 { return b[3] - b[1] }

func (b Box) Area() float64 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Center returns the box center (cx, cy).
func (b Box) Center() (float64, float64) {
	return b[0] + b.Width()/2, b[1] + b.Height()/2
}

// IoU returns the intersection over union of two boxes, 0 when disjoint.
func (b Box) IoU(o Box) float64 {
	x1 := math.Max(b[0], o[0])
	y1 := math.Max(b[1], o[1])
	x2 := math.Min(b[2], o[2])
	y2 := math.Min(b[3], o[3])
	iw, ih := x2-x1, y2-y1
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// XYAH converts to (center x, center y, aspect ratio w/h, height).
func (b Box) XYAH() [4]float64 {
	cx, cy := b.Center()
	h := b.Height()
	a := 0.0
	if h != 0 {
		a = b.Width() / h
	}
	return [4]float64{cx, cy, a, h}
}

// XYWH converts to (center x, center y, width, height).
func (b Box) XYWH() [4]float64 {
	cx, cy := b.Center()
	return [4]float64{cx, cy, b.Width(), b.Height()}
}

func BoxFromXYAH(v [4]float64) Box {
	w := v[2] * v[3]
	h := v[3]
	return Box{v[0] - w/2, v[1] - h/2, v[0] + w/2, v[1] + h/2}
}

func BoxFromXYWH(v [4]float64) Box {
	return Box{v[0] - v[2]/2, v[1] - v[3]/2, v[0] + v[2]/2, v[1] + v[3]/2}
}
