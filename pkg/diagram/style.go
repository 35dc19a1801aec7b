package diagram

import (
	"math"
	"regexp"

	"github.com/erdraw/erdraw/pkg/er"
)

// Global style defaults. Callers are free to omit any field; these are the
// values an empty StyleParams resolves to.
const (
	DefaultEntityScale    = 1.0
	DefaultRelationScale  = 1.0
	DefaultAttributeScale = 1.0
	DefaultGapX           = 120.0
	DefaultGapY           = 70.0
	DefaultLineWidth      = 2.0
	DefaultFontScale      = 1.0
)

// Default node colors, matching the class colors of the Mermaid export.
const (
	DefaultFill      = "#ffffff"
	DefaultTextColor = "#111111"
)

// Per-node override clamp ranges.
const (
	minNodeScale   = 0.6
	maxNodeScale   = 2.8
	maxNodeOffset  = 1400.0
	maxStrokeWidth = 12.0
)

var hexColorRe = regexp.MustCompile(`^#[0-9a-fA-F]{3}(?:[0-9a-fA-F]{3})?$`)

// Style is the fully-populated global style applied to a whole scene.
type Style struct {
	EntityScale    float64 `json:"entityScale"`
	RelationScale  float64 `json:"relationScale"`
	AttributeScale float64 `json:"attributeScale"`
	GapX           float64 `json:"gapX"`
	GapY           float64 `json:"gapY"`
	LineWidth      float64 `json:"lineWidth"`
	FontScale      float64 `json:"fontScale"`
}

// NodeStyle is a fully-populated per-node style. A zero StrokeWidth means
// "no override"; the serializer falls back to the global line width rule.
type NodeStyle struct {
	Scale       float64 `json:"scale"`
	OffsetX     float64 `json:"offsetX"`
	OffsetY     float64 `json:"offsetY"`
	StrokeWidth float64 `json:"strokeWidth,omitempty"`
	Fill        string  `json:"fill"`
	TextColor   string  `json:"textColor"`
}

// DefaultNodeStyle returns the node style used when no override exists.
func DefaultNodeStyle() NodeStyle {
	return NodeStyle{
		Scale:     1.0,
		Fill:      DefaultFill,
		TextColor: DefaultTextColor,
	}
}

// NormalizeStyle resolves a partial style into a complete one. Absent or
// non-finite fields take their defaults; scales and gaps must be positive.
// Malformed input never produces an error, only a usable value.
func NormalizeStyle(p er.StyleParams) Style {
	return Style{
		EntityScale:    positiveOr(p.EntityScale, DefaultEntityScale),
		RelationScale:  positiveOr(p.RelationScale, DefaultRelationScale),
		AttributeScale: positiveOr(p.AttributeScale, DefaultAttributeScale),
		GapX:           positiveOr(p.GapX, DefaultGapX),
		GapY:           positiveOr(p.GapY, DefaultGapY),
		LineWidth:      nonNegativeOr(p.LineWidth, DefaultLineWidth),
		FontScale:      positiveOr(p.FontScale, DefaultFontScale),
	}
}

// NormalizeNodeStyle clamps a partial per-node override into safe ranges.
func NormalizeNodeStyle(p er.NodeStyleParams) NodeStyle {
	s := DefaultNodeStyle()
	if v, ok := finite(p.Scale); ok {
		s.Scale = clamp(v, minNodeScale, maxNodeScale)
	}
	if v, ok := finite(p.OffsetX); ok {
		s.OffsetX = clamp(v, -maxNodeOffset, maxNodeOffset)
	}
	if v, ok := finite(p.OffsetY); ok {
		s.OffsetY = clamp(v, -maxNodeOffset, maxNodeOffset)
	}
	if v, ok := finite(p.StrokeWidth); ok {
		s.StrokeWidth = clamp(v, 0, maxStrokeWidth)
	}
	if p.Fill != nil && hexColorRe.MatchString(*p.Fill) {
		s.Fill = *p.Fill
	}
	if p.TextColor != nil && hexColorRe.MatchString(*p.TextColor) {
		s.TextColor = *p.TextColor
	}
	return s
}

// NormalizeOverrides resolves a partial override map. The returned map
// contains only the ids present in the input; lookups for other ids use
// DefaultNodeStyle.
func NormalizeOverrides(m map[string]er.NodeStyleParams) map[string]NodeStyle {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]NodeStyle, len(m))
	for id, p := range m {
		out[id] = NormalizeNodeStyle(p)
	}
	return out
}

func nodeStyleFor(overrides map[string]NodeStyle, id string) NodeStyle {
	if s, ok := overrides[id]; ok {
		return s
	}
	return DefaultNodeStyle()
}

func finite(p *float64) (float64, bool) {
	if p == nil || math.IsNaN(*p) || math.IsInf(*p, 0) {
		return 0, false
	}
	return *p, true
}

func positiveOr(p *float64, def float64) float64 {
	if v, ok := finite(p); ok && v > 0 {
		return v
	}
	return def
}

func nonNegativeOr(p *float64, def float64) float64 {
	if v, ok := finite(p); ok && v >= 0 {
		return v
	}
	return def
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
