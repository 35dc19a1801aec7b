package er

// StyleParams is the partial global style as submitted by callers.
// Nil fields fall back to engine defaults; non-numeric JSON input is
// rejected by the decoder before it reaches the engine, so every present
// field is a usable number.
type StyleParams struct {
	EntityScale    *float64 `json:"entityScale,omitempty" bson:"entity_scale,omitempty"`
	RelationScale  *float64 `json:"relationScale,omitempty" bson:"relation_scale,omitempty"`
	AttributeScale *float64 `json:"attributeScale,omitempty" bson:"attribute_scale,omitempty"`
	GapX           *float64 `json:"gapX,omitempty" bson:"gap_x,omitempty"`
	GapY           *float64 `json:"gapY,omitempty" bson:"gap_y,omitempty"`
	LineWidth      *float64 `json:"lineWidth,omitempty" bson:"line_width,omitempty"`
	FontScale      *float64 `json:"fontScale,omitempty" bson:"font_scale,omitempty"`
}

// NodeStyleParams is a partial per-node override. Overrides are owned and
// persisted by the caller across render calls; the engine only clamps and
// applies them.
type NodeStyleParams struct {
	Scale       *float64 `json:"scale,omitempty" bson:"scale,omitempty"`
	OffsetX     *float64 `json:"offsetX,omitempty" bson:"offset_x,omitempty"`
	OffsetY     *float64 `json:"offsetY,omitempty" bson:"offset_y,omitempty"`
	StrokeWidth *float64 `json:"strokeWidth,omitempty" bson:"stroke_width,omitempty"`
	Fill        *string  `json:"fill,omitempty" bson:"fill,omitempty"`
	TextColor   *string  `json:"textColor,omitempty" bson:"text_color,omitempty"`
}
