package diagram

// Approximate per-rune width multipliers relative to font size. The engine
// has no text-measurement facility; labels are sized by classifying each
// rune and summing class multipliers. Must stay pure and deterministic.
const (
	charWidthWide  = 1.00 // CJK-range runes render near-square
	charWidthUpper = 0.74
	charWidthLower = 0.58 // lowercase, digits, underscore
	charWidthOther = 0.50
)

// Shape sizing constants. Widths derive from the label estimate plus fixed
// padding, then scale by the applicable global and per-node scales.
const (
	entityFontSize   = 14.0
	entityPadX       = 18.0
	entityMinWidth   = 90.0
	entityBaseHeight = 46.0

	relationFontSize = 14.0
	relationPadX     = 26.0
	relationMinWidth = 110.0
	relationAspect   = 0.62 // diamond height as a ratio of its width

	attributeFontSize = 12.0
	attributePadX     = 14.0
	attributeMinRx    = 34.0
	attributeAspect   = 0.52 // ellipse ry as a ratio of rx
)

// TextWidth estimates the rendered pixel width of a label at the given font
// size.
func TextWidth(s string, fontSize float64) float64 {
	w := 0.0
	for _, r := range s {
		switch {
		case isWideRune(r):
			w += charWidthWide
		case r >= 'A' && r <= 'Z':
			w += charWidthUpper
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			w += charWidthLower
		default:
			w += charWidthOther
		}
	}
	return w * fontSize
}

// isWideRune reports whether r falls in a CJK block.
func isWideRune(r rune) bool {
	switch {
	case r >= 0x2E80 && r <= 0x9FFF: // radicals, kana, CJK ideographs
		return true
	case r >= 0xAC00 && r <= 0xD7AF: // hangul syllables
		return true
	case r >= 0xF900 && r <= 0xFAFF: // compatibility ideographs
		return true
	case r >= 0xFF00 && r <= 0xFFEF: // fullwidth forms
		return true
	}
	return false
}

// entitySize returns the rectangle extent for an entity label.
func entitySize(name string, st Style, nodeScale float64) (w, h float64) {
	scale := st.EntityScale * nodeScale
	w = TextWidth(name, entityFontSize) + 2*entityPadX
	if w < entityMinWidth {
		w = entityMinWidth
	}
	return w * scale, entityBaseHeight * scale
}

// relationSize returns the rhombus extent for a relationship label. Height
// is derived from width by the diamond aspect, not measured independently.
func relationSize(name string, st Style, nodeScale float64) (w, h float64) {
	scale := st.RelationScale * nodeScale
	w = TextWidth(name, relationFontSize) + 2*relationPadX
	if w < relationMinWidth {
		w = relationMinWidth
	}
	w *= scale
	return w, w * relationAspect
}

// attributeSize returns the ellipse half-extents for an attribute label.
func attributeSize(name string, st Style, nodeScale float64) (rx, ry float64) {
	scale := st.AttributeScale * nodeScale
	rx = TextWidth(name, attributeFontSize)/2 + attributePadX
	if rx < attributeMinRx {
		rx = attributeMinRx
	}
	rx *= scale
	return rx, rx * attributeAspect
}
