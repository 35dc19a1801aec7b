package pipeline

import (
	"github.com/erdraw/erdraw/pkg/diagram"
	"github.com/erdraw/erdraw/pkg/er"
)

// Compose runs the layout engine on a model. The engine itself never fails;
// malformed style input is normalized away, and an empty model yields the
// fallback canvas.
func Compose(m er.Model, opts Options) diagram.Scene {
	return diagram.Compose(m, opts.Style, opts.Overrides)
}
