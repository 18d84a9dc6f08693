// Package interpolate renders Liquid templates found in agent options.
package interpolate

import (
	"fmt"
	"strings"

	"github.com/osteele/liquid"
)

// Interpolator renders option values against a set of bindings.
type Interpolator struct {
	engine *liquid.Engine
}

func New() *Interpolator {
	return &Interpolator{engine: liquid.NewEngine()}
}

// String renders a single template. Strings without markup are returned as is.
func (i *Interpolator) String(src string, bindings map[string]any) (string, error) {
	if !strings.Contains(src, "{{") && !strings.Contains(src, "{%") {
		return src, nil
	}
	out, serr := i.engine.ParseAndRenderString(src, bindings)
	if serr != nil {
		return "", fmt.Errorf("interpolate %q: %w", src, serr)
	}
	return out, nil
}

// Options renders every string leaf of opts, recursing into nested maps and
// slices. Non-string leaves are copied unchanged.
func (i *Interpolator) Options(opts map[string]any, bindings map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(opts))
	for k, v := range opts {
		rv, err := i.value(v, bindings)
		if err != nil {
			return nil, fmt.Errorf("option %s: %w", k, err)
		}
		out[k] = rv
	}
	return out, nil
}

func (i *Interpolator) value(v any, bindings map[string]any) (any, error) {
	switch t := v.(type) {
	case string:
		return i.String(t, bindings)
	case map[string]any:
		return i.Options(t, bindings)
	case []any:
		out := make([]any, len(t))
		for n, e := range t {
			rv, err := i.value(e, bindings)
			if err != nil {
				return nil, err
			}
			out[n] = rv
		}
		return out, nil
	default:
		return v, nil
	}
}
