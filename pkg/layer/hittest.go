package layer

import "github.com/devicelab-dev/element-resolver/pkg/core"

// HitOptions control a hit test.
type HitOptions struct {
	// TopMostOnly stops at the first hit.
	TopMostOnly bool `json:"topMostOnly"`
	// ClickableOnly skips non-clickable nodes without letting them block
	// the nodes beneath.
	ClickableOnly bool `json:"clickableOnly"`
}

// DefaultHitOptions returns TopMostOnly=true, ClickableOnly=false.
func DefaultHitOptions() HitOptions {
	return HitOptions{TopMostOnly: true}
}

// HitResult lists the nodes under a point, topmost first.
type HitResult struct {
	Hits    []RenderableNode `json:"hits"`
	TopMost *RenderableNode  `json:"topMost"`
}

// HitTest scans renderOrder (bottom-to-top, as returned by Analyze) from
// the top down and collects nodes whose bounds contain p, edges included.
// Zero-area nodes never hit.
func HitTest(renderOrder []RenderableNode, p core.Point, opts HitOptions) HitResult {
	res := HitResult{Hits: []RenderableNode{}}
	for i := len(renderOrder) - 1; i >= 0; i-- {
		rn := renderOrder[i]
		if !rn.Bounds.HasArea() || !rn.Bounds.Contains(p) {
			continue
		}
		if opts.ClickableOnly && (rn.Node == nil || !rn.Node.Clickable) {
			continue
		}
		res.Hits = append(res.Hits, rn)
		if opts.TopMostOnly {
			break
		}
	}
	if len(res.Hits) > 0 {
		top := res.Hits[0]
		res.TopMost = &top
	}
	return res
}

// TopMostAt is a convenience for the single topmost node at p.
func (r *Result) TopMostAt(p core.Point, clickableOnly bool) *RenderableNode {
	return HitTest(r.RenderOrder, p, HitOptions{TopMostOnly: true, ClickableOnly: clickableOnly}).TopMost
}
