// Package resolver exposes the element resolution engine as one facade.
//
// An Engine is built once from configuration and is safe for concurrent
// use: every call is a pure function of the snapshot it is given. Trees
// must not be mutated after they are handed to the engine.
package resolver

import (
	"context"
	"fmt"

	"github.com/devicelab-dev/element-resolver/pkg/actionable"
	"github.com/devicelab-dev/element-resolver/pkg/config"
	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/fingerprint"
	"github.com/devicelab-dev/element-resolver/pkg/jobs"
	"github.com/devicelab-dev/element-resolver/pkg/layer"
	"github.com/devicelab-dev/element-resolver/pkg/logger"
	"github.com/devicelab-dev/element-resolver/pkg/snapshot"
	"github.com/devicelab-dev/element-resolver/pkg/textmatch"
)

// Job kinds used by the Submit helpers.
const (
	KindLayers   = "layers"
	KindRelocate = "relocate"
	KindChildren = "children"
)

// Engine bundles the configured analyzers.
type Engine struct {
	cfg          *config.Config
	layers       *layer.Analyzer
	text         *textmatch.Matcher
	fingerprints *fingerprint.Matcher
	tracker      *jobs.Tracker
}

// New creates an Engine. A nil cfg uses config.Default.
func New(cfg *config.Config) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Engine{
		cfg:          cfg,
		layers:       layer.NewAnalyzer(cfg.Layers),
		text:         textmatch.New(cfg.TextMatching),
		fingerprints: fingerprint.NewMatcher(fingerprint.Options{Floor: cfg.Fingerprint.Floor}),
		tracker:      jobs.NewTracker(jobs.Options{MaxFinished: cfg.Jobs.MaxFinished}),
	}
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// Jobs returns the engine's job tracker.
func (e *Engine) Jobs() *jobs.Tracker {
	return e.tracker
}

// AnalyzeLayers computes semantic types, z-indexes and render order.
func (e *Engine) AnalyzeLayers(tree *snapshot.Tree) *layer.Result {
	return e.layers.Analyze(tree)
}

// HitTest returns the renderable nodes under p, top-most first.
func (e *Engine) HitTest(renderOrder []layer.RenderableNode, p core.Point, opts layer.HitOptions) layer.HitResult {
	return layer.HitTest(renderOrder, p, opts)
}

// MatchText compares two labels under the configured text matching rules.
func (e *Engine) MatchText(target, candidate string) textmatch.MatchResult {
	return e.text.Match(target, candidate)
}

// BestText returns the index of the best-matching candidate, or -1.
func (e *Engine) BestText(target string, candidates []string) (int, textmatch.MatchResult) {
	return e.text.Best(target, candidates)
}

// CaptureFingerprint records node's fingerprint with the configured weights.
func (e *Engine) CaptureFingerprint(tree *snapshot.Tree, node *snapshot.Node) *fingerprint.Fingerprint {
	return fingerprint.Capture(tree, node, e.cfg.Fingerprint.Weights)
}

// FindBestFingerprintMatch relocates fp in tree, or returns nil.
func (e *Engine) FindBestFingerprintMatch(tree *snapshot.Tree, fp *fingerprint.Fingerprint) *snapshot.Node {
	best := e.fingerprints.FindBest(tree, fp)
	if best == nil {
		return nil
	}
	return best.Node
}

// RankFingerprintMatches returns every candidate above the floor,
// best first, for diagnostics.
func (e *Engine) RankFingerprintMatches(tree *snapshot.Tree, fp *fingerprint.Fingerprint) []fingerprint.Candidate {
	return e.fingerprints.Rank(tree, fp)
}

// AnalyzeActionableChildren ranks the actionable descendants of container.
func (e *Engine) AnalyzeActionableChildren(tree *snapshot.Tree, container *snapshot.Node) *actionable.Result {
	return actionable.Analyze(tree, container, e.cfg.Children)
}

// Submit runs fn as a tracked job and returns its ID.
func (e *Engine) Submit(ctx context.Context, kind string, fn jobs.Func) string {
	return e.tracker.Run(ctx, kind, fn)
}

// SubmitLayers analyzes tree as a job whose result is a *layer.Result.
func (e *Engine) SubmitLayers(ctx context.Context, tree *snapshot.Tree) string {
	return e.Submit(ctx, KindLayers, func(ctx context.Context, report jobs.Reporter) (interface{}, error) {
		report(0, fmt.Sprintf("analyzing %d nodes", tree.Len()))
		return e.AnalyzeLayers(tree), nil
	})
}

// SubmitRelocate relocates fp in tree as a job whose result is the
// best *fingerprint.Candidate. A job that finds nothing still completes,
// with a nil result.
func (e *Engine) SubmitRelocate(ctx context.Context, tree *snapshot.Tree, fp *fingerprint.Fingerprint) string {
	return e.Submit(ctx, KindRelocate, func(ctx context.Context, report jobs.Reporter) (interface{}, error) {
		if fp == nil {
			return nil, core.ErrMissingRequired.WithMessage("fingerprint is required")
		}
		if err := fp.Validate(); err != nil {
			return nil, err
		}
		best := e.fingerprints.FindBest(tree, fp)
		if best == nil {
			return nil, nil
		}
		return best, nil
	})
}

// SubmitChildren analyzes the actionable children of the node at index
// as a job whose result is an *actionable.Result.
func (e *Engine) SubmitChildren(ctx context.Context, tree *snapshot.Tree, index int) string {
	return e.Submit(ctx, KindChildren, func(ctx context.Context, report jobs.Reporter) (interface{}, error) {
		container := tree.Node(index)
		if container == nil {
			return nil, core.ErrNodeNotFound.WithDetails(map[string]interface{}{"index": index})
		}
		return e.AnalyzeActionableChildren(tree, container), nil
	})
}

// AnalyzeLayersBatch analyzes several snapshots in parallel, one job per
// tree, and returns the jobs in input order.
func (e *Engine) AnalyzeLayersBatch(ctx context.Context, trees []*snapshot.Tree) []jobs.Job {
	fns := make([]jobs.Func, len(trees))
	for i, tree := range trees {
		tree := tree
		fns[i] = func(ctx context.Context, report jobs.Reporter) (interface{}, error) {
			return e.AnalyzeLayers(tree), nil
		}
	}
	logger.Info("analyzing %d snapshots with %d workers", len(trees), e.cfg.Jobs.Workers)
	return e.tracker.RunBatch(ctx, KindLayers, fns, e.cfg.Jobs.Workers)
}
