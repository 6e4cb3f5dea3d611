package server

import (
	"net/http"

	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/fingerprint"
	"github.com/devicelab-dev/element-resolver/pkg/layer"
	"github.com/devicelab-dev/element-resolver/pkg/snapshot"
	"github.com/devicelab-dev/element-resolver/pkg/textmatch"
)

// hierarchyRequest carries a UIAutomator hierarchy dump.
type hierarchyRequest struct {
	Hierarchy string `json:"hierarchy"`
}

func (h hierarchyRequest) tree() (*snapshot.Tree, error) {
	if h.Hierarchy == "" {
		return nil, core.ErrMissingRequired.WithMessage("hierarchy is required")
	}
	return snapshot.Parse(h.Hierarchy)
}

// nodeAt resolves a required node index.
func nodeAt(tree *snapshot.Tree, index *int) (*snapshot.Node, error) {
	if index == nil {
		return nil, core.ErrMissingRequired.WithMessage("node is required")
	}
	n := tree.Node(*index)
	if n == nil {
		return nil, core.ErrNodeNotFound.WithDetails(map[string]interface{}{"index": *index})
	}
	return n, nil
}

type hitTestRequest struct {
	hierarchyRequest
	X         int  `json:"x"`
	Y         int  `json:"y"`
	All       bool `json:"all"`
	Clickable bool `json:"clickable"`
}

type matchTextRequest struct {
	Target     string   `json:"target"`
	Candidate  string   `json:"candidate,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
}

// bestTextResponse answers a match-text request with several candidates.
type bestTextResponse struct {
	Index  int                   `json:"index"`
	Result textmatch.MatchResult `json:"result"`
}

type nodeRequest struct {
	hierarchyRequest
	Node *int `json:"node"`
}

type relocateRequest struct {
	hierarchyRequest
	Fingerprint *fingerprint.Fingerprint `json:"fingerprint"`
	All         bool                     `json:"all"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLayers returns the semantic layers of a hierarchy.
// POST /api/v1/layers
func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request) {
	var req hierarchyRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	tree, err := req.tree()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.AnalyzeLayers(tree))
}

// handleHitTest returns the nodes under a point.
// POST /api/v1/hit-test
func (s *Server) handleHitTest(w http.ResponseWriter, r *http.Request) {
	var req hitTestRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	tree, err := req.tree()
	if err != nil {
		writeError(w, err)
		return
	}

	res := s.engine.AnalyzeLayers(tree)
	opts := layer.HitOptions{TopMostOnly: !req.All, ClickableOnly: req.Clickable}
	writeJSON(w, http.StatusOK, s.engine.HitTest(res.RenderOrder, core.Point{X: req.X, Y: req.Y}, opts))
}

// handleMatchText compares a target with one candidate, or picks the
// best of several.
// POST /api/v1/match-text
func (s *Server) handleMatchText(w http.ResponseWriter, r *http.Request) {
	var req matchTextRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if len(req.Candidates) > 0 {
		i, res := s.engine.BestText(req.Target, req.Candidates)
		writeJSON(w, http.StatusOK, bestTextResponse{Index: i, Result: res})
		return
	}
	writeJSON(w, http.StatusOK, s.engine.MatchText(req.Target, req.Candidate))
}

// handleCapture records the fingerprint of a node.
// POST /api/v1/fingerprints
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	tree, err := req.tree()
	if err != nil {
		writeError(w, err)
		return
	}
	node, err := nodeAt(tree, req.Node)
	if err != nil {
		writeError(w, err)
		return
	}

	fp := s.engine.CaptureFingerprint(tree, node)
	if fp == nil {
		writeError(w, core.ErrNodeNotFound.WithMessage("the root node has no fingerprint"))
		return
	}
	writeJSON(w, http.StatusOK, fp)
}

// handleRelocate finds a remembered fingerprint in a new hierarchy. The
// response is the best candidate, null when nothing clears the floor, or
// every candidate with "all".
// POST /api/v1/relocate
func (s *Server) handleRelocate(w http.ResponseWriter, r *http.Request) {
	var req relocateRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	tree, err := req.tree()
	if err != nil {
		writeError(w, err)
		return
	}
	if req.Fingerprint == nil {
		writeError(w, core.ErrMissingRequired.WithMessage("fingerprint is required"))
		return
	}
	if err := req.Fingerprint.Validate(); err != nil {
		writeError(w, err)
		return
	}

	ranked := s.engine.RankFingerprintMatches(tree, req.Fingerprint)
	if req.All {
		writeJSON(w, http.StatusOK, ranked)
		return
	}
	if len(ranked) == 0 {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, ranked[0])
}

// handleChildren ranks the actionable descendants of a node.
// POST /api/v1/children
func (s *Server) handleChildren(w http.ResponseWriter, r *http.Request) {
	var req nodeRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	tree, err := req.tree()
	if err != nil {
		writeError(w, err)
		return
	}
	node, err := nodeAt(tree, req.Node)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.engine.AnalyzeActionableChildren(tree, node))
}
