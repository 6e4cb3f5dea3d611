package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/devicelab-dev/element-resolver/pkg/actionable"
	"github.com/devicelab-dev/element-resolver/pkg/config"
	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/fingerprint"
	"github.com/devicelab-dev/element-resolver/pkg/jobs"
	"github.com/devicelab-dev/element-resolver/pkg/layer"
	"github.com/devicelab-dev/element-resolver/pkg/report"
	"github.com/devicelab-dev/element-resolver/pkg/snapshot"
	"github.com/devicelab-dev/element-resolver/pkg/textmatch"
)

// feedScreen is a feed with one card above a two-tab bottom navigation
// bar. The label of the second tab has collapsed to zero area.
const feedScreen = `<?xml version="1.0" encoding="UTF-8"?>
<hierarchy rotation="0">
  <node class="android.widget.FrameLayout" package="com.feed" bounds="[0,0][1080,1920]">
    <node class="androidx.recyclerview.widget.RecyclerView" resource-id="com.feed:id/list" bounds="[0,0][1080,1780]">
      <node class="android.widget.LinearLayout" resource-id="com.feed:id/card" bounds="[0,0][1080,400]">
        <node class="android.widget.TextView" text="Rust news" bounds="[40,20][1040,120]"/>
        <node class="android.widget.Button" resource-id="com.feed:id/like" text="关注" bounds="[40,300][300,380]" clickable="true"/>
      </node>
    </node>
    <node class="com.google.android.material.bottomnavigation.BottomNavigationView" resource-id="com.feed:id/nav" bounds="[0,1780][1080,1920]">
      <node class="android.widget.FrameLayout" resource-id="com.feed:id/tab_home" bounds="[0,1780][540,1920]" clickable="true">
        <node class="android.widget.TextView" text="Home" bounds="[200,1850][340,1900]"/>
      </node>
      <node class="android.widget.FrameLayout" resource-id="com.feed:id/tab_me" bounds="[540,1780][1080,1920]" clickable="true">
        <node class="android.widget.ImageView" bounds="[760,1790][860,1850]" clickable="true"/>
        <node class="android.widget.TextView" text="Me" bounds="[1000,1900][1000,1900]" clickable="true"/>
      </node>
    </node>
  </node>
</hierarchy>`

// isolate points the home directory at a fresh temp dir so no stray
// resolver.yaml or fingerprint store leaks into a test.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	config.ResetHome()
	t.Setenv("RESOLVER_HOME", home)
	t.Cleanup(config.ResetHome)
	return home
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := NewApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.Run(hoistFlags(app, append([]string{"element-resolver"}, args...)))
	return out.String(), err
}

func decode(t *testing.T, out string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
}

func TestHierarchyCommand(t *testing.T) {
	isolate(t)
	dump := writeFile(t, t.TempDir(), "dump.xml", feedScreen)

	out, err := run(t, "hierarchy", dump)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var nodes []snapshot.Node
	decode(t, out, &nodes)
	if len(nodes) != 11 {
		t.Fatalf("expected 11 nodes, got %d", len(nodes))
	}
	if nodes[4].Text != "关注" || nodes[4].Index != 4 {
		t.Errorf("unexpected node 4: %+v", nodes[4])
	}

	out, err = run(t, "hierarchy", dump, "--compact")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 12 || !strings.HasPrefix(lines[0], "index,parent,depth") {
		t.Errorf("unexpected CSV output:\n%s", out)
	}
	if !strings.Contains(lines[11], "[1000,1900][1000,1900]") {
		t.Errorf("expected zero-area bounds in last row, got %q", lines[11])
	}
}

func TestHierarchyCommand_MissingFile(t *testing.T) {
	isolate(t)
	if _, err := run(t, "hierarchy"); !errors.Is(err, core.ErrMissingRequired) {
		t.Errorf("expected ErrMissingRequired, got %v", err)
	}
	if _, err := run(t, "hierarchy", filepath.Join(t.TempDir(), "nope.xml")); err == nil {
		t.Error("expected error for missing file")
	}
	bad := writeFile(t, t.TempDir(), "bad.xml", "<hierarchy><node")
	if _, err := run(t, "hierarchy", bad); !errors.Is(err, core.ErrInvalidSnapshot) {
		t.Errorf("expected ErrInvalidSnapshot, got %v", err)
	}
}

func TestLayersCommand(t *testing.T) {
	isolate(t)
	dump := writeFile(t, t.TempDir(), "dump.xml", feedScreen)

	out, err := run(t, "layers", dump)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res layer.Result
	decode(t, out, &res)

	if res.Metadata.TotalNodes != 11 || res.Metadata.ZeroAreaNodes != 1 || len(res.RenderOrder) != 10 {
		t.Errorf("unexpected metadata %+v with %d renderable", res.Metadata, len(res.RenderOrder))
	}
	if res.Metadata.SemanticCounts[layer.TypeBottomNavigation] == 0 {
		t.Errorf("expected a bottom navigation node, got %v", res.Metadata.SemanticCounts)
	}
	for _, rn := range res.RenderOrder {
		if rn.Node.Text == "Me" {
			t.Error("zero-area label must not be in the render order")
		}
	}
}

func TestLayersCommand_Batch(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "a.xml", feedScreen)
	missing := filepath.Join(dir, "missing.xml")

	out, err := run(t, "layers", good, missing, good)
	if err == nil || !strings.Contains(err.Error(), "1 of 3") {
		t.Errorf("expected one failed file, got %v", err)
	}

	var entries []batchEntry
	decode(t, out, &entries)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].File != missing || entries[1].State != jobs.StateFailed || entries[1].Error == "" {
		t.Errorf("unexpected entry for missing file: %+v", entries[1])
	}
	for _, i := range []int{0, 2} {
		if entries[i].State != jobs.StateCompleted || entries[i].Result == nil || entries[i].JobID == "" {
			t.Errorf("entry %d: %+v", i, entries[i])
		}
	}
	if entries[0].JobID == entries[2].JobID {
		t.Error("each file must get its own job ID")
	}
}

func TestLayersCommand_ReportDir(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "a.xml", feedScreen)
	missing := filepath.Join(dir, "missing.xml")
	reportDir := filepath.Join(dir, "report")

	if _, err := run(t, "layers", "--report-dir", reportDir, good, missing); err == nil {
		t.Error("expected the missing file to fail the run")
	}

	idx, err := report.ReadIndex(reportDir)
	if err != nil {
		t.Fatalf("ReadIndex() error = %v", err)
	}
	if idx.Status != jobs.StateFailed || idx.Summary.Total != 2 || idx.Summary.Completed != 1 {
		t.Errorf("unexpected index: status=%s summary=%+v", idx.Status, idx.Summary)
	}
	if idx.Entries[0].Source != good || idx.Entries[1].Source != missing {
		t.Errorf("entries out of order: %+v", idx.Entries)
	}

	var res layer.Result
	if err := report.ReadResult(reportDir, idx.Entries[0], &res); err != nil {
		t.Fatalf("ReadResult() error = %v", err)
	}
	if len(res.RenderOrder) != 10 {
		t.Errorf("expected 10 renderable nodes in the stored result, got %d", len(res.RenderOrder))
	}
}

func TestLayersCommand_ReportDirSingleFile(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "a.xml", feedScreen)
	reportDir := filepath.Join(dir, "report")

	out, err := run(t, "layers", "--report-dir", reportDir, good)
	if err != nil {
		t.Fatalf("layers error = %v", err)
	}
	var entries []batchEntry
	decode(t, out, &entries)
	if len(entries) != 1 {
		t.Fatalf("expected batch output for one file, got %d entries", len(entries))
	}
	idx, err := report.ReadIndex(reportDir)
	if err != nil || idx.Status != jobs.StateCompleted {
		t.Errorf("ReadIndex() = %+v, %v", idx, err)
	}
}

func TestHitTestCommand(t *testing.T) {
	isolate(t)
	dump := writeFile(t, t.TempDir(), "dump.xml", feedScreen)

	out, err := run(t, "hit-test", dump, "--x", "800", "--y", "1820")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var hit layer.HitResult
	decode(t, out, &hit)
	if hit.TopMost == nil || hit.TopMost.Node.Index != 9 || len(hit.Hits) != 1 {
		t.Errorf("expected the tab icon on top, got %+v", hit)
	}

	out, err = run(t, "hit-test", dump, "--x", "1000", "--y", "1900", "--all")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decode(t, out, &hit)
	for _, h := range hit.Hits {
		if h.Node.Index == 10 {
			t.Error("zero-area label must not be hit")
		}
	}
	if len(hit.Hits) < 3 || hit.TopMost.Node.Index != 8 {
		t.Errorf("expected tab, bar and root under the hidden label, got %d hits, top %+v", len(hit.Hits), hit.TopMost)
	}

	out, err = run(t, "hit-test", dump, "--x", "100", "--y", "1000", "--all", "--clickable")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	decode(t, out, &hit)
	if len(hit.Hits) != 0 || hit.TopMost != nil {
		t.Errorf("expected no clickable hits over the list, got %+v", hit)
	}

	if _, err := run(t, "hit-test", dump, "--x", "1"); err == nil {
		t.Error("expected error when --y is missing")
	}
}

func TestMatchTextCommand(t *testing.T) {
	isolate(t)

	tests := []struct {
		name       string
		args       []string
		wantMatch  bool
		wantMethod textmatch.Method
	}{
		{"antonym", []string{"match-text", "关注", "已关注"}, false, textmatch.MethodAntonym},
		{"antonyms disabled", []string{"match-text", "--no-antonyms", "关注", "已关注"}, true, textmatch.MethodPartial},
		{"exact mode", []string{"match-text", "--mode", "exact", "关注 ", "关注"}, true, textmatch.MethodExact},
		{"flags after args", []string{"match-text", "关注 ", "关注", "--mode", "exact"}, true, textmatch.MethodExact},
		{"synonym", []string{"match-text", "Sign in", "Log in"}, true, textmatch.MethodSemantic},
		{"semantic disabled", []string{"match-text", "--no-semantic", "Sign in", "Log in"}, false, textmatch.MethodNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var res textmatch.MatchResult
			decode(t, out, &res)
			if res.Matched != tt.wantMatch || res.Method != tt.wantMethod {
				t.Errorf("got %+v, want matched=%v method=%s", res, tt.wantMatch, tt.wantMethod)
			}
		})
	}

	if _, err := run(t, "match-text", "only-one"); !errors.Is(err, core.ErrMissingRequired) {
		t.Errorf("expected ErrMissingRequired, got %v", err)
	}
	if _, err := run(t, "match-text", "--mode", "fuzzy", "a", "b"); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestConfigFlag(t *testing.T) {
	isolate(t)
	cfgPath := writeFile(t, t.TempDir(), "custom.yaml", "textMatching:\n  antonymCheckEnabled: false\n")

	out, err := run(t, "--config", cfgPath, "match-text", "关注", "已关注")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res textmatch.MatchResult
	decode(t, out, &res)
	if !res.Matched || res.Confidence != textmatch.ConfidenceCandidateContains {
		t.Errorf("config should disable antonyms, got %+v", res)
	}

	bad := writeFile(t, t.TempDir(), "bad.yaml", "textMatching:\n  mode: fuzzy\n")
	if _, err := run(t, "--config", bad, "match-text", "a", "b"); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestConfigFromHome(t *testing.T) {
	home := isolate(t)
	writeFile(t, home, "resolver.yaml", "textMatching:\n  mode: exact\n")

	out, err := run(t, "match-text", "关注", "关注按钮")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res textmatch.MatchResult
	decode(t, out, &res)
	if res.Matched {
		t.Errorf("home config should select exact mode, got %+v", res)
	}
}

func TestCaptureAndRelocate(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	dump := writeFile(t, dir, "dump.xml", feedScreen)
	fpPath := filepath.Join(dir, "like.yaml")

	if _, err := run(t, "capture", dump, "--node", "4", "--output", fpPath); err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	fp, err := fingerprint.Load(fpPath)
	if err != nil {
		t.Fatalf("saved fingerprint unreadable: %v", err)
	}
	if len(fp.Anchors) == 0 || fp.Anchors[0].Text != "关注" {
		t.Errorf("unexpected anchors %+v", fp.Anchors)
	}

	out, err := run(t, "relocate", dump, "--fingerprint", fpPath)
	if err != nil {
		t.Fatalf("relocate failed: %v", err)
	}
	var best fingerprint.Candidate
	decode(t, out, &best)
	if best.Node == nil || best.Node.Index != 4 || best.Score < 0.99 {
		t.Errorf("expected node 4 with a perfect score, got %+v", best)
	}

	out, err = run(t, "relocate", dump, "--fingerprint", fpPath, "--all")
	if err != nil {
		t.Fatalf("relocate --all failed: %v", err)
	}
	var ranked []fingerprint.Candidate
	decode(t, out, &ranked)
	if len(ranked) < 2 || ranked[0].Node.Index != 4 {
		t.Errorf("unexpected ranking %+v", ranked)
	}
}

func TestCaptureByName(t *testing.T) {
	home := isolate(t)
	dump := writeFile(t, t.TempDir(), "dump.xml", feedScreen)

	if _, err := run(t, "capture", dump, "--node", "4", "--name", "like"); err != nil {
		t.Fatalf("capture failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(home, "fingerprints", "like.yaml")); err != nil {
		t.Fatalf("expected stored fingerprint: %v", err)
	}

	out, err := run(t, "relocate", dump, "--fingerprint", "like")
	if err != nil {
		t.Fatalf("relocate by name failed: %v", err)
	}
	var best fingerprint.Candidate
	decode(t, out, &best)
	if best.Node == nil || best.Node.Index != 4 {
		t.Errorf("expected node 4, got %+v", best)
	}
}

func TestCaptureErrors(t *testing.T) {
	isolate(t)
	dump := writeFile(t, t.TempDir(), "dump.xml", feedScreen)

	if _, err := run(t, "capture", dump, "--node", "99"); !errors.Is(err, core.ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if _, err := run(t, "capture", dump, "--node", "0"); !errors.Is(err, core.ErrNodeNotFound) {
		t.Errorf("expected root to be rejected, got %v", err)
	}
	if _, err := run(t, "relocate", dump, "--fingerprint", "never-saved"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected missing fingerprint error, got %v", err)
	}
}

func TestRelocate_NoMatch(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	dump := writeFile(t, dir, "dump.xml", feedScreen)
	fpPath := writeFile(t, dir, "other.json", `{
  "anchorElements": [{"text": "Checkout", "role": "self"}],
  "containerSignature": {"class": "android.widget.GridLayout", "childCount": 40},
  "siblingPattern": {"totalSiblings": 40, "clickableSiblings": 40, "position": 37},
  "matchingWeights": {"anchor_weight": 1, "container_weight": 0, "sibling_weight": 0}
}`)

	out, err := run(t, "relocate", dump, "--fingerprint", fpPath)
	if err != nil {
		t.Fatalf("relocate failed: %v", err)
	}
	if strings.TrimSpace(out) != "null" {
		t.Errorf("expected null, got %s", out)
	}
}

func TestChildrenCommand(t *testing.T) {
	isolate(t)
	dump := writeFile(t, t.TempDir(), "dump.xml", feedScreen)

	out, err := run(t, "children", dump, "--node", "8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var res actionable.Result
	decode(t, out, &res)
	if res.TotalCount != 2 {
		t.Fatalf("expected icon and hidden label, got %d", res.TotalCount)
	}
	if res.Recommendation == nil || res.Recommendation.Node.Index != 10 {
		t.Errorf("expected hidden label to be recommended, got %+v", res.Recommendation)
	}

	out, err = run(t, "children", dump, "--node", "5", "--max-depth", "1", "--no-recommend")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res = actionable.Result{}
	decode(t, out, &res)
	if res.TotalCount != 2 || res.Recommendation != nil {
		t.Errorf("expected the two tabs without recommendation, got %+v", res)
	}
	if res.Children[0].Node.Index != 6 || res.Children[1].Node.Index != 8 {
		t.Errorf("expected document order, got %d, %d", res.Children[0].Node.Index, res.Children[1].Node.Index)
	}
}

func TestLogFileFlag(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	dump := writeFile(t, dir, "dump.xml", feedScreen)
	logPath := filepath.Join(dir, "resolver.log")

	if _, err := run(t, "--log-file", logPath, "--verbose", "layers", dump); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "[DEBUG]") {
		t.Errorf("expected debug lines in log:\n%s", data)
	}
}

func TestServeCommand_StopsWithContext(t *testing.T) {
	isolate(t)
	app := NewApp()
	app.Writer = io.Discard
	app.ErrWriter = io.Discard

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := app.RunContext(ctx, []string{"element-resolver", "serve", "--addr", "127.0.0.1:0"}); err != nil {
		t.Errorf("serve with a canceled context should return cleanly, got %v", err)
	}
}

func TestServeCommand_BadAddr(t *testing.T) {
	isolate(t)
	if _, err := run(t, "serve", "--addr", "not-an-address"); err == nil {
		t.Error("expected listen error")
	}
}

func TestHoistFlags(t *testing.T) {
	app := NewApp()
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			"flags after file",
			[]string{"er", "hit-test", "dump.xml", "--x", "540", "--y", "1850", "--all"},
			[]string{"er", "hit-test", "--x", "540", "--y", "1850", "--all", "dump.xml"},
		},
		{
			"global flags kept before command",
			[]string{"er", "--config", "r.yaml", "--verbose", "capture", "dump.xml", "--node", "4"},
			[]string{"er", "--config", "r.yaml", "--verbose", "capture", "--node", "4", "dump.xml"},
		},
		{
			"equals form",
			[]string{"er", "relocate", "dump.xml", "--fingerprint=like"},
			[]string{"er", "relocate", "--fingerprint=like", "dump.xml"},
		},
		{
			"bool flag does not take the file",
			[]string{"er", "hierarchy", "--compact", "dump.xml"},
			[]string{"er", "hierarchy", "--compact", "dump.xml"},
		},
		{
			"negative value stays with its flag",
			[]string{"er", "hit-test", "dump.xml", "--x", "-1", "--y", "5"},
			[]string{"er", "hit-test", "--x", "-1", "--y", "5", "dump.xml"},
		},
		{
			"double dash ends flags",
			[]string{"er", "match-text", "a", "--", "--mode"},
			[]string{"er", "match-text", "a", "--", "--mode"},
		},
		{
			"unknown command untouched",
			[]string{"er", "nope", "x", "--y"},
			[]string{"er", "nope", "x", "--y"},
		},
		{
			"no command",
			[]string{"er", "--verbose"},
			[]string{"er", "--verbose"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := hoistFlags(app, tt.args)
			if strings.Join(got, " ") != strings.Join(tt.want, " ") {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHitTestCommand_FlagsFirst(t *testing.T) {
	isolate(t)
	dump := writeFile(t, t.TempDir(), "dump.xml", feedScreen)

	if _, err := run(t, "hit-test", "--x", "800", "--y", "1820", dump); err != nil {
		t.Fatalf("flags before the file should work too: %v", err)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestHierarchyCommand_CompactWriteError(t *testing.T) {
	isolate(t)
	dump := writeFile(t, t.TempDir(), "dump.xml", feedScreen)

	app := NewApp()
	app.Writer = failingWriter{}
	app.ErrWriter = io.Discard
	err := app.Run(hoistFlags(app, []string{"element-resolver", "hierarchy", dump, "--compact"}))
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("expected the write error to surface, got %v", err)
	}
}
