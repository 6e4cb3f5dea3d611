package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/jobs"
	"github.com/devicelab-dev/element-resolver/pkg/layer"
	"github.com/devicelab-dev/element-resolver/pkg/logger"
	"github.com/devicelab-dev/element-resolver/pkg/report"
	"github.com/devicelab-dev/element-resolver/pkg/resolver"
)

var hierarchyCommand = &cli.Command{
	Name:      "hierarchy",
	Usage:     "Print the parsed nodes of a hierarchy dump with their indices",
	ArgsUsage: "FILE",
	Description: `Print every node of a UIAutomator hierarchy dump in document order.
The index column is the node index other commands accept with --node.

Examples:
  element-resolver hierarchy window_dump.xml
  element-resolver hierarchy window_dump.xml --compact`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "compact",
			Usage: "Output in CSV format",
		},
	},
	Action: runHierarchy,
}

var layersCommand = &cli.Command{
	Name:      "layers",
	Usage:     "Compute semantic layers and paint order",
	ArgsUsage: "FILE [FILE...]",
	Description: `Classify every node (dialog, drawer, bottom navigation, ...) and print
the render order bottom-to-top with z-indexes. Several files are analyzed
in parallel, one job per file. With --report-dir the run is also written
to report.json, one results/<job-id>.json per file, and report.html.

Examples:
  element-resolver layers window_dump.xml
  element-resolver layers before.xml after.xml
  element-resolver layers --report-dir ./layers-report dumps/*.xml`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "report-dir",
			Usage: "Write a batch report to this directory",
		},
	},
	Action: runLayers,
}

var hitTestCommand = &cli.Command{
	Name:      "hit-test",
	Usage:     "Show which nodes occupy a screen point",
	ArgsUsage: "FILE",
	Description: `Hit-test a point against the paint order. By default only the top-most
node is reported.

Examples:
  element-resolver hit-test window_dump.xml --x 540 --y 1850
  element-resolver hit-test window_dump.xml --x 540 --y 1850 --all --clickable`,
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "x", Usage: "X coordinate in pixels", Required: true},
		&cli.IntFlag{Name: "y", Usage: "Y coordinate in pixels", Required: true},
		&cli.BoolFlag{Name: "all", Usage: "List every node under the point, top-most first"},
		&cli.BoolFlag{Name: "clickable", Usage: "Only consider clickable nodes"},
	},
	Action: runHitTest,
}

func runHierarchy(c *cli.Context) error {
	tree, err := firstArgTree(c)
	if err != nil {
		return err
	}
	if !c.Bool("compact") {
		return writeJSON(c, tree.Nodes())
	}

	w := csv.NewWriter(c.App.Writer)
	if err := w.Write([]string{"index", "parent", "depth", "class", "resource-id", "text", "content-desc", "bounds", "clickable", "enabled"}); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, n := range tree.Nodes() {
		b := n.Bounds
		row := []string{
			strconv.Itoa(n.Index),
			strconv.Itoa(n.Parent),
			strconv.Itoa(n.Depth),
			n.Class,
			n.ResourceID,
			n.Text,
			n.ContentDesc,
			fmt.Sprintf("[%d,%d][%d,%d]", b.X, b.Y, b.Right(), b.Bottom()),
			strconv.FormatBool(n.Clickable),
			strconv.FormatBool(n.Enabled),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// batchEntry is one file of a multi-file layers run.
type batchEntry struct {
	File   string        `json:"file"`
	JobID  string        `json:"jobId"`
	State  jobs.State    `json:"state"`
	Error  string        `json:"error,omitempty"`
	Result *layer.Result `json:"result,omitempty"`
}

func runLayers(c *cli.Context) error {
	if c.NArg() < 1 {
		return core.ErrMissingRequired.WithMessage("at least one hierarchy XML file is required")
	}
	engine, err := newEngine(c)
	if err != nil {
		return err
	}

	reportDir := c.String("report-dir")
	if c.NArg() == 1 && reportDir == "" {
		tree, err := readTree(c.Args().First())
		if err != nil {
			return err
		}
		return writeJSON(c, engine.AnalyzeLayers(tree))
	}

	files := c.Args().Slice()
	fns := make([]jobs.Func, len(files))
	for i, file := range files {
		file := file
		fns[i] = func(ctx context.Context, progress jobs.Reporter) (interface{}, error) {
			tree, err := readTree(file)
			if err != nil {
				return nil, err
			}
			progress(0.5, "parsed")
			return engine.AnalyzeLayers(tree), nil
		}
	}

	results := engine.Jobs().RunBatch(c.Context, resolver.KindLayers, fns, engine.Config().Jobs.Workers)
	if reportDir != "" {
		if err := writeReport(reportDir, files, results); err != nil {
			return err
		}
	}
	entries := make([]batchEntry, len(results))
	failed := 0
	for i, job := range results {
		entries[i] = batchEntry{File: files[i], JobID: job.ID, State: job.State, Error: job.Error}
		if res, ok := job.Result.(*layer.Result); ok {
			entries[i].Result = res
		}
		if job.State == jobs.StateFailed {
			failed++
		}
	}
	if err := writeJSON(c, entries); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

func writeReport(dir string, files []string, results []jobs.Job) error {
	w, err := report.Create(dir, resolver.KindLayers)
	if err != nil {
		return err
	}
	for i, job := range results {
		if err := w.Record(files[i], job); err != nil {
			return err
		}
	}
	if err := w.End(); err != nil {
		return err
	}
	logger.Info("layers report written to %s", dir)
	return nil
}

func runHitTest(c *cli.Context) error {
	tree, err := firstArgTree(c)
	if err != nil {
		return err
	}
	engine, err := newEngine(c)
	if err != nil {
		return err
	}

	res := engine.AnalyzeLayers(tree)
	opts := layer.HitOptions{
		TopMostOnly:   !c.Bool("all"),
		ClickableOnly: c.Bool("clickable"),
	}
	return writeJSON(c, engine.HitTest(res.RenderOrder, core.Point{X: c.Int("x"), Y: c.Int("y")}, opts))
}
