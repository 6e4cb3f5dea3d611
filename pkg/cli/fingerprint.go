package cli

import (
	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/element-resolver/pkg/config"
	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/fingerprint"
	"github.com/devicelab-dev/element-resolver/pkg/logger"
)

var captureCommand = &cli.Command{
	Name:      "capture",
	Usage:     "Record the context fingerprint of a node",
	ArgsUsage: "FILE",
	Description: `Capture the anchors, container signature and sibling pattern of a node
so it can be relocated in a later dump. The fingerprint is printed as JSON
unless --output (path) or --name (stored under $RESOLVER_HOME/fingerprints)
is given.

Examples:
  element-resolver capture window_dump.xml --node 12
  element-resolver capture window_dump.xml --node 12 --output like.yaml
  element-resolver capture window_dump.xml --node 12 --name like-button`,
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "node", Usage: "Node index (see the hierarchy command)", Required: true},
		&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Write the fingerprint to this .json or .yaml file"},
		&cli.StringFlag{Name: "name", Usage: "Store the fingerprint by name in the fingerprint directory"},
	},
	Action: runCapture,
}

var relocateCommand = &cli.Command{
	Name:      "relocate",
	Usage:     "Find a fingerprinted element in a new dump",
	ArgsUsage: "FILE",
	Description: `Score every node of the dump against a stored fingerprint and print the
best match, or null when nothing clears the floor. --fingerprint accepts a
file path or a name stored with capture --name.

Examples:
  element-resolver relocate new_dump.xml --fingerprint like.yaml
  element-resolver relocate new_dump.xml --fingerprint like-button --all`,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "fingerprint", Aliases: []string{"f"}, Usage: "Fingerprint file or stored name", Required: true},
		&cli.BoolFlag{Name: "all", Usage: "Print every candidate above the floor, best first"},
	},
	Action: runRelocate,
}

func runCapture(c *cli.Context) error {
	tree, err := firstArgTree(c)
	if err != nil {
		return err
	}
	node, err := nodeAt(tree, c.Int("node"))
	if err != nil {
		return err
	}
	engine, err := newEngine(c)
	if err != nil {
		return err
	}

	fp := engine.CaptureFingerprint(tree, node)
	if fp == nil {
		return core.ErrNodeNotFound.WithMessage("the root node has no context to fingerprint")
	}

	path := c.String("output")
	if name := c.String("name"); name != "" && path == "" {
		if path, err = config.NewFingerprintPath(name); err != nil {
			return err
		}
	}
	if path == "" {
		return writeJSON(c, fp)
	}

	if err := fingerprint.Save(path, fp); err != nil {
		return err
	}
	logger.Info("fingerprint of node %d saved to %s", node.Index, path)
	return writeJSON(c, map[string]interface{}{"saved": path, "fingerprint": fp})
}

func runRelocate(c *cli.Context) error {
	tree, err := firstArgTree(c)
	if err != nil {
		return err
	}
	fp, err := fingerprint.Load(config.FingerprintPath(c.String("fingerprint")))
	if err != nil {
		return err
	}
	engine, err := newEngine(c)
	if err != nil {
		return err
	}

	ranked := engine.RankFingerprintMatches(tree, fp)
	if c.Bool("all") {
		return writeJSON(c, ranked)
	}
	if len(ranked) == 0 {
		return writeJSON(c, nil)
	}
	return writeJSON(c, ranked[0])
}
