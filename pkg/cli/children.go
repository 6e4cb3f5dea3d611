package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/element-resolver/pkg/resolver"
)

var childrenCommand = &cli.Command{
	Name:      "children",
	Usage:     "Rank the actionable descendants of a container",
	ArgsUsage: "FILE",
	Description: `List the clickable or interactive descendants of a container node,
ranked by how likely each is the intended tap target. Zero-area and
covered nodes are included.

Examples:
  element-resolver children window_dump.xml --node 9
  element-resolver children window_dump.xml --node 9 --max-depth 2`,
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "node", Usage: "Container node index", Required: true},
		&cli.IntFlag{Name: "max-depth", Usage: "Levels below the container to search"},
		&cli.BoolFlag{Name: "no-recommend", Usage: "Keep document order and skip the recommendation"},
	},
	Action: runChildren,
}

func runChildren(c *cli.Context) error {
	tree, err := firstArgTree(c)
	if err != nil {
		return err
	}
	container, err := nodeAt(tree, c.Int("node"))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if c.IsSet("max-depth") {
		cfg.Children.MaxDepth = c.Int("max-depth")
	}
	if c.Bool("no-recommend") {
		cfg.Children.EnableSmartRecommendation = false
	}
	return writeJSON(c, resolver.New(cfg).AnalyzeActionableChildren(tree, container))
}
