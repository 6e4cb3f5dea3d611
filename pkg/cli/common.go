package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/element-resolver/pkg/config"
	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/logger"
	"github.com/devicelab-dev/element-resolver/pkg/resolver"
	"github.com/devicelab-dev/element-resolver/pkg/snapshot"
)

// globalString reads a flag from the nearest context that set it.
// Global flags live on the root context when a subcommand runs.
func globalString(c *cli.Context, name string) string {
	for _, ctx := range c.Lineage() {
		if ctx != nil && ctx.IsSet(name) {
			return ctx.String(name)
		}
	}
	return c.String(name)
}

// loadConfig resolves --config, then resolver.yaml in the working
// directory, then in the home directory.
func loadConfig(c *cli.Context) (*config.Config, error) {
	if path := globalString(c, "config"); path != "" {
		logger.Debug("loading config %s", path)
		return config.Load(path)
	}
	if dir := config.FindConfigDir(); dir != "" {
		return config.LoadFromDir(dir)
	}
	return config.Default(), nil
}

func newEngine(c *cli.Context) (*resolver.Engine, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return resolver.New(cfg), nil
}

// readTree parses the hierarchy dump at path.
func readTree(path string) (*snapshot.Tree, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided hierarchy dump
	if err != nil {
		return nil, fmt.Errorf("failed to read hierarchy: %w", err)
	}
	tree, err := snapshot.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("parsed %s: %d nodes", path, tree.Len())
	return tree, nil
}

// firstArgTree reads the hierarchy file named by the first argument.
func firstArgTree(c *cli.Context) (*snapshot.Tree, error) {
	if c.NArg() < 1 {
		return nil, core.ErrMissingRequired.WithMessage("a hierarchy XML file is required")
	}
	return readTree(c.Args().First())
}

// nodeAt returns the node at index or ErrNodeNotFound.
func nodeAt(tree *snapshot.Tree, index int) (*snapshot.Node, error) {
	n := tree.Node(index)
	if n == nil {
		return nil, core.ErrNodeNotFound.WithMessage(fmt.Sprintf("no node at index %d (tree has %d nodes)", index, tree.Len()))
	}
	return n, nil
}

// writeJSON prints v as indented JSON on the app writer.
func writeJSON(c *cli.Context, v interface{}) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
