package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/element-resolver/pkg/core"
	"github.com/devicelab-dev/element-resolver/pkg/textmatch"
)

var matchTextCommand = &cli.Command{
	Name:      "match-text",
	Usage:     "Judge whether two labels denote the same target",
	ArgsUsage: "TARGET CANDIDATE",
	Description: `Compare a target label against a candidate using the configured text
matching rules. Flags override the config for this call.

Examples:
  element-resolver match-text 关注 已关注
  element-resolver match-text "Sign in" "Log in"
  element-resolver match-text 关注 "关注 " --mode exact`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "mode",
			Usage: "Matching mode (exact, partial)",
		},
		&cli.BoolFlag{
			Name:  "no-antonyms",
			Usage: "Disable antonym detection",
		},
		&cli.BoolFlag{
			Name:  "no-semantic",
			Usage: "Disable synonym and similarity matching",
		},
		&cli.Float64Flag{
			Name:  "threshold",
			Usage: "Similarity threshold for semantic matches (0-1]",
		},
	},
	Action: runMatchText,
}

func runMatchText(c *cli.Context) error {
	if c.NArg() != 2 {
		return core.ErrMissingRequired.WithMessage("exactly two arguments are required: TARGET CANDIDATE")
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tm := cfg.TextMatching
	if c.IsSet("mode") {
		tm.Mode = textmatch.Mode(c.String("mode"))
		if tm.Mode != textmatch.ModeExact && tm.Mode != textmatch.ModePartial {
			return core.ErrInvalidConfig.WithMessage(fmt.Sprintf("unknown mode %q (want exact or partial)", tm.Mode))
		}
	}
	if c.Bool("no-antonyms") {
		tm.AntonymCheckEnabled = false
	}
	if c.Bool("no-semantic") {
		tm.SemanticAnalysisEnabled = false
	}
	if c.IsSet("threshold") {
		tm.PartialMatchThreshold = c.Float64("threshold")
	}

	return writeJSON(c, textmatch.Match(c.Args().Get(0), c.Args().Get(1), tm))
}
