package cli

import (
	"strings"

	"github.com/urfave/cli/v2"
)

// hoistFlags moves a command's flags ahead of its positional arguments.
// urfave/cli stops flag parsing at the first positional, so without this
// `hit-test dump.xml --x 10 --y 20` would leave --x unparsed. Everything
// after a bare "--" stays positional.
func hoistFlags(app *cli.App, args []string) []string {
	if len(args) < 2 {
		return args
	}

	// args[0] is the program name; skip global flags up to the command.
	i := 1
	for i < len(args) && isFlag(args[i]) {
		if takesValue(app.Flags, args[i]) {
			i++
		}
		i++
	}
	if i >= len(args) {
		return args
	}
	cmd := app.Command(args[i])
	if cmd == nil || len(cmd.Flags) == 0 {
		return args
	}

	var flags, positional []string
	rest := args[i+1:]
	for j := 0; j < len(rest); j++ {
		a := rest[j]
		if a == "--" {
			positional = append(positional, rest[j:]...)
			break
		}
		if !isFlag(a) {
			positional = append(positional, a)
			continue
		}
		flags = append(flags, a)
		if takesValue(cmd.Flags, a) && j+1 < len(rest) {
			j++
			flags = append(flags, rest[j])
		}
	}

	out := make([]string, 0, len(args))
	out = append(out, args[:i+1]...)
	out = append(out, flags...)
	return append(out, positional...)
}

func isFlag(a string) bool {
	if len(a) < 2 || a[0] != '-' || a == "--" {
		return false
	}
	// negative numbers are values, not flags
	c := a[1]
	return !(c >= '0' && c <= '9')
}

// takesValue reports whether a is a known non-boolean flag whose value
// is the next token.
func takesValue(flags []cli.Flag, a string) bool {
	if strings.Contains(a, "=") {
		return false
	}
	name := strings.TrimLeft(a, "-")
	for _, f := range flags {
		for _, n := range f.Names() {
			if n != name {
				continue
			}
			_, isBool := f.(*cli.BoolFlag)
			return !isBool
		}
	}
	return false
}
