package wallpaper

import (
	"strings"
)

// Command is an external invocation the caller should run to display the
// result. spanwall never executes these itself.
type Command struct {
	Program string
	Args    []string
}

// String renders the command as a shell line with quoted arguments.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, shellQuote(c.Program))
	for _, a := range c.Args {
		parts = append(parts, shellQuote(a))
	}
	return strings.Join(parts, " ")
}

// Commands returns the transform commands for overridden outputs followed
// by one background-setter invocation per output. Rasters are already
// scaled and oriented, so the setter always displays them with "stretch".
func Commands(res *Result) []Command {
	if res == nil {
		return nil
	}
	var cmds []Command
	for _, name := range res.Overridden {
		for _, o := range res.Outputs {
			if o.Name == name {
				cmds = append(cmds, Command{
					Program: "swaymsg",
					Args:    []string{"output", name, "transform", o.Transform.String()},
				})
				break
			}
		}
	}
	for _, e := range res.Entries() {
		cmds = append(cmds, Command{
			Program: "swaybg",
			Args:    []string{"-o", e.Output.Name, "-i", e.Path, "-m", "stretch"},
		})
	}
	return cmds
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./:=,+@%", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}
