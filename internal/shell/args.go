package shell

import (
	"fmt"
	"strconv"
	"strings"
)

// flagSpec describes a --flag accepted inside shell commands.
type flagSpec struct {
	name    string
	short   string
	boolean bool
}

var commandFlags = []flagSpec{
	{name: "due-date"},
	{name: "recurrence"},
	{name: "priority"},
	{name: "tags"},
	{name: "status"},
	{name: "tag"},
	{name: "yes", short: "y", boolean: true},
}

// parsedArgs holds positional words and --flag values of one command.
type parsedArgs struct {
	positional []string
	flags      map[string]string
}

func (p parsedArgs) flag(name string) (string, bool) {
	v, ok := p.flags[name]
	return v, ok
}

func (p parsedArgs) has(name string) bool {
	_, ok := p.flags[name]
	return ok
}

func (p parsedArgs) arg(i int) (string, bool) {
	if i < len(p.positional) {
		return p.positional[i], true
	}
	return "", false
}

func lookupFlag(name string) (flagSpec, bool) {
	for _, f := range commandFlags {
		if f.name == name || (f.short != "" && f.short == name) {
			return f, true
		}
	}
	return flagSpec{}, false
}

// parseArgs separates flags from positional words. Flags may appear
// anywhere, as "--name value" or "--name=value"; "--" ends flag parsing.
func parseArgs(args []string) (parsedArgs, error) {
	out := parsedArgs{flags: map[string]string{}}

	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			out.positional = append(out.positional, args[i+1:]...)
			break
		}
		if !strings.HasPrefix(a, "-") || a == "-" || isNumber(a) {
			out.positional = append(out.positional, a)
			continue
		}

		name := strings.TrimLeft(a, "-")
		value, hasValue := "", false
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name, value, hasValue = name[:eq], name[eq+1:], true
		}

		spec, ok := lookupFlag(name)
		if !ok {
			return parsedArgs{}, fmt.Errorf("unknown option %q", a)
		}
		if spec.boolean {
			if hasValue {
				return parsedArgs{}, fmt.Errorf("option --%s does not take a value", spec.name)
			}
			out.flags[spec.name] = "true"
			continue
		}
		if !hasValue {
			if i+1 >= len(args) {
				return parsedArgs{}, fmt.Errorf("option --%s requires a value", spec.name)
			}
			i++
			value = args[i]
		}
		out.flags[spec.name] = value
	}

	return out, nil
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// parseID parses a positive task id.
func parseID(s string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("task ID must be a positive number, got %q", s)
	}
	return id, nil
}

// isNone reports whether v asks to clear a field.
func isNone(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "none")
}

// isWildcard reports whether a filter word means "any".
func isWildcard(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "-", "*", "all", "any":
		return true
	}
	return false
}
