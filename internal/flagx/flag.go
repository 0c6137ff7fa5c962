// Package flagx holds helpers for sharing os.Args between several
// independent flag sets (config file lookup, env file lookup, main flags).
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs keeps only the allowed flags from args, together with their
// values. Both "-c conf.json" and "--config=conf.json" forms are recognised.
// The result is never nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]

		if strings.HasPrefix(arg, "-") && strings.Contains(arg, "=") {
			name, _, _ := strings.Cut(arg, "=")
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; ok {
			filtered = append(filtered, arg)
			if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				filtered = append(filtered, args[i+1])
				i++
			}
		}
	}
	return filtered
}

// lookupString parses a single string flag known under several names.
func lookupString(args []string, names ...string) string {
	var value string
	allowed := make([]string, 0, len(names)*2)
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(discard{})
	for _, n := range names {
		fs.StringVar(&value, n, "", "")
		allowed = append(allowed, "-"+n, "--"+n)
	}
	_ = fs.Parse(FilterArgs(args, allowed))
	return value
}

// ConfigFileFlag returns the JSON config path given with -c or -config,
// or "" when absent.
func ConfigFileFlag(args []string) string {
	return lookupString(args, "config", "c")
}

// EnvFileFlag returns the dotenv path given with -env-file, or "" when absent.
func EnvFileFlag(args []string) string {
	return lookupString(args, "env-file")
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
