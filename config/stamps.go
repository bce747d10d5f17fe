package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/valyala/fasttemplate"
)

// Keys grouping stamps and NAME=VALUE variables in the
// user context, next to their top-level copies.
const (
	StampsKey    = "stamps"
	VariablesKey = "variables"
)

// Stamps holds workspace status values by key.
type Stamps map[string]string

// LoadStamps merges workspace status files into Stamps.
// A line is "KEY VALUE", split at the first space; later
// files win and lines without a space are skipped.
func LoadStamps(infoFiles []string) (Stamps, error) {
	const errCtx = "loading stamps"

	stamps := make(Stamps)

	for _, sf := range infoFiles {
		content, err := os.ReadFile(sf) //nolint:gosec // paths from CLI flags
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}

		for _, line := range strings.Split(string(content), "\n") {
			if key, val, ok := strings.Cut(line, " "); ok {
				stamps[key] = val
			}
		}
	}

	return stamps, nil
}

// Expand substitutes {KEY} tags in s. Unknown tags are
// kept verbatim.
func (sm Stamps) Expand(s string) string {
	return fasttemplate.ExecuteFuncString(
		s, "{", "}",
		func(w io.Writer, tag string) (int, error) {
			if val, ok := sm[tag]; ok {
				return io.WriteString(w, val)
			}

			return io.WriteString(w, "{"+tag+"}")
		},
	)
}

// context returns the stamps as a user context layer:
// each key at top level plus all of them under StampsKey.
func (sm Stamps) context() map[string]interface{} {
	if len(sm) == 0 {
		return nil
	}

	out := make(map[string]interface{}, len(sm)+1)
	grouped := make(map[string]interface{}, len(sm))

	for key, val := range sm {
		out[key] = val
		grouped[key] = val
	}

	out[StampsKey] = grouped

	return out
}

// ParseVars turns NAME=VALUE pairs into a map. Each value
// is stamp-expanded first. Results are stored both as
// NAME and under VariablesKey.NAME.
func ParseVars(
	vars []string,
	stamps Stamps,
) (map[string]interface{}, error) {
	const errCtx = "parsing variables"

	out := make(map[string]interface{})
	grouped := make(map[string]interface{})

	for _, vr := range vars {
		name, val, ok := strings.Cut(vr, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf(
				"%s: variable must be VAR=value, got %s",
				errCtx, vr,
			)
		}

		val = stamps.Expand(val)

		out[name] = val
		grouped[name] = val
	}

	if len(grouped) > 0 {
		out[VariablesKey] = grouped
	}

	return out, nil
}

// UserContext layers stamps, then the options file
// context, then variables, into one user context.
func UserContext(
	stamps Stamps,
	fileCtx map[string]interface{},
	vars map[string]interface{},
) map[string]interface{} {
	out := make(map[string]interface{})

	for _, layer := range []map[string]interface{}{
		stamps.context(), fileCtx, vars,
	} {
		for key, val := range layer {
			out[key] = val
		}
	}

	return out
}
