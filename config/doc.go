// Package config turns apply_template command-line input into a stage
// Config. Options can come from a YAML or JSON file (goccy/go-yaml and
// goccy/go-json), from Bazel workspace status files ("KEY VALUE" lines)
// and from NAME=VALUE variables whose values may reference stamps with
// single-brace {KEY} tags.
package config
