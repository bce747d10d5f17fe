// Package vfile defines Item, the unit of work that flows through an
// apply_template pipeline. An Item carries a path with its base and
// working directory, a payload that is either buffered or streamed,
// and a free-form metadata map.
//
// Prop exposes a closed set of named properties so callers can copy
// selected fields into a template context without reflection. Lookup
// adds dotted access (for example "data.custom") for template engines.
package vfile
