// Package templating provides the engine registry used by apply_template.
// An Engine renders a template, found by locator, against a context map.
// Engines are looked up by identifier in a Registry.
//
// Three engines are built in. "fasttemplate" uses valyala/fasttemplate
// with configurable delimiters (default "{{" and "}}"), resolves dotted
// tag names through nested maps and items, and renders missing values as
// empty. "stamp" uses single-brace {VAR} tags and preserves unknown tags,
// matching Bazel workspace status stamping. "gotemplate" uses the
// standard text/template package.
package templating
