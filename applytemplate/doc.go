// Package applytemplate implements the apply-template pipeline stage. For
// each vfile.Item it builds a template context, resolves an engine and a
// template locator, renders, and replaces the item's payload with the
// output while keeping its buffered or streamed form.
//
// The context is layered, lowest precedence first:
//
//  1. item properties: the defaults (path, data, contents), or exactly
//     the names listed in Config.Props;
//  2. the user context, static or computed from the item;
//  3. the raw item under the "file" key, which user context cannot
//     replace.
//
// Engine, Template and Context are Values: either Static or Computed per
// item. New validates a Config once; Process handles a single item and
// Run drives a channel of items in arrival order.
package applytemplate
