package applytemplate

import (
	"github.com/byte4ever/apply_template/vfile"
)

// FileKey holds the raw item in every context.
const FileKey = "file"

// DefaultProps are copied from the item when Config.Props
// is nil.
var DefaultProps = []string{
	vfile.PropPath,
	vfile.PropData,
	vfile.PropContents,
}

// Context is the per-item mapping handed to engines and
// resolvers. Keys keep insertion order; overriding a key
// keeps its original position. Context has no exported
// mutators.
type Context struct {
	keys   []string
	values map[string]interface{}
}

func newContext(size int) *Context {
	return &Context{
		keys:   make([]string, 0, size),
		values: make(map[string]interface{}, size),
	}
}

func (c *Context) set(key string, val interface{}) {
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}

	c.values[key] = val
}

// Get returns the value stored under key.
func (c Context) Get(key string) (interface{}, bool) {
	val, ok := c.values[key]

	return val, ok
}

// Lookup resolves a dotted key such as "file.path".
func (c Context) Lookup(key string) (interface{}, bool) {
	return vfile.LookupPath(c.values, key)
}

// Keys returns the keys in insertion order.
func (c Context) Keys() []string {
	return append([]string(nil), c.keys...)
}

// Len returns the number of keys.
func (c Context) Len() int {
	return len(c.keys)
}

// Map returns a shallow copy of the context.
func (c Context) Map() map[string]interface{} {
	out := make(map[string]interface{}, len(c.values))
	for key, val := range c.values {
		out[key] = val
	}

	return out
}
