// Package formatter compiles format templates into reusable Plans and
// renders log entries into bytes.
//
// A template such as "{time} [{level:<8}] {message}" is compiled once by
// Compile into a Plan: a sequence of literal-text and field steps. Compile
// also drives the collection-requirements analyzer (Plan.Requirements),
// walked once at handler-construction time rather than on every emission.
//
// TextFormatter renders a Plan against an Entry; JSONFormatter renders the
// canonical single-line JSON form regardless of template (the JSON key set
// is fixed, see §4.2 of the design notes). Both implement Formatter,
// WriterFormatter, and BufferFormatter; handlers probe for the latter two
// at construction time to skip the intermediate byte-slice allocation on
// the write path.
//
// Inline color markup (<red>...</red>, nestable) is resolved by
// ApplyColorMarkup and is applied to the message and level tokens when a
// formatter's Colorize option is set; otherwise tags are stripped and their
// text preserved.
//
// Buffers larger than 64 KiB are not returned to the pool to prevent a
// single large log line from permanently inflating memory usage.
package formatter
