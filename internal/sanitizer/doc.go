// Package sanitizer rewrites untrusted HTML into a whitelisted subset.
//
// Markup is parsed into a detached tree that the Janitor owns. Tags missing
// from the whitelist are unwrapped, promoting their children in place,
// except script and style whose content is dropped with them. Comments are
// always removed. Attributes survive only when the tag rule allows them.
//
// Two structural rules apply regardless of the whitelist: an inline element
// holding a block element is unwrapped, and a block element nested inside
// another block element below the top level is unwrapped unless
// KeepNestedBlockElements is set.
//
// SanitizeBlocks applies per-field rules to the string leaves of saved block
// data.
package sanitizer
