// Package crosslinks turns the references written inside a block into
// edges of the cross-link graph.
//
// Targets come from Markdown links, wiki links, KB references and the
// block's cross-links section. Each target is resolved against an Index
// of known documents by a pluggable Matcher; unresolved targets become
// pending edges that a later run may resolve.
package crosslinks
