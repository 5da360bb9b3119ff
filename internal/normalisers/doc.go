// Package normalisers holds the block normalisers. Each one turns a
// segmented source block into a registry entry and a search document.
//
// The markdown normaliser handles the "## Block N — Title" knowledge
// format and is the one the compose service uses.
package normalisers
