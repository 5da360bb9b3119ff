// Package identity derives stable content-addressed identifiers and
// URL-safe slugs for knowledge blocks.
//
// Identifiers are name-based UUIDs (version 5) computed over the SHA-256
// digest of the NFC-normalised block text, so re-ingesting the same block
// always yields the same identifier. Slugs are allocated through a
// SlugAllocator owned by a single compose run.
package identity
