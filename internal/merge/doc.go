// Package merge upserts composed records and graph elements into the
// existing collections without disturbing entries it does not touch.
package merge
