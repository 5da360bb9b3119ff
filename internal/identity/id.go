package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/udigitrentals/github-kb/internal/logger"
)

// namespace is the UUID namespace of every block identifier.
//
// DO NOT CHANGE. Every identifier ever issued is derived from this value;
// a new namespace silently reassigns the identity of every document.
const namespace = "5b0c3e6a-91d4-5f27-8a3e-c4d17f2b6e90"

var namespaceUUID = uuid.MustParse(namespace)

var errInvalidUTF8 = errors.New("text is not valid UTF-8")

// Fallback reports which step of the derivation chain produced an identifier.
type Fallback int

const (
	// FallbackNone means the identifier is a stable UUIDv5.
	FallbackNone Fallback = iota

	// FallbackDigest means normalisation failed and the identifier is the
	// raw SHA-256 hex digest of the input bytes.
	FallbackDigest

	// FallbackRandom means hashing failed and the identifier is a random UUIDv4.
	// It is not stable across runs.
	FallbackRandom
)

// String returns the fallback name for logs.
func (f Fallback) String() string {
	switch f {
	case FallbackNone:
		return "none"
	case FallbackDigest:
		return "digest"
	case FallbackRandom:
		return "random"
	default:
		return "unknown"
	}
}

// StableID returns the identifier of a raw block.
func StableID(raw string) string {
	id, _ := DeriveID(raw)
	return id
}

// DeriveID returns the identifier of a raw block together with the
// fallback level that produced it. Degraded identifiers are logged.
func DeriveID(raw string) (string, Fallback) {
	normalised, err := normaliseNFC(raw)
	if err == nil {
		digest, hashErr := SHA256Hex(normalised)
		if hashErr == nil {
			return uuid.NewSHA1(namespaceUUID, []byte(digest)).String(), FallbackNone
		}
		err = hashErr
	}

	logger.Warn("stable id degraded to digest: %v", err)
	digest, hashErr := SHA256Hex(raw)
	if hashErr == nil {
		return digest, FallbackDigest
	}

	logger.Warn("stable id degraded to random uuid: %v", hashErr)
	return uuid.New().String(), FallbackRandom
}

// SHA256Hex returns the hex SHA-256 digest of the UTF-8 bytes of s.
func SHA256Hex(s string) (string, error) {
	h := sha256.New()
	if _, err := io.WriteString(h, s); err != nil {
		return "", fmt.Errorf("hash: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func normaliseNFC(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", errInvalidUTF8
	}
	return norm.NFC.String(s), nil
}
