// Package bytecode normalizes and compares EVM bytecode blobs so that two
// independently produced binaries (one fetched from chain, one compiled from
// pinned source) become directly comparable.
package bytecode

import (
	"strings"

	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

// Clean lower-cases a blob and drops the 0x prefix. All package functions
// operate on cleaned hex.
func Clean(raw string) string {
	hex := strings.ToLower(strings.TrimSpace(raw))
	return strings.TrimPrefix(hex, "0x")
}

// ByteLen returns the byte size of a cleaned hex blob.
func ByteLen(hex string) int {
	return len(hex) / 2
}

// Normalize produces the canonical comparable form of a blob: cleaned hex
// with the compiler metadata trailer stripped and, for creation bytecode,
// trailing constructor arguments removed. refLen is the hex length of the
// normalized counterpart blob when known (0 when not); it anchors the
// constructor-argument boundary. Deterministic and idempotent.
func Normalize(raw string, role models.BytecodeRole, refLen int) string {
	hex := StripMetadata(Clean(raw))
	if role == models.RoleCreation {
		hex, _ = StripConstructorArgs(hex, refLen)
	}
	return hex
}

// StripMetadata removes the trailing encoded-metadata section. The last two
// bytes are a big-endian length field giving the section size; the section
// itself must start with a CBOR map header for the field to be trusted.
// Blobs without a valid trailer pass through unchanged.
func StripMetadata(hex string) string {
	if len(hex) < 4+2 || len(hex)%2 != 0 {
		return hex
	}
	length := 0
	for _, c := range hex[len(hex)-4:] {
		d := digit(byte(c))
		if d < 0 {
			return hex
		}
		length = length<<4 | d
	}
	cut := len(hex) - 4 - length*2
	if length == 0 || cut < 0 {
		return hex
	}
	if !cborMapHeader(hex[cut : cut+2]) {
		return hex
	}
	return hex[:cut]
}

// StripConstructorArgs removes the ABI-encoded constructor arguments
// appended to creation bytecode. The boundary is the known code length when
// available; the surplus must be 32-byte aligned to be treated as arguments.
// This is a length heuristic, not an ABI parse, and leaves the blob alone
// when no aligned boundary exists. Returns the stripped blob and the number
// of argument bytes removed.
func StripConstructorArgs(hex string, refLen int) (string, int) {
	if refLen <= 0 || len(hex) <= refLen {
		return hex, 0
	}
	surplus := len(hex) - refLen
	if surplus%64 != 0 {
		return hex, 0
	}
	return hex[:refLen], surplus / 2
}

// cborMapHeader reports whether a hex byte looks like the start of the small
// CBOR map the compiler emits (one to a handful of entries).
func cborMapHeader(b string) bool {
	if len(b) != 2 {
		return false
	}
	hi := digit(b[0])
	lo := digit(b[1])
	if hi < 0 || lo < 0 {
		return false
	}
	v := hi<<4 | lo
	return v >= 0xa1 && v <= 0xa7
}

func digit(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}
