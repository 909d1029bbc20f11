// Package ethaddr provides EVM address validation and normalization.
// Addresses are canonically compared in lowercase hex; EIP-55 checksum
// casing is a display concern only.
package ethaddr

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ErrInvalidAddress is returned for strings that are not 20-byte 0x hex.
var ErrInvalidAddress = errors.New("invalid address: expected 0x-prefixed 40 hex chars")

var addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// IsValid reports whether s is a well-formed EVM address.
func IsValid(s string) bool {
	return addressRe.MatchString(s)
}

// Normalize validates s and returns the canonical lowercase form.
func Normalize(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !IsValid(s) {
		return "", ErrInvalidAddress
	}
	return strings.ToLower(s), nil
}

// Checksum returns the EIP-55 mixed-case rendering of a valid address.
// The input may be in any casing; invalid input is returned unchanged.
func Checksum(s string) string {
	if !IsValid(s) {
		return s
	}
	hexAddr := strings.ToLower(s[2:])

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(hexAddr))
	hash := h.Sum(nil)

	out := make([]byte, len(hexAddr))
	for i := 0; i < len(hexAddr); i++ {
		c := hexAddr[i]
		if c >= 'a' && c <= 'f' {
			nibble := hash[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c = c - 'a' + 'A'
			}
		}
		out[i] = c
	}
	return "0x" + string(out)
}

// Shorten returns a display form like 0x1234...abcd.
func Shorten(s string) string {
	if len(s) < 10 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}
