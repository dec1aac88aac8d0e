// Package encoding provides text utilities for library files: decoding of
// legacy text encodings and normalisation of library paths and datablock
// names so that lookups are stable across platforms and editors.
package encoding

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrUnknownEncoding is returned when an encoding label is not recognised.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// IsUTF8Label reports whether label names UTF-8 (or is empty).
func IsUTF8Label(label string) bool {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

// DecodeToUTF8 converts data in the named encoding (a WHATWG label such as
// "euc-kr", "windows-1252" or "shift_jis") to UTF-8.
// UTF-8 input is returned unchanged.
func DecodeToUTF8(data []byte, label string) ([]byte, error) {
	if IsUTF8Label(label) {
		return data, nil
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, label)
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", label, err)
	}
	return out, nil
}

// NormalizeName returns the NFC form of a datablock name with surrounding
// whitespace removed.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// NormalizePath turns a library path into the key used for deduplication:
// backslashes become slashes, the path is cleaned, made absolute when
// possible, and put into NFC form. Case is preserved.
func NormalizePath(path string) string {
	if path == "" {
		return ""
	}
	path = strings.ReplaceAll(path, "\\", "/")
	path = filepath.Clean(filepath.FromSlash(path))
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return norm.NFC.String(filepath.ToSlash(path))
}
