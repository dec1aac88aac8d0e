package encoding

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestDecodeToUTF8(t *testing.T) {
	// "한" in EUC-KR
	got, err := DecodeToUTF8([]byte{0xC7, 0xD1}, "euc-kr")
	if err != nil {
		t.Fatalf("DecodeToUTF8: %v", err)
	}
	if string(got) != "한" {
		t.Errorf("DecodeToUTF8 = %q, want %q", got, "한")
	}

	// Latin-1 e-acute
	got, err = DecodeToUTF8([]byte{0xE9}, "windows-1252")
	if err != nil {
		t.Fatalf("DecodeToUTF8: %v", err)
	}
	if string(got) != "é" {
		t.Errorf("DecodeToUTF8 = %q, want %q", got, "é")
	}
}

func TestDecodeToUTF8Passthrough(t *testing.T) {
	in := []byte("plain")
	for _, label := range []string{"", "UTF-8", "utf8"} {
		got, err := DecodeToUTF8(in, label)
		if err != nil || string(got) != "plain" {
			t.Errorf("DecodeToUTF8(%q) = %q, %v", label, got, err)
		}
	}
}

func TestDecodeToUTF8Unknown(t *testing.T) {
	_, err := DecodeToUTF8([]byte("x"), "klingon-8")
	if !errors.Is(err, ErrUnknownEncoding) {
		t.Errorf("expected ErrUnknownEncoding, got %v", err)
	}
}

func TestNormalizeName(t *testing.T) {
	// "é" decomposed (e + combining acute) composes to a single rune.
	decomposed := "Café "
	if got := NormalizeName(decomposed); got != "Café" {
		t.Errorf("NormalizeName = %q, want %q", got, "Café")
	}
}

func TestNormalizePath(t *testing.T) {
	dir := t.TempDir()
	a := NormalizePath(filepath.Join(dir, "libs", "..", "village.yaml"))
	b := NormalizePath(strings.ReplaceAll(filepath.Join(dir, "village.yaml"), "/", "\\"))
	if a != filepath.ToSlash(filepath.Join(dir, "village.yaml")) {
		t.Errorf("NormalizePath = %q", a)
	}
	if filepath.Separator == '/' && a != b {
		t.Errorf("backslash path should normalise equally: %q vs %q", a, b)
	}
	if NormalizePath("") != "" {
		t.Error("empty path should stay empty")
	}
}
