package store

import (
	"crypto/md5"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"
)

const maxStemRunes = 80

var (
	disallowedChars = regexp.MustCompile(`[^\w\s\-.]`)
	whitespaceRuns  = regexp.MustCompile(`\s+`)
)

// DocID derives the stable id of a source file: its sanitized stem, cut to
// 80 characters, plus the first 8 hex digits of the MD5 of the full name.
// Sanitizing keeps ASCII letters, digits, '_', '-' and '.'; everything else,
// including non-ASCII letters, becomes '_' so the id is a safe file name.
// Names that sanitize to the same stem stay distinct through the hash;
// equal names always collide, so the latest save wins.
func DocID(sourceFile string) string {
	stem := sanitize(fileStem(sourceFile))
	if r := []rune(stem); len(r) > maxStemRunes {
		stem = string(r[:maxStemRunes])
	}
	sum := md5.Sum([]byte(sourceFile))
	return stem + "_" + hex.EncodeToString(sum[:])[:8]
}

func sanitize(s string) string {
	s = disallowedChars.ReplaceAllString(s, "_")
	return whitespaceRuns.ReplaceAllString(s, "_")
}

// fileStem strips the directory and last extension. Dot files keep their
// name.
func fileStem(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if i := strings.LastIndex(base, "."); i > 0 && i < len(base)-1 {
		return base[:i]
	}
	return base
}
