package outline

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode turns raw bytes into text. A declared encoding is tried first when
// it is known and not UTF-8. Otherwise the bytes are taken as UTF-8 when
// valid. Anything else falls back once to ISO-8859-1 for the whole buffer.
func Decode(raw []byte, declared string) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	if label := strings.ToLower(strings.TrimSpace(declared)); label != "" && label != "utf-8" && label != "utf8" {
		if enc, err := htmlindex.Get(label); err == nil {
			if out, err := enc.NewDecoder().Bytes(raw); err == nil {
				return string(out), nil
			}
		}
	}

	if utf8.Valid(raw) {
		return string(raw), nil
	}

	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: decode latin-1: %v", ErrMalformedInput, err)
	}
	return string(out), nil
}
