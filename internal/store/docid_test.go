package store

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestDocID(t *testing.T) {
	cases := []struct {
		source     string
		wantPrefix string
	}{
		{"report.pdf", "report_"},
		{"dir/My Report (final).docx", "My_Report__final__"},
		{"AAPL 10-K 2023.html", "AAPL_10-K_2023_"},
		{"v1.2.notes.txt", "v1.2.notes_"},
		{".env", ".env_"},
		{"naïve café.md", "na_ve_caf__"},
	}
	for _, tc := range cases {
		id := DocID(tc.source)
		if !strings.HasPrefix(id, tc.wantPrefix) {
			t.Errorf("DocID(%q) = %q, want prefix %q", tc.source, id, tc.wantPrefix)
		}
		if len(id) != len(tc.wantPrefix)+8 {
			t.Errorf("DocID(%q) = %q, want 8 hex digits after prefix", tc.source, id)
		}
	}
}

func TestDocID_Stable(t *testing.T) {
	if DocID("a/b/c.txt") != DocID("a/b/c.txt") {
		t.Error("expected the same id for the same source file")
	}
	if DocID("a/c.txt") == DocID("b/c.txt") {
		t.Error("expected different paths with the same stem to get different ids")
	}
}

func TestDocID_TruncatesLongStems(t *testing.T) {
	id := DocID(strings.Repeat("x", 200) + ".txt")
	if n := utf8.RuneCountInString(id); n != 80+1+8 {
		t.Errorf("expected 89 characters, got %d", n)
	}
}

func TestDocID_SafeFileName(t *testing.T) {
	for _, src := range []string{"../../etc/passwd", `C:\temp\x.txt`, "a/b\\c:d*e?.md"} {
		id := DocID(src)
		if strings.ContainsAny(id, `/\:*?`) || !validID(id) {
			t.Errorf("DocID(%q) = %q is not a safe file name", src, id)
		}
	}
}
