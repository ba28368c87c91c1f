package parser

import (
	"fmt"
	"testing"
)

func TestForFile(t *testing.T) {
	cases := []struct {
		filename string
		want     string
	}{
		{"a.txt", "*parser.TextParser"},
		{"a.MD", "*parser.MarkdownParser"},
		{"a.markdown", "*parser.MarkdownParser"},
		{"a.csv", "*parser.CSVParser"},
		{"a.htm", "*parser.HTMLParser"},
		{"a.html", "*parser.HTMLParser"},
		{"a.pdf", "*parser.PDFParser"},
		{"a.docx", "*parser.DOCXParser"},
	}
	for _, tc := range cases {
		p, err := ForFile(tc.filename)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.filename, err)
			continue
		}
		if got := typeName(p); got != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.filename, tc.want, got)
		}
	}

	if _, err := ForFile("a.exe"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestOptionsForFile_PDFFallback(t *testing.T) {
	p, err := Options{PDFFallbackPdftotext: false}.ForFile("x.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.(*PDFParser).FallbackPdftotext {
		t.Error("expected pdftotext fallback disabled")
	}
}

func TestIsSupportedExtension(t *testing.T) {
	if !IsSupportedExtension("REPORT.PDF") {
		t.Error("expected .PDF to be supported")
	}
	if IsSupportedExtension("archive.zip") {
		t.Error("expected .zip to be unsupported")
	}
}

func TestStem(t *testing.T) {
	if got := Stem("/tmp/drop/AAPL_10K.final.htm"); got != "AAPL_10K.final" {
		t.Errorf("expected %q, got %q", "AAPL_10K.final", got)
	}
}

func TestPDFOutline_PrefersStructuralLabels(t *testing.T) {
	got := pdfOutline([]string{"PART I\nItem 1. Business\ntext", "more"})
	want := "## PART I\n## Item 1. Business\ntext\nmore\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPDFOutline_PageSections(t *testing.T) {
	got := pdfOutline([]string{"first page", "  ", "third page"})
	want := "# Page 1\nfirst page\n# Page 3\nthird page\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
