package extract

import (
	"strings"
	"testing"

	"resumelift/internal/errors"
	"resumelift/internal/types"
)

const sampleResume = `Jane Doe
Data Analyst with experience in Excel, SQL and Python.
Portfolio: https://github.com/janedoe
Profile: https://www.linkedin.com/in/janedoe
Contact: mailto:jane@example.com
Projects: sales dashboard, churn analysis, survey insights.`

func TestExtractTxt(t *testing.T) {
	e := NewExtractor(0, nil)

	doc, err := e.Extract("resume.txt", []byte(sampleResume))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if !strings.Contains(doc.Text, "Data Analyst") {
		t.Errorf("extracted text missing content: %q", doc.Text)
	}
	if doc.Filename != "resume.txt" {
		t.Errorf("Filename = %q", doc.Filename)
	}
	if len(doc.Links) != 3 {
		t.Fatalf("got %d links, want 3: %+v", len(doc.Links), doc.Links)
	}
	for _, link := range doc.Links {
		if link.Provenance != types.LinkFromText {
			t.Errorf("link %q provenance = %q, want text", link.URL, link.Provenance)
		}
	}
}

func TestExtractRejectsShortText(t *testing.T) {
	e := NewExtractor(50, nil)

	_, err := e.Extract("resume.txt", []byte("too short"))
	if err == nil {
		t.Fatal("expected error for short text")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("error type %T, want *errors.AppError", err)
	}
	if appErr.Code != errors.ErrCodeExtractionFailed {
		t.Errorf("Code = %q, want %q", appErr.Code, errors.ErrCodeExtractionFailed)
	}
}

func TestExtractRejectsUnsupportedFormat(t *testing.T) {
	e := NewExtractor(0, nil)

	_, err := e.Extract("resume.odt", []byte(sampleResume))
	if err == nil || !strings.Contains(err.Error(), "Unsupported file format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExtractRejectsEmptyFile(t *testing.T) {
	e := NewExtractor(0, nil)

	if _, err := e.Extract("resume.pdf", nil); err == nil {
		t.Error("expected error for empty upload")
	}
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	e := NewExtractor(0, nil)

	_, err := e.Extract("resume.pdf", []byte("this is not a pdf at all, just text padding to pass nothing"))
	if err == nil {
		t.Fatal("expected error for corrupt pdf")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok || appErr.Code != errors.ErrCodeExtractionFailed {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDiscoverTextLinks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "HTTPAndMailto",
			text: "see https://github.com/x and mailto:a@b.c for details",
			want: []string{"https://github.com/x", "mailto:a@b.c"},
		},
		{
			name: "TrailingPunctuationStripped",
			text: "visit https://example.com/page.",
			want: []string{"https://example.com/page"},
		},
		{
			name: "BareWWW",
			text: "at www.kaggle.com/janedoe today",
			want: []string{"www.kaggle.com/janedoe"},
		},
		{
			name: "NoLinks",
			text: "plain text without any links",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			links := DiscoverTextLinks(tt.text)
			if len(links) != len(tt.want) {
				t.Fatalf("got %d links, want %d: %+v", len(links), len(tt.want), links)
			}
			for i, want := range tt.want {
				if links[i].URL != want {
					t.Errorf("link[%d] = %q, want %q", i, links[i].URL, want)
				}
			}
		})
	}
}

func TestFilterRelevant(t *testing.T) {
	links := []types.Link{
		{URL: "https://linkedin.com/in/x"},
		{URL: "www.github.com/x"},
		{URL: "www.kaggle.com/x"},
		{URL: "mailto:a@b.c"},
		{URL: "https://example.com"},
		{URL: "ftp://example.com/file"},
		{URL: "www.random-site.org"},
	}

	kept := FilterRelevant(links)

	urls := make([]string, len(kept))
	for i, l := range kept {
		urls[i] = l.URL
	}

	for _, want := range []string{"https://linkedin.com/in/x", "www.github.com/x", "www.kaggle.com/x", "mailto:a@b.c", "https://example.com"} {
		found := false
		for _, u := range urls {
			if u == want {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %q to be kept, got %v", want, urls)
		}
	}
	for _, reject := range []string{"ftp://example.com/file", "www.random-site.org"} {
		for _, u := range urls {
			if u == reject {
				t.Errorf("expected %q to be filtered out", reject)
			}
		}
	}
}

func TestDedupeLinks(t *testing.T) {
	links := []types.Link{
		{URL: "https://github.com/x", Provenance: types.LinkFromAnnotation, Page: 1},
		{URL: "https://github.com/x/", Provenance: types.LinkFromText},
		{URL: "https://kaggle.com/y", Provenance: types.LinkFromText},
	}

	deduped := dedupeLinks(links)
	if len(deduped) != 2 {
		t.Fatalf("got %d links, want 2: %+v", len(deduped), deduped)
	}
	// Annotation occurrence wins over the text duplicate
	if deduped[0].Provenance != types.LinkFromAnnotation {
		t.Errorf("first link provenance = %q, want annotation", deduped[0].Provenance)
	}
}

func TestDocxPlainText(t *testing.T) {
	xml := `<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>Data Analyst</w:t></w:r></w:p>`
	text := docxPlainText(xml)

	if !strings.Contains(text, "Jane Doe") || !strings.Contains(text, "Data Analyst") {
		t.Errorf("plain text missing content: %q", text)
	}
	if strings.Contains(text, "<w:") {
		t.Errorf("tags not stripped: %q", text)
	}
	if !strings.Contains(text, "\n") {
		t.Errorf("paragraph break not preserved: %q", text)
	}
}
