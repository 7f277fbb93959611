package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"resumelift/internal/types"
)

// extractPDF pulls plain text and link annotations from a PDF file.
// Annotation links carry the page they were found on; links that only
// appear in the text are discovered afterwards by the text scanner.
func extractPDF(data []byte) (string, []types.Link, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("parsing pdf: %w", err)
	}

	var textBuilder strings.Builder
	var links []types.Link

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err == nil {
			textBuilder.WriteString(text)
			textBuilder.WriteString("\n")
		}

		links = append(links, pageAnnotationLinks(page, i)...)
	}

	text := textBuilder.String()
	links = append(links, DiscoverTextLinks(text)...)

	return text, dedupeLinks(links), nil
}

// pageAnnotationLinks reads URI actions from a page's link annotations
func pageAnnotationLinks(page pdf.Page, pageNum int) []types.Link {
	annots := page.V.Key("Annots")
	if annots.Kind() != pdf.Array {
		return nil
	}

	var links []types.Link
	for j := 0; j < annots.Len(); j++ {
		annot := annots.Index(j)
		if annot.Kind() != pdf.Dict {
			continue
		}
		if annot.Key("Subtype").Name() != "Link" {
			continue
		}
		uri := annot.Key("A").Key("URI")
		if uri.Kind() != pdf.String {
			continue
		}
		url := strings.TrimSpace(uri.RawString())
		if url == "" {
			continue
		}
		links = append(links, types.Link{
			URL:        url,
			Page:       pageNum,
			Provenance: types.LinkFromAnnotation,
		})
	}
	return links
}
