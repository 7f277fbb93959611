package extract

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/nguyenthenguyen/docx"

	"resumelift/internal/types"
)

var docxTagPattern = regexp.MustCompile(`<[^>]+>`)

// extractDocx pulls plain text and hyperlinks from a DOCX file. The docx
// library returns document XML, so tags are stripped before the text is
// handed to the pipeline.
func extractDocx(data []byte) (string, []types.Link, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", nil, fmt.Errorf("parsing docx: %w", err)
	}
	defer doc.Close()

	content := doc.Editable().GetContent()
	text := docxPlainText(content)
	links := DiscoverTextLinks(text)

	return text, dedupeLinks(links), nil
}

// docxPlainText converts document XML to readable text, turning paragraph
// and break tags into newlines before stripping the rest
func docxPlainText(content string) string {
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:br/>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")
	content = docxTagPattern.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}
