// Package extract turns uploaded resume files into plain text plus the
// hyperlinks discovered in them.
package extract

import (
	"fmt"
	"strings"

	"resumelift/internal/errors"
	"resumelift/internal/types"
	"resumelift/internal/utils"
)

// DefaultMinChars is the minimum extracted text length accepted when no
// limit is configured. Anything shorter is not a usable resume.
const DefaultMinChars = 50

// Extractor converts uploaded files into ExtractedDocument values
type Extractor struct {
	minChars int
	logger   *errors.Logger
}

// NewExtractor creates an extractor. minChars <= 0 selects DefaultMinChars.
func NewExtractor(minChars int, logger *errors.Logger) *Extractor {
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return &Extractor{minChars: minChars, logger: logger}
}

// Extract parses the uploaded file by extension and returns its text and
// links. Supported formats: .pdf, .docx, .txt.
func (e *Extractor) Extract(filename string, data []byte) (*types.ExtractedDocument, error) {
	if len(data) == 0 {
		return nil, errors.NewValidationError(errors.ErrCodeExtractionFailed,
			"Uploaded file is empty", nil)
	}

	var (
		text  string
		links []types.Link
		err   error
	)

	ext := utils.GetFileExtension(filename)
	switch ext {
	case ".pdf":
		text, links, err = extractPDF(data)
	case ".docx":
		text, links, err = extractDocx(data)
	case ".txt":
		text = string(data)
		links = DiscoverTextLinks(text)
	default:
		return nil, errors.NewValidationError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("Unsupported file format: %s (use .pdf, .docx or .txt)", ext), nil)
	}
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("Could not read %s file", strings.TrimPrefix(ext, ".")), err)
	}

	text = strings.TrimSpace(text)
	if len(text) < e.minChars {
		return nil, errors.NewValidationError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("Extracted text is too short (%d characters, minimum %d); the file may be scanned or image-based",
				len(text), e.minChars), nil)
	}

	links = FilterRelevant(links)

	if e.logger != nil {
		e.logger.Debug("Document extracted",
			"filename", filename,
			"format", ext,
			"text_chars", len(text),
			"links", len(links))
	}

	return &types.ExtractedDocument{
		Text:     text,
		Links:    links,
		Filename: filename,
	}, nil
}
