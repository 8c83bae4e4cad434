package pdfreport

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const maxPDFBytes = 20 << 20

// ExtractText pulls the plain text out of an uploaded scorecard PDF. Layout
// is not preserved beyond row grouping; the downstream extraction prompt is
// built to cope with flattened table text.
func ExtractText(source io.Reader) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(source, maxPDFBytes+1))
	if err != nil {
		return "", fmt.Errorf("read pdf upload: %w", err)
	}
	if len(raw) > maxPDFBytes {
		return "", fmt.Errorf("pdf exceeds %d bytes", maxPDFBytes)
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("extract text from page %d: %w", pageNum, err)
		}
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
				sb.WriteByte(' ')
			}
			sb.WriteByte('\n')
		}
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("pdf contains no extractable text")
	}

	return text, nil
}
