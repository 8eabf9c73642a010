package ingestion

import (
	"bytes"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/ledongthuc/pdf"
)

// decodePDF returns the plain text of every page in order. Pages without
// content yield an empty string. The reader ends each page with a newline;
// it is trimmed so pages join with exactly one.
func decodePDF(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "read pdf")
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, errors.Wrapf(err, "read pdf page %d", i)
		}
		pages = append(pages, strings.TrimRight(text, "\r\n"))
	}
	return pages, nil
}
