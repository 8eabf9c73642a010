package ingestion

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/nguyenthenguyen/docx"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// decodeDOCX returns the text of every paragraph in document order.
func decodeDOCX(data []byte) ([]string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(err, "read docx")
	}
	defer func() { _ = doc.Close() }()

	return docxParagraphs(doc.Editable().GetContent())
}

// docxParagraphs walks word/document.xml. Runs inside a w:p are concatenated;
// w:tab becomes a tab and w:br a newline.
func docxParagraphs(documentXML string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(documentXML))

	var (
		paras  []string
		stack  []*strings.Builder
		inText bool
	)
	current := func() *strings.Builder {
		if len(stack) == 0 {
			return nil
		}
		return stack[len(stack)-1]
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "parse document.xml")
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				stack = append(stack, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				if b := current(); b != nil {
					b.WriteByte('\t')
				}
			case "br", "cr":
				if b := current(); b != nil {
					b.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				if b := current(); b != nil {
					paras = append(paras, b.String())
					stack = stack[:len(stack)-1]
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if b := current(); inText && b != nil {
				b.Write(t)
			}
		}
	}
	return paras, nil
}
