// Package ingestion turns uploaded documents and fetched job postings into
// clean plain text.
package ingestion

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
)

// Format identifies how a document was decoded.
type Format string

// Document formats.
const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatText Format = "text"
)

// Decoder splits a document into its text units: pages for PDF, paragraphs
// for DOCX. The units are joined with newlines.
type Decoder func(data []byte) ([]string, error)

type registeredDecoder struct {
	format Format
	decode Decoder
}

// Extractor dispatches documents to a decoder by file extension.
type Extractor struct {
	decoders map[string]registeredDecoder
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithDecoder registers or replaces the decoder for an extension such as ".pdf".
func WithDecoder(ext string, format Format, d Decoder) Option {
	return func(x *Extractor) {
		x.decoders[strings.ToLower(ext)] = registeredDecoder{format: format, decode: d}
	}
}

// NewExtractor returns an Extractor handling .pdf, .docx and .txt; any other
// extension is read as UTF-8 text.
func NewExtractor(opts ...Option) *Extractor {
	x := &Extractor{decoders: map[string]registeredDecoder{
		".pdf":  {format: FormatPDF, decode: decodePDF},
		".docx": {format: FormatDOCX, decode: decodeDOCX},
		".txt":  {format: FormatText, decode: decodeText},
	}}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

var defaultExtractor = NewExtractor()

// ExtractText extracts plain text with the default decoders.
func ExtractText(data []byte, fileName string) (string, error) {
	return defaultExtractor.ExtractText(data, fileName)
}

// ExtractText decodes data according to the extension of fileName and
// returns its text trimmed of surrounding whitespace.
func (x *Extractor) ExtractText(data []byte, fileName string) (string, error) {
	doc, err := x.Extract(data, fileName)
	if err != nil {
		return "", err
	}
	return doc.Text, nil
}

// Document is extracted text plus where it came from.
type Document struct {
	Text     string    `json:"text"`
	Metadata *Metadata `json:"metadata"`
}

// Extract is ExtractText returning metadata alongside the text.
func (x *Extractor) Extract(data []byte, fileName string) (*Document, error) {
	dec := x.decoderFor(fileName)

	units, err := safeDecode(dec.decode, data)
	if err != nil {
		return nil, &DecodeError{FileName: fileName, Format: dec.format, Message: "unreadable document", Cause: err}
	}

	text := strings.TrimSpace(strings.Join(units, "\n"))
	meta := NewMetadata(text, "")
	meta.FileName = fileName
	meta.Format = dec.format
	return &Document{Text: text, Metadata: meta}, nil
}

// SupportedExtensions lists extensions with a dedicated decoder.
func (x *Extractor) SupportedExtensions() []string {
	exts := make([]string, 0, len(x.decoders))
	for ext := range x.decoders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func (x *Extractor) decoderFor(fileName string) registeredDecoder {
	ext := strings.ToLower(filepath.Ext(fileName))
	if d, ok := x.decoders[ext]; ok {
		return d
	}
	return registeredDecoder{format: FormatText, decode: decodeText}
}

// safeDecode converts a decoder panic into an error.
func safeDecode(d Decoder, data []byte) (units []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			units = nil
			err = errors.Newf("decoder panic: %v", r)
		}
	}()
	return d(data)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeText(data []byte) ([]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, errors.New("not valid UTF-8 text")
	}
	return []string{string(data)}, nil
}
