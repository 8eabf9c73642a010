// Package schemas embeds the JSON Schema documents for every extraction record.
package schemas

import "embed"

// FS holds the *.schema.json documents, one per record type.
//
//go:embed *.schema.json
var FS embed.FS

// FileName returns the embedded file name for a schema id.
func FileName(id string) string {
	return id + ".schema.json"
}
