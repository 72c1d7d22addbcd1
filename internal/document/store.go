// Package document resolves staged lecture documents by file name. Staging is
// a local directory by default; an S3-compatible backend can be swapped in for
// deployments where uploads land in object storage.
package document

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
)

// ErrNotFound indicates the named document is not present in staging.
var ErrNotFound = errors.New("document: not found")

// Document is a staged source file with its sniffed MIME type. MIMEType is
// empty for extensions the pipeline does not recognize.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Store resolves a staged document by its bare file name.
type Store interface {
	Resolve(ctx context.Context, name string) (Document, error)
}

// MIMEForName maps a file name to the MIME type the model request should
// carry. Unknown extensions map to "" and result in a text-only request.
func MIMEForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	default:
		return ""
	}
}
