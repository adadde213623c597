package core

import (
	"io"
	"path/filepath"
	"strings"
)

// AttachedFile is the transient receipt selection held by the new-bill form
// between file choice and submission. The handle stays opaque to the domain;
// it is only read when the upload store persists the file.
type AttachedFile struct {
	Name     string
	MIMEType string
	Handle   io.Reader
}

// acceptedImageTypes maps allowed receipt MIME types and extensions.
var acceptedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpg":  true,
	"image/jpeg": true,
	".png":       true,
	".jpg":       true,
	".jpeg":      true,
}

// AcceptedReceiptFile reports whether a selected file may be attached to a
// bill. The MIME type wins when present; otherwise the file extension decides.
func AcceptedReceiptFile(name, mimeType string) bool {
	if mimeType != "" {
		return acceptedImageTypes[strings.ToLower(mimeType)]
	}
	return acceptedImageTypes[strings.ToLower(filepath.Ext(name))]
}
