package archive

import (
	"path"
	"strings"
)

const defaultContentType = "application/octet-stream"

var contentTypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
	".pdf":  "application/pdf",
}

// ContentType derives the display content type from a reference's extension.
func ContentType(ref string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(NormalizePath(ref)))]; ok {
		return ct
	}
	return defaultContentType
}
