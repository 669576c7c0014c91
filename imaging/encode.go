package imaging

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// mimeTypes maps input file extensions to their MIME types for data URI
// construction. Unknown extensions fall back to image/jpeg.
var mimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
}

// defaultMIMEType is used when the extension is not in the table.
const defaultMIMEType = "image/jpeg"

// MIMEType returns the MIME type for the file's extension.
func MIMEType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return defaultMIMEType
}

// EncodeDataURI reads the file at path and returns it as a base64 data URI
// (data:<mime>;base64,<payload>). The generation API accepts data URIs in
// place of public image URLs, which lets the tool work with local files
// without an upload step.
func EncodeDataURI(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrEncodeFailed, path, err)
	}

	encoded := base64.StdEncoding.EncodeToString(data)
	return fmt.Sprintf("data:%s;base64,%s", MIMEType(path), encoded), nil
}
