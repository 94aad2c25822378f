package constants

import "strings"

// MaxImageBytesDefault caps uploaded and fetched license images.
const MaxImageBytesDefault = 10 * 1024 * 1024

// DefaultImageMIME is assumed when neither the bytes nor the file name reveal a type.
const DefaultImageMIME = "image/jpeg"

// ImageMIMETypes maps the accepted image extensions to their MIME types.
var ImageMIMETypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"webp": "image/webp",
	"gif":  "image/gif",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MIMEForExt returns the image MIME type for ext, or "" when ext is not an image.
func MIMEForExt(ext string) string {
	return ImageMIMETypes[NormalizeExt(ext)]
}

// IsImageMIME reports whether mt is one of the accepted image types.
func IsImageMIME(mt string) bool {
	for _, v := range ImageMIMETypes {
		if v == mt {
			return true
		}
	}
	return false
}
