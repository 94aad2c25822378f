package llm

import (
	"encoding/base64"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/personal-info-parser/constants"
)

// DataURL renders the image as a data:<mime>;base64,... URL.
func DataURL(img Image) string {
	mt := img.MIMEType
	if mt == "" {
		mt = constants.DefaultImageMIME
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(img.Data)
}

// DetectImageMIME sniffs the bytes first, then falls back to the file
// extension, then to image/jpeg.
func DetectImageMIME(data []byte, filename string) string {
	if len(data) > 0 {
		mt := http.DetectContentType(data)
		if i := strings.IndexByte(mt, ';'); i >= 0 {
			mt = mt[:i]
		}
		if constants.IsImageMIME(mt) {
			return mt
		}
	}
	if mt := constants.MIMEForExt(filepath.Ext(filename)); mt != "" {
		return mt
	}
	return constants.DefaultImageMIME
}
