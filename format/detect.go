// Package format classifies clipboard payloads by MIME type and content.
package format

import (
	"bytes"
	"mime"
	"strings"
)

// Format is a clipboard payload kind the editor understands.
type Format int

const (
	// Unknown indicates an unrecognized payload.
	Unknown Format = iota
	// Text indicates text/plain.
	Text
	// HTML indicates text/html.
	HTML
	// RTF indicates rich text, which the editor does not parse.
	RTF
	// PNG indicates a PNG image.
	PNG
	// JPEG indicates a JPEG image.
	JPEG
	// GIF indicates a GIF image.
	GIF
	// BMP indicates a Windows bitmap.
	BMP
	// TIFF indicates a TIFF image.
	TIFF
	// WebP indicates a WebP image.
	WebP
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case Text:
		return "Text"
	case HTML:
		return "HTML"
	case RTF:
		return "RTF"
	case PNG:
		return "PNG"
	case JPEG:
		return "JPEG"
	case GIF:
		return "GIF"
	case BMP:
		return "BMP"
	case TIFF:
		return "TIFF"
	case WebP:
		return "WebP"
	default:
		return "Unknown"
	}
}

// MIMEType returns the canonical MIME type for the format.
func (f Format) MIMEType() string {
	switch f {
	case Text:
		return "text/plain"
	case HTML:
		return "text/html"
	case RTF:
		return "text/rtf"
	case PNG:
		return "image/png"
	case JPEG:
		return "image/jpeg"
	case GIF:
		return "image/gif"
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	case WebP:
		return "image/webp"
	default:
		return ""
	}
}

// IsImage reports whether f is an image format.
func (f Format) IsImage() bool {
	return f >= PNG && f <= WebP
}

var mimeTypes = map[string]Format{
	"text/plain":      Text,
	"text/html":       HTML,
	"text/rtf":        RTF,
	"application/rtf": RTF,
	"image/png":       PNG,
	"image/jpeg":      JPEG,
	"image/jpg":       JPEG,
	"image/gif":       GIF,
	"image/bmp":       BMP,
	"image/x-bmp":     BMP,
	"image/tiff":      TIFF,
	"image/webp":      WebP,
}

// Detect determines the format from a declared MIME type. Parameters such as
// charset are ignored.
func Detect(mimeType string) Format {
	mt := MediaType(mimeType)
	if f, ok := mimeTypes[mt]; ok {
		return f
	}
	return Unknown
}

// MediaType returns the lower-cased media type of a MIME string without its
// parameters.
func MediaType(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mt, _, _ = strings.Cut(mimeType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}

// Charset returns the charset parameter of a MIME string, or "".
func Charset(mimeType string) string {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return ""
	}
	return strings.ToLower(params["charset"])
}

// DetectFromMagic checks leading bytes to determine the format.
// This is more reliable than a declared type for image data.
// Returns Unknown if the format cannot be determined from magic bytes alone.
func DetectFromMagic(data []byte) Format {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return PNG
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return JPEG
	case bytes.HasPrefix(data, []byte("GIF87a")), bytes.HasPrefix(data, []byte("GIF89a")):
		return GIF
	case bytes.HasPrefix(data, []byte("BM")) && len(data) >= 14 && bytes.Equal(data[6:10], []byte{0, 0, 0, 0}):
		return BMP
	case bytes.HasPrefix(data, []byte("II*\x00")), bytes.HasPrefix(data, []byte("MM\x00*")):
		return TIFF
	case len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP")):
		return WebP
	case bytes.HasPrefix(data, []byte(`{\rtf`)):
		return RTF
	case detectHTMLMagic(data):
		return HTML
	}
	return Unknown
}

// detectHTMLMagic checks if the data looks like clipboard HTML.
func detectHTMLMagic(data []byte) bool {
	data = bytes.TrimLeft(data, " \t\r\n")
	if len(data) == 0 {
		return false
	}
	if len(data) > 512 {
		data = data[:512]
	}

	upper := strings.ToUpper(string(data))
	for _, prefix := range []string{"<!DOCTYPE HTML", "<HTML", "<META", "<!--STARTFRAGMENT", "VERSION:"} {
		if strings.HasPrefix(upper, prefix) {
			return prefix != "VERSION:" || strings.Contains(upper, "STARTHTML:")
		}
	}
	// XML declaration followed by html-like content could be XHTML
	if strings.HasPrefix(upper, "<?XML") && strings.Contains(upper, "<HTML") {
		return true
	}
	return false
}

// Sniff combines the declared type with the content. Image data is always
// classified by its bytes; a missing or generic declared type falls back to
// magic detection.
func Sniff(mimeType string, data []byte) Format {
	declared := Detect(mimeType)
	if magic := DetectFromMagic(data); magic.IsImage() {
		return magic
	}
	if declared != Unknown {
		if declared.IsImage() {
			return Unknown
		}
		return declared
	}
	mt := MediaType(mimeType)
	if mt == "" || mt == "application/octet-stream" {
		return DetectFromMagic(data)
	}
	return Unknown
}
