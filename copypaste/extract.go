package copypaste

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tsawler/inkwell/format"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/net/html/charset"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/htmlindex"
)

// ExtractOptions controls ExtractClipboardItems.
type ExtractOptions struct {
	// AllowedCustomPasteTypes lists the custom media types to keep.
	AllowedCustomPasteTypes []string
	// MaxConcurrency bounds parallel reads. Zero means unbounded.
	MaxConcurrency int
}

type itemContent struct {
	mediaType string
	kind      format.Format
	data      []byte
}

// ExtractClipboardItems reads items in parallel and normalizes them into one
// payload. The first item of each kind wins. Items of unknown types are
// dropped unless allow-listed. An empty item list yields an empty payload.
func ExtractClipboardItems(ctx context.Context, items []Item, opts ExtractOptions) (*ClipboardData, error) {
	contents := make([]itemContent, len(items))

	g, gctx := errgroup.WithContext(ctx)
	if opts.MaxConcurrency > 0 {
		g.SetLimit(opts.MaxConcurrency)
	}
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := readItem(item)
			if err != nil {
				return fmt.Errorf("reading %q: %w", item.Type, err)
			}
			contents[i] = itemContent{
				mediaType: format.MediaType(item.Type),
				kind:      format.Sniff(item.Type, data),
				data:      data,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extracting clipboard items: %w", err)
	}

	allowed := make(map[string]bool, len(opts.AllowedCustomPasteTypes))
	for _, t := range opts.AllowedCustomPasteTypes {
		allowed[format.MediaType(t)] = true
	}

	cd := &ClipboardData{
		ID:           uuid.NewString(),
		CustomValues: make(map[string]string),
	}
	var hasText, hasHTML bool
	for i, c := range contents {
		if c.mediaType != "" {
			cd.Types = append(cd.Types, c.mediaType)
		}
		switch {
		case c.kind == format.Text && !hasText:
			cd.Text = decodeText(c.data, items[i].Type, false)
			hasText = true
		case c.kind == format.HTML && !hasHTML:
			cd.RawHTML = StripCFHTML(decodeText(c.data, items[i].Type, true))
			cd.HTML = cd.RawHTML
			hasHTML = true
		case c.kind.IsImage() && cd.Image == nil:
			cd.Image = newImageData(c.kind, c.data)
		case allowed[c.mediaType]:
			if _, ok := cd.CustomValues[c.mediaType]; !ok {
				cd.CustomValues[c.mediaType] = decodeText(c.data, items[i].Type, false)
			}
		}
	}
	return cd, nil
}

func readItem(item Item) ([]byte, error) {
	if item.Data != nil || item.Open == nil {
		return item.Data, nil
	}
	return item.Open()
}

func newImageData(kind format.Format, data []byte) *ImageData {
	img := &ImageData{MIMEType: kind.MIMEType(), Data: data}
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		img.Width = cfg.Width
		img.Height = cfg.Height
	}
	return img
}

// decodeText converts clipboard bytes to UTF-8. The declared charset wins;
// HTML without one is sniffed for a BOM or <meta charset>. Unknown charsets
// leave the bytes as they are.
func decodeText(data []byte, mimeType string, isHTML bool) string {
	name := format.Charset(mimeType)
	if name == "" && isHTML {
		_, name, _ = charset.DetermineEncoding(data, "text/html")
	}
	if name == "" && !utf8.Valid(data) {
		name = "windows-1252"
	}

	enc, err := htmlindex.Get(name)
	if name == "" || err != nil {
		return strings.TrimPrefix(string(data), "\ufeff")
	}
	if canonical, _ := htmlindex.Name(enc); canonical == "utf-8" {
		return strings.TrimPrefix(string(data), "\ufeff")
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// StripCFHTML removes the Windows CF_HTML header ("Version:0.9",
// "StartHTML:…") from clipboard HTML. When the header carries valid offsets
// the markup between StartHTML and EndHTML is returned; otherwise the header
// lines are dropped. Markup without the header is returned unchanged.
func StripCFHTML(s string) string {
	if !strings.HasPrefix(s, "Version:") {
		return s
	}

	offsets := make(map[string]int)
	rest := s
	for rest != "" && !strings.HasPrefix(rest, "<") {
		line, tail, found := strings.Cut(rest, "\n")
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if ok {
			if n, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
				offsets[key] = n
			}
		}
		if !found {
			rest = ""
			break
		}
		rest = tail
	}

	start, okStart := offsets["StartHTML"]
	end, okEnd := offsets["EndHTML"]
	if okStart && start >= 0 && start <= len(s) && strings.HasPrefix(s[start:], "<") {
		if !okEnd || end < start || end > len(s) {
			end = len(s)
		}
		return s[start:end]
	}
	return rest
}
