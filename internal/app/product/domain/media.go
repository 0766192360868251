package domain

import (
	"fmt"
	"strings"
	"time"
)

// MediaURLPrefix is the public URL prefix under which media files are served.
const MediaURLPrefix = "/media/"

// ProductMedia describes one stored image. An empty Filename means no file
// is attached. Timestamps are unix milliseconds.
type ProductMedia struct {
	Filename     string `json:"filename"`
	OriginalName string `json:"originalname"`
	Size         int64  `json:"size"`
	Path         string `json:"path"`
	CreateAt     int64  `json:"createAt"`
	UpdateAt     int64  `json:"updateAt"`
}

// HasFile reports whether the media points at a stored file.
func (m ProductMedia) HasFile() bool {
	return m.Filename != ""
}

// Medias groups a product's images. Only Thumbnail is used and it holds at
// most one entry.
type Medias struct {
	Images    []ProductMedia `json:"images"`
	Thumbnail []ProductMedia `json:"thumbnail"`
}

func (m Medias) clone() Medias {
	return Medias{
		Images:    append(make([]ProductMedia, 0, len(m.Images)), m.Images...),
		Thumbnail: append(make([]ProductMedia, 0, len(m.Thumbnail)), m.Thumbnail...),
	}
}

// UploadedFile is a file already written to the media store.
type UploadedFile struct {
	FieldName    string
	OriginalName string
	Filename     string
	MimeType     string
	Size         int64
}

// MediaPath returns the public path for a stored filename.
func MediaPath(filename string) string {
	return MediaURLPrefix + filename
}

// NewProductMedia builds a media entry for file. A nil file yields the
// empty placeholder entry.
func NewProductMedia(file *UploadedFile, now time.Time) ProductMedia {
	if file == nil {
		return ProductMedia{}
	}
	ts := now.UnixMilli()
	return ProductMedia{
		Filename:     file.Filename,
		OriginalName: file.OriginalName,
		Size:         file.Size,
		Path:         MediaPath(file.Filename),
		CreateAt:     ts,
		UpdateAt:     ts,
	}
}

// UpdateProductMedia points an existing entry at a new file. CreateAt is
// kept unless it was never set.
func UpdateProductMedia(media ProductMedia, file *UploadedFile, now time.Time) ProductMedia {
	if file == nil {
		return media
	}
	ts := now.UnixMilli()
	media.Filename = file.Filename
	media.OriginalName = file.OriginalName
	media.Size = file.Size
	media.Path = MediaPath(file.Filename)
	media.UpdateAt = ts
	if media.CreateAt == 0 {
		media.CreateAt = ts
	}
	return media
}

// MediaFilename builds a stored filename of the form
// {field}-{unixMillis}-{nonce}.{subtype}.
func MediaFilename(field, mimeType string, now time.Time, nonce int64) string {
	_, subtype, _ := strings.Cut(mimeType, "/")
	subtype = sanitizeNamePart(subtype)
	if subtype == "" {
		subtype = "bin"
	}
	field = sanitizeNamePart(field)
	if field == "" {
		field = "file"
	}
	return fmt.Sprintf("%s-%d-%d.%s", field, now.UnixMilli(), nonce, subtype)
}

func sanitizeNamePart(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '+':
			return r
		}
		return '_'
	}, s)
}
