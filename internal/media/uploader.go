// Package media stores uploaded editor assets and hands back durable URLs
// for section payloads to reference.
package media

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/getcoveredlife/studio/model"
)

// allowedTypes are the content types the editor may upload.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/svg+xml":   ".svg",
	"video/mp4":       ".mp4",
	"application/pdf": ".pdf",
}

// Asset is a stored upload.
type Asset struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Uploader stores editor uploads.
type Uploader interface {
	// Upload stores the content and returns its durable public URL.
	Upload(contentType string, size int64, content io.Reader) (Asset, error)
}

// DiskUploader writes uploads under a local directory served at a public
// path prefix.
type DiskUploader struct {
	dir        string
	publicPath string
	maxBytes   int64
}

// NewDiskUploader creates the upload directory if needed.
func NewDiskUploader(dir, publicPath string, maxSizeMB int) (*DiskUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("media: create %s: %w", dir, err)
	}
	return &DiskUploader{
		dir:        dir,
		publicPath: strings.TrimSuffix(publicPath, "/"),
		maxBytes:   int64(maxSizeMB) << 20,
	}, nil
}

// Upload stores the content under a fresh uuid-derived name. The original
// filename is never used, so uploads cannot collide or escape the directory.
func (u *DiskUploader) Upload(contentType string, size int64, content io.Reader) (Asset, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return Asset{}, model.NewBadRequestError(fmt.Sprintf("unparsable content type %q", contentType))
	}
	ext, ok := allowedTypes[mediaType]
	if !ok {
		return Asset{}, model.NewBadRequestError(fmt.Sprintf("unsupported content type %q", mediaType))
	}
	if size > u.maxBytes {
		return Asset{}, model.NewBadRequestError(
			fmt.Sprintf("upload of %d bytes exceeds the %d byte limit", size, u.maxBytes),
		)
	}

	id := uuid.NewString()
	name := id + ext
	f, err := os.OpenFile(filepath.Join(u.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return Asset{}, fmt.Errorf("media: create file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(content, u.maxBytes+1))
	if err != nil {
		os.Remove(f.Name())
		return Asset{}, fmt.Errorf("media: write upload: %w", err)
	}
	if written > u.maxBytes {
		os.Remove(f.Name())
		return Asset{}, model.NewBadRequestError(
			fmt.Sprintf("upload exceeds the %d byte limit", u.maxBytes),
		)
	}

	return Asset{
		ID:          id,
		URL:         path.Join(u.publicPath, name),
		ContentType: mediaType,
		Size:        written,
	}, nil
}

// Dir returns the storage directory, for mounting as a static file route.
func (u *DiskUploader) Dir() string { return u.dir }
