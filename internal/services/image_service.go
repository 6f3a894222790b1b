package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
	"golang.org/x/sync/errgroup"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/config"
	"github.com/muthii-lawrence/nyumba-hub.backend/internal/storage"
)

// allowedImageExtensions and allowedImageContentTypes form the upload
// allow-list. Validation goes no deeper than this.
var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

var allowedImageContentTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// IImageService manages listing image blobs: validation, upload, public URL
// computation and orphan removal.
type IImageService interface {
	ValidateUploads(files []*multipart.FileHeader) error
	UploadImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
	RemoveImages(ctx context.Context, keys []string)
	PublicURL(key string) string
}

// imageService implements IImageService.
type imageService struct {
	cfg   *config.Config
	store storage.IObjectStorage
}

// NewImageService creates a new image service over the given object store.
func NewImageService(cfg *config.Config, store storage.IObjectStorage) IImageService {
	return &imageService{cfg: cfg, store: store}
}

// ValidateUploads checks the incoming blobs against the allow-list, the
// per-file size cap and the per-request count cap.
func (s *imageService) ValidateUploads(files []*multipart.FileHeader) error {
	if len(files) > s.cfg.MaxImagesPerRequest {
		return fmt.Errorf("%w: at most %d images per request", ErrInvalidInput, s.cfg.MaxImagesPerRequest)
	}

	maxBytes := int64(s.cfg.ImageMaxSizeMB) * 1024 * 1024
	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !allowedImageExtensions[ext] {
			return fmt.Errorf("%w: file %q has unsupported extension %q", ErrInvalidInput, fh.Filename, ext)
		}
		contentType := fh.Header.Get("Content-Type")
		if !allowedImageContentTypes[contentType] {
			return fmt.Errorf("%w: file %q has unsupported content type %q", ErrInvalidInput, fh.Filename, contentType)
		}
		if fh.Size > maxBytes {
			return fmt.Errorf("%w: file %q exceeds %dMB", ErrInvalidInput, fh.Filename, s.cfg.ImageMaxSizeMB)
		}
	}
	return nil
}

// UploadImages stores all blobs concurrently and returns their keys in the
// original file order. The first failure aborts the whole batch; blobs
// already stored by the failed batch are not cleaned up.
func (s *imageService) UploadImages(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if err := s.ValidateUploads(files); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	keys := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)

	for i, fh := range files {
		i, fh := i, fh
		g.Go(func() error {
			f, err := fh.Open()
			if err != nil {
				return fmt.Errorf("failed to open upload %q: %w", fh.Filename, err)
			}
			defer f.Close()

			data, err := io.ReadAll(f)
			if err != nil {
				return fmt.Errorf("failed to read upload %q: %w", fh.Filename, err)
			}

			contentType := fh.Header.Get("Content-Type")
			data = s.downscale(data)

			key := newImageKey(fh.Filename)
			if err := s.store.Put(gctx, key, bytes.NewReader(data), contentType); err != nil {
				return err
			}
			keys[i] = key
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return keys, nil
}

// RemoveImages deletes stored blobs. Failures are logged, never surfaced:
// by the time this runs the row already references the new key set, so a
// failed remove only leaves garbage behind.
func (s *imageService) RemoveImages(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.store.Remove(ctx, keys); err != nil {
		log.Printf("image: failed to remove %d orphaned blobs: %v", len(keys), err)
	}
}

// PublicURL resolves a stored key to its public reference.
func (s *imageService) PublicURL(key string) string {
	return s.store.PublicURL(key)
}

// downscale re-encodes images wider or taller than the configured maximum
// dimension. Best effort: anything that fails to decode or encode is
// uploaded unmodified.
func (s *imageService) downscale(data []byte) []byte {
	if s.cfg.ImageMaxDimension <= 0 {
		return data
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}
	bounds := img.Bounds()
	maxDim := s.cfg.ImageMaxDimension
	if bounds.Dx() <= maxDim && bounds.Dy() <= maxDim {
		return data
	}

	resized := resize.Thumbnail(uint(maxDim), uint(maxDim), img, resize.Lanczos3)

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, resized)
	default:
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return data
	}
	return buf.Bytes()
}

// newImageKey generates a fresh object key: timestamp plus random suffix
// plus the original extension. Collisions are negligible, not impossible.
func newImageKey(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("listings/%d-%s%s", time.Now().UnixNano(), uuid.NewString()[:8], ext)
}

// ReconcileImageKeys computes the new ordered key sequence for a listing
// update and the previously stored keys that become orphans. The new
// sequence is the caller's kept keys (restricted to keys actually stored,
// in the caller's order) followed by freshly uploaded keys.
func ReconcileImageKeys(existing, keep, uploaded []string) (newKeys, orphans []string) {
	existingSet := make(map[string]bool, len(existing))
	for _, k := range existing {
		existingSet[k] = true
	}

	kept := make(map[string]bool, len(keep))
	newKeys = []string{}
	for _, k := range keep {
		if existingSet[k] && !kept[k] {
			kept[k] = true
			newKeys = append(newKeys, k)
		}
	}
	newKeys = append(newKeys, uploaded...)

	orphans = []string{}
	for _, k := range existing {
		if !kept[k] {
			orphans = append(orphans, k)
		}
	}
	return newKeys, orphans
}
