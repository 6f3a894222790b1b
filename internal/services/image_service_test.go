package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/muthii-lawrence/nyumba-hub.backend/internal/config"
)

func imageTestConfig() *config.Config {
	return &config.Config{
		ImageMaxSizeMB:      5,
		MaxImagesPerRequest: 10,
	}
}

// makeFileHeaders builds real multipart file headers by writing and
// re-parsing a form, the same shape Gin hands to the handler.
func makeFileHeaders(t *testing.T, files map[string][]byte) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, data := range files {
		contentType := "image/jpeg"
		if strings.HasSuffix(name, ".png") {
			contentType = "image/png"
		} else if strings.HasSuffix(name, ".gif") {
			contentType = "image/gif"
		}
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{`form-data; name="images"; filename="` + name + `"`}
		h["Content-Type"] = []string{contentType}
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["images"]
}

func TestImageService_ValidateUploads(t *testing.T) {
	svc := NewImageService(imageTestConfig(), new(MockObjectStorage))

	files := makeFileHeaders(t, map[string][]byte{
		"house.jpg":  []byte("jpegdata"),
		"garden.png": []byte("pngdata"),
	})
	assert.NoError(t, svc.ValidateUploads(files))

	files = makeFileHeaders(t, map[string][]byte{"anim.gif": []byte("gifdata")})
	assert.ErrorIs(t, svc.ValidateUploads(files), ErrInvalidInput)
}

func TestImageService_ValidateUploads_SizeCap(t *testing.T) {
	cfg := imageTestConfig()
	svc := NewImageService(cfg, new(MockObjectStorage))

	big := make([]byte, cfg.ImageMaxSizeMB*1024*1024+1)
	files := makeFileHeaders(t, map[string][]byte{"huge.jpg": big})
	assert.ErrorIs(t, svc.ValidateUploads(files), ErrInvalidInput)
}

func TestImageService_ValidateUploads_CountCap(t *testing.T) {
	cfg := imageTestConfig()
	cfg.MaxImagesPerRequest = 1
	svc := NewImageService(cfg, new(MockObjectStorage))

	files := makeFileHeaders(t, map[string][]byte{
		"a.jpg": []byte("a"),
		"b.jpg": []byte("b"),
	})
	assert.ErrorIs(t, svc.ValidateUploads(files), ErrInvalidInput)
}

func TestImageService_UploadImages(t *testing.T) {
	store := new(MockObjectStorage)
	svc := NewImageService(imageTestConfig(), store)

	store.On("Put", mock.Anything, mock.Anything, mock.Anything, "image/jpeg").Return(nil)

	files := makeFileHeaders(t, map[string][]byte{
		"one.jpg": []byte("one"),
		"two.jpg": []byte("two"),
	})
	keys, err := svc.UploadImages(context.Background(), files)
	assert.NoError(t, err)
	assert.Len(t, keys, 2)
	for _, key := range keys {
		assert.True(t, strings.HasPrefix(key, "listings/"), "key %q", key)
		assert.True(t, strings.HasSuffix(key, ".jpg"), "key %q", key)
	}
	assert.NotEqual(t, keys[0], keys[1])
	store.AssertNumberOfCalls(t, "Put", 2)
}

func TestImageService_UploadImages_StoreFailureAborts(t *testing.T) {
	store := new(MockObjectStorage)
	svc := NewImageService(imageTestConfig(), store)

	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket gone"))

	files := makeFileHeaders(t, map[string][]byte{"one.jpg": []byte("one")})
	keys, err := svc.UploadImages(context.Background(), files)
	assert.Error(t, err)
	assert.Nil(t, keys)
}

func TestImageService_UploadImages_Empty(t *testing.T) {
	store := new(MockObjectStorage)
	svc := NewImageService(imageTestConfig(), store)

	keys, err := svc.UploadImages(context.Background(), nil)
	assert.NoError(t, err)
	assert.Empty(t, keys)
	store.AssertNotCalled(t, "Put")
}

func TestImageService_RemoveImages_NeverSurfaces(t *testing.T) {
	store := new(MockObjectStorage)
	svc := NewImageService(imageTestConfig(), store)

	store.On("Remove", mock.Anything, []string{"listings/a.jpg"}).Return(errors.New("throttled"))

	// Must not panic or propagate anything.
	svc.RemoveImages(context.Background(), []string{"listings/a.jpg"})
	svc.RemoveImages(context.Background(), nil)
	store.AssertNumberOfCalls(t, "Remove", 1)
}

func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// capturingPut records the bytes Put receives while keeping the usual
// testify expectation in place.
func capturingPut(store *MockObjectStorage, contentType string, stored *[]byte) {
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, contentType).
		Run(func(args mock.Arguments) {
			data, err := io.ReadAll(args.Get(2).(io.Reader))
			if err == nil {
				*stored = data
			}
		}).
		Return(nil)
}

func TestImageService_UploadImages_DownscalesOversized(t *testing.T) {
	cfg := imageTestConfig()
	cfg.ImageMaxDimension = 64
	store := new(MockObjectStorage)
	var stored []byte
	capturingPut(store, "image/png", &stored)
	svc := NewImageService(cfg, store)

	files := makeFileHeaders(t, map[string][]byte{"wide.png": encodeTestPNG(t, 200, 100)})
	keys, err := svc.UploadImages(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, keys, 1)

	img, format, err := image.Decode(bytes.NewReader(stored))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.LessOrEqual(t, img.Bounds().Dx(), 64)
	assert.LessOrEqual(t, img.Bounds().Dy(), 64)
}

func TestImageService_UploadImages_SmallImageUntouched(t *testing.T) {
	cfg := imageTestConfig()
	cfg.ImageMaxDimension = 64
	store := new(MockObjectStorage)
	var stored []byte
	capturingPut(store, "image/png", &stored)
	svc := NewImageService(cfg, store)

	original := encodeTestPNG(t, 32, 16)
	files := makeFileHeaders(t, map[string][]byte{"small.png": original})
	_, err := svc.UploadImages(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, original, stored)
}

func TestImageService_UploadImages_UndecodablePassthrough(t *testing.T) {
	cfg := imageTestConfig()
	cfg.ImageMaxDimension = 64
	store := new(MockObjectStorage)
	var stored []byte
	capturingPut(store, "image/jpeg", &stored)
	svc := NewImageService(cfg, store)

	// Passes the allow-list but is not a decodable image; it must be
	// uploaded byte for byte.
	payload := []byte("not actually a jpeg")
	files := makeFileHeaders(t, map[string][]byte{"odd.jpg": payload})
	_, err := svc.UploadImages(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, payload, stored)
}

func TestNewImageKey(t *testing.T) {
	key := newImageKey("My House Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "listings/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotContains(t, key, " ")
	assert.NotEqual(t, key, newImageKey("My House Photo.JPG"))
}

func TestReconcileImageKeys(t *testing.T) {
	existing := []string{"a", "b", "c"}

	newKeys, orphans := ReconcileImageKeys(existing, []string{"c", "a"}, []string{"d"})
	assert.Equal(t, []string{"c", "a", "d"}, newKeys)
	assert.Equal(t, []string{"b"}, orphans)

	// Keeping nothing orphans everything.
	newKeys, orphans = ReconcileImageKeys(existing, nil, nil)
	assert.Empty(t, newKeys)
	assert.Equal(t, []string{"a", "b", "c"}, orphans)

	// Keys never stored cannot be kept in.
	newKeys, orphans = ReconcileImageKeys(existing, []string{"z", "b"}, nil)
	assert.Equal(t, []string{"b"}, newKeys)
	assert.Equal(t, []string{"a", "c"}, orphans)

	// Duplicates in the keep list collapse.
	newKeys, _ = ReconcileImageKeys(existing, []string{"b", "b"}, nil)
	assert.Equal(t, []string{"b"}, newKeys)
}
