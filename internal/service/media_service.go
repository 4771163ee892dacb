package service

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	_ "image/gif"
	_ "image/png"

	"go-portfolio-cms/internal/model"
	"go-portfolio-cms/internal/storage"
	"go-portfolio-cms/internal/util"
)

type Upload struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Size         int64  `json:"size"`
	ContentType  string `json:"content_type"`
}

// MediaService stores admin uploads on local disk and generates a JPEG
// thumbnail for decodable images.
type MediaService struct {
	store        *storage.Storage
	allowedMIME  map[string]struct{}
	maxEdge      int
	publicPrefix string
}

func NewMediaService(store *storage.Storage, allowedMIMETypes []string, thumbnailMaxEdge int, publicPrefix string) *MediaService {
	allowed := make(map[string]struct{}, len(allowedMIMETypes))
	for _, mime := range allowedMIMETypes {
		allowed[strings.ToLower(strings.TrimSpace(mime))] = struct{}{}
	}

	if thumbnailMaxEdge <= 0 {
		thumbnailMaxEdge = 320
	}

	return &MediaService{
		store:        store,
		allowedMIME:  allowed,
		maxEdge:      thumbnailMaxEdge,
		publicPrefix: strings.TrimSuffix(publicPrefix, "/"),
	}
}

// Store sniffs the real content type, enforces the allowlist, and writes
// the file under a random directory so uploads never collide.
func (m *MediaService) Store(filename string, r io.Reader, size int64) (Upload, error) {
	name, err := util.SanitizeFilename(filename)
	if err != nil {
		return Upload{}, err
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return Upload{}, fmt.Errorf("read upload head: %w", err)
	}
	head = head[:n]

	contentType := strings.ToLower(strings.Split(http.DetectContentType(head), ";")[0])
	if _, ok := m.allowedMIME[contentType]; len(m.allowedMIME) > 0 && !ok {
		return Upload{}, model.ErrUploadNotAllowed
	}

	key := path.Join(time.Now().UTC().Format("2006/01"), uuid.NewString(), name)
	stored, err := m.store.Save(key, io.MultiReader(bytes.NewReader(head), r))
	if err != nil {
		return Upload{}, err
	}

	upload := Upload{
		Name:        name,
		URL:         m.publicPrefix + "/" + key,
		Size:        size,
		ContentType: contentType,
	}

	if strings.HasPrefix(contentType, "image/") {
		thumbKey, thumbErr := m.generateThumbnail(stored, key)
		if thumbErr != nil {
			// A failed thumbnail never fails the upload.
			slog.Warn("thumbnail generation failed", "key", key, "error", thumbErr)
		} else {
			upload.ThumbnailURL = m.publicPrefix + "/" + thumbKey
		}
	}

	return upload, nil
}

func (m *MediaService) Open(key string) (*os.File, error) {
	f, err := m.store.Open(key)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.ErrUploadNotFound
		}
		return nil, err
	}
	return f, nil
}

func (m *MediaService) Remove(key string) error {
	if !m.store.Exists(key) {
		return model.ErrUploadNotFound
	}
	return m.store.Remove(key)
}

func (m *MediaService) generateThumbnail(storedPath string, key string) (string, error) {
	f, err := os.Open(storedPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= m.maxEdge && height <= m.maxEdge {
		// Already small enough; reuse the original.
		return key, nil
	}

	scale := float64(m.maxEdge) / float64(width)
	if height > width {
		scale = float64(m.maxEdge) / float64(height)
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(width)*scale), int(float64(height)*scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	thumbKey := thumbnailKey(key)
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(jpeg.Encode(pw, dst, &jpeg.Options{Quality: 85}))
	}()

	if _, err := m.store.Save(thumbKey, pr); err != nil {
		return "", err
	}

	return thumbKey, nil
}

func thumbnailKey(key string) string {
	dir, file := path.Split(key)
	ext := path.Ext(file)
	return dir + strings.TrimSuffix(file, ext) + "_thumb.jpg"
}
