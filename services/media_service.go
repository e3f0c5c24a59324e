package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/akinalp/duochat/pkg"
)

// MediaStore, görsel yükleme interface'i. Upload bir data URL
// ("data:image/png;base64,...") veya ham base64 alır, kalıcı URL döner.
//
// Hatalar:
//   - çözülemeyen / görsel olmayan / fazla büyük payload → pkg.ErrBadRequest
//   - depolama hatası → pkg.ErrUpstream
type MediaStore interface {
	Upload(ctx context.Context, payload string) (string, error)
}

// UploadURLPrefix, yüklenen dosyaların servis edildiği yol.
const UploadURLPrefix = "/api/uploads/"

// allowedImageTypes, içerikten tespit edilen MIME → dosya uzantısı.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type diskMediaStore struct {
	dir     string
	maxSize int64
}

// NewDiskMediaStore, dosyaları dir altına yazan MediaStore oluşturur.
func NewDiskMediaStore(dir string, maxSize int64) (MediaStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &diskMediaStore{dir: dir, maxSize: maxSize}, nil
}

func (s *diskMediaStore) Upload(ctx context.Context, payload string) (string, error) {
	data, err := decodeImagePayload(payload)
	if err != nil {
		return "", err
	}

	if int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("%w: image too large (max %dMB)", pkg.ErrBadRequest, s.maxSize/(1024*1024))
	}

	// Client'ın bildirdiği MIME'a değil içeriğe güvenilir.
	ext, ok := allowedImageTypes[http.DetectContentType(data)]
	if !ok {
		return "", fmt.Errorf("%w: payload is not a supported image", pkg.ErrBadRequest)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	randomBytes := make([]byte, 16)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", fmt.Errorf("%w: failed to generate file name: %v", pkg.ErrUpstream, err)
	}
	name := hex.EncodeToString(randomBytes) + ext

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0644); err != nil {
		log.Printf("[media] failed to write %s: %v", name, err)
		return "", fmt.Errorf("%w: failed to store image", pkg.ErrUpstream)
	}

	return UploadURLPrefix + name, nil
}

// decodeImagePayload, data URL veya ham base64'ü byte'lara çevirir.
func decodeImagePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("%w: image payload is empty", pkg.ErrBadRequest)
	}

	if strings.HasPrefix(payload, "data:") {
		header, body, ok := strings.Cut(payload, ",")
		if !ok || !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: image must be a base64 data URL", pkg.ErrBadRequest)
		}
		payload = body
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Padding'siz base64 gönderen client'lar için.
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, fmt.Errorf("%w: image is not valid base64", pkg.ErrBadRequest)
		}
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: image payload is empty", pkg.ErrBadRequest)
	}
	return data, nil
}
