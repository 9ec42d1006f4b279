package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"postline/internal/config"
	"postline/internal/models"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageUploadDir       = "/tmp/postline/media"
	DefaultImageMaxUploadSizeMB = 10
	MaxImageSize                = 1080
	MaxImagePixels              = 40_000_000
	JPEGQuality                 = 82
	WebPQuality                 = 70

	// MediaPrefix is the URL prefix the upload dir is served under.
	MediaPrefix = "/media/"
)

// ImageService validates post images and stores a downscaled JPEG master
// plus a WebP sibling under a content-addressed directory.
type ImageService struct {
	uploadDir          string
	maxUploadSizeBytes int64
}

func NewImageService(cfg *config.Config) *ImageService {
	uploadDir := DefaultImageUploadDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB

	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}

	return &ImageService{
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// UploadDir is the directory served under MediaPrefix.
func (s *ImageService) UploadDir() string {
	return s.uploadDir
}

// Check rejects oversize uploads and anything that does not sniff and decode
// as JPEG, PNG, GIF or WebP. The declared dimensions are capped at
// MaxImagePixels before Store decodes the full image.
func (s *ImageService) Check(content []byte) error {
	if len(content) == 0 {
		return ErrInvalidImage
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return fmt.Errorf("%w: File too large (max %dMB)", ErrImageTooLarge, s.maxUploadSizeBytes/(1024*1024))
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return ErrInvalidImage
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil || !isSupportedDecodedFormat(format) {
		return ErrInvalidImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return ErrInvalidImage
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxImagePixels {
		return fmt.Errorf("%w: Image dimensions too large (max %d megapixels)", ErrImageTooLarge, MaxImagePixels/1_000_000)
	}
	return nil
}

// Store checks, decodes, downscales and writes the image. It returns the
// JPEG path relative to the upload dir.
func (s *ImageService) Store(ctx context.Context, filename string, content []byte) (string, error) {
	if err := s.Check(content); err != nil {
		return "", err
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", ErrInvalidImage
	}
	master := resizeToFit(decoded, MaxImageSize, MaxImageSize)

	encodedJPG, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	encodedWebP, err := encodeWebP(master, WebPQuality)
	if err != nil {
		return "", models.NewInternalError(err)
	}

	hash := contentHash(encodedJPG)
	jpgRel := path.Join(hash, "image.jpg")
	webpRel := path.Join(hash, "image.webp")
	written := []string{}

	for rel, data := range map[string][]byte{jpgRel: encodedJPG, webpRel: encodedWebP} {
		abs := filepath.Join(s.uploadDir, filepath.FromSlash(rel))
		if err := writeBytesToFile(abs, data); err != nil {
			cleanupImageFiles(written)
			return "", models.NewInternalError(err)
		}
		written = append(written, abs)
	}

	b := master.Bounds()
	slog.InfoContext(ctx, "stored post image",
		slog.String("filename", filename),
		slog.String("path", jpgRel),
		slog.Int("width", b.Dx()),
		slog.Int("height", b.Dy()),
	)
	return jpgRel, nil
}

// URL maps a stored relative path to its public URL. Empty stays empty.
func URL(rel string) string {
	if rel == "" {
		return ""
	}
	return MediaPrefix + strings.TrimPrefix(rel, "/")
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func isSupportedDecodedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "png", "gif", "webp":
		return true
	default:
		return false
	}
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func writeBytesToFile(p string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o600)
}

func cleanupImageFiles(paths []string) {
	for _, p := range paths {
		_ = os.Remove(p)
	}
}
