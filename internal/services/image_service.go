package services

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

const maxImageWidth = 800

// ImageService stores uploaded product pictures as resized JPEGs.
type ImageService struct {
	dir       string
	urlPrefix string
}

func NewImageService(dir, urlPrefix string) *ImageService {
	return &ImageService{dir: dir, urlPrefix: strings.TrimSuffix(urlPrefix, "/")}
}

func (s *ImageService) Dir() string { return s.dir }

// Save decodes a PNG or JPEG by extension, scales it down to 800px wide and
// returns the public URL of the stored file.
func (s *ImageService) Save(r io.Reader, filename string) (string, error) {
	var (
		img image.Image
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		img, err = png.Decode(r)
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(r)
	default:
		return "", invalid("unsupported image format, only PNG, JPG, JPEG are allowed")
	}
	if err != nil {
		return "", invalid("failed to decode image")
	}

	if img.Bounds().Dx() > maxImageWidth {
		img = resize.Resize(maxImageWidth, 0, img, resize.Lanczos3)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := fmt.Sprintf("%s.jpg", uuid.New().String())
	out, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, img, &jpeg.Options{Quality: 80}); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return s.urlPrefix + "/" + name, nil
}
