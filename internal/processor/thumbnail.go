package processor

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // GIF format support
	"image/jpeg"
	_ "image/png" // PNG format support

	"github.com/disintegration/imaging"
	"github.com/genricoloni/mpdnotify/internal/domain"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // BMP format support
	_ "golang.org/x/image/webp" // WebP format support
)

const (
	defaultThumbnailSize = 128
	defaultJPEGQuality   = 90
)

// ProcessorConfig holds configuration for image processing
type ProcessorConfig struct {
	// Size is the edge of the square bounding box the art is scaled into
	Size    int
	Quality int
}

// ThumbnailProcessor scales album art down to notification size
type ThumbnailProcessor struct {
	logger *zap.Logger
	config ProcessorConfig
}

// NewThumbnailProcessor creates a new thumbnail processor
func NewThumbnailProcessor(logger *zap.Logger) *ThumbnailProcessor {
	return &ThumbnailProcessor{
		logger: logger,
		config: ProcessorConfig{
			Size:    defaultThumbnailSize,
			Quality: defaultJPEGQuality,
		},
	}
}

// thumbnail decodes image data and fits it into the bounding box with a Gaussian filter.
// Aspect ratio is preserved; smaller images are scaled up.
func (p *ThumbnailProcessor) thumbnail(imageData []byte) (*image.NRGBA, error) {
	img, _, err := image.Decode(bytes.NewReader(imageData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// Validate image dimensions to prevent division by zero
	bounds := img.Bounds()
	if bounds.Dy() == 0 || bounds.Dx() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	// A zero edge lets imaging keep the aspect ratio
	width, height := p.config.Size, 0
	if bounds.Dy() > bounds.Dx() {
		width, height = 0, p.config.Size
	}

	p.logger.Debug("Resizing album art",
		zap.Int("srcW", bounds.Dx()),
		zap.Int("srcH", bounds.Dy()),
		zap.Int("box", p.config.Size))

	return imaging.Resize(img, width, height, imaging.Gaussian), nil
}

// Process returns the JPEG-encoded thumbnail of image data
func (p *ThumbnailProcessor) Process(ctx context.Context, imageData []byte) ([]byte, error) {
	thumb, err := p.thumbnail(imageData)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, thumb, &jpeg.Options{Quality: p.config.Quality}); err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	p.logger.Debug("Image processed successfully", zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// Pixels returns the thumbnail as a packed RGB buffer
func (p *ThumbnailProcessor) Pixels(ctx context.Context, imageData []byte) (*domain.RawImage, error) {
	thumb, err := p.thumbnail(imageData)
	if err != nil {
		return nil, err
	}

	b := thumb.Bounds()
	w, h := b.Dx(), b.Dy()
	rgb := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := thumb.Pix[y*thumb.Stride : y*thumb.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			rgb = append(rgb, row[x], row[x+1], row[x+2])
		}
	}

	return &domain.RawImage{
		Width:     w,
		Height:    h,
		RowStride: w * 3,
		Pixels:    rgb,
	}, nil
}
