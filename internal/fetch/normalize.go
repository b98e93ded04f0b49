package fetch

import (
	"fmt"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/lepinkainen/eikon/internal/errors"

	// Widen the set of decodable download formats.
	_ "golang.org/x/image/webp"
)

// normalize downsizes the stored image in place when either dimension
// exceeds the configured box, re-encoding as JPEG quality 85. Images
// already within the box are left untouched, whatever their format.
func (f *Fetcher) normalize(path string) error {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return errors.NewProcessingError(fmt.Sprintf("failed to decode image: %v", err))
	}

	bounds := img.Bounds()
	if bounds.Dx() <= f.maxWidth && bounds.Dy() <= f.maxHeight {
		return nil
	}

	resized := imaging.Fit(img, f.maxWidth, f.maxHeight, imaging.Lanczos)
	if err := imaging.Save(resized, path, imaging.JPEGQuality(85)); err != nil {
		return errors.NewProcessingError(fmt.Sprintf("failed to save resized image: %v", err))
	}

	slog.Info("Resized image",
		"path", path,
		"width", resized.Bounds().Dx(),
		"height", resized.Bounds().Dy(),
	)
	return nil
}
