package facecheck

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	pigo "github.com/esimov/pigo/core"
)

var (
	ErrNoFace        = errors.New("no face detected in the uploaded image")
	ErrMultipleFaces = errors.New("more than 1 face detected in the uploaded image")
)

// quality threshold below which pigo detections are treated as noise
const minDetectionQuality = 5.0

// Detector validates that uploaded avatars contain exactly one face.
type Detector struct {
	classifier *pigo.Pigo
}

func NewDetector(cascadePath string) (*Detector, error) {
	cascade, err := os.ReadFile(cascadePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cascade file: %w", err)
	}

	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack cascade: %w", err)
	}

	return &Detector{classifier: classifier}, nil
}

// Validate decodes the image and returns ErrNoFace or ErrMultipleFaces
// unless exactly one face is found.
func (d *Detector) Validate(data []byte) error {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode image: %w", err)
	}

	img := pigo.ImgToNRGBA(src)
	pixels := pigo.RgbToGrayscale(img)
	cols := img.Bounds().Dx()
	rows := img.Bounds().Dy()

	params := pigo.CascadeParams{
		MinSize:     40,
		MaxSize:     1200,
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(params, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	faces := 0
	for _, det := range dets {
		if det.Q >= minDetectionQuality {
			faces++
		}
	}

	switch {
	case faces < 1:
		return ErrNoFace
	case faces > 1:
		return ErrMultipleFaces
	}
	return nil
}
