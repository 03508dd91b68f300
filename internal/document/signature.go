package document

import (
	"bytes"
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
)

// Signature canvas size in pixels. Uploads are scaled onto a white
// canvas of this size so every embedded image has a uniform footprint.
const (
	signatureCanvasW = 360
	signatureCanvasH = 120
)

// normalizeSignature decodes an uploaded signature (PNG or JPEG),
// composites it onto a white canvas, and returns PNG bytes the PDF
// backend accepts.
func normalizeSignature(raw []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature image: %w", err)
	}

	dc := gg.NewContext(signatureCanvasW, signatureCanvasH)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	bounds := img.Bounds()
	sx := float64(signatureCanvasW) / float64(bounds.Dx())
	sy := float64(signatureCanvasH) / float64(bounds.Dy())
	scale := sx
	if sy < sx {
		scale = sy
	}
	dc.Push()
	dc.Scale(scale, scale)
	dc.DrawImage(img, 0, 0)
	dc.Pop()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode signature image: %w", err)
	}
	return buf.Bytes(), nil
}

// materializeSignature writes the normalized image to a temporary file
// for the PDF backend to embed. The caller removes the file after a
// successful embed; cleanup is skipped on error paths.
func materializeSignature(raw []byte) (string, error) {
	png, err := normalizeSignature(raw)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "signature-*.png")
	if err != nil {
		return "", fmt.Errorf("failed to create signature temp file: %w", err)
	}
	if _, err := f.Write(png); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write signature temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close signature temp file: %w", err)
	}
	return f.Name(), nil
}
