package adapter

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	// Registers the WebP decoder with image.Decode.
	_ "golang.org/x/image/webp"
)

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// validatePDF parses the document structure and returns its page count.
func validatePDF(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return 0, fmt.Errorf("pdfcpu read: %w", err)
	}
	if ctx.PageCount == 0 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	return ctx.PageCount, nil
}

// prepareImage decodes the image to reject corrupt bytes. GIFs are re-encoded
// as PNG since not every vision model accepts them; images larger than the
// configured dimension are downscaled.
func (a *Adapter) prepareImage(data []byte, mimeType string) (string, string, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return "", mimeType, fmt.Errorf("decoding image: %w", err)
	}

	resize := a.maxDimension > 0 && exceeds(img.Bounds(), a.maxDimension)
	if !resize && mimeType != "image/gif" {
		return encodeBase64(data), mimeType, nil
	}

	if resize {
		img = imaging.Fit(img, a.maxDimension, a.maxDimension, imaging.Lanczos)
	}

	format, outMIME := imaging.JPEG, "image/jpeg"
	if mimeType == "image/png" || mimeType == "image/gif" {
		format, outMIME = imaging.PNG, "image/png"
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		return "", mimeType, fmt.Errorf("encoding image: %w", err)
	}
	return encodeBase64(buf.Bytes()), outMIME, nil
}

func exceeds(b image.Rectangle, limit int) bool {
	return b.Dx() > limit || b.Dy() > limit
}
