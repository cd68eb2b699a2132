package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/disintegration/imaging"

	"rifas-storefront/internal/models"
)

const (
	previewWidth  = 150
	previewHeight = 150
)

// PreviewService renders thumbnails of uploaded payment proofs
type PreviewService struct {
	width   int
	height  int
	quality int
}

// NewPreviewService creates a preview service with the 150x150 thumbnail size
func NewPreviewService() *PreviewService {
	return &PreviewService{width: previewWidth, height: previewHeight, quality: 80}
}

// IsAcceptedProofType reports whether contentType is an image or a PDF
func IsAcceptedProofType(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	return strings.HasPrefix(contentType, "image/") || contentType == "application/pdf"
}

// Preview returns a data URL thumbnail for image proofs. Documents get an
// empty reference and no error.
func (s *PreviewService) Preview(proof *models.PaymentProof) (string, error) {
	if proof == nil || len(proof.Data) == 0 || !proof.IsImage() {
		return "", nil
	}

	img, err := imaging.Decode(bytes.NewReader(proof.Data), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("failed to decode proof image: %w", err)
	}

	thumb := imaging.Fit(img, s.width, s.height, imaging.Lanczos)

	var buf bytes.Buffer
	mimeType := "image/jpeg"
	if proof.ContentType == "image/png" {
		mimeType = "image/png"
		err = png.Encode(&buf, thumb)
	} else {
		err = jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: s.quality})
	}
	if err != nil {
		return "", fmt.Errorf("failed to encode preview: %w", err)
	}

	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
