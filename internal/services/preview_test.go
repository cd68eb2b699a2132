package services

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rifas-storefront/internal/models"
)

func createTestJPEG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}

	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80})
	return buf.Bytes()
}

func createTestPNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func decodeDataURL(t *testing.T, url, prefix string) image.Image {
	t.Helper()
	require.True(t, strings.HasPrefix(url, prefix), "unexpected data URL prefix")

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	return img
}

func TestPreviewService_Preview_JPEG(t *testing.T) {
	proof := &models.PaymentProof{Filename: "pago.jpg", ContentType: "image/jpeg", Data: createTestJPEG(600, 300)}

	url, err := NewPreviewService().Preview(proof)
	require.NoError(t, err)

	thumb := decodeDataURL(t, url, "data:image/jpeg;base64,")
	assert.Equal(t, 150, thumb.Bounds().Dx())
	assert.Equal(t, 75, thumb.Bounds().Dy())
}

func TestPreviewService_Preview_PNG(t *testing.T) {
	proof := &models.PaymentProof{Filename: "pago.png", ContentType: "image/png", Data: createTestPNG(100, 400)}

	url, err := NewPreviewService().Preview(proof)
	require.NoError(t, err)

	thumb := decodeDataURL(t, url, "data:image/png;base64,")
	assert.LessOrEqual(t, thumb.Bounds().Dx(), 150)
	assert.Equal(t, 150, thumb.Bounds().Dy())
}

func TestPreviewService_Preview_PDFHasNoThumbnail(t *testing.T) {
	proof := &models.PaymentProof{Filename: "pago.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}

	url, err := NewPreviewService().Preview(proof)
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestPreviewService_Preview_CorruptImage(t *testing.T) {
	proof := &models.PaymentProof{Filename: "pago.jpg", ContentType: "image/jpeg", Data: []byte("not an image")}

	_, err := NewPreviewService().Preview(proof)
	assert.Error(t, err)
}

func TestPreviewService_Preview_Nil(t *testing.T) {
	url, err := NewPreviewService().Preview(nil)
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestIsAcceptedProofType(t *testing.T) {
	tests := []struct {
		contentType string
		want        bool
	}{
		{"image/jpeg", true},
		{"image/png", true},
		{"IMAGE/WEBP", true},
		{"application/pdf", true},
		{"application/pdf; charset=binary", true},
		{"text/plain", false},
		{"application/zip", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAcceptedProofType(tt.contentType))
		})
	}
}
