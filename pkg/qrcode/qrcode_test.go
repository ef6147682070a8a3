package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQRService(t *testing.T) {
	s := NewQRService("https://conf.example.com/")
	assert.Equal(t, "https://conf.example.com/check-in", s.URL("/check-in"))

	data, err := s.GeneratePNG("check-in", 256)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}
