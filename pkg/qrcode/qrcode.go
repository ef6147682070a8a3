package qrcode

import (
	"fmt"
	"strings"

	"github.com/skip2/go-qrcode"
)

// QRService renders PNG QR codes for paths under the public app URL.
type QRService struct {
	baseURL string
}

func NewQRService(baseURL string) *QRService {
	return &QRService{
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *QRService) URL(path string) string {
	return s.baseURL + "/" + strings.TrimLeft(path, "/")
}

// GeneratePNG encodes the absolute URL of path as a size x size PNG.
func (s *QRService) GeneratePNG(path string, size int) ([]byte, error) {
	png, err := qrcode.Encode(s.URL(path), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code PNG: %w", err)
	}
	return png, nil
}
