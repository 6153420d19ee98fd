package image

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"strings"

	_ "image/gif" // 支援 GIF
	_ "image/png" // 支援 PNG

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // 支援 WebP

	"pantry-chef/internal/pkg/common"
)

// DefaultMaxDimension 送往視覺模型前的最長邊
const DefaultMaxDimension = 1200

// Service 圖片處理服務
type Service struct {
	maxSizeBytes int64
	maxDimension int
}

// NewService 創建新的圖片處理服務，maxDimension <= 0 時使用預設值
func NewService(maxSizeBytes int64, maxDimension int) *Service {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &Service{maxSizeBytes: maxSizeBytes, maxDimension: maxDimension}
}

// ProcessImage 驗證 base64 圖片（可帶 data URL 前綴）並轉為 JPEG data URL
func (s *Service) ProcessImage(imageData string) (string, error) {
	img, _, err := s.decode(imageData)
	if err != nil {
		return "", err
	}

	img = s.resize(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return "", fmt.Errorf("failed to encode image as JPEG: %w", err)
	}

	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ValidateImage 驗證圖片並回傳格式
func (s *Service) ValidateImage(imageData string) (string, error) {
	_, format, err := s.decode(imageData)
	return format, err
}

func (s *Service) decode(imageData string) (image.Image, string, error) {
	payload := strings.TrimSpace(imageData)
	if payload == "" {
		return nil, "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("image data is empty"))
	}

	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 || !strings.HasPrefix(payload, "data:image/") {
			return nil, "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("invalid data url"))
		}
		payload = payload[idx+1:]
	}

	// 粗估解碼後大小，避免解碼過大的資料
	if s.maxSizeBytes > 0 && int64(base64.StdEncoding.DecodedLen(len(payload))) > s.maxSizeBytes+3 {
		return nil, "", common.ErrInvalidImageSize.Wrap(fmt.Errorf("limit is %d bytes", s.maxSizeBytes))
	}

	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode base64 data: %w", err))
	}

	if s.maxSizeBytes > 0 && int64(len(decoded)) > s.maxSizeBytes {
		return nil, "", common.ErrInvalidImageSize.Wrap(fmt.Errorf("limit is %d bytes", s.maxSizeBytes))
	}

	img, format, err := image.Decode(bytes.NewReader(decoded))
	if err != nil {
		return nil, "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("failed to decode image: %w", err))
	}

	if !isSupportedFormat(format) {
		return nil, "", common.ErrInvalidImageFormat.Wrap(fmt.Errorf("unsupported image format: %s", format))
	}
	return img, format, nil
}

// resize 等比縮小超過最長邊限制的圖片
func (s *Service) resize(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= s.maxDimension && h <= s.maxDimension {
		return img
	}

	if w >= h {
		h = max(1, h*s.maxDimension/w)
		w = s.maxDimension
	} else {
		w = max(1, w*s.maxDimension/h)
		h = s.maxDimension
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

// isSupportedFormat 檢查圖片格式是否支援
func isSupportedFormat(format string) bool {
	switch format {
	case "jpeg", "png", "gif", "webp":
		return true
	}
	return false
}
