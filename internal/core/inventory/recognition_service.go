package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/pkg/common"
)

// RecognitionPrompt 視覺模型的提示詞
const RecognitionPrompt = "What's in this image?Reply on the object name. For example, if you see a picture of apple, reply apple."

// Vision 視覺模型
type Vision interface {
	Vision(ctx context.Context, prompt, imageURL string) (*ai.Response, error)
}

// ImageProcessor 將 base64 圖片轉為 data URL
type ImageProcessor interface {
	ProcessImage(imageData string) (string, error)
}

// RecognitionService 以照片辨識品項名稱
type RecognitionService struct {
	vision Vision
	images ImageProcessor
}

// NewRecognitionService 創建品項辨識服務
func NewRecognitionService(vision Vision, images ImageProcessor) *RecognitionService {
	return &RecognitionService{vision: vision, images: images}
}

// Interpret 回傳照片中物品的名稱
func (s *RecognitionService) Interpret(ctx context.Context, photo string) (string, error) {
	if strings.TrimSpace(photo) == "" {
		return "", common.NewValidationError("photo is required")
	}

	imageURL, err := s.images.ProcessImage(photo)
	if err != nil {
		return "", err
	}

	common.LogDebug("Interpreting image", zap.String("image", common.ImagePrefix(photo)))

	resp, err := s.vision.Vision(ctx, RecognitionPrompt, imageURL)
	if err != nil {
		var ce *common.CustomError
		if errors.As(err, &ce) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", common.ErrUpstreamFailure.Wrap(err)
	}

	name := cleanItemName(resp.Text())
	if name == "" {
		return "", common.ErrUpstreamFailure.Wrap(fmt.Errorf("empty recognition result"))
	}
	return name, nil
}

// cleanItemName 去除模型回覆的空白、引號與句點
func cleanItemName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	s = strings.TrimRight(s, ".!")
	return strings.TrimSpace(s)
}
