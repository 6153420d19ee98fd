package common

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// MaskSecret 遮罩金鑰，只顯示前後各 4 個字符
func MaskSecret(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// ImagePrefix 取得圖片資料的類型標記（用於日誌記錄，不輸出內容）
func ImagePrefix(image string) string {
	switch {
	case image == "":
		return "[EMPTY]"
	case strings.HasPrefix(image, "data:image/"):
		return "[IMAGE_DATA]"
	case strings.HasPrefix(image, "/9j/"), strings.HasPrefix(image, "iVBORw0KGgo"),
		strings.HasPrefix(image, "R0lGOD"), strings.HasPrefix(image, "UklGR"):
		return "[BASE64_DATA]"
	default:
		return "[UNKNOWN_FORMAT]"
	}
}
