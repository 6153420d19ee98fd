package waitlist

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"pantry-chef/internal/pkg/common"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Entry 等候名單項目
type Entry struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Repository 等候名單儲存
type Repository interface {
	// Add 已存在時不報錯
	Add(ctx context.Context, email string) (Entry, error)
}

// Service 等候名單服務
type Service struct {
	repo Repository
}

// NewService 創建等候名單服務
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Join 驗證 email 並加入名單
func (s *Service) Join(ctx context.Context, email string) (Entry, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return Entry{}, common.NewValidationError("please enter a valid email address")
	}

	entry, err := s.repo.Add(ctx, email)
	if err != nil {
		return Entry{}, err
	}

	common.LogInfo("Waitlist joined", zap.String("domain", email[strings.LastIndex(email, "@")+1:]))
	return entry, nil
}
