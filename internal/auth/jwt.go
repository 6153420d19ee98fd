package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims 權杖內容，Subject 為使用者 id
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Manager 簽發與驗證 HS256 權杖
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager 創建權杖管理器
func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken 為使用者簽發權杖
func (m *Manager) GenerateToken(userID, email string) (string, error) {
	if userID == "" {
		return "", errors.New("empty userID passed to GenerateToken")
	}
	if len(m.secret) == 0 {
		return "", errors.New("jwt secret not set")
	}

	now := m.now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken 驗證權杖並回傳使用者 id 與 email
func (m *Manager) ValidateToken(tokenString string) (string, string, error) {
	if len(m.secret) == 0 {
		return "", "", errors.New("jwt secret not set")
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return "", "", errors.New("invalid token")
	}
	if claims.Subject == "" {
		return "", "", errors.New("invalid token claims")
	}

	return claims.Subject, claims.Email, nil
}
