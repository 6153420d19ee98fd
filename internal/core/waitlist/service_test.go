package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pantry-chef/internal/pkg/common"
)

func TestJoin(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)

	tests := []struct {
		email string
		valid bool
	}{
		{"cook@example.com", true},
		{"  cook@example.com ", true},
		{"a@b.c", true},
		{"no-at-sign.com", false},
		{"two@@example.com", false},
		{"spaces in@example.com", false},
		{"missing@tld", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			_, err := svc.Join(context.Background(), tt.email)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, common.IsValidationError(err))
			}
		})
	}

	assert.Equal(t, 2, repo.Len())
}

func TestPostgresRepository_Add(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	created := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO waitlist").
		WithArgs("cook@example.com").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	e, err := NewPostgresRepository(mock).Add(context.Background(), "cook@example.com")
	require.NoError(t, err)
	assert.Equal(t, created, e.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
