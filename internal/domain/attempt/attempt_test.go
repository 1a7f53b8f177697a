package attempt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAttempt(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		isSuccess bool
	}{
		{
			name:      "正常系: 成功試行の作成",
			isSuccess: true,
		},
		{
			name:      "正常系: 失敗試行の作成",
			isSuccess: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewAttempt("attempt-1", "192.0.2.1", tt.isSuccess, now)
			assert.Equal(t, "attempt-1", got.ID())
			assert.Equal(t, "192.0.2.1", got.IPAddress())
			assert.Equal(t, tt.isSuccess, got.IsSuccess())
			assert.Equal(t, 1, got.AttemptCount())
			assert.Nil(t, got.BlockedUntil())
			assert.Equal(t, now, got.CreatedAt())
		})
	}
}

func TestAttempt_IsBlocked(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(20 * time.Minute)
	past := now.Add(-20 * time.Minute)

	tests := []struct {
		name         string
		blockedUntil *time.Time
		want         bool
	}{
		{
			name:         "正常系: ブロックなし",
			blockedUntil: nil,
			want:         false,
		},
		{
			name:         "正常系: ブロック中",
			blockedUntil: &future,
			want:         true,
		},
		{
			name:         "正常系: ブロック期限切れ",
			blockedUntil: &past,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAttempt("attempt-1", "192.0.2.1", false, now)
			a.SetBlockedUntil(tt.blockedUntil)
			assert.Equal(t, tt.want, a.IsBlocked(now))
		})
	}
}

func TestAttempt_Increment(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	a := NewAttempt("attempt-1", "192.0.2.1", true, now)
	require.Equal(t, 1, a.AttemptCount())

	a.Increment()
	assert.Equal(t, 2, a.AttemptCount())
	// 加算された時点で失敗試行として扱う
	assert.False(t, a.IsSuccess())
}
