package revoked

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemStore()
	now := time.Now()
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	require.NoError(t, store.Revoke(ctx, "s1", time.Hour))

	tests := []struct {
		name  string
		id    string
		after time.Duration
		want  bool
	}{
		{name: "revoked", id: "s1", want: true},
		{name: "other session", id: "s2"},
		{name: "expired", id: "s1", after: 2 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nowFunc = func() time.Time { return now.Add(tt.after) }
			got, err := store.IsRevoked(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
