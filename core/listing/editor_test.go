package listing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-portal/core"
)

func TestEditor_Submit(t *testing.T) {
	ctx := context.Background()
	engine := newEngine()

	tests := []struct {
		name       string
		id         string
		value      string
		hook       func(ctx context.Context, op string, page int) error
		wantErr    bool
		wantOpen   bool
		wantField  string
		wantCalls  map[string]int
		wantNotice *Notice
	}{
		{
			name:      "create: empty name",
			value:     "  ",
			wantErr:   true,
			wantOpen:  true,
			wantField: "Name is required",
			wantCalls: map[string]int{"create": 0},
		},
		{
			name:      "create: too short",
			value:     "a",
			wantErr:   true,
			wantOpen:  true,
			wantField: "Name must be at least 2 characters",
			wantCalls: map[string]int{"create": 0},
		},
		{
			name:       "create",
			value:      "Form 5",
			wantCalls:  map[string]int{"create": 1},
			wantNotice: &Notice{Level: LevelSuccess, Message: "Class created successfully."},
		},
		{
			name:  "create: rejected by server",
			value: "Form 1",
			hook: func(_ context.Context, op string, _ int) error {
				if op == "create" {
					return core.NewServerValidationError(nil, core.FieldError{Field: "name", Error: "Name already exists"})
				}
				return nil
			},
			wantErr:   true,
			wantOpen:  true,
			wantField: "Name already exists",
			wantCalls: map[string]int{"create": 1},
		},
		{
			name:       "edit: unchanged",
			id:         "c2",
			value:      "Form 2",
			wantCalls:  map[string]int{"update": 0},
			wantNotice: &Notice{Level: LevelInfo, Message: "No changes made."},
		},
		{
			name:       "edit",
			id:         "c2",
			value:      "Form 2B",
			wantCalls:  map[string]int{"update": 1},
			wantNotice: &Notice{Level: LevelSuccess, Message: "Class updated successfully."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeClient(3, threePages())
			ctrl, notices := setup(t, client)
			require.NoError(t, ctrl.FetchPage(ctx, 1))
			client.hook = tt.hook

			ed, err := ctrl.OpenEditor(engine, tt.id)
			require.NoError(t, err)
			ed.Set("name", tt.value)

			err = ed.Submit(ctx)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantOpen, ed.IsOpen())
			if tt.wantField != "" {
				assert.Equal(t, tt.wantField, ed.View().Fields[0].Error)
			}
			for op, n := range tt.wantCalls {
				assert.Equal(t, n, client.count(op), op)
			}
			if tt.wantNotice != nil {
				assert.Equal(t, []Notice{*tt.wantNotice}, notices.Drain())
			}
			if !tt.wantOpen {
				_, _, selected := ctrl.Selection().Current()
				assert.False(t, selected)
			}
		})
	}
}

func TestEditor_Blur(t *testing.T) {
	ctrl, _ := setup(t, newFakeClient(1, nil))
	ed, err := ctrl.OpenEditor(newEngine(), "")
	require.NoError(t, err)

	ed.Set("name", "x")
	assert.Equal(t, "Name must be at least 2 characters", ed.Blur("name"))
	ed.Set("name", "xy")
	assert.Equal(t, "", ed.Blur("name"))
	assert.Equal(t, "", ed.View().Fields[0].Error)
}

func TestEditor_closedWhileSubmitting(t *testing.T) {
	client := newFakeClient(1, nil)
	ctrl, _ := setup(t, client)

	started, release := make(chan struct{}), make(chan struct{})
	client.hook = func(context.Context, string, int) error {
		close(started)
		<-release
		return nil
	}

	ed, err := ctrl.OpenEditor(newEngine(), "")
	require.NoError(t, err)
	ed.Set("name", "Form 7")

	done := make(chan error)
	go func() { done <- ed.Submit(context.Background()) }()
	<-started
	assert.Equal(t, ErrBusy, ed.Submit(context.Background()))
	ed.Close()
	close(release)

	assert.Equal(t, ErrModalClosed, <-done)
	assert.False(t, ed.IsOpen())
}
