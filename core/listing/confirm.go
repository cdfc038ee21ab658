package listing

import (
	"context"
	"sync"
)

// Confirm is the yes/no gate placed in front of destructive actions.
// Exactly one of onConfirm/onCancel runs, then the gate closes for good.
type Confirm struct {
	Title        string
	ConfirmLabel string

	mu        sync.Mutex
	message   string
	open      bool
	onConfirm func(ctx context.Context) error
	onCancel  func()
	onClose   func()
}

func NewConfirm(message string, onConfirm func(ctx context.Context) error, onCancel func()) *Confirm {
	return &Confirm{
		Title:        "Please confirm",
		ConfirmLabel: "Yes",
		message:      message,
		open:         true,
		onConfirm:    onConfirm,
		onCancel:     onCancel,
	}
}

func (m *Confirm) Message() string { return m.message }

func (m *Confirm) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Confirm runs onConfirm and closes the gate.
func (m *Confirm) Confirm(ctx context.Context) error {
	if !m.resolve() {
		return ErrModalClosed
	}
	defer m.closed()
	if m.onConfirm == nil {
		return nil
	}
	return m.onConfirm(ctx)
}

// Cancel runs onCancel and closes the gate.
func (m *Confirm) Cancel() error {
	if !m.resolve() {
		return ErrModalClosed
	}
	defer m.closed()
	if m.onCancel != nil {
		m.onCancel()
	}
	return nil
}

// Resolve confirms when yes is true and cancels otherwise.
func (m *Confirm) Resolve(ctx context.Context, yes bool) error {
	if yes {
		return m.Confirm(ctx)
	}
	return m.Cancel()
}

// resolve marks the gate resolved; only the first caller wins.
func (m *Confirm) resolve() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.open {
		return false
	}
	m.open = false
	return true
}

func (m *Confirm) closed() {
	if m.onClose != nil {
		m.onClose()
	}
}
