package listing

import "sync"

type SelectKind string

const (
	SelectEdit   SelectKind = "edit"
	SelectDelete SelectKind = "delete"
	SelectToggle SelectKind = "toggle"
)

// Selection is the single "record selected for edit/delete" register of a list.
// Last write wins; any modal close clears it. Modals capture their record id when
// opened, so a newer selection never redirects an open modal to another record.
type Selection struct {
	mu   sync.Mutex
	kind SelectKind
	id   string
}

func (s *Selection) Select(kind SelectKind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind, s.id = kind, id
}

func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind, s.id = "", ""
}

// Release clears the register if it still holds kind/id. A modal closing after a
// newer selection was made leaves that selection alone.
func (s *Selection) Release(kind SelectKind, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kind == kind && s.id == id {
		s.kind, s.id = "", ""
	}
}

func (s *Selection) Current() (SelectKind, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind, s.id, s.id != ""
}
