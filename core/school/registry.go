package school

import (
	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/listing"
)

type registration struct {
	meta  listing.Meta
	board func(api API, opts listing.Options) listing.Board
}

func register[T any](e listing.Entity[T]) registration {
	return registration{
		meta: e.Meta(),
		board: func(api API, opts listing.Options) listing.Board {
			return listing.NewController(e, resource[T]{api: api, entity: e}, opts)
		},
	}
}

var registry = []registration{
	register(Notifications),
	register(Subjects),
	register(MainSubjects),
	register(Classes),
	register(FAQs),
	register(PrivacyPolicies),
	register(Terms),
	register(JobPostings),
	register(Contacts),
	register(Students),
	register(UserContacts),
	register(CalendarEvents),
	register(Teachers),
	register(Attendances),
}

// Entities lists every entity the portal manages, in menu order.
func Entities() []listing.Meta {
	metas := make([]listing.Meta, 0, len(registry))
	for _, r := range registry {
		metas = append(metas, r.meta)
	}
	return metas
}

func LookupEntity(key string) (listing.Meta, bool) {
	for _, r := range registry {
		if r.meta.Key == key {
			return r.meta, true
		}
	}
	return listing.Meta{}, false
}

// Boards returns the BoardFactory of every registered entity over api.
func Boards(api API) listing.BoardFactory {
	return func(key string, opts listing.Options) (listing.Board, bool) {
		for _, r := range registry {
			if r.meta.Key == key {
				return r.board(api, opts), true
			}
		}
		return nil, false
	}
}

// Access is what a role may do on a dashboard screen.
type Access int

const (
	ReadOnly Access = iota + 1
	ReadWrite
)

func (a Access) CanWrite() bool { return a == ReadWrite }

type Screen struct {
	Entity listing.Meta
	Access Access
}

var dashboards = map[core.Role][]struct {
	key    string
	access Access
}{
	core.RoleTeacher: {
		{"students", ReadWrite},
		{"attendance", ReadWrite},
		{"calendar-events", ReadWrite},
		{"classes", ReadOnly},
		{"notifications", ReadOnly},
	},
	core.RoleStudent: {
		{"notifications", ReadOnly},
		{"calendar-events", ReadOnly},
		{"subjects", ReadOnly},
	},
}

// Dashboard returns the screens of role's dashboard. Admins manage every entity.
func Dashboard(role core.Role) []Screen {
	if role == core.RoleAdmin {
		screens := make([]Screen, 0, len(registry))
		for _, r := range registry {
			screens = append(screens, Screen{Entity: r.meta, Access: ReadWrite})
		}
		return screens
	}
	var screens []Screen
	for _, s := range dashboards[role] {
		if meta, ok := LookupEntity(s.key); ok {
			screens = append(screens, Screen{Entity: meta, Access: s.access})
		}
	}
	return screens
}

// ScreenOf returns the screen of entity key on role's dashboard.
func ScreenOf(role core.Role, key string) (Screen, bool) {
	for _, s := range Dashboard(role) {
		if s.Entity.Key == key {
			return s, true
		}
	}
	return Screen{}, false
}
