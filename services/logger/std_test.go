package logsvc

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/masomo-portal/core"
)

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStdLogger(log.New(&buf, "", 0))

	logger.Warn("fetching page failed",
		&core.NotFoundError{Entity: "classes", ID: "c1"},
		map[string]interface{}{"entity": "classes"},
		core.Session{ID: "s1", Role: core.RoleTeacher},
	)
	assert.Equal(t, "fetching page failed\nclasses \"c1\" not found\nmap[entity:classes]\nsession: s1 (teacher)\n", buf.String())
}
