// Package stubapi is an in-memory implementation of the school REST API,
// served by echo. It backs the portal in stub mode and in tests.
package stubapi

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/core/listing"
)

var errNotFound = errors.New("not found")

type record map[string]interface{}

type (
	// DB holds one table per collection.
	DB struct {
		tables map[string]*table
	}

	table struct {
		sync.RWMutex
		meta listing.Meta
		rows []record
	}
)

// Open creates an empty table for every collection of metas.
func Open(metas []listing.Meta) *DB {
	db := &DB{tables: make(map[string]*table, len(metas))}
	for _, m := range metas {
		db.tables[m.Key] = &table{meta: m}
	}
	return db
}

func (db *DB) table(key string) (*table, bool) {
	t, ok := db.tables[key]
	return t, ok
}

// Seed inserts recs (any JSON-encodable values) into collection key and returns their ids.
// Records without an "_id" get one assigned.
func (db *DB) Seed(key string, recs ...interface{}) ([]string, error) {
	t, ok := db.table(key)
	if !ok {
		return nil, errors.Errorf("unknown collection %q", key)
	}
	ids := make([]string, 0, len(recs))
	for _, v := range recs {
		rec, err := toRecord(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, t.insert(rec)["_id"].(string))
	}
	return ids, nil
}

// Len returns the number of records in collection key.
func (db *DB) Len(key string) int {
	t, ok := db.table(key)
	if !ok {
		return 0
	}
	t.RLock()
	defer t.RUnlock()
	return len(t.rows)
}

func toRecord(v interface{}) (record, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, errors.Wrap(err, "decoding record")
	}
	return rec, nil
}

func (t *table) insert(rec record) record {
	t.Lock()
	defer t.Unlock()
	if id, _ := rec["_id"].(string); id == "" {
		rec["_id"] = uuid.NewString()
	}
	t.rows = append(t.rows, rec)
	return rec.clone()
}

// page returns the records of page (1-based) and the page count.
func (t *table) page(page, limit int) ([]record, int) {
	t.RLock()
	defer t.RUnlock()

	total := (len(t.rows) + limit - 1) / limit
	if total < 1 {
		total = 1
	}
	items := make([]record, 0, limit)
	start := (page - 1) * limit
	for i := start; i < start+limit && i < len(t.rows); i++ {
		items = append(items, t.rows[i].clone())
	}
	return items, total
}

func (rec record) clone() record {
	c := make(record, len(rec))
	for k, v := range rec {
		c[k] = v
	}
	return c
}

func (t *table) indexOf(id string) int {
	for i, rec := range t.rows {
		if rec["_id"] == id {
			return i
		}
	}
	return -1
}

// update merges the set fields of patch into record id.
func (t *table) update(id string, patch record) (record, error) {
	t.Lock()
	defer t.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return nil, errNotFound
	}
	for k, v := range patch {
		if k == "_id" {
			continue
		}
		t.rows[i][k] = v
	}
	return t.rows[i].clone(), nil
}

// toggle sets isActive of record id, or flips it when active is nil.
func (t *table) toggle(id string, active *bool) (record, error) {
	t.Lock()
	defer t.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return nil, errNotFound
	}
	if active == nil {
		cur, _ := t.rows[i]["isActive"].(bool)
		flipped := !cur
		active = &flipped
	}
	t.rows[i]["isActive"] = *active
	return t.rows[i].clone(), nil
}

func (t *table) delete(id string) error {
	t.Lock()
	defer t.Unlock()

	i := t.indexOf(id)
	if i < 0 {
		return errNotFound
	}
	t.rows = append(t.rows[:i], t.rows[i+1:]...)
	return nil
}
