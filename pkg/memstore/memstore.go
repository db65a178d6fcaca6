// Package memstore is an in-process transactional store. Tables are
// generic maps, a transaction holds the store lock and restores a snapshot
// of every table when it fails. Named unique constraints mirror the
// Postgres schema so callers map violations the same way for both backends.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/iota-uz/iota-admin/pkg/repo"
)

type table interface {
	snapshot() func()
	contains(key any) bool
}

type DB struct {
	mu     sync.Mutex
	tables map[string]table
}

func New() *DB {
	return &DB{tables: map[string]table{}}
}

type txKey struct{ db *DB }

func (db *DB) inTx(ctx context.Context) bool {
	active, _ := ctx.Value(txKey{db: db}).(bool)
	return active
}

// InTx runs fn while holding the store lock. On error every table is rolled
// back to its state before fn ran. Nested calls join the outer transaction.
func (db *DB) InTx(ctx context.Context, fn func(context.Context) error) error {
	if db.inTx(ctx) {
		return fn(ctx)
	}
	db.mu.Lock()
	defer db.mu.Unlock()

	restores := make([]func(), 0, len(db.tables))
	for _, t := range db.tables {
		restores = append(restores, t.snapshot())
	}
	if err := fn(context.WithValue(ctx, txKey{db: db}, true)); err != nil {
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// acquire locks the store unless ctx already runs inside a transaction.
func (db *DB) acquire(ctx context.Context) func() {
	if db.inTx(ctx) {
		return func() {}
	}
	db.mu.Lock()
	return db.mu.Unlock
}

var _ repo.Transactor = (*DB)(nil)

// Exists reports whether the named table holds a row with key. Repositories
// use it to check references into tables owned by other packages.
func (db *DB) Exists(ctx context.Context, table string, key any) bool {
	defer db.acquire(ctx)()
	t, ok := db.tables[table]
	return ok && t.contains(key)
}

type ConstraintError struct {
	Kind       repo.ConstraintKind
	Constraint string
	Table      string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("memstore: %s violation on %s (%s)", e.Kind, e.Table, e.Constraint)
}

func (e *ConstraintError) StoreViolation() repo.Violation {
	return repo.Violation{Kind: e.Kind, Constraint: e.Constraint}
}

// ForeignKey reports a missing referenced row for constraint on table.
func ForeignKey(table, constraint string) error {
	return &ConstraintError{Kind: repo.ForeignKeyViolation, Constraint: constraint, Table: table}
}

type row[V any] struct {
	seq   int64
	value V
}

type uniqueIndex[V any] struct {
	name string
	key  func(V) (string, bool)
}

type Table[K comparable, V any] struct {
	db       *DB
	name     string
	rows     map[K]row[V]
	seq      int64
	uniques  []uniqueIndex[V]
	onDelete []func(ctx context.Context, id K)
}

// Use returns the table registered under name, creating it on first use.
func Use[K comparable, V any](db *DB, name string) *Table[K, V] {
	db.mu.Lock()
	defer db.mu.Unlock()
	if existing, ok := db.tables[name]; ok {
		t, ok := existing.(*Table[K, V])
		if !ok {
			panic(fmt.Sprintf("memstore: table %q registered with a different row type", name))
		}
		return t
	}
	t := &Table[K, V]{db: db, name: name, rows: map[K]row[V]{}}
	db.tables[name] = t
	return t
}

// Unique declares a named unique constraint. key returns false for rows the
// constraint does not apply to, like NULL columns in Postgres.
func (t *Table[K, V]) Unique(name string, key func(V) (string, bool)) *Table[K, V] {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	for _, u := range t.uniques {
		if u.name == name {
			return t
		}
	}
	t.uniques = append(t.uniques, uniqueIndex[V]{name: name, key: key})
	return t
}

// OnDelete registers fn to run for every removed row while the store lock is
// still held, the way ON DELETE CASCADE and SET NULL actions run in Postgres.
// fn may only touch tables through the ctx it is given.
func (t *Table[K, V]) OnDelete(fn func(ctx context.Context, id K)) *Table[K, V] {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.onDelete = append(t.onDelete, fn)
	return t
}

func (t *Table[K, V]) cascade(ctx context.Context, ids []K) {
	if len(t.onDelete) == 0 || len(ids) == 0 {
		return
	}
	locked := context.WithValue(ctx, txKey{db: t.db}, true)
	for _, id := range ids {
		for _, fn := range t.onDelete {
			fn(locked, id)
		}
	}
}

func (t *Table[K, V]) contains(key any) bool {
	id, ok := key.(K)
	if !ok {
		return false
	}
	_, exists := t.rows[id]
	return exists
}

func (t *Table[K, V]) snapshot() func() {
	rows := make(map[K]row[V], len(t.rows))
	for k, r := range t.rows {
		rows[k] = r
	}
	seq := t.seq
	return func() {
		t.rows = rows
		t.seq = seq
	}
}

func (t *Table[K, V]) Get(ctx context.Context, id K) (V, bool) {
	defer t.db.acquire(ctx)()
	r, ok := t.rows[id]
	return r.value, ok
}

func (t *Table[K, V]) Has(ctx context.Context, id K) bool {
	_, ok := t.Get(ctx, id)
	return ok
}

// Insert adds a new row. An existing id is reported like a primary key clash.
func (t *Table[K, V]) Insert(ctx context.Context, id K, v V) error {
	defer t.db.acquire(ctx)()
	if _, exists := t.rows[id]; exists {
		return &ConstraintError{Kind: repo.UniqueViolation, Constraint: t.name + "_pkey", Table: t.name}
	}
	if err := t.checkUnique(id, v); err != nil {
		return err
	}
	t.seq++
	t.rows[id] = row[V]{seq: t.seq, value: v}
	return nil
}

// Update replaces an existing row and reports whether it existed.
func (t *Table[K, V]) Update(ctx context.Context, id K, v V) (bool, error) {
	defer t.db.acquire(ctx)()
	r, exists := t.rows[id]
	if !exists {
		return false, nil
	}
	if err := t.checkUnique(id, v); err != nil {
		return true, err
	}
	t.rows[id] = row[V]{seq: r.seq, value: v}
	return true, nil
}

func (t *Table[K, V]) Delete(ctx context.Context, id K) bool {
	defer t.db.acquire(ctx)()
	if _, exists := t.rows[id]; !exists {
		return false
	}
	delete(t.rows, id)
	t.cascade(ctx, []K{id})
	return true
}

// Filter returns matching rows in insertion order. A nil match returns all rows.
func (t *Table[K, V]) Filter(ctx context.Context, match func(V) bool) []V {
	defer t.db.acquire(ctx)()
	ordered := make([]row[V], 0, len(t.rows))
	for _, r := range t.rows {
		if match == nil || match(r.value) {
			ordered = append(ordered, r)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })
	out := make([]V, len(ordered))
	for i, r := range ordered {
		out[i] = r.value
	}
	return out
}

func (t *Table[K, V]) Count(ctx context.Context, match func(V) bool) int {
	defer t.db.acquire(ctx)()
	n := 0
	for _, r := range t.rows {
		if match == nil || match(r.value) {
			n++
		}
	}
	return n
}

// UpdateWhere rewrites every matching row with fn and returns how many changed.
func (t *Table[K, V]) UpdateWhere(ctx context.Context, match func(V) bool, fn func(V) V) int {
	defer t.db.acquire(ctx)()
	n := 0
	for k, r := range t.rows {
		if match(r.value) {
			t.rows[k] = row[V]{seq: r.seq, value: fn(r.value)}
			n++
		}
	}
	return n
}

// DeleteWhere removes every matching row and returns how many were removed.
func (t *Table[K, V]) DeleteWhere(ctx context.Context, match func(V) bool) int {
	defer t.db.acquire(ctx)()
	var removed []K
	for k, r := range t.rows {
		if match(r.value) {
			delete(t.rows, k)
			removed = append(removed, k)
		}
	}
	t.cascade(ctx, removed)
	return len(removed)
}

func (t *Table[K, V]) checkUnique(id K, v V) error {
	for _, u := range t.uniques {
		key, ok := u.key(v)
		if !ok {
			continue
		}
		for otherID, other := range t.rows {
			if otherID == id {
				continue
			}
			if otherKey, ok := u.key(other.value); ok && otherKey == key {
				return &ConstraintError{Kind: repo.UniqueViolation, Constraint: u.name, Table: t.name}
			}
		}
	}
	return nil
}
