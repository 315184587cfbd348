// Package alloc hands out todo records with sequential ids.
//
// The last id is kept in memory and mirrored into an optional kv.Store under a
// fixed key, so a new Allocator over the same store continues the numbering.
// The store is read once in New and written once per Create.
//
// Two Allocators built over the same store are not coordinated: if both read
// the same starting value they will hand out the same ids. Nothing here locks
// the key or compares before writing, and an Allocator must not be shared
// between goroutines.
package alloc

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store/kv"
)

// DefaultKey is the key the counter is stored under.
const DefaultKey = "vuex-last-id"

// Input describes a record to create. Done is optional; nil means false.
type Input struct {
	Text string
	Done *bool
}

// Bool returns a pointer to v, for Input.Done.
func Bool(v bool) *bool { return &v }

func (in Input) done() bool {
	if in.Done == nil {
		return false
	}
	return *in.Done
}

type options struct {
	key    string
	logger *logrus.Logger
}

// Option configures an Allocator.
type Option func(*options)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(o *options) {
		if key != "" {
			o.key = key
		}
	}
}

// WithLogger sets the logger used to report storage problems.
func WithLogger(l *logrus.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Allocator produces records with strictly increasing ids.
type Allocator struct {
	store  kv.Store
	key    string
	log    *logrus.Logger
	lastID int64
}

// New seeds an Allocator from store. A nil store is valid and means the
// counter starts at 0 and is never persisted. A missing, unreadable or
// non-numeric stored value also starts the counter at 0.
func New(ctx context.Context, store kv.Store, opts ...Option) *Allocator {
	o := &options{key: DefaultKey}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logrus.New()
		o.logger.SetOutput(io.Discard)
	}
	a := &Allocator{store: store, key: o.key, log: o.logger}
	a.lastID = a.seed(ctx)
	return a
}

func (a *Allocator) seed(ctx context.Context) int64 {
	if a.store == nil {
		a.log.WithField("key", a.key).Debug("no session store, ids are not persisted")
		return 0
	}
	raw, ok, err := a.store.Get(ctx, a.key)
	if err != nil {
		a.log.WithFields(logrus.Fields{"key": a.key, "error": err}).Warn("read last id failed, starting at 0")
		return 0
	}
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		a.log.WithFields(logrus.Fields{"key": a.key, "value": raw}).Warn("stored last id is not a number, starting at 0")
		return 0
	}
	a.log.WithFields(logrus.Fields{"key": a.key, "last_id": n}).Debug("resumed id sequence")
	return n
}

// Create allocates the next id and returns a new record. The record is not
// retained. A failed write to the store is logged and otherwise ignored.
func (a *Allocator) Create(ctx context.Context, in Input) model.Item {
	a.lastID++
	if a.store != nil {
		if err := a.store.Set(ctx, a.key, strconv.FormatInt(a.lastID, 10)); err != nil {
			a.log.WithFields(logrus.Fields{"key": a.key, "id": a.lastID, "error": err}).Warn("persist last id failed")
		}
	}
	return model.Item{ID: a.lastID, Text: in.Text, Done: in.done()}
}

// LastID is the most recently allocated id, or the seeded value if Create
// has not been called yet.
func (a *Allocator) LastID() int64 { return a.lastID }

// Persistent reports whether allocations are written to a store.
func (a *Allocator) Persistent() bool { return a.store != nil }

// Key is the store key the counter lives under.
func (a *Allocator) Key() string { return a.key }
