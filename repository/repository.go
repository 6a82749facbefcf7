// Package repository is the caching data-access layer between UI
// consumers and the server's HTTP API. It serves the freshest
// affordable view of each resource kind, keeping redundant network
// calls down via short-lived per-resource caches, and centralizes
// query construction for the log-search endpoint.
package repository

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/loupelog/loupe/parseable"
)

// Per-resource time-to-live policies. Expiry affects only whether a
// present entry is served; it never removes the entry.
const (
	streamListTTL = 30 * time.Second
	aboutTTL      = 5 * time.Minute
	schemaTTL     = 2 * time.Minute
	statsTTL      = 30 * time.Second
)

// Transport is the contract the repository requires from the
// underlying API client: one method per operation, failures returned
// as errors rather than panics, and failure-not-panic behavior while
// unconfigured. *parseable.Client satisfies it.
type Transport interface {
	Configure(cfg parseable.ServerConfig) error
	IsConfigured() bool
	Ping(ctx context.Context) (string, error)
	ListStreams(ctx context.Context) ([]parseable.StreamDescriptor, error)
	GetSchema(ctx context.Context, stream string) (*parseable.Schema, error)
	GetStats(ctx context.Context, stream string) (*parseable.StreamStats, error)
	GetAbout(ctx context.Context) (*parseable.AboutInfo, error)
	GetStreamInfo(ctx context.Context, stream string) (*parseable.StreamInfo, error)
	GetRetention(ctx context.Context, stream string) ([]parseable.RetentionRule, error)
	Query(ctx context.Context, sql string, start, end time.Time) ([]parseable.LogRecord, error)
	DeleteStream(ctx context.Context, stream string) (string, error)
	ListAlerts(ctx context.Context) ([]parseable.Alert, error)
	ListUsers(ctx context.Context) ([]parseable.User, error)
}

// Repository wraps a Transport with per-resource caches. All methods
// are safe for concurrent use. Concurrent cache misses for the same
// key each call the transport; the last success to complete wins the
// slot. There is deliberately no in-flight coalescing.
type Repository struct {
	client Transport
	clock  clockwork.Clock
	logger zerolog.Logger

	streams singletonSlot[[]parseable.StreamDescriptor]
	about   singletonSlot[*parseable.AboutInfo]
	schemas *keyedSlot[*parseable.Schema]
	stats   *keyedSlot[*parseable.StreamStats]
}

// Option customizes a Repository.
type Option func(*Repository)

// WithClock substitutes the wall clock, letting tests drive TTL expiry
// without sleeping.
func WithClock(clock clockwork.Clock) Option {
	return func(r *Repository) { r.clock = clock }
}

// WithLogger sets the logger for cache lifecycle events.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Repository) { r.logger = logger }
}

// New returns a Repository with all cache slots empty.
func New(client Transport, opts ...Option) *Repository {
	r := &Repository{
		client:  client,
		clock:   clockwork.NewRealClock(),
		logger:  zerolog.Nop(),
		schemas: newKeyedSlot[*parseable.Schema](),
		stats:   newKeyedSlot[*parseable.StreamStats](),
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Configure forwards the config to the transport and unconditionally
// invalidates every cache slot: a new target server invalidates every
// previously cached fact. A rejected config surfaces later, on the
// first subsequent call.
func (r *Repository) Configure(cfg parseable.ServerConfig) {
	if err := r.client.Configure(cfg); err != nil {
		r.logger.Warn().Err(err).Msg("server configuration rejected")
	}
	r.InvalidateAll()
}

// IsConfigured reports the transport's readiness. Pure query, no side
// effect.
func (r *Repository) IsConfigured() bool {
	return r.client.IsConfigured()
}

// InvalidateAll clears every cache slot. Safe to call concurrently
// with in-flight fetches; clearing is not atomic across slots, and a
// fetch already in flight may still populate a slot afterward.
func (r *Repository) InvalidateAll() {
	r.streams.clear()
	r.about.clear()
	r.schemas.clear()
	r.stats.clear()
	r.logger.Debug().Msg("cache invalidated")
}

// Streams returns the stream list, served from cache while fresh
// unless force is set. A transport failure leaves the slot untouched.
func (r *Repository) Streams(ctx context.Context, force bool) ([]parseable.StreamDescriptor, error) {
	if !force {
		if v, ok := r.streams.get(r.clock.Now(), streamListTTL); ok {
			return v, nil
		}
	}
	v, err := r.client.ListStreams(ctx)
	if err != nil {
		return nil, err
	}
	r.streams.put(v, r.clock.Now())
	return v, nil
}

// About returns the server's self-description, cached like Streams.
func (r *Repository) About(ctx context.Context, force bool) (*parseable.AboutInfo, error) {
	if !force {
		if v, ok := r.about.get(r.clock.Now(), aboutTTL); ok {
			return v, nil
		}
	}
	v, err := r.client.GetAbout(ctx)
	if err != nil {
		return nil, err
	}
	r.about.put(v, r.clock.Now())
	return v, nil
}

// Schema returns the schema of the named stream, cached per stream.
// The stream name must be non-empty; it is the caller's resource
// identifier and is matched case-sensitively.
func (r *Repository) Schema(ctx context.Context, stream string, force bool) (*parseable.Schema, error) {
	if !force {
		if v, ok := r.schemas.get(stream, r.clock.Now(), schemaTTL); ok {
			return v, nil
		}
	}
	v, err := r.client.GetSchema(ctx, stream)
	if err != nil {
		return nil, err
	}
	r.schemas.put(stream, v, r.clock.Now())
	return v, nil
}

// Stats returns ingestion/storage statistics of the named stream,
// cached per stream.
func (r *Repository) Stats(ctx context.Context, stream string, force bool) (*parseable.StreamStats, error) {
	if !force {
		if v, ok := r.stats.get(stream, r.clock.Now(), statsTTL); ok {
			return v, nil
		}
	}
	v, err := r.client.GetStats(ctx, stream)
	if err != nil {
		return nil, err
	}
	r.stats.put(stream, v, r.clock.Now())
	return v, nil
}

// StreamInfo forwards directly to the transport; never cached.
func (r *Repository) StreamInfo(ctx context.Context, stream string) (*parseable.StreamInfo, error) {
	return r.client.GetStreamInfo(ctx, stream)
}

// Retention forwards directly to the transport; never cached.
func (r *Repository) Retention(ctx context.Context, stream string) ([]parseable.RetentionRule, error) {
	return r.client.GetRetention(ctx, stream)
}

// Alerts forwards directly to the transport; never cached.
func (r *Repository) Alerts(ctx context.Context) ([]parseable.Alert, error) {
	return r.client.ListAlerts(ctx)
}

// Users forwards directly to the transport; never cached.
func (r *Repository) Users(ctx context.Context) ([]parseable.User, error) {
	return r.client.ListUsers(ctx)
}

// Ping forwards the liveness check to the transport.
func (r *Repository) Ping(ctx context.Context) (string, error) {
	return r.client.Ping(ctx)
}

// QueryLogs builds the log-search statement for the stream and runs it
// over the given time window. The filter fragment travels into the
// statement verbatim (see BuildLogQuery); the time bounds travel
// beside it.
func (r *Repository) QueryLogs(ctx context.Context, stream string, start, end time.Time, filterSQL string, limit int) ([]parseable.LogRecord, error) {
	return r.client.Query(ctx, BuildLogQuery(stream, filterSQL, limit), start, end)
}

// QueryRaw forwards a caller-supplied statement verbatim, skipping
// statement assembly. Used for advanced queries.
func (r *Repository) QueryRaw(ctx context.Context, sql string, start, end time.Time) ([]parseable.LogRecord, error) {
	return r.client.Query(ctx, sql, start, end)
}

// DeleteStream invalidates every cache slot before issuing the delete,
// so readers are never served pre-delete state even when the delete
// itself fails. Consistency is favored over hit rate here.
func (r *Repository) DeleteStream(ctx context.Context, stream string) (string, error) {
	r.InvalidateAll()
	return r.client.DeleteStream(ctx, stream)
}
