package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	applog "flaromlab/internal/log"
)

const (
	defaultConcurrency  = 4
	defaultFetchTimeout = 10 * time.Second
)

// Loader fetches and decodes shards concurrently.
type Loader struct {
	Fetcher     Fetcher
	Timeout     time.Duration
	Concurrency int
	// OnShard, when set, is called once per shard with its outcome.
	OnShard func(ref SourceRef, err error)
}

// Collection is the merged result of loading every shard of one entity.
type Collection[T any] struct {
	Items  []T
	Failed []*SourceError
	Status Status
}

// Decoder turns a shard payload into records.
type Decoder[T any] func([]byte) ([]T, error)

// LoadCollection fetches every source, continuing past failures. Items are the
// concatenation of the successful shards in source order, whatever order the
// fetches finish in. Duplicate identities across shards are kept. The entity
// is unavailable only when no source loads; Required affects logging alone.
func LoadCollection[T any](ctx context.Context, l *Loader, sources []SourceRef, decode Decoder[T]) Collection[T] {
	shards := make([][]T, len(sources))
	errs := make([]error, len(sources))

	limit := l.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, src := range sources {
		g.Go(func() error {
			shards[i], errs[i] = loadShard(ctx, l, src, decode)
			return nil
		})
	}
	_ = g.Wait()

	result := Collection[T]{Items: []T{}}
	for i, src := range sources {
		if errs[i] != nil {
			result.Failed = append(result.Failed, &SourceError{Source: src, Err: errs[i]})
			continue
		}
		result.Items = append(result.Items, shards[i]...)
		result.Status.Loaded++
	}

	result.Status.Sources = len(sources)
	result.Status.Records = len(result.Items)
	result.Status.Failed = result.Failed
	switch {
	case len(sources) == 0:
		result.Status.Unavailable = true
		result.Status.Reason = "no sources configured"
	case result.Status.Loaded == 0:
		result.Status.Unavailable = true
		result.Status.Reason = "every source failed: " + joinFailures(result.Failed)
	}
	return result
}

func loadShard[T any](ctx context.Context, l *Loader, src SourceRef, decode Decoder[T]) ([]T, error) {
	timeout := l.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	data, err := l.Fetcher.Fetch(fetchCtx, src.Path)
	if err == nil {
		var items []T
		items, err = decode(data)
		if err == nil {
			applog.Debug(ctx, "catalog shard loaded", "entity", src.Entity, "path", src.Path, "records", len(items), "duration", time.Since(started))
			l.observe(src, nil)
			return items, nil
		}
		err = fmt.Errorf("decode: %w", err)
	}

	level := applog.Warn
	if !src.Required {
		level = applog.Debug
	}
	level(ctx, "catalog shard failed", "entity", src.Entity, "path", src.Path, "required", src.Required, "error", err)
	l.observe(src, err)
	return nil, err
}

func (l *Loader) observe(src SourceRef, err error) {
	if l.OnShard != nil {
		l.OnShard(src, err)
	}
}

func joinFailures(failed []*SourceError) string {
	parts := make([]string, 0, len(failed))
	for _, f := range failed {
		parts = append(parts, f.Source.Path)
	}
	return strings.Join(parts, ", ")
}
