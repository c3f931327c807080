package redact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// ErrNoResolver is returned by Redact when no access map is supplied and
// the Redactor was constructed without a Resolver.
var ErrNoResolver = errors.New("no access map supplied and no resolver configured")

// Redactor filters retrieved chunks down to the spans a user may see.
//
// Redactor holds no mutable state across calls and is safe for concurrent
// use by multiple goroutines with distinct input data.
type Redactor struct {
	resolver Resolver
	objectID ObjectIDFunc
	logger   *slog.Logger
}

// Option configures a Redactor.
type Option func(*Redactor)

// WithObjectIDFunc overrides how object ids are derived from source links.
// The default is ObjectIDFromLink.
func WithObjectIDFunc(fn ObjectIDFunc) Option {
	return func(r *Redactor) {
		if fn != nil {
			r.objectID = fn
		}
	}
}

// New creates a Redactor.
//
// resolver is consulted when Redact is called without an access map; it may
// be nil if callers always supply one. logger may be nil (slog.Default()).
func New(resolver Resolver, logger *slog.Logger, opts ...Option) *Redactor {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Redactor{
		resolver: resolver,
		objectID: ObjectIDFromLink,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// span is one externally-governed contribution to a chunk.
type span struct {
	key  ChunkKey
	rng  ContentRange
	link string
}

// Redact returns a new chunk list containing only the spans belonging to
// objects the access map grants. Chunks with no permitted span are omitted
// entirely, as are chunks with no source links at all (see SplitLinked).
//
// If access is nil, the configured Resolver is called with the object ids
// referenced by the chunks. Object ids absent from the map are denied.
// The order of the returned chunks is implementation-defined and need not
// match the input order.
func (r *Redactor) Redact(ctx context.Context, chunks []Chunk, identity string, access AccessMap) ([]Chunk, error) {
	unfiltered := make(map[ChunkKey]*Chunk, len(chunks))
	objectSpans := make(map[string][]span)
	var objectOrder []string

	for i := range chunks {
		chunk := &chunks[i]
		if len(chunk.SourceLinks) == 0 {
			continue
		}
		unfiltered[chunk.Key()] = chunk

		// Only a start offset is recorded per span; the end is implicit
		// (the next span's start, or end of content for the last span).
		// Walking offsets from highest to lowest recovers both bounds in
		// a single pass, carrying the previous offset as the current end.
		offsets := make([]int, 0, len(chunk.SourceLinks))
		for off := range chunk.SourceLinks {
			offsets = append(offsets, off)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(offsets)))

		end := EndOfContent
		for _, off := range offsets {
			rng := ContentRange{Start: off, End: end}
			end = off

			link := chunk.SourceLinks[off]
			id := r.objectID(link)
			if id == "" {
				continue
			}
			if _, seen := objectSpans[id]; !seen {
				objectOrder = append(objectOrder, id)
			}
			objectSpans[id] = append(objectSpans[id], span{key: chunk.Key(), rng: rng, link: link})
		}
	}

	if access == nil {
		if r.resolver == nil {
			return nil, ErrNoResolver
		}
		resolved, err := r.resolver.Resolve(ctx, objectOrder, identity)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve object access: %w", err)
		}
		access = resolved
	}

	filtered := make(map[ChunkKey]*Chunk)
	var resultOrder []ChunkKey

	for _, id := range objectOrder {
		if !access[id] {
			continue
		}
		for _, sp := range objectSpans[id] {
			original := unfiltered[sp.key]
			text, ok := sliceRange(original.Content, sp.rng)
			if !ok {
				// Malformed offsets never abort a response; the span is
				// silently omitted.
				r.logger.Debug("skipping span with out-of-range offset",
					"document_id", sp.key.DocumentID,
					"chunk_id", sp.key.ChunkID,
					"start", sp.rng.Start)
				continue
			}

			out, exists := filtered[sp.key]
			if !exists {
				out = &Chunk{
					DocumentID:  original.DocumentID,
					ChunkID:     original.ChunkID,
					SourceLinks: make(map[int]string),
				}
				filtered[sp.key] = out
				resultOrder = append(resultOrder, sp.key)
			}

			// Spans arrive in descending-offset order, so prepending each
			// one reconstructs the permitted subset left to right. The new
			// link offset is the accumulated length before the prepend.
			newOffset := len(out.Content)
			out.Content = text + out.Content
			out.SourceLinks[newOffset] = sp.link
			out.Blurb = blurb(out.Content)
		}
	}

	result := make([]Chunk, 0, len(resultOrder))
	for _, key := range resultOrder {
		result = append(result, *filtered[key])
	}

	r.logger.Debug("redacted chunks",
		"identity", identity,
		"input_chunks", len(chunks),
		"output_chunks", len(result),
		"objects", len(objectOrder))
	return result, nil
}

// sliceRange extracts rng from content using half-open interval semantics.
// The second return value is false when the range cannot yield a valid
// span (start outside the content, or end before start).
func sliceRange(content string, rng ContentRange) (string, bool) {
	if rng.Start < 0 || rng.Start > len(content) {
		return "", false
	}
	end := rng.End
	if end == EndOfContent || end > len(content) {
		end = len(content)
	}
	if end < rng.Start {
		return "", false
	}
	return content[rng.Start:end], true
}
