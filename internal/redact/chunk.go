package redact

import (
	"net/url"
	"strings"
)

// BlurbSize is the number of characters of chunk content used for the
// preview blurb. Shared with the rest of the retrieval pipeline.
const BlurbSize = 128

// Chunk is a retrieved unit of text content. SourceLinks maps a byte offset
// into Content to the link of the external object whose content begins at
// that offset and continues until the next marked offset (or end of
// content). An empty link marks an untracked span with no attributable
// governing object.
type Chunk struct {
	DocumentID  string         `json:"document_id"`
	ChunkID     int            `json:"chunk_id"`
	Content     string         `json:"content"`
	Blurb       string         `json:"blurb"`
	SourceLinks map[int]string `json:"source_links"`
}

// ChunkKey uniquely identifies one chunk instance within one retrieval
// result set.
type ChunkKey struct {
	DocumentID string
	ChunkID    int
}

// Key returns the chunk's identity within a result set.
func (c Chunk) Key() ChunkKey {
	return ChunkKey{DocumentID: c.DocumentID, ChunkID: c.ChunkID}
}

// ContentRange is a half-open interval into a chunk's content.
// End == EndOfContent means the span runs through the end of the content.
type ContentRange struct {
	Start int
	End   int
}

// EndOfContent marks a ContentRange that extends to the end of the chunk.
const EndOfContent = -1

// AccessMap holds one boolean permission decision per external object id,
// for one user, at one point in time. Ids absent from the map are denied.
type AccessMap map[string]bool

// ObjectIDFunc maps a source link to the id of its governing external
// object. Returning "" marks the span as ungoverned; ungoverned spans are
// never emitted by the Redactor.
type ObjectIDFunc func(link string) string

// ObjectIDFromLink is the default ObjectIDFunc. It extracts the last path
// segment of the link URL, which is how CRM record URLs encode the record
// id (e.g. "https://crm.example.com/account/001xx0003DGQ" -> "001xx0003DGQ").
// Links that do not parse as URLs are used verbatim.
func ObjectIDFromLink(link string) string {
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return u.Host
	}
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

// SplitLinked partitions chunks into those with at least one source link
// and those without. The Redactor drops un-linked chunks; callers that want
// "always show content with no attributable external object" semantics
// union the unlinked slice back into the filtered result themselves.
func SplitLinked(chunks []Chunk) (linked, unlinked []Chunk) {
	for _, c := range chunks {
		if len(c.SourceLinks) == 0 {
			unlinked = append(unlinked, c)
			continue
		}
		linked = append(linked, c)
	}
	return linked, unlinked
}

// blurb returns the first BlurbSize characters of content, never splitting
// a multi-byte rune.
func blurb(content string) string {
	if len(content) <= BlurbSize {
		return content
	}
	n := 0
	for i := range content {
		if n == BlurbSize {
			return content[:i]
		}
		n++
	}
	return content
}
