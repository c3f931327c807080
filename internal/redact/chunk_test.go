package redact

import (
	"strings"
	"testing"
)

func TestObjectIDFromLink(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{
			name: "crm record url",
			link: "https://crm.example.com/account/001xx0003DGQ",
			want: "001xx0003DGQ",
		},
		{
			name: "single path segment",
			link: "https://crm.example.com/opportunities",
			want: "opportunities",
		},
		{
			name: "trailing slash",
			link: "https://crm.example.com/account/A/",
			want: "A",
		},
		{
			name: "no path falls back to host",
			link: "https://crm.example.com",
			want: "crm.example.com",
		},
		{
			name: "bare id used as-is",
			link: "001xx0003DGQ",
			want: "001xx0003DGQ",
		},
		{
			name: "unparseable link used verbatim",
			link: "http://[::1",
			want: "http://[::1",
		},
		{
			name: "empty link is ungoverned",
			link: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ObjectIDFromLink(tt.link); got != tt.want {
				t.Errorf("ObjectIDFromLink(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestSplitLinked(t *testing.T) {
	chunks := []Chunk{
		{DocumentID: "a", ChunkID: 0, SourceLinks: map[int]string{0: "https://crm/x/1"}},
		{DocumentID: "b", ChunkID: 0},
		{DocumentID: "c", ChunkID: 0, SourceLinks: map[int]string{}},
		{DocumentID: "d", ChunkID: 1, SourceLinks: map[int]string{0: ""}},
	}

	linked, unlinked := SplitLinked(chunks)

	if len(linked) != 2 {
		t.Fatalf("linked = %d chunks, want 2", len(linked))
	}
	if linked[0].DocumentID != "a" || linked[1].DocumentID != "d" {
		t.Errorf("linked order = %s, %s", linked[0].DocumentID, linked[1].DocumentID)
	}
	if len(unlinked) != 2 {
		t.Fatalf("unlinked = %d chunks, want 2", len(unlinked))
	}
	if unlinked[0].DocumentID != "b" || unlinked[1].DocumentID != "c" {
		t.Errorf("unlinked order = %s, %s", unlinked[0].DocumentID, unlinked[1].DocumentID)
	}
}

func TestBlurb(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "short content kept whole",
			content: "hello",
			want:    "hello",
		},
		{
			name:    "exactly blurb size kept whole",
			content: strings.Repeat("a", BlurbSize),
			want:    strings.Repeat("a", BlurbSize),
		},
		{
			name:    "long content truncated",
			content: strings.Repeat("a", BlurbSize+50),
			want:    strings.Repeat("a", BlurbSize),
		},
		{
			name:    "multi-byte runes never split",
			content: strings.Repeat("日", BlurbSize+10),
			want:    strings.Repeat("日", BlurbSize),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := blurb(tt.content); got != tt.want {
				t.Errorf("blurb() = %q (%d bytes), want %q", got, len(got), tt.want)
			}
		})
	}
}

func TestChunkKey(t *testing.T) {
	a := Chunk{DocumentID: "doc", ChunkID: 3}
	b := Chunk{DocumentID: "doc", ChunkID: 3, Content: "different content"}
	c := Chunk{DocumentID: "doc", ChunkID: 4}

	if a.Key() != b.Key() {
		t.Errorf("chunks with same identity have different keys")
	}
	if a.Key() == c.Key() {
		t.Errorf("chunks with different ids share a key")
	}
}
