// Package redact trims retrieved chunks down to the sub-spans a user is
// permitted to see.
//
// A chunk returned by the retrieval layer may aggregate content contributed
// by several externally-governed objects (for example CRM records cited
// within a document). Each contribution is marked by a source link: a
// character offset into the chunk content paired with the URL of the object
// whose content begins there. Given a per-object access decision, the
// Redactor reconstructs a new chunk containing only the permitted spans,
// with source-link offsets and the preview blurb recomputed to match.
//
// The access policy is fail-closed: an object id with no entry in the
// access map is treated as denied.
package redact
