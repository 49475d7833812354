// Package importers turns raw feed records into entry fields.
//
// The flow for one feed run is:
//
//	feed records → Grouper → Grouped → Transformer → EntryFields
//
// Grouping merges every occurrence that shares an external identifier into
// one record with the earliest start and latest end. Transformers are the
// per-source mapping rules; they never write to the store. Writing is the
// orchestrator's job.
//
// Adding a new feed source:
//
//  1. Add its raw record type to package feeds.
//  2. Write a Grouper for it (identifier + date pairs).
//  3. Implement a transformer with Identifier, Title, BareID and Transform.
package importers
