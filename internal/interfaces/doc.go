// Package interfaces documents the core abstractions used throughout the
// application and holds compile-time checks that the concrete types satisfy
// them (see checks.go).
//
// # Import Flow
//
//	feeds.Client           fetch and decode a feed
//	importers.Grouper[T]   merge records sharing an identifier
//	orchestrator.Transformer[T]
//	                       map one group to importers.EntryFields
//	orchestrator.Orchestrator[T]
//	                       reconcile with stored entries in one run mode
//
// runner.Runner ties these together for one feed. The CLI, the cron
// scheduler and the task queue all call it.
//
// # Collaborators
//
//   - EntryStore: entry lookups and writes (internal/orchestrator)
//   - BlobStore: per-entry files such as cover images (internal/orchestrator)
//   - ImageFetcher: remote image download (internal/orchestrator)
//   - CategoryAttacher: entry to category links (internal/orchestrator)
//   - CountryLookup: country name and code resolution (internal/importers)
//   - FeedSettings: per-feed URL, toggle and last-run status (internal/runner)
//
// # Adding a New Feed Source
//
//  1. Decode its records in internal/feeds and add a Fetch method.
//
//  2. Add a grouper and a transformer in internal/importers:
//
//     func NewAgendaGrouper(parser TimeParser) Grouper[feeds.AgendaItem]
//
//     type AgendaTransformer struct { ... }
//
//     var _ orchestrator.Transformer[feeds.AgendaItem] = (*importers.AgendaTransformer)(nil)
//
//  3. Add a source tag in internal/entities and a case in runner.dispatch.
//
//  4. Add the tag to runner.Sources so it is scheduled and listed under
//     /api/imports.
//
// # Adding a New Blob Backend
//
// Implement blobstore.Backend (Put, Delete, Exists) and select it in
// blobstore.Open:
//
//	var _ blobstore.Backend = (*GCSBackend)(nil)
//
// Every consumer-declared interface gets a line in checks.go.
package interfaces
