// Package reddit implements the client for the public Reddit JSON API.
//
// It covers exactly the three endpoints the archiver needs:
//
//   - GET /user/{name}/{comments|submitted}.json: cursor-paginated listings
//   - GET /api/info.json?id=...: batch lookup of prefixed identifiers
//   - GET /user/{name}/about.json: username to account-id resolution
//
// # Partial Results
//
// Rate limiting is a normal outcome, not a failure: a 429 truncates the
// active listing or batch and the records collected so far are returned
// alongside a *RateLimitError. Batch-lookup chunks are retried with
// exponential backoff; a chunk that keeps failing yields a
// *PartialBatchError with everything fetched before it.
//
// # Request Discipline
//
// All requests are issued one at a time, in order. The API enforces a strict
// per-client request-rate ceiling, so there is nothing to gain from
// concurrency here.
package reddit
