// Package sync implements the archiving feature: it pulls a Reddit
// account's comments and posts into the local database and keeps re-runs
// incremental.
//
// Two sources feed the same store:
//  1. Live API: the account's recent listing pages (the API only serves
//     the most recent stretch of history).
//  2. GDPR export: a directory of CSVs listing every item id the account
//     ever produced; ids are reconciled against the store and only missing
//     ones are hydrated through the batch-lookup endpoint.
//
// # Components
//
//   - Service: orchestrates fetching, attribution and persistence.
//   - Store: table management, upserts and the full-text search index.
//
// Items whose author the API no longer reports are re-attributed where a
// subject can be established (the account's own listings, or the export's
// statistics file) and dropped otherwise.
package sync
