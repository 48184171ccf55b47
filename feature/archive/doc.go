// Package archive reads Reddit GDPR data exports.
//
// An export is a directory of CSV files. The archiver consumes the item-id
// listings (comments.csv, posts.csv and their saved_ variants) and
// statistics.csv, which names the account the export belongs to. Exports
// only carry ids; hydrating them into full records is the sync feature's
// job.
package archive
