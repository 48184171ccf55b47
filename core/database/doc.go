// Package database provides the relational store connection and schema tooling.
//
// # Drivers
//
// SQLite is the primary backend: one local database file per archive, created
// on first use. MySQL is available for shared installations via Config.Driver.
//
// # Schema Evolution
//
// The archiver's item tables may grow columns over time because live listings
// and archive lookups do not produce identical field sets. GetTableColumns
// inspects the current table shape (PRAGMA table_info on SQLite, SHOW COLUMNS
// on MySQL) and EnsureColumns issues ALTER TABLE ADD COLUMN for anything
// missing. Writers run it before each batch instead of relying on implicit
// migration side effects.
package database
