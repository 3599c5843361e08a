// Package catalog maintains the in-memory set of installable products
// discovered in a local repository of archives.
//
// A Catalog is refreshed wholesale: every Refresh scans its source, builds a
// new immutable Snapshot and publishes it atomically. Readers always see
// either the previous snapshot or the new one, never a partly built one.
// Refreshes are serialized by a single-writer lock.
package catalog
