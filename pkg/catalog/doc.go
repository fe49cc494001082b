// Package catalog holds the console's page logic that does not touch the
// network: deriving the duplicate-groups view, row selection, group
// expansion, the sake draft form and import wizard bookkeeping.
//
// Everything here is a plain value or a pure function so handlers can
// rebuild it from session state on each request and tests can exercise it
// without HTTP.
package catalog
