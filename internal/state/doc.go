// Package state reads and writes the two lnr state files, lnr.json (shared,
// committed) and lnr-local.json (private, git-ignored). Both map a package
// name to a link Record. Store.Resolve is the only place that knows the
// shared-before-local lookup order.
package state
