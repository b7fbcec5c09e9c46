// Package linker is the bind/unbind state machine. It splices a cached
// clone into node_modules by editing the state files, package.json and the
// filesystem, in that order, and reports drift between the three.
//
// A package name is Unbound (no record, or a record without node_version),
// Bound (record with node_version) or Dropped (record and clone removed).
// Every mutation runs as an ordered journal of steps; when a step fails the
// completed steps are undone in reverse, best effort.
package linker
