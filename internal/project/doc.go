// Package project locates and bootstraps an lnr project root: the directory
// holding lnr.json, lnr-local.json, the managed cache and package.json. It
// also provides the advisory lock that serializes mutating commands.
package project
