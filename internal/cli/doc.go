// Package cli defines the Cobra command tree for the lnr CLI. Each file in
// this package registers one top-level command with the root command.
// Commands turn their flags into the linker's option structs, take the
// project lock when they mutate anything, and format the results.
package cli
