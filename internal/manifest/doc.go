// Package manifest reads and edits package.json dependency entries. Edits
// go through gjson/sjson so key order and formatting of everything lnr does
// not touch are preserved; the file is only re-indented when an edit adds or
// removes a key.
package manifest
