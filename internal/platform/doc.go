// Package platform provides the filesystem primitives the link engine builds
// on: directory symlinks written relative to the link's parent, link
// inspection, and moves that create missing parent directories (needed for
// scoped package names such as @scope/pkg).
package platform
