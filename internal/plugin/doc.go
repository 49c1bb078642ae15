// Package plugin derives the canonical plugin identity (file name, base name,
// archive name) and the names of the per-plugin artifacts the build produces.
package plugin
