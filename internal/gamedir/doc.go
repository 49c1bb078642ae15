// Package gamedir models the Fallout 4 installation the pipeline works in.
//
// All paths are relative to the game root and resolved through a billy
// filesystem so prerequisite checks, cleanup, and the component guard can be
// exercised against an in-memory tree in tests. Abs converts a relative name to
// the host path handed to external tools.
package gamedir
