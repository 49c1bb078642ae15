// Package prereq decides whether a build stage can start from the artifacts
// earlier stages left in the game's Data directory.
package prereq
