// Package runlock keeps two builds from driving the same installation at once.
// The Creation Kit and xEdit share fixed file names in the game's Data
// directory, so concurrent runs would corrupt each other.
package runlock
