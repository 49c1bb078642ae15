// Package bsarch wraps the BSArch archiver, an alternative to Archive2 that
// can be used outside the Creation Kit tools folder.
package bsarch
