// Package logscan classifies external tool logs by literal markers.
//
// The tools never signal failure through exit codes reliably, so each call
// site pairs a log with a rule set: markers that must appear, markers that
// must not, and whether a violation fails the stage or only warns.
package logscan
