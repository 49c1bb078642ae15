// Package preflight verifies a Fallout 4 modding installation before a build.
//
// Verify runs the checks in a fixed order and stops at the first failure:
// tool executables, the Creation Kit extender and its settings file, the
// xEdit batch scripts and their versions, and log redirection. A disabled
// reference handle patch is reported as a warning. When BSArch is the
// selected archiver its executable is checked last.
//
// The CLI "verify" command prints the collected results; the workflow
// manager runs Verify once per build.
package preflight
