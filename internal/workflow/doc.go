// Package workflow runs the previsbine stages for a single plugin.
//
// The Manager resolves the start stage (explicit, prompted, or stage 0),
// verifies the environment exactly once, then walks the remaining stages in
// order. Each stage is gated by the prerequisite validator, drives one of the
// external tool clients, and checks the tool output before the next stage
// starts. The first failure stops the run; the artifacts left on disk are the
// checkpoint an operator resumes from.
//
// Stages run strictly one after another. The tools share the game directory
// and cannot run concurrently.
package workflow
