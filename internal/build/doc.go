// Package build defines the vocabulary shared by the pipeline: build modes,
// the numbered stages, the archiver selection, and the per-run context that
// ties a plugin identity to the resolved toolchain.
package build
