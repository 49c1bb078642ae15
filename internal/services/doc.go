// Package services defines shared utilities consumed by the build stages and
// the external tool clients.
//
// Key responsibilities:
//   - Context helpers that stamp stage names, run correlation identifiers, and
//     the plugin under construction for logging.
//   - Structured error markers plus the Wrap helper so failures carry a
//     classifiable kind alongside a readable message.
//   - The Runner abstraction over process execution and the cancellable
//     sleep/poll helpers used while waiting on tool output.
//
// Use these helpers when wiring new tool clients so error handling and
// observability stay uniform across the pipeline.
package services
