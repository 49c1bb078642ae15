// Package creationkit runs CreationKit.exe headless for precombine, geometry,
// cell index, and previs generation.
//
// Every run disables the graphics injectors in the game root for its duration,
// clears the stale extender log, and judges success by the presence of the
// expected output file rather than the exit code.
package creationkit
