// Package deps checks that the external executables a build drives are
// installed where the toolchain says they are.
package deps
