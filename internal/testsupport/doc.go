// Package testsupport builds throwaway game installations and configs for
// tests.
package testsupport
