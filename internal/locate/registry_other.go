//go:build !windows

package locate

func systemRegistry() Registry { return noRegistry{} }
