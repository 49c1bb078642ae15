//go:build windows

package preflight

import (
	"os"
)

// Windows has no access(2); probe with a throwaway file.
func checkWritable(path string) error {
	f, err := os.CreateTemp(path, ".previsbine-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}
