//go:build windows

package locate

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const (
	falloutKey    = `SOFTWARE\Wow6432Node\Bethesda Softworks\Fallout4`
	falloutValue  = "installed path"
	scriptIconKey = `FO4Script\DefaultIcon`
)

type windowsRegistry struct{}

func systemRegistry() Registry { return windowsRegistry{} }

func (windowsRegistry) GameDir() (string, error) {
	return readString(registry.LOCAL_MACHINE, falloutKey, falloutValue)
}

// xEdit registers itself as the handler for its script files; the icon
// value is the quoted executable path.
func (windowsRegistry) XEdit() (string, error) {
	return readString(registry.CLASSES_ROOT, scriptIconKey, "")
}

func readString(root registry.Key, path, name string) (string, error) {
	key, err := registry.OpenKey(root, path, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, ErrNotFound)
	}
	defer key.Close()
	value, _, err := key.GetStringValue(name)
	if err != nil {
		return "", fmt.Errorf("read %s\\%s: %w", path, name, ErrNotFound)
	}
	return value, nil
}
