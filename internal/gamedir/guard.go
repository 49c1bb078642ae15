package gamedir

import "errors"

// DisabledSuffix is appended to components that must not load while the
// Creation Kit runs headless.
const DisabledSuffix = "-PJMdisabled"

// GraphicsComponents are the injectors and overlays known to break batch
// Creation Kit runs.
var GraphicsComponents = []string{
	"d3d11.dll",
	"d3d10.dll",
	"d3d9.dll",
	"dxgi.dll",
	"enbimgui.dll",
	"d3dcompiler_46e.dll",
}

// DisableComponents renames each present component in the game root. The
// returned release renames them back and must be called on every path.
func (l *Layout) DisableComponents(names []string) (func() error, error) {
	var disabled []string
	release := func() error {
		var errs []error
		for _, name := range disabled {
			if err := l.Rename(name+DisabledSuffix, name); err != nil {
				errs = append(errs, err)
			}
		}
		disabled = nil
		return errors.Join(errs...)
	}

	for _, name := range names {
		if !l.Exists(name) {
			continue
		}
		if err := l.Rename(name, name+DisabledSuffix); err != nil {
			return nil, errors.Join(err, release())
		}
		disabled = append(disabled, name)
	}
	return release, nil
}

// RestoreComponents re-enables any component still carrying the disabled
// suffix, e.g. after a crash. A component whose original name is occupied is
// left alone. It returns the names that were restored.
func (l *Layout) RestoreComponents(names []string) ([]string, error) {
	var restored []string
	var errs []error
	for _, name := range names {
		if !l.Exists(name + DisabledSuffix) {
			continue
		}
		if l.Exists(name) {
			continue
		}
		if err := l.Rename(name+DisabledSuffix, name); err != nil {
			errs = append(errs, err)
			continue
		}
		restored = append(restored, name)
	}
	return restored, errors.Join(errs...)
}
