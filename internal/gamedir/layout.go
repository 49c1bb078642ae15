package gamedir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Locations relative to the game root.
var (
	DataDir        = "Data"
	PrecombinedDir = filepath.Join("Data", "meshes", "precombined")
	VisDir         = filepath.Join("Data", "vis")
)

// Folders relative to the Data directory, as handed to the archivers.
var (
	PrecombinedFolder = filepath.Join("meshes", "precombined")
	VisFolder         = "vis"
)

// Well-known working files inside Data.
const (
	CombinedObjectsPlugin = "CombinedObjects.esp"
	PrevisPlugin          = "Previs.esp"
	SeedPlugin            = "xPrevisPatch.esp"
)

// File extensions that mark real tool output.
const (
	MeshExtension = ".nif"
	VisExtension  = ".uvd"
)

// Layout gives typed access to the game installation.
type Layout struct {
	fs billy.Filesystem
}

// New wraps an existing filesystem rooted at the game directory.
func New(fs billy.Filesystem) *Layout {
	return &Layout{fs: fs}
}

// Open roots a layout at dir on the host filesystem.
func Open(dir string) *Layout {
	return New(osfs.New(dir))
}

// FS exposes the underlying filesystem.
func (l *Layout) FS() billy.Filesystem {
	return l.fs
}

// Abs returns the host path of a root-relative name for external tools.
func (l *Layout) Abs(name string) string {
	return filepath.Join(l.fs.Root(), name)
}

// Data joins elem under the Data directory.
func (l *Layout) Data(elem ...string) string {
	return l.fs.Join(append([]string{DataDir}, elem...)...)
}

// Exists reports whether name exists.
func (l *Layout) Exists(name string) bool {
	_, err := l.fs.Stat(name)
	return err == nil
}

// DataExists reports whether name exists inside Data.
func (l *Layout) DataExists(name string) bool {
	return l.Exists(l.Data(name))
}

// HasFiles reports whether dir contains at least one file with the given
// extension, searching subdirectories. A missing directory has no files.
func (l *Layout) HasFiles(dir, ext string) (bool, error) {
	entries, err := l.fs.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", dir, err)
	}
	for _, entry := range entries {
		child := l.fs.Join(dir, entry.Name())
		if entry.IsDir() {
			found, err := l.HasFiles(child, ext)
			if err != nil || found {
				return found, err
			}
			continue
		}
		if ext == "" || strings.EqualFold(filepath.Ext(entry.Name()), ext) {
			return true, nil
		}
	}
	return false, nil
}

// RemoveFile deletes name, ignoring a missing file.
func (l *Layout) RemoveFile(name string) error {
	if err := l.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", name, err)
	}
	return nil
}

// RemoveDir deletes dir and everything below it, ignoring a missing directory.
func (l *Layout) RemoveDir(dir string) error {
	if !l.Exists(dir) {
		return nil
	}
	if err := util.RemoveAll(l.fs, dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	return nil
}

// Rename moves from to to.
func (l *Layout) Rename(from, to string) error {
	if err := l.fs.Rename(from, to); err != nil {
		return fmt.Errorf("rename %s to %s: %w", from, to, err)
	}
	return nil
}
