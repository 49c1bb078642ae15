package plugin

import (
	"errors"
	"path/filepath"
	"strings"
)

// DefaultExtension is appended when the input carries no recognised plugin
// extension.
const DefaultExtension = ".esp"

var recognisedExtensions = []string{".esp", ".esm", ".esl"}

// Identity captures the plugin file name and the artifact names derived from it.
type Identity struct {
	Base     string
	FileName string
	Archive  string
}

// ParseIdentity derives an Identity from an operator supplied name.
//
// A recognised extension (.esp, .esm, .esl, any case) is preserved verbatim.
// Anything else gets ".esp" appended, so "MyMod.txt" becomes "MyMod.txt.esp".
func ParseIdentity(input string) (Identity, error) {
	name := strings.TrimSpace(input)
	if name == "" {
		return Identity{}, errors.New("plugin name required")
	}
	if strings.ContainsAny(name, `/\`) {
		return Identity{}, errors.New("plugin name must not contain path separators")
	}

	ext := filepath.Ext(name)
	base := name
	fileName := name
	if isRecognised(ext) {
		base = strings.TrimSuffix(name, ext)
	} else {
		fileName = name + DefaultExtension
	}
	if base == "" {
		return Identity{}, errors.New("plugin name has no base")
	}

	return Identity{
		Base:     base,
		FileName: fileName,
		Archive:  base + " - Main.ba2",
	}, nil
}

// GeometryPSG is the uncompressed geometry intermediate written by precombine generation.
func (id Identity) GeometryPSG() string {
	return id.Base + " - Geometry.psg"
}

// GeometryCSG is the compressed geometry artifact.
func (id Identity) GeometryCSG() string {
	return id.Base + " - Geometry.csg"
}

// CDX is the cell index artifact.
func (id Identity) CDX() string {
	return id.Base + ".cdx"
}

func (id Identity) String() string {
	return id.FileName
}

func isRecognised(ext string) bool {
	for _, candidate := range recognisedExtensions {
		if strings.EqualFold(ext, candidate) {
			return true
		}
	}
	return false
}
