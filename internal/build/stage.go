package build

import (
	"errors"
	"fmt"
)

// ErrInvalidStage reports a stage number outside the defined range.
var ErrInvalidStage = errors.New("invalid stage")

// Stage identifies one step of the build. Values are stable because operators
// resume runs by number.
type Stage int

const (
	VerifyEnvironment Stage = iota
	GeneratePrecombines
	MergePrecombines
	ArchivePrecombines
	CompressPsg
	BuildCdx
	GeneratePrevis
	MergePrevis
	ArchiveVis
)

var stageNames = [...]string{
	VerifyEnvironment:   "VerifyEnvironment",
	GeneratePrecombines: "GeneratePrecombines",
	MergePrecombines:    "MergePrecombines",
	ArchivePrecombines:  "ArchivePrecombines",
	CompressPsg:         "CompressPsg",
	BuildCdx:            "BuildCdx",
	GeneratePrevis:      "GeneratePrevis",
	MergePrevis:         "MergePrevis",
	ArchiveVis:          "ArchiveVis",
}

var stageDescriptions = [...]string{
	VerifyEnvironment:   "Verify tools and plugin",
	GeneratePrecombines: "Generate precombined meshes via Creation Kit",
	MergePrecombines:    "Merge CombinedObjects.esp into the plugin via xEdit",
	ArchivePrecombines:  "Pack precombined meshes into the plugin archive",
	CompressPsg:         "Compress the geometry file via Creation Kit",
	BuildCdx:            "Build the cell index via Creation Kit",
	GeneratePrevis:      "Generate previs data via Creation Kit",
	MergePrevis:         "Merge Previs.esp into the plugin via xEdit",
	ArchiveVis:          "Add previs data to the plugin archive",
}

// ParseStage converts an operator supplied number into a Stage.
func ParseStage(n int) (Stage, error) {
	if n < int(VerifyEnvironment) || n > int(ArchiveVis) {
		return 0, fmt.Errorf("%w: %d (expected %d-%d)", ErrInvalidStage, n, VerifyEnvironment, ArchiveVis)
	}
	return Stage(n), nil
}

// AllStages returns every stage in execution order.
func AllStages() []Stage {
	stages := make([]Stage, 0, len(stageNames))
	for s := VerifyEnvironment; s <= ArchiveVis; s++ {
		stages = append(stages, s)
	}
	return stages
}

// StagesFor returns the stages that execute under mode, in order.
func StagesFor(mode Mode) []Stage {
	stages := make([]Stage, 0, len(stageNames))
	for _, s := range AllStages() {
		if s.CleanOnly() && mode != Clean {
			continue
		}
		stages = append(stages, s)
	}
	return stages
}

// CleanOnly reports whether the stage only runs in clean mode.
func (s Stage) CleanOnly() bool {
	return s == CompressPsg || s == BuildCdx
}

// Valid reports whether s is a defined stage.
func (s Stage) Valid() bool {
	return s >= VerifyEnvironment && s <= ArchiveVis
}

func (s Stage) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

// Description returns the operator facing summary of the stage.
func (s Stage) Description() string {
	if !s.Valid() {
		return ""
	}
	return stageDescriptions[s]
}
