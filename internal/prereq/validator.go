package prereq

import (
	"fmt"

	"previsbine/internal/build"
	"previsbine/internal/gamedir"
	"previsbine/internal/services"
)

// Validator checks that the artifacts a stage consumes are on disk. It never
// modifies anything.
type Validator struct {
	layout *gamedir.Layout
}

// New returns a validator reading through layout.
func New(layout *gamedir.Layout) *Validator {
	return &Validator{layout: layout}
}

// requirement is one artifact a stage needs, with the stage that makes it.
type requirement struct {
	describe string
	producer build.Stage
	present  func(v *Validator, rc build.RunContext) (bool, error)
}

func pluginFile(v *Validator, rc build.RunContext) (bool, error) {
	return v.layout.DataExists(rc.Plugin.FileName), nil
}

func precombinedMeshes(v *Validator, _ build.RunContext) (bool, error) {
	return v.layout.HasFiles(gamedir.PrecombinedDir, gamedir.MeshExtension)
}

func visibilityFiles(v *Validator, _ build.RunContext) (bool, error) {
	return v.layout.HasFiles(gamedir.VisDir, gamedir.VisExtension)
}

func previsPlugin(v *Validator, _ build.RunContext) (bool, error) {
	return v.layout.DataExists(gamedir.PrevisPlugin), nil
}

func geometryFile(v *Validator, rc build.RunContext) (bool, error) {
	return v.layout.DataExists(rc.Plugin.GeometryPSG()), nil
}

var (
	needPlugin = requirement{describe: "plugin", producer: build.VerifyEnvironment, present: pluginFile}
	needMeshes = requirement{describe: "precombined meshes", producer: build.GeneratePrecombines, present: precombinedMeshes}
	needVis    = requirement{describe: "visibility files", producer: build.GeneratePrevis, present: visibilityFiles}
	needPrevis = requirement{describe: gamedir.PrevisPlugin, producer: build.GeneratePrevis, present: previsPlugin}
	needPSG    = requirement{describe: "Geometry file", producer: build.GeneratePrecombines, present: geometryFile}
)

var requirements = map[build.Stage][]requirement{
	build.GeneratePrecombines: {needPlugin},
	build.MergePrecombines:    {needMeshes},
	build.ArchivePrecombines:  {needMeshes},
	build.CompressPsg:         {needPSG},
	build.GeneratePrevis:      {needPlugin},
	build.MergePrevis:         {needVis, needPrevis},
	build.ArchiveVis:          {needVis},
}

// Check reports whether stage can run against the current on-disk state.
func (v *Validator) Check(stage build.Stage, rc build.RunContext) error {
	if !stage.Valid() {
		return fmt.Errorf("%w: %d", build.ErrInvalidStage, int(stage))
	}
	if stage.CleanOnly() && rc.Mode != build.Clean {
		return services.Wrap(services.ErrPrerequisiteUnmet, stage.String(), "", fmt.Sprintf("%s is only available in clean mode", stage), nil)
	}
	for _, req := range requirements[stage] {
		ok, err := req.present(v, rc)
		if err != nil {
			return services.Wrap(services.ErrPrerequisiteUnmet, stage.String(), "inspect "+req.describe, "", err)
		}
		if ok {
			continue
		}
		if req.producer == build.VerifyEnvironment {
			return services.Wrap(services.ErrPrerequisiteUnmet, stage.String(), "", fmt.Sprintf("plugin %s does not exist", rc.Plugin.FileName), nil)
		}
		return services.Wrap(services.ErrPrerequisiteUnmet, stage.String(), "",
			fmt.Sprintf("no %s found, run %s first", req.describe, req.producer), nil)
	}
	return nil
}

// CheckNumber parses a raw stage number and checks it.
func (v *Validator) CheckNumber(n int, rc build.RunContext) (build.Stage, error) {
	stage, err := build.ParseStage(n)
	if err != nil {
		return stage, err
	}
	return stage, v.Check(stage, rc)
}
