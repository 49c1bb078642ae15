package preflight

import (
	"context"
	"fmt"

	"previsbine/internal/build"
	"previsbine/internal/ckpe"
	"previsbine/internal/deps"
	"previsbine/internal/gamedir"
	"previsbine/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	// Warning marks a passed check the operator should still look at.
	Warning bool
	Detail  string
}

// Verify checks the installation in a fixed order and stops at the first
// failure. The returned settings carry the resolved Creation Kit log path.
// Results collected so far are returned alongside any error.
func Verify(ctx context.Context, tc build.Toolchain, layout *gamedir.Layout) (ckpe.Settings, []Result, error) {
	stage, _ := services.StageFromContext(ctx)
	var results []Result
	fail := func(r Result) (ckpe.Settings, []Result, error) {
		results = append(results, r)
		return ckpe.Settings{}, results, services.Wrap(services.ErrConfigurationMissing, stage, r.Name, r.Detail, nil)
	}

	for _, status := range deps.CheckFiles(deps.ToolRequirements(tc)) {
		r := fromStatus(status)
		if !r.Passed {
			return fail(r)
		}
		results = append(results, r)
	}
	if err := ctx.Err(); err != nil {
		return ckpe.Settings{}, results, err
	}

	settings, err := ckpe.Load(layout.FS())
	if err != nil {
		return fail(Result{Name: "Creation Kit extender settings", Detail: err.Error()})
	}
	results = append(results, Result{Name: "Creation Kit extender settings", Passed: true, Detail: settings.File})

	for _, script := range BatchScripts {
		r := CheckScript(tc.ScriptDir(), script)
		if !r.Passed {
			return fail(r)
		}
		results = append(results, r)
	}

	r := CheckLogRedirect(&settings, tc.GameDir)
	if !r.Passed {
		return fail(r)
	}
	results = append(results, r)

	results = append(results, CheckHandleLimit(settings))

	if tc.Archiver == build.BSArch {
		if tc.BSArch == "" {
			return fail(Result{Name: "BSArch", Detail: "BSArch selected but no path configured"})
		}
		r := fromStatus(deps.Check(deps.BSArchRequirement(tc.BSArch)))
		if !r.Passed {
			r.Detail = fmt.Sprintf("BSArch selected but %s", r.Detail)
			return fail(r)
		}
		results = append(results, r)
	}

	return settings, results, nil
}

// Warnings returns the details of passed checks flagged as warnings.
func Warnings(results []Result) []string {
	var out []string
	for _, r := range results {
		if r.Passed && r.Warning {
			out = append(out, r.Detail)
		}
	}
	return out
}

func fromStatus(status deps.Status) Result {
	detail := status.Detail
	if status.Available {
		detail = status.Path
	}
	return Result{Name: status.Name, Passed: status.Available, Detail: detail}
}
