package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"previsbine/internal/build"
	"previsbine/internal/config"
	"previsbine/internal/gamedir"
	"previsbine/internal/logscan"
	"previsbine/internal/services"
	"previsbine/internal/services/xedit"
	"previsbine/internal/testsupport"
	"previsbine/internal/workflow"
)

const archiveName = "MyMod - Main.ba2"

type harness struct {
	cfg   *config.Config
	tools *toolbox
	data  string
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithInstall()}, opts...)...)
	return &harness{
		cfg:   cfg,
		tools: newToolbox(t, cfg.Paths.GameDir),
		data:  filepath.Join(cfg.Paths.GameDir, "Data"),
	}
}

func (h *harness) dataFile(t *testing.T, rel string) {
	t.Helper()
	testsupport.WriteText(t, filepath.Join(h.data, filepath.FromSlash(rel)), "x")
}

func (h *harness) dataExists(rel string) bool {
	return testsupport.Exists(filepath.Join(h.data, filepath.FromSlash(rel)))
}

func (h *harness) request(mode build.Mode) workflow.Request {
	return workflow.Request{
		Plugin:   "MyMod",
		Mode:     mode,
		Tools:    build.NewToolchain(h.cfg.Paths.GameDir, h.cfg.Paths.XEditPath, h.cfg.Paths.BSArchPath, h.cfg.ArchiverKind()),
		NoPrompt: true,
	}
}

func (h *harness) run(t *testing.T, req workflow.Request, opts ...workflow.ManagerOption) (workflow.Report, error) {
	t.Helper()
	opts = append([]workflow.ManagerOption{workflow.WithRunner(h.tools)}, opts...)
	m := workflow.NewManager(h.cfg, nil, opts...)
	return m.Run(context.Background(), req)
}

type stubPrompter struct {
	plugin    string
	resume    build.Stage
	confirm   bool
	questions []string
}

func (p *stubPrompter) PluginName(context.Context) (string, error) {
	return p.plugin, nil
}

func (p *stubPrompter) ResumeStage(context.Context, build.Mode) (build.Stage, error) {
	return p.resume, nil
}

func (p *stubPrompter) Confirm(_ context.Context, question string) (bool, error) {
	p.questions = append(p.questions, question)
	return p.confirm, nil
}

func intPtr(v int) *int { return &v }

func TestRunCleanBuildProducesArtifacts(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	testsupport.WriteText(t, filepath.Join(h.cfg.Paths.GameDir, "d3d11.dll"), "enb")

	report, err := h.run(t, h.request(build.Clean))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if !slices.Equal(report.Executed, build.AllStages()) {
		t.Fatalf("expected every stage to run, got %v", report.Executed)
	}
	wantActions := []string{
		"GeneratePrecombined",
		xedit.ScriptMergeCombinedObjects,
		"CompressPSG",
		"BuildCDX",
		"GeneratePreVisData",
		xedit.ScriptMergePrevis,
	}
	if got := h.tools.actions(); !slices.Equal(got, wantActions) {
		t.Fatalf("unexpected tool order %v", got)
	}

	entries := archiveEntries(t, filepath.Join(h.data, archiveName))
	if !slices.Contains(entries, "meshes/precombined/0000abcd_0.nif") || !slices.Contains(entries, "vis/0000abcd.uvd") {
		t.Fatalf("expected meshes and vis data in archive, got %v", entries)
	}
	for _, kept := range []string{"MyMod.esp", "MyMod - Geometry.csg", "MyMod.cdx", archiveName} {
		if !h.dataExists(kept) {
			t.Fatalf("expected %s to remain", kept)
		}
	}
	for _, gone := range []string{"MyMod - Geometry.psg", "CombinedObjects.esp", "Previs.esp", "vis", "meshes/precombined"} {
		if h.dataExists(gone) {
			t.Fatalf("expected %s to be removed", gone)
		}
	}
	if !testsupport.Exists(filepath.Join(h.cfg.Paths.GameDir, "d3d11.dll")) {
		t.Fatal("expected d3d11.dll re-enabled")
	}
	wantArtifacts := []string{"MyMod.esp", "MyMod - Geometry.csg", "MyMod.cdx", archiveName}
	if !slices.Equal(report.Artifacts, wantArtifacts) {
		t.Fatalf("unexpected artifacts %v", report.Artifacts)
	}
	if report.RunLog != filepath.Join(h.cfg.Paths.LogDir, "MyMod.log") || !testsupport.Exists(report.RunLog) {
		t.Fatalf("expected run log at %s", report.RunLog)
	}
	if len(report.Warnings) != 0 {
		t.Fatalf("unexpected warnings %v", report.Warnings)
	}
}

func TestRunFilteredSkipsCleanOnlyStages(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")

	report, err := h.run(t, h.request(build.Filtered))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !slices.Equal(report.Executed, build.StagesFor(build.Filtered)) {
		t.Fatalf("unexpected executed stages %v", report.Executed)
	}
	if h.dataExists("MyMod.cdx") || h.dataExists("MyMod - Geometry.csg") {
		t.Fatal("filtered build must not compress geometry or build the cell index")
	}
	ck := h.tools.commandsFor("CreationKit.exe")
	if got := strings.Join(ck[0].Args[1:], " "); got != "filtered all" {
		t.Fatalf("expected filtered precombine args, got %q", got)
	}
	if got := strings.Join(ck[len(ck)-1].Args[1:], " "); got != "clean all" {
		t.Fatalf("expected previs generation with clean all, got %q", got)
	}
	if len(report.Artifacts) != 2 {
		t.Fatalf("expected plugin and archive only, got %v", report.Artifacts)
	}
}

func TestRunXboxUsesXboxCompression(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")

	if _, err := h.run(t, h.request(build.Xbox)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for _, cmd := range h.tools.commandsFor("archive2.exe") {
		if cmd.Args[1] == "-e=." {
			continue
		}
		if !slices.Contains(cmd.Args, "-compression=XBox") {
			t.Fatalf("expected xbox compression in %v", cmd.Args)
		}
	}
}

func TestRunWithBSArch(t *testing.T) {
	h := newHarness(t, testsupport.WithBSArch())
	h.dataFile(t, "MyMod.esp")

	if _, err := h.run(t, h.request(build.Filtered)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(h.tools.commandsFor("archive2.exe")) != 0 {
		t.Fatal("archive2 must not run when bsarch is selected")
	}
	packs := h.tools.commandsFor("bsarch.exe")
	last := packs[len(packs)-1]
	if last.Args[0] != "pack" || strings.Count(strings.Join(last.Args, " "), "--include") != 2 {
		t.Fatalf("expected final pack of meshes and vis, got %v", last.Args)
	}
	entries := archiveEntries(t, filepath.Join(h.data, archiveName))
	if len(entries) != 2 {
		t.Fatalf("expected two archived files, got %v", entries)
	}
}

func TestRunRenamesSeedPluginAfterConfirmation(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, gamedir.SeedPlugin)
	prompter := &stubPrompter{confirm: true}
	req := h.request(build.Filtered)
	req.NoPrompt = false

	if _, err := h.run(t, req, workflow.WithPrompter(prompter)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(prompter.questions) != 1 {
		t.Fatalf("expected one confirmation, got %v", prompter.questions)
	}
	if !h.dataExists("MyMod.esp") || h.dataExists(gamedir.SeedPlugin) {
		t.Fatal("expected seed plugin renamed to MyMod.esp")
	}
}

func TestRunDeclinedSeedRenameAborts(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, gamedir.SeedPlugin)
	req := h.request(build.Filtered)
	req.NoPrompt = false

	_, err := h.run(t, req, workflow.WithPrompter(&stubPrompter{confirm: false}))
	if !errors.Is(err, services.ErrUserAborted) || !workflow.IsAbort(err) {
		t.Fatalf("expected abort, got %v", err)
	}
	if !h.dataExists(gamedir.SeedPlugin) {
		t.Fatal("seed plugin must be left alone")
	}
}

func TestRunSeedPluginWithoutPromptFails(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, gamedir.SeedPlugin)

	report, err := h.run(t, h.request(build.Clean))
	if !errors.Is(err, services.ErrPrerequisiteUnmet) {
		t.Fatalf("expected prerequisite failure, got %v", err)
	}
	if !report.Failed || report.FailedStage != build.VerifyEnvironment {
		t.Fatalf("expected failure at stage 0, got %+v", report)
	}
	if len(h.tools.actions()) != 0 {
		t.Fatal("no tool may run")
	}
}

func TestRunRefusesExistingArchive(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	h.dataFile(t, archiveName)
	testsupport.WriteText(t, filepath.Join(h.cfg.Paths.GameDir, "dxgi.dll"+gamedir.DisabledSuffix), "reshade")

	report, err := h.run(t, h.request(build.Clean))
	if !errors.Is(err, services.ErrPrerequisiteUnmet) {
		t.Fatalf("expected prerequisite failure, got %v", err)
	}
	if report.FailedStage != build.VerifyEnvironment {
		t.Fatalf("expected failure at stage 0, got %v", report.FailedStage)
	}
	if !testsupport.Exists(filepath.Join(h.cfg.Paths.GameDir, "dxgi.dll")) {
		t.Fatal("expected leftover disabled component restored during cleanup")
	}
}

func TestRunNoPromptWithoutPluginAborts(t *testing.T) {
	h := newHarness(t)
	req := h.request(build.Clean)
	req.Plugin = ""

	_, err := h.run(t, req)
	if !errors.Is(err, services.ErrUserAborted) {
		t.Fatalf("expected abort, got %v", err)
	}
}

func TestRunPromptsForPluginName(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "Prompted.esm")
	req := h.request(build.Filtered)
	req.Plugin = ""
	req.NoPrompt = false
	prompter := &stubPrompter{plugin: "Prompted.esm", resume: build.VerifyEnvironment}

	report, err := h.run(t, req, workflow.WithPrompter(prompter))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if report.Plugin.FileName != "Prompted.esm" || !h.dataExists("Prompted - Main.ba2") {
		t.Fatalf("expected prompted plugin built, got %+v", report.Plugin)
	}
}

func TestRunInvalidStage(t *testing.T) {
	h := newHarness(t)
	req := h.request(build.Clean)
	req.StartStage = intPtr(9)

	_, err := h.run(t, req)
	if !errors.Is(err, build.ErrInvalidStage) {
		t.Fatalf("expected invalid stage, got %v", err)
	}
}

func TestRunExplicitStageRequiresArtifacts(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	req := h.request(build.Clean)
	req.StartStage = intPtr(int(build.MergePrevis))

	_, err := h.run(t, req)
	if !errors.Is(err, services.ErrPrerequisiteUnmet) {
		t.Fatalf("expected prerequisite failure, got %v", err)
	}
	if len(h.tools.calls) != 0 {
		t.Fatal("no tool may run")
	}
}

func TestRunCompressPsgWithoutGeometryFails(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	req := h.request(build.Clean)
	req.StartStage = intPtr(int(build.CompressPsg))

	_, err := h.run(t, req)
	if !errors.Is(err, services.ErrPrerequisiteUnmet) || !strings.Contains(err.Error(), "Geometry") {
		t.Fatalf("expected missing geometry failure, got %v", err)
	}
}

func TestRunResumesFromGeneratePrevis(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	testsupport.WriteText(t, filepath.Join(h.data, archiveName), "meshes/precombined/0000abcd_0.nif")
	req := h.request(build.Filtered)
	req.StartStage = intPtr(int(build.GeneratePrevis))

	report, err := h.run(t, req)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := []build.Stage{build.GeneratePrevis, build.MergePrevis, build.ArchiveVis}
	if !slices.Equal(report.Executed, want) {
		t.Fatalf("unexpected executed stages %v", report.Executed)
	}
	entries := archiveEntries(t, filepath.Join(h.data, archiveName))
	if !slices.Equal(entries, []string{"meshes/precombined/0000abcd_0.nif", "vis/0000abcd.uvd"}) {
		t.Fatalf("expected merged archive, got %v", entries)
	}
	if h.dataExists("meshes/precombined") {
		t.Fatal("expected extracted meshes removed")
	}
}

func TestRunPromptedResumeIsValidated(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	req := h.request(build.Clean)
	req.NoPrompt = false

	_, err := h.run(t, req, workflow.WithPrompter(&stubPrompter{resume: build.ArchiveVis}))
	if !errors.Is(err, services.ErrPrerequisiteUnmet) {
		t.Fatalf("expected prerequisite failure, got %v", err)
	}
}

func TestRunMergePrevisFailureKeepsIntermediates(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	h.tools.scriptLogs[xedit.ScriptMergePrevis] = "Completed: 3 errors."

	report, err := h.run(t, h.request(build.Filtered))
	if !errors.Is(err, services.ErrLogParse) {
		t.Fatalf("expected log failure, got %v", err)
	}
	if report.FailedStage != build.MergePrevis {
		t.Fatalf("expected MergePrevis failure, got %v", report.FailedStage)
	}
	if !h.dataExists("Previs.esp") || !h.dataExists("vis/0000abcd.uvd") || !h.dataExists("CombinedObjects.esp") {
		t.Fatal("expected intermediates kept for resume")
	}
}

func TestRunHandleExhaustionFailsPrecombines(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	h.tools.ckLogs["GeneratePrecombined"] = "DEFAULT: OUT OF HANDLE ARRAY ENTRIES"

	report, err := h.run(t, h.request(build.Clean))
	if !errors.Is(err, services.ErrLogParse) || report.FailedStage != build.GeneratePrecombines {
		t.Fatalf("expected handle exhaustion failure, got %v at %v", err, report.FailedStage)
	}
}

func TestRunCleanPrecombinesRequireGeometry(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	h.tools.noPSG = true

	_, err := h.run(t, h.request(build.Clean))
	if !errors.Is(err, services.ErrOutputMissing) {
		t.Fatalf("expected missing geometry output, got %v", err)
	}
}

func TestRunRefusesStalePrecombines(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	h.dataFile(t, "meshes/precombined/old.nif")

	_, err := h.run(t, h.request(build.Clean))
	if !errors.Is(err, services.ErrPrerequisiteUnmet) {
		t.Fatalf("expected stale mesh refusal, got %v", err)
	}
	if len(h.tools.commandsFor("CreationKit.exe")) != 0 {
		t.Fatal("creation kit must not run over stale meshes")
	}
}

func TestRunVisibilityIncompleteFails(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	h.tools.ckLogs["GeneratePreVisData"] = "ERROR: visibility task did not complete."

	report, err := h.run(t, h.request(build.Filtered))
	if !errors.Is(err, services.ErrLogParse) || report.FailedStage != build.GeneratePrevis {
		t.Fatalf("expected visibility failure, got %v at %v", err, report.FailedStage)
	}
}

func TestRunCollectsWarnings(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	h.tools.ckExit["BuildCDX"] = 1
	h.tools.scriptLogs[xedit.ScriptMergeCombinedObjects] = "Completed: 1 errors."

	report, err := h.run(t, h.request(build.Clean))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(report.Warnings) != 2 {
		t.Fatalf("expected exit code and script warnings, got %v", report.Warnings)
	}
}

func TestRunKeepFilesLeavesWorkingFiles(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	req := h.request(build.Filtered)
	req.KeepFiles = true

	if _, err := h.run(t, req); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !h.dataExists("CombinedObjects.esp") || !h.dataExists("Previs.esp") {
		t.Fatal("expected working plugins kept")
	}
}

func TestRunMissingCreationKitOutput(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	h.tools.skipOutput["BuildCDX"] = true

	report, err := h.run(t, h.request(build.Clean))
	if !errors.Is(err, services.ErrOutputMissing) || report.FailedStage != build.BuildCdx {
		t.Fatalf("expected missing output at BuildCdx, got %v at %v", err, report.FailedStage)
	}
}

func TestRunFilteredFromPrecombinesWithoutGeometry(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	h.tools.noPSG = true
	req := h.request(build.Filtered)
	req.StartStage = intPtr(int(build.GeneratePrecombines))

	report, err := h.run(t, req)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	want := []build.Stage{
		build.GeneratePrecombines, build.MergePrecombines, build.ArchivePrecombines,
		build.GeneratePrevis, build.MergePrevis, build.ArchiveVis,
	}
	if !slices.Equal(report.Executed, want) {
		t.Fatalf("unexpected executed stages %v", report.Executed)
	}
	if h.dataExists("MyMod - Geometry.psg") || h.dataExists("MyMod - Geometry.csg") {
		t.Fatal("filtered build must not produce geometry files")
	}
	entries := archiveEntries(t, filepath.Join(h.data, archiveName))
	if !slices.Equal(entries, []string{"meshes/precombined/0000abcd_0.nif", "vis/0000abcd.uvd"}) {
		t.Fatalf("unexpected archive contents %v", entries)
	}
}

func TestResumeAtGeneratePrevisMatchesStraightRun(t *testing.T) {
	straight := newHarness(t)
	straight.dataFile(t, "MyMod.esp")
	if _, err := straight.run(t, straight.request(build.Filtered)); err != nil {
		t.Fatalf("straight run: %v", err)
	}

	resumed := newHarness(t)
	resumed.dataFile(t, "MyMod.esp")
	resumed.tools.skipOutput["GeneratePreVisData"] = true
	report, err := resumed.run(t, resumed.request(build.Filtered))
	if !errors.Is(err, services.ErrOutputMissing) || report.FailedStage != build.GeneratePrevis {
		t.Fatalf("expected failure at GeneratePrevis, got %v at %v", err, report.FailedStage)
	}

	delete(resumed.tools.skipOutput, "GeneratePreVisData")
	req := resumed.request(build.Filtered)
	req.StartStage = intPtr(int(build.GeneratePrevis))
	if _, err := resumed.run(t, req); err != nil {
		t.Fatalf("resumed run: %v", err)
	}

	if a, b := straight.tools.entry["GeneratePreVisData"], resumed.tools.entry["GeneratePreVisData"]; !slices.Equal(a, b) {
		t.Fatalf("stage entry state differs:\nstraight %v\nresumed  %v", a, b)
	}
	if a, b := dataFiles(t, straight.data), dataFiles(t, resumed.data); !slices.Equal(a, b) {
		t.Fatalf("final state differs:\nstraight %v\nresumed  %v", a, b)
	}
}

func TestResumeAfterFailedArchiveMergeKeepsPrecombines(t *testing.T) {
	straight := newHarness(t)
	straight.dataFile(t, "MyMod.esp")
	if _, err := straight.run(t, straight.request(build.Filtered)); err != nil {
		t.Fatalf("straight run: %v", err)
	}

	resumed := newHarness(t)
	resumed.dataFile(t, "MyMod.esp")
	// Pack 1 archives the precombines; pack 2 is the merge in ArchiveVis.
	resumed.tools.failPackAt = 2
	report, err := resumed.run(t, resumed.request(build.Filtered))
	if !errors.Is(err, services.ErrExternalProcess) || report.FailedStage != build.ArchiveVis {
		t.Fatalf("expected archiver failure at ArchiveVis, got %v at %v", err, report.FailedStage)
	}
	if !resumed.dataExists(archiveName) {
		t.Fatal("expected the original archive restored after the failed merge")
	}

	req := resumed.request(build.Filtered)
	req.StartStage = intPtr(int(build.ArchiveVis))
	if _, err := resumed.run(t, req); err != nil {
		t.Fatalf("resumed run: %v", err)
	}
	entries := archiveEntries(t, filepath.Join(resumed.data, archiveName))
	if !slices.Equal(entries, []string{"meshes/precombined/0000abcd_0.nif", "vis/0000abcd.uvd"}) {
		t.Fatalf("resumed archive lost data: %v", entries)
	}
	if a, b := dataFiles(t, straight.data), dataFiles(t, resumed.data); !slices.Equal(a, b) {
		t.Fatalf("final state differs:\nstraight %v\nresumed  %v", a, b)
	}
}

func TestRunWithCustomLogRules(t *testing.T) {
	h := newHarness(t)
	h.dataFile(t, "MyMod.esp")
	h.tools.scriptLogs[xedit.ScriptMergePrevis] = "Completed: 3 errors."
	h.tools.ckLogs["GeneratePrecombined"] = "WARNING: cell skipped"
	rules := workflow.LogRules{
		MergePrevis: logscan.ScriptCompleted,
		Precombines: logscan.Rules{{
			Name:     "cell_skipped",
			Marker:   "cell skipped",
			When:     logscan.Present,
			Severity: logscan.Fail,
			Reason:   "a cell was skipped",
		}},
	}

	report, err := h.run(t, h.request(build.Filtered), workflow.WithLogRules(rules))
	if !errors.Is(err, services.ErrLogParse) || report.FailedStage != build.GeneratePrecombines {
		t.Fatalf("expected custom precombine rule to fail the stage, got %v at %v", err, report.FailedStage)
	}

	h.tools.ckLogs["GeneratePrecombined"] = "GeneratePrecombined finished"
	if err := removeAll(h.data, "meshes", "vis"); err != nil {
		t.Fatalf("reset data: %v", err)
	}
	if _, err := h.run(t, h.request(build.Filtered), workflow.WithLogRules(rules)); err != nil {
		t.Fatalf("expected lenient previs merge rule to pass, got %v", err)
	}
}

func removeAll(dir string, names ...string) error {
	for _, name := range names {
		if err := os.RemoveAll(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
