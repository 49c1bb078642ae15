package workflow_test

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"previsbine/internal/services"
	"previsbine/internal/testsupport"
)

// toolbox stands in for the Creation Kit, xEdit and both archivers. It writes
// the files each tool would produce into the game directory.
type toolbox struct {
	t       *testing.T
	gameDir string

	mu    sync.Mutex
	calls []services.Command

	// ckLogs maps a Creation Kit action to the log it writes.
	ckLogs map[string]string
	// ckExit maps a Creation Kit action to its exit code.
	ckExit map[string]int
	// skipOutput lists Creation Kit actions that produce nothing.
	skipOutput map[string]bool
	// noPSG stops precombine generation from writing the geometry file.
	noPSG bool
	// scriptLogs maps an xEdit script to the log it writes.
	scriptLogs map[string]string
	// failPackAt makes the n-th archive pack (1-based) exit non-zero.
	failPackAt int
	packs      int
	// entry records the Data tree seen when each Creation Kit action started.
	entry map[string][]string
}

func newToolbox(t *testing.T, gameDir string) *toolbox {
	return &toolbox{
		t:          t,
		gameDir:    gameDir,
		ckLogs:     map[string]string{},
		ckExit:     map[string]int{},
		skipOutput: map[string]bool{},
		scriptLogs: map[string]string{},
		entry:      map[string][]string{},
	}
}

type toolProcess struct{}

func (toolProcess) Terminate() error { return nil }

func (tb *toolbox) Run(ctx context.Context, cmd services.Command) (int, error) {
	tb.record(cmd)
	switch strings.ToLower(filepath.Base(cmd.Binary)) {
	case "creationkit.exe":
		return tb.creationKit(cmd)
	case "archive2.exe":
		return tb.archive2(cmd)
	case "bsarch.exe":
		return tb.bsarch(cmd)
	}
	return -1, errors.New("unexpected binary " + cmd.Binary)
}

func (tb *toolbox) Start(ctx context.Context, cmd services.Command) (services.Process, error) {
	tb.record(cmd)
	var script, logPath string
	for _, arg := range cmd.Args {
		if v, ok := strings.CutPrefix(arg, "-Script:"); ok {
			script = v
		}
		if v, ok := strings.CutPrefix(arg, "-log:"); ok {
			logPath = v
		}
	}
	text, ok := tb.scriptLogs[script]
	if !ok {
		text = "Applying script...\nCompleted: No Errors."
	}
	tb.put(logPath, text)
	return toolProcess{}, nil
}

func (tb *toolbox) record(cmd services.Command) {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.calls = append(tb.calls, cmd)
}

// actions lists the Creation Kit actions and xEdit scripts run so far.
func (tb *toolbox) actions() []string {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	var out []string
	for _, cmd := range tb.calls {
		for _, arg := range cmd.Args {
			if strings.HasPrefix(arg, "-Script:") {
				out = append(out, strings.TrimPrefix(arg, "-Script:"))
			}
		}
		if filepath.Base(cmd.Binary) == "CreationKit.exe" && len(cmd.Args) > 0 {
			action, _, _ := strings.Cut(strings.TrimPrefix(cmd.Args[0], "-"), ":")
			out = append(out, action)
		}
	}
	return out
}

func (tb *toolbox) commandsFor(binary string) []services.Command {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	var out []services.Command
	for _, cmd := range tb.calls {
		if strings.EqualFold(filepath.Base(cmd.Binary), binary) {
			out = append(out, cmd)
		}
	}
	return out
}

func (tb *toolbox) creationKit(cmd services.Command) (int, error) {
	action, pluginName, _ := strings.Cut(strings.TrimPrefix(cmd.Args[0], "-"), ":")
	base := strings.TrimSuffix(pluginName, filepath.Ext(pluginName))
	data := filepath.Join(tb.gameDir, "Data")
	tb.entry[action] = dataFiles(tb.t, data)

	if !tb.skipOutput[action] {
		switch action {
		case "GeneratePrecombined":
			tb.put(filepath.Join(data, "CombinedObjects.esp"), "esp")
			tb.put(filepath.Join(data, "meshes", "precombined", "0000abcd_0.nif"), "nif")
			if !tb.noPSG {
				tb.put(filepath.Join(data, base+" - Geometry.psg"), "psg")
			}
		case "CompressPSG":
			tb.put(filepath.Join(data, base+" - Geometry.csg"), "csg")
		case "BuildCDX":
			tb.put(filepath.Join(data, base+".cdx"), "cdx")
		case "GeneratePreVisData":
			tb.put(filepath.Join(data, "Previs.esp"), "esp")
			tb.put(filepath.Join(data, "vis", "0000abcd.uvd"), "uvd")
		}
	}
	text, ok := tb.ckLogs[action]
	if !ok {
		text = action + " finished"
	}
	tb.put(filepath.Join(tb.gameDir, "CreationKit.log"), text)
	return tb.ckExit[action], nil
}

func (tb *toolbox) archive2(cmd services.Command) (int, error) {
	if len(cmd.Args) > 1 && cmd.Args[1] == "-e=." {
		return tb.unpack(filepath.Join(cmd.Dir, cmd.Args[0]), cmd.Dir)
	}
	archive := strings.TrimPrefix(cmd.Args[1], "-c=")
	return tb.pack(cmd.Dir, filepath.Join(cmd.Dir, archive), strings.Split(cmd.Args[0], ","))
}

func (tb *toolbox) bsarch(cmd services.Command) (int, error) {
	switch cmd.Args[0] {
	case "unpack":
		return tb.unpack(cmd.Args[1], cmd.Args[2])
	case "pack":
		var folders []string
		for i := 4; i+1 < len(cmd.Args); i += 2 {
			folders = append(folders, cmd.Args[i+1])
		}
		return tb.pack(cmd.Args[1], cmd.Args[2], folders)
	}
	return 1, nil
}

// pack writes the Data-relative path of every file under folders into the
// archive, one per line.
func (tb *toolbox) pack(dataDir, archivePath string, folders []string) (int, error) {
	tb.packs++
	if tb.packs == tb.failPackAt {
		return 1, nil
	}
	var entries []string
	for _, folder := range folders {
		root := filepath.Join(dataDir, folder)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(dataDir, path)
			if err != nil {
				return err
			}
			entries = append(entries, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return 1, nil
		}
	}
	tb.put(archivePath, strings.Join(entries, "\n"))
	return 0, nil
}

func (tb *toolbox) unpack(archivePath, dataDir string) (int, error) {
	data, err := os.ReadFile(archivePath)
	if err != nil {
		return 1, nil
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			tb.put(filepath.Join(dataDir, filepath.FromSlash(line)), "packed")
		}
	}
	return 0, nil
}

func (tb *toolbox) put(path, content string) {
	tb.t.Helper()
	testsupport.WriteText(tb.t, path, content)
}

// archiveEntries reads the fake archive listing.
func archiveEntries(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// dataFiles lists every file below dir, slash separated and sorted, with the
// fake archive listing folded in so archive contents count as state.
func dataFiles(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		out = append(out, rel)
		if strings.HasSuffix(rel, ".ba2") {
			for _, entry := range archiveEntries(t, path) {
				out = append(out, rel+"!"+entry)
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", dir, err)
	}
	slices.Sort(out)
	return out
}
