package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"previsbine/internal/ckpe"
	"previsbine/internal/logging"
)

// MinScriptVersion is the oldest batch script release that works unattended.
const MinScriptVersion = 10

// BatchScripts are the xEdit scripts the merge stages run.
var BatchScripts = []string{
	"Batch_FO4MergeCombinedObjectsAndCheck.pas",
	"Batch_FO4MergePreVisAndAutoUpdateRefr.pas",
}

var batchVersionPattern = regexp.MustCompile(`BatchVersion\s*=\s*(\d+)`)

// ScriptVersion extracts the BatchVersion constant from script source.
func ScriptVersion(source string) (int, bool) {
	m := batchVersionPattern.FindStringSubmatch(source)
	if m == nil {
		return 0, false
	}
	version, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return version, true
}

// CheckScript verifies that a batch script is installed and recent enough.
func CheckScript(dir, name string) Result {
	path := filepath.Join(dir, name)
	text, ok, err := logging.ReadToolLog(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("read %s: %v", path, err)}
	}
	if !ok {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found", path)}
	}
	version, ok := ScriptVersion(text)
	if !ok {
		return Result{Name: name, Detail: "could not determine script version"}
	}
	if version < MinScriptVersion {
		return Result{Name: name, Detail: fmt.Sprintf("version %d is outdated, %d or newer required", version, MinScriptVersion)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("version %d", version)}
}

// CheckLogRedirect requires the extender to redirect the Creation Kit log and
// resolves the target against the game root.
func CheckLogRedirect(settings *ckpe.Settings, gameDir string) Result {
	const name = "Creation Kit log redirection"
	if settings.LogSetting == "" {
		return Result{Name: name, Detail: fmt.Sprintf("log output not set in %s", settings.File)}
	}
	logFile := settings.LogSetting
	if !filepath.IsAbs(logFile) {
		logFile = filepath.Join(gameDir, logFile)
	}
	settings.LogFile = logFile
	return Result{Name: name, Passed: true, Detail: logFile}
}

// CheckHandleLimit warns when the extender's reference handle patch is off.
// It never fails.
func CheckHandleLimit(settings ckpe.Settings) Result {
	const name = "Reference handle limit"
	switch {
	case !settings.HandleLimitFound:
		return Result{Name: name, Passed: true, Warning: true, Detail: fmt.Sprintf("handle patch setting not found in %s, you may run out of reference handles", settings.File)}
	case !settings.HandleLimitEnabled:
		return Result{Name: name, Passed: true, Warning: true, Detail: fmt.Sprintf("handle patch disabled in %s, you may run out of reference handles", settings.File)}
	default:
		return Result{Name: name, Passed: true, Detail: "raised"}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := checkWritable(path); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
