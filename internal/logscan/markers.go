package logscan

// Log markers emitted by the Creation Kit extender and the xEdit batch scripts.
const (
	MarkerHandleExhaustion = "DEFAULT: OUT OF HANDLE ARRAY ENTRIES"
	MarkerVisibilityFailed = "ERROR: visibility task did not complete."
	MarkerScriptCompleted  = "Completed: "
	MarkerScriptNoErrors   = "Completed: No Errors."
)

var (
	// HandleExhaustion fails precombine generation that ran out of reference handles.
	HandleExhaustion = Rules{{
		Name:     "handle_exhaustion",
		Marker:   MarkerHandleExhaustion,
		When:     Present,
		Severity: Fail,
		Reason:   "Creation Kit ran out of reference handles",
	}}

	// VisibilityIncomplete fails previs generation that aborted mid-way.
	VisibilityIncomplete = Rules{{
		Name:     "visibility_incomplete",
		Marker:   MarkerVisibilityFailed,
		When:     Present,
		Severity: Fail,
		Reason:   "previs generation did not complete",
	}}

	// ScriptCompleted requires the xEdit completion line.
	ScriptCompleted = Rules{{
		Name:     "script_completed",
		Marker:   MarkerScriptCompleted,
		When:     Absent,
		Severity: Fail,
		Reason:   "xEdit script did not report completion",
	}}

	// ScriptNoErrorsAdvisory warns when the script completed with errors.
	ScriptNoErrorsAdvisory = Rules{{
		Name:     "script_errors",
		Marker:   MarkerScriptNoErrors,
		When:     Absent,
		Severity: Warn,
		Reason:   "xEdit script reported errors",
	}}

	// ScriptNoErrorsRequired fails when the script completed with errors.
	ScriptNoErrorsRequired = Rules{{
		Name:     "script_errors",
		Marker:   MarkerScriptNoErrors,
		When:     Absent,
		Severity: Fail,
		Reason:   "xEdit script reported errors",
	}}
)
