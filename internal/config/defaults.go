package config

import "time"

const (
	defaultMode                   = "clean"
	defaultArchiver               = "archive2"
	defaultLogFormat              = "console"
	defaultLogLevel               = "info"
	defaultSettleDelaySeconds     = 5
	defaultExtractSettleSeconds   = 5
	defaultScriptSettleSeconds    = 10
	defaultScriptExitDelaySeconds = 5
	defaultLogPollIntervalSeconds = 5
	defaultLogWaitTimeoutSeconds  = 3600
	defaultLogDirName             = "previsbine"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Build: Build{
			Mode:     defaultMode,
			Archiver: defaultArchiver,
		},
		Timing: Timing{
			SettleDelay:     defaultSettleDelaySeconds,
			ExtractSettle:   defaultExtractSettleSeconds,
			ScriptSettle:    defaultScriptSettleSeconds,
			ScriptExitDelay: defaultScriptExitDelaySeconds,
			LogPollInterval: defaultLogPollIntervalSeconds,
			LogWaitTimeout:  defaultLogWaitTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// SettleDuration is the pause after each Creation Kit exit.
func (t Timing) SettleDuration() time.Duration { return seconds(t.SettleDelay) }

// ExtractSettleDuration is the pause after unpacking an archive.
func (t Timing) ExtractSettleDuration() time.Duration { return seconds(t.ExtractSettle) }

// ScriptSettleDuration is the pause between the xEdit log appearing and stopping xEdit.
func (t Timing) ScriptSettleDuration() time.Duration { return seconds(t.ScriptSettle) }

// ScriptExitDuration is the pause after xEdit has been stopped.
func (t Timing) ScriptExitDuration() time.Duration { return seconds(t.ScriptExitDelay) }

// PollInterval is the xEdit log polling interval.
func (t Timing) PollInterval() time.Duration { return seconds(t.LogPollInterval) }

// WaitTimeout bounds the xEdit log wait. Zero means no bound.
func (t Timing) WaitTimeout() time.Duration { return seconds(t.LogWaitTimeout) }
