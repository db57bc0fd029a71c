package module

import "logvault/internal/platform/config"

// Options holds configuration settings for the jobs module
type Options struct {
	FileExt         string
	ActionListLimit int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	jf := cfg.Prefix("CORE_JOBS_")
	return Options{
		FileExt:         jf.MayString("FILE_EXT", "json"),
		ActionListLimit: jf.MayInt("ACTION_LIST_LIMIT", 500),
	}
}
