package module

import (
	"time"

	"logvault/internal/platform/config"
)

// Options holds configuration settings for the pipeline module
type Options struct {
	SourceBaseURL string
	SourceTimeout time.Duration
	MaxRetries    int
	Timezone      string

	Mask MaskOptions
	Art  ArtifactOptions
}

// MaskOptions configures redaction
type MaskOptions struct {
	Enabled        bool
	Placeholder    string
	MaskChar       string
	PreserveLength bool
	ShowLast       int
	Fields         []string
	Exempt         []string
	Patterns       []string
}

// ArtifactOptions configures staging, format, folders, and compression
type ArtifactOptions struct {
	Root            string
	Format          string
	FolderStructure string
	SubHour         bool
	SubStatus       bool
	Compress        bool
	CompressAlgo    string
	CompressLevel   int
	CompressMin     int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	pf := cfg.Prefix("CORE_PIPELINE_")
	mf := cfg.Prefix("CORE_MASK_")
	af := cfg.Prefix("CORE_ARTIFACT_")

	return Options{
		SourceBaseURL: pf.MustString("SOURCE_BASE_URL"),
		SourceTimeout: pf.MayDuration("SOURCE_TIMEOUT", 30*time.Second),
		MaxRetries:    pf.MayInt("MAX_RETRIES", 3),
		Timezone:      pf.MayString("TIMEZONE", "UTC"),

		Mask: MaskOptions{
			Enabled:        mf.MayBool("ENABLED", true),
			Placeholder:    mf.MayString("PLACEHOLDER", ""),
			MaskChar:       mf.MayString("MASK_CHAR", ""),
			PreserveLength: mf.MayBool("PRESERVE_LENGTH", false),
			ShowLast:       mf.MayInt("SHOW_LAST", 0),
			Fields:         mf.MayStrings("FIELDS", nil),
			Exempt:         mf.MayStrings("EXEMPT", nil),
			Patterns:       mf.MayStrings("PATTERNS", nil),
		},

		Art: ArtifactOptions{
			Root:            af.MayString("ROOT", "./data/staging"),
			Format:          af.MayString("FORMAT", "json"),
			FolderStructure: af.MayString("FOLDER_STRUCTURE", "daily"),
			SubHour:         af.MayBool("FOLDER_SUB_HOUR", false),
			SubStatus:       af.MayBool("FOLDER_SUB_STATUS", false),
			Compress:        af.MayBool("COMPRESS", false),
			CompressAlgo:    af.MayString("COMPRESS_ALGO", "gzip"),
			CompressLevel:   af.MayInt("COMPRESS_LEVEL", 0),
			CompressMin:     af.MayInt("COMPRESS_MIN_BYTES", 1024),
		},
	}
}
