// Package artifact serializes record collections into hour-named files,
// optionally compressed, laid out under a date-partitioned folder policy.
package artifact

import (
	"path"
)

// Folder structure variants
const (
	StructureDaily   = "daily"
	StructureMonthly = "monthly"
	StructureYearly  = "yearly"
)

// FolderOptions is the folder-naming policy: a pure mapping from
// (date, hourRange, status) to a relative directory
type FolderOptions struct {
	Structure string `validate:"oneof=daily monthly yearly"`
	SubHour   bool
	SubStatus bool
}

// Dir returns the relative directory for an artifact. The date is the
// canonical YYYY-MM-DD job key; hourRange and status only contribute when
// the matching sub-folder toggle is on
func (o FolderOptions) Dir(date, hourRange, status string) string {
	var p string
	switch o.Structure {
	case StructureMonthly:
		p = path.Join(yearMonth(date), date)
	case StructureYearly:
		p = path.Join(year(date), month(date), date)
	default: // daily
		p = date
	}
	if o.SubHour && hourRange != "" {
		p = path.Join(p, hourRange)
	}
	if o.SubStatus && status != "" {
		p = path.Join(p, status)
	}
	return p
}

func year(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return date
}

func month(date string) string {
	if len(date) >= 7 {
		return date[5:7]
	}
	return date
}

func yearMonth(date string) string {
	if len(date) >= 7 {
		return date[:7]
	}
	return date
}
