// Package modkit provides module wiring and core deps
package modkit

import (
	"logvault/internal/platform/config"
	"logvault/internal/platform/logger"
	"logvault/internal/platform/store"
)

// Deps holds core dependencies passed to modules
// this is wiring only and does not introduce new abstractions
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  store.TxRunner
	CH  store.Clickhouse
}
