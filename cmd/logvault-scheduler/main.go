package main

import (
	"context"
	"os/signal"
	"syscall"

	"logvault/internal/adapters/storage"
	"logvault/internal/modkit"
	"logvault/internal/modkit/module"
	"logvault/internal/platform/config"
	"logvault/internal/platform/logger"
	"logvault/internal/platform/store"
	"logvault/internal/scheduler"

	jobsmod "logvault/internal/services/jobs/module"
	pipemod "logvault/internal/services/pipeline/module"
	retmod "logvault/internal/services/retention/module"
)

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		AppName: "logvault-scheduler",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", true),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayBool("ENABLED", false),
			URL:        chCfg.MayString("DBURL", ""),
			ClientName: "logvault",
			ClientTag:  "scheduler",
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{Log: *l, Cfg: root, PG: st.PG, CH: st.CH}

	jobs := jobsmod.New(deps)
	module.Register(jobs.Name(), jobs.Ports())
	jp := jobs.Ports().(jobsmod.Ports)

	backend, err := storage.New(ctx, root)
	if err != nil {
		l.Panic().Err(err).Msg("storage backend failed")
	}

	pipe, err := pipemod.New(ctx, deps, jp, backend)
	if err != nil {
		l.Panic().Err(err).Msg("pipeline module failed")
	}
	ret, err := retmod.New(ctx, deps, jp, backend)
	if err != nil {
		l.Panic().Err(err).Msg("retention module failed")
	}

	sched, err := scheduler.New(
		scheduler.FromConfig(root),
		jp.Factory,
		pipe.Ports().(pipemod.Ports).Runner,
		ret.Ports().(retmod.Ports).Sweeper,
	)
	if err != nil {
		l.Panic().Err(err).Msg("scheduler setup failed")
	}

	if err := sched.Run(ctx); err != nil {
		l.Panic().Err(err).Msg("scheduler stopped")
	}
}
