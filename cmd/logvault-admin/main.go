package main

import (
	"context"
	"flag"

	"logvault/internal/adapters/storage"
	"logvault/internal/modkit"
	"logvault/internal/platform/config"
	"logvault/internal/platform/logger"
	"logvault/internal/platform/store"

	jobsmod "logvault/internal/services/jobs/module"
	pipemod "logvault/internal/services/pipeline/module"
	retmod "logvault/internal/services/retention/module"
)

// one-off operations against the same wiring the scheduler runs
func main() {
	var (
		fEnsure    = flag.String("ensure", "", "materialize the job document for date YYYY-MM-DD")
		fRun       = flag.String("run", "", "harvest one hour of date YYYY-MM-DD (requires -hour)")
		fHour      = flag.Int("hour", -1, "hour slot 0-23 for -run")
		fSweep     = flag.Bool("sweep", false, "retry failed hour units once")
		fRetention = flag.Bool("retention", false, "run a retention pass")
		fDry       = flag.Bool("dry", false, "preview the retention pass without deleting")
	)
	flag.Parse()

	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")

	l := logger.Get()
	ctx := context.Background()

	st, err := store.Open(ctx, store.Config{
		AppName: "logvault-admin",
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			Enabled:    chCfg.MayBool("ENABLED", false),
			URL:        chCfg.MayString("DBURL", ""),
			ClientName: "logvault",
			ClientTag:  "admin",
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
	runner := pipe.Ports().(pipemod.Ports).Runner
	sweeper := ret.Ports().(retmod.Ports).Sweeper

	switch {
	case *fEnsure != "":
		_, created, err := jp.Factory.EnsureJob(ctx, *fEnsure)
		if err != nil {
			l.Panic().Err(err).Msg("ensure failed")
		}
		l.Info().Str("date", *fEnsure).Bool("created", created).Msg("job ensured")

	case *fRun != "":
		if *fHour < 0 {
			l.Panic().Msg("-run requires -hour")
		}
		if err := runner.RunAt(ctx, *fRun, *fHour); err != nil {
			l.Panic().Err(err).Msg("run failed")
		}
		l.Info().Str("date", *fRun).Int("hour", *fHour).Msg("hour harvested")

	case *fSweep:
		if err := runner.Sweep(ctx); err != nil {
			l.Panic().Err(err).Msg("sweep failed")
		}
		l.Info().Msg("sweep done")

	case *fRetention:
		rep, err := sweeper.Run(ctx, *fDry)
		if err != nil {
			l.Panic().Err(err).Msg("retention failed")
		}
		l.Info().
			Bool("dry_run", rep.DryRun).
			Int64("jobs", rep.Jobs).
			Int64("actions", rep.Actions).
			Int("artifacts", rep.Artifacts).
			Int64("bytes", rep.Bytes).
			Msg("retention report")

	default:
		flag.Usage()
	}
}
