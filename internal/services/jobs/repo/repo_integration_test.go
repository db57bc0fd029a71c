//go:build integration_pg
// +build integration_pg

package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"logvault/internal/modkit/repokit"
	perr "logvault/internal/platform/errors"
	"logvault/internal/platform/store"
	"logvault/internal/services/jobs/domain"
)

// startPostgres launches a disposable Postgres and returns DSN + stop func
func startPostgres(t *testing.T) (dsn string, stop func()) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)

	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_DB":       "postgres",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections"),
		).WithDeadline(2 * time.Minute),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		cancel()
		t.Fatalf("failed to start postgres container: %v", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get container host: %v", err)
	}
	mp, err := c.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = c.Terminate(context.Background())
		cancel()
		t.Fatalf("failed to get mapped port: %v", err)
	}

	dsn = fmt.Sprintf("postgres://postgres:postgres@%s:%s/postgres?sslmode=disable", host, mp.Port())
	stop = func() {
		_ = c.Terminate(context.Background())
		cancel()
	}
	return dsn, stop
}

const testSchema = `
CREATE TYPE job_status AS ENUM ('pending', 'success', 'failed');
CREATE TYPE audit_action AS ENUM ('success', 'failed', 'retry_success', 'retry_failed');

CREATE TABLE jobs (
	date       TEXT PRIMARY KEY,
	status     job_status NOT NULL DEFAULT 'pending',
	hours      JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE action_logs (
	id            UUID PRIMARY KEY,
	job_date      TEXT NOT NULL REFERENCES jobs(date) ON DELETE CASCADE,
	hour_range    TEXT NOT NULL,
	action        audit_action NOT NULL,
	error_message TEXT NOT NULL DEFAULT '',
	duration_ms   BIGINT NOT NULL DEFAULT 0,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX action_logs_job_date_idx ON action_logs (job_date, created_at DESC);
`

// openStorage opens a real pg-backed Storage against a fresh schema
func openStorage(t *testing.T, ctx context.Context, dsn string) Storage {
	t.Helper()

	st, err := store.Open(ctx, store.Config{
		AppName: "logvault-repo-test",
		PG:      store.PGConfig{Enabled: true, URL: dsn, MaxConns: 2},
	})
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close(context.Background()) })

	if _, err := st.PG.Exec(ctx, testSchema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	return repokit.MustBind[Storage](NewPG(), st.PG)
}

func TestStorage_Integration_JobLifecycle(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st := openStorage(t, ctx, dsn)

	job := domain.NewJob("2025-06-01", func(hr string) string { return hr + ".json" })
	if err := st.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	// duplicate date must surface as a duplicate key, not a generic db error
	if err := st.Create(ctx, job); !perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
		t.Fatalf("duplicate create err = %v", err)
	}

	got, err := st.Get(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusPending || len(got.Hours) != 24 {
		t.Fatalf("roundtrip job = %+v", got)
	}
	if got.Hours[13].HourRange != "13-14" || got.Hours[13].FileName != "13-14.json" {
		t.Fatalf("hours document mangled: %+v", got.Hours[13])
	}
	if d := got.CreatedAt.Sub(job.CreatedAt); d > time.Millisecond || d < -time.Millisecond {
		t.Fatalf("created_at drifted by %v", d)
	}

	if _, err := st.Get(ctx, "1999-01-01"); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("missing job err = %v", err)
	}

	// full-document update: flip one hour and the rollup status
	got.Hours[13].Status = domain.StatusFailed
	got.Hours[13].Retries = 1
	got.Hours[13].Logs = append(got.Hours[13].Logs, domain.AttemptLog{
		Timestamp: time.Now().UTC(), Error: "fetch timed out",
	})
	got.Status = domain.StatusFailed
	if err := st.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}

	back, err := st.Get(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if back.Status != domain.StatusFailed || back.Hours[13].Retries != 1 || len(back.Hours[13].Logs) != 1 {
		t.Fatalf("update not persisted: %+v", back.Hours[13])
	}

	ghost := domain.NewJob("2031-01-01", func(hr string) string { return hr })
	if err := st.Update(ctx, ghost); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("update of missing job err = %v", err)
	}

	// range listing is inclusive and ordered by date
	second := domain.NewJob("2025-06-03", func(hr string) string { return hr + ".json" })
	if err := st.Create(ctx, second); err != nil {
		t.Fatalf("create second: %v", err)
	}
	listed, err := st.List(ctx, "2025-06-01", "2025-06-03")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].Date != "2025-06-01" || listed[1].Date != "2025-06-03" {
		t.Fatalf("list = %+v", listed)
	}
	narrow, err := st.List(ctx, "2025-06-02", "2025-06-02")
	if err != nil || len(narrow) != 0 {
		t.Fatalf("narrow list = %+v, %v", narrow, err)
	}

	failed, err := st.ListByStatus(ctx, domain.StatusFailed)
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if len(failed) != 1 || failed[0].Date != "2025-06-01" {
		t.Fatalf("failed jobs = %+v", failed)
	}
}

func TestStorage_Integration_ActionsAndPurge(t *testing.T) {
	dsn, stop := startPostgres(t)
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	st := openStorage(t, ctx, dsn)

	job := domain.NewJob("2025-06-01", func(hr string) string { return hr + ".json" })
	if err := st.Create(ctx, job); err != nil {
		t.Fatalf("create: %v", err)
	}

	base := time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)
	recs := []domain.ActionLog{
		{Action: domain.ActionFailed, ErrorMessage: "fetch timed out", CreatedAt: base},
		{Action: domain.ActionRetryFailed, ErrorMessage: "fetch timed out", CreatedAt: base.Add(30 * time.Minute)},
		{Action: domain.ActionRetrySuccess, CreatedAt: base.Add(time.Hour)},
	}
	for _, rec := range recs {
		rec.ID = uuid.NewString()
		rec.JobDate = job.Date
		rec.HourRange = "14-15"
		if err := st.AppendAction(ctx, rec); err != nil {
			t.Fatalf("append action: %v", err)
		}
	}

	got, err := st.ListActions(ctx, job.Date, 10)
	if err != nil {
		t.Fatalf("list actions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("actions = %d", len(got))
	}
	// newest first
	if got[0].Action != domain.ActionRetrySuccess || got[2].Action != domain.ActionFailed {
		t.Fatalf("order = %v %v %v", got[0].Action, got[1].Action, got[2].Action)
	}
	if got[2].ErrorMessage != "fetch timed out" {
		t.Fatalf("error message = %q", got[2].ErrorMessage)
	}

	limited, err := st.ListActions(ctx, job.Date, 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("limited actions = %+v, %v", limited, err)
	}

	// retention cutoffs: nothing ages out at the job's creation instant,
	// everything does one day later
	early, err := st.CountJobsBefore(ctx, job.CreatedAt)
	if err != nil || early != 0 {
		t.Fatalf("count jobs before creation = %d, %v", early, err)
	}
	cutoff := job.CreatedAt.Add(24 * time.Hour)
	jobs, err := st.CountJobsBefore(ctx, cutoff)
	if err != nil || jobs != 1 {
		t.Fatalf("count jobs = %d, %v", jobs, err)
	}
	actions, err := st.CountActionsBefore(ctx, cutoff)
	if err != nil || actions != 3 {
		t.Fatalf("count actions = %d, %v", actions, err)
	}

	deletedActions, err := st.DeleteActionsBefore(ctx, cutoff)
	if err != nil || deletedActions != 3 {
		t.Fatalf("delete actions = %d, %v", deletedActions, err)
	}
	deletedJobs, err := st.DeleteJobsBefore(ctx, cutoff)
	if err != nil || deletedJobs != 1 {
		t.Fatalf("delete jobs = %d, %v", deletedJobs, err)
	}
	if _, err := st.Get(ctx, job.Date); !perr.IsCode(err, perr.ErrorCodeNotFound) {
		t.Fatalf("job survived purge: %v", err)
	}
}
