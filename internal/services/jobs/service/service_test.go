package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"logvault/internal/modkit/repokit"
	perr "logvault/internal/platform/errors"
	"logvault/internal/platform/store"
	"logvault/internal/services/jobs/domain"
	"logvault/internal/services/jobs/repo"
)

// stubDB satisfies repokit.TxRunner; the fake storage below never touches it
type stubDB struct{}

func (stubDB) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (stubDB) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (stubDB) QueryRow(context.Context, string, ...any) store.Row             { return nil }
func (s stubDB) Tx(_ context.Context, fn func(q store.RowQuerier) error) error {
	return fn(s)
}

type fakeStorage struct {
	jobs    map[string]domain.Job
	actions []domain.ActionLog

	createErr    error
	missFirstGet bool
	lastLimit    int

	deletedJobs    int64
	deletedActions int64
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{jobs: map[string]domain.Job{}}
}

func (f *fakeStorage) Get(_ context.Context, date string) (domain.Job, error) {
	if f.missFirstGet {
		f.missFirstGet = false
		return domain.Job{}, perr.NotFoundf("job %s", date)
	}
	j, ok := f.jobs[date]
	if !ok {
		return domain.Job{}, perr.NotFoundf("job %s", date)
	}
	return j, nil
}

func (f *fakeStorage) Create(_ context.Context, job domain.Job) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.jobs[job.Date]; ok {
		return perr.DuplicateKeyf("job %s", job.Date)
	}
	f.jobs[job.Date] = job
	return nil
}

func (f *fakeStorage) Update(_ context.Context, job domain.Job) error {
	if _, ok := f.jobs[job.Date]; !ok {
		return perr.NotFoundf("job %s", job.Date)
	}
	f.jobs[job.Date] = job
	return nil
}

func (f *fakeStorage) List(_ context.Context, from, to string) ([]domain.Job, error) {
	var out []domain.Job
	for date, j := range f.jobs {
		if date >= from && date <= to {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeStorage) ListByStatus(_ context.Context, status domain.Status) ([]domain.Job, error) {
	var out []domain.Job
	for _, j := range f.jobs {
		if j.Status == status {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeStorage) AppendAction(_ context.Context, rec domain.ActionLog) error {
	f.actions = append(f.actions, rec)
	return nil
}

func (f *fakeStorage) ListActions(_ context.Context, date string, limit int) ([]domain.ActionLog, error) {
	f.lastLimit = limit
	var out []domain.ActionLog
	for _, a := range f.actions {
		if a.JobDate == date {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStorage) CountJobsBefore(context.Context, time.Time) (int64, error) {
	return int64(len(f.jobs)), nil
}

func (f *fakeStorage) CountActionsBefore(context.Context, time.Time) (int64, error) {
	return int64(len(f.actions)), nil
}

func (f *fakeStorage) DeleteJobsBefore(context.Context, time.Time) (int64, error) {
	f.deletedJobs = int64(len(f.jobs))
	f.jobs = map[string]domain.Job{}
	return f.deletedJobs, nil
}

func (f *fakeStorage) DeleteActionsBefore(context.Context, time.Time) (int64, error) {
	f.deletedActions = int64(len(f.actions))
	f.actions = nil
	return f.deletedActions, nil
}

type fakeMirror struct {
	rows [][]any
	err  error
}

func (f *fakeMirror) Exec(context.Context, string, ...any) error { return nil }
func (f *fakeMirror) Ping(context.Context) error                 { return nil }
func (f *fakeMirror) Close() error                               { return nil }
func (f *fakeMirror) Insert(_ context.Context, _ string, _ []string, rows [][]any) error {
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, rows...)
	return nil
}

func newService(fs *fakeStorage, mirror store.Clickhouse, cfg Config) *Service {
	binder := repokit.BindFunc[repo.Storage](func(repokit.Queryer) repo.Storage { return fs })
	return New(stubDB{}, binder, mirror, cfg)
}

func TestEnsureJobCreatesOnce(t *testing.T) {
	fs := newFakeStorage()
	svc := newService(fs, nil, Config{})
	ctx := context.Background()

	job, created, err := svc.EnsureJob(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("EnsureJob: %v", err)
	}
	if !created {
		t.Fatal("first call did not report created")
	}
	if len(job.Hours) != 24 {
		t.Fatalf("hours = %d", len(job.Hours))
	}
	if job.Hours[0].FileName != "00-01.json" {
		t.Fatalf("file name = %q, want default json extension", job.Hours[0].FileName)
	}

	again, created, err := svc.EnsureJob(ctx, "2025-06-01")
	if err != nil {
		t.Fatalf("EnsureJob second call: %v", err)
	}
	if created {
		t.Fatal("second call reported created")
	}
	if again.Date != job.Date || len(again.Hours) != 24 {
		t.Fatalf("second call returned a different document: %+v", again)
	}
}

func TestEnsureJobRejectsMalformedDate(t *testing.T) {
	svc := newService(newFakeStorage(), nil, Config{})
	_, _, err := svc.EnsureJob(context.Background(), "06/01/2025")
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument", err)
	}
}

func TestEnsureJobLostCreateRace(t *testing.T) {
	// the winner's document is already in the table, but the loser's first
	// Get misses and its Create collides
	fs := newFakeStorage()
	winner := domain.NewJob("2025-06-01", func(hr string) string { return hr + ".csv" })
	fs.jobs["2025-06-01"] = winner
	fs.missFirstGet = true
	fs.createErr = perr.DuplicateKeyf("job 2025-06-01")
	svc := newService(fs, nil, Config{})

	job, created, err := svc.EnsureJob(context.Background(), "2025-06-01")
	if err != nil {
		t.Fatalf("EnsureJob: %v", err)
	}
	if created {
		t.Fatal("loser of the create race reported created")
	}
	if job.Hours[0].FileName != "00-01.csv" {
		t.Fatal("did not return the winner's document")
	}
}

func TestListValidatesRange(t *testing.T) {
	svc := newService(newFakeStorage(), nil, Config{})
	ctx := context.Background()

	_, err := svc.List(ctx, "nope", "2025-06-02")
	e, ok := perr.As(err)
	if !ok || e.Field() != "from" {
		t.Fatalf("err = %v, want invalid 'from' field", err)
	}

	_, err = svc.List(ctx, "2025-06-01", "nope")
	e, ok = perr.As(err)
	if !ok || e.Field() != "to" {
		t.Fatalf("err = %v, want invalid 'to' field", err)
	}

	_, err = svc.List(ctx, "2025-06-02", "2025-06-01")
	if !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v, want invalid argument for inverted range", err)
	}
}

func TestActionsClampsLimit(t *testing.T) {
	fs := newFakeStorage()
	svc := newService(fs, nil, Config{ActionListLimit: 5})
	ctx := context.Background()

	for _, limit := range []int{0, -1, 99} {
		if _, err := svc.Actions(ctx, "2025-06-01", limit); err != nil {
			t.Fatalf("Actions(%d): %v", limit, err)
		}
		if fs.lastLimit != 5 {
			t.Fatalf("Actions(%d) passed limit %d, want clamp to 5", limit, fs.lastLimit)
		}
	}

	if _, err := svc.Actions(ctx, "2025-06-01", 3); err != nil {
		t.Fatalf("Actions(3): %v", err)
	}
	if fs.lastLimit != 3 {
		t.Fatalf("in-range limit rewritten to %d", fs.lastLimit)
	}
}

func TestRecordActionFillsDefaultsAndMirrors(t *testing.T) {
	fs := newFakeStorage()
	ch := &fakeMirror{}
	svc := newService(fs, ch, Config{})

	err := svc.RecordAction(context.Background(), domain.ActionLog{
		JobDate:   "2025-06-01",
		HourRange: "14-15",
		Action:    domain.ActionSuccess,
	})
	if err != nil {
		t.Fatalf("RecordAction: %v", err)
	}

	if len(fs.actions) != 1 {
		t.Fatalf("actions = %d", len(fs.actions))
	}
	rec := fs.actions[0]
	if rec.ID == "" {
		t.Fatal("id not generated")
	}
	if rec.CreatedAt.IsZero() || rec.CreatedAt.Location() != time.UTC {
		t.Fatalf("created_at = %v, want UTC now", rec.CreatedAt)
	}

	if len(ch.rows) != 1 {
		t.Fatalf("mirror rows = %d", len(ch.rows))
	}
	if ch.rows[0][1] != "2025-06-01" || ch.rows[0][3] != "success" {
		t.Fatalf("mirror row = %v", ch.rows[0])
	}
}

func TestRecordActionSurvivesMirrorFailure(t *testing.T) {
	fs := newFakeStorage()
	ch := &fakeMirror{err: errors.New("clickhouse down")}
	svc := newService(fs, ch, Config{})

	err := svc.RecordAction(context.Background(), domain.ActionLog{
		JobDate: "2025-06-01", HourRange: "14-15", Action: domain.ActionFailed,
	})
	if err != nil {
		t.Fatalf("mirror failure leaked to caller: %v", err)
	}
	if len(fs.actions) != 1 {
		t.Fatal("durable row not written")
	}
}

func TestListRetryableFiltersExhaustedJobs(t *testing.T) {
	fs := newFakeStorage()
	svc := newService(fs, nil, Config{})

	eligible := domain.NewJob("2025-06-01", func(hr string) string { return hr })
	eligible.Status = domain.StatusFailed
	eligible.Hours[3].Status = domain.StatusFailed
	eligible.Hours[3].Retries = 2
	fs.jobs[eligible.Date] = eligible

	spent := domain.NewJob("2025-06-02", func(hr string) string { return hr })
	spent.Status = domain.StatusFailed
	spent.Hours[8].Status = domain.StatusFailed
	spent.Hours[8].Retries = 3
	fs.jobs[spent.Date] = spent

	healthy := domain.NewJob("2025-06-03", func(hr string) string { return hr })
	fs.jobs[healthy.Date] = healthy

	got, err := svc.ListRetryable(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListRetryable: %v", err)
	}
	if len(got) != 1 || got[0].Date != "2025-06-01" {
		t.Fatalf("retryable = %+v, want only 2025-06-01", got)
	}
}

func TestPurgeBeforeDeletesBothTables(t *testing.T) {
	fs := newFakeStorage()
	svc := newService(fs, nil, Config{})
	ctx := context.Background()

	j := domain.NewJob("2025-01-01", func(hr string) string { return hr })
	fs.jobs[j.Date] = j
	fs.actions = append(fs.actions,
		domain.ActionLog{ID: "a", JobDate: j.Date},
		domain.ActionLog{ID: "b", JobDate: j.Date},
	)

	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	jobs, actions, err := svc.CountBefore(ctx, cutoff, cutoff)
	if err != nil || jobs != 1 || actions != 2 {
		t.Fatalf("CountBefore = (%d, %d, %v)", jobs, actions, err)
	}

	jobs, actions, err = svc.PurgeBefore(ctx, cutoff, cutoff)
	if err != nil {
		t.Fatalf("PurgeBefore: %v", err)
	}
	if jobs != 1 || actions != 2 {
		t.Fatalf("purged (%d, %d), want (1, 2)", jobs, actions)
	}
	if len(fs.jobs) != 0 || len(fs.actions) != 0 {
		t.Fatal("rows survived the purge")
	}
}

func TestPurgeBeforeSkipsZeroCutoffs(t *testing.T) {
	fs := newFakeStorage()
	svc := newService(fs, nil, Config{})
	ctx := context.Background()

	j := domain.NewJob("2025-01-01", func(hr string) string { return hr })
	fs.jobs[j.Date] = j
	fs.actions = append(fs.actions, domain.ActionLog{ID: "a", JobDate: j.Date})

	cutoff := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	jobs, actions, err := svc.PurgeBefore(ctx, time.Time{}, cutoff)
	if err != nil {
		t.Fatalf("PurgeBefore: %v", err)
	}
	if jobs != 0 || actions != 1 {
		t.Fatalf("purged (%d, %d), want (0, 1)", jobs, actions)
	}
	if len(fs.jobs) != 1 {
		t.Fatal("job deleted despite a zero cutoff")
	}

	jobs, actions, err = svc.CountBefore(ctx, cutoff, time.Time{})
	if err != nil || jobs != 1 || actions != 0 {
		t.Fatalf("CountBefore = (%d, %d, %v), want only jobs counted", jobs, actions, err)
	}
}
