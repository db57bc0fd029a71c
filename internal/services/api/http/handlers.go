// Package http provides the read and trigger endpoints of the api
package http

import (
	stdctx "context"
	"net/http"
	"strconv"
	"time"

	"logvault/internal/core/hourwindow"
	"logvault/internal/core/version"
	"logvault/internal/modkit/httpkit"
	perr "logvault/internal/platform/errors"
	jobsdom "logvault/internal/services/jobs/domain"
	pipedom "logvault/internal/services/pipeline/domain"
	retdom "logvault/internal/services/retention/domain"
)

// Pinger is satisfied by adapters that expose Ping
type Pinger interface {
	Ping(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Jobs        jobsdom.QueryPort
	Factory     jobsdom.FactoryPort
	Runner      pipedom.RunnerPort
	Sweeper     retdom.SweeperPort
	PG          any
	CH          any
}

type handlers struct {
	deps Deps
}

// Register mounts the api routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d}

	r.Get("/healthz", httpkit.Call(h.health))
	r.Get("/readyz", httpkit.Call(h.ready))
	r.Get("/version", httpkit.Call(h.version))

	r.Route("/jobs", func(jr httpkit.Router) {
		jr.Get("/", httpkit.Call(h.listJobs))
		jr.Post("/", httpkit.JSON(h.createJob))
		jr.Get("/{date}", httpkit.Call(h.getJob))
		jr.Get("/{date}/logs", httpkit.Call(h.jobLogs))
		jr.Post("/{date}/hours/{hour}/run", httpkit.Handle(h.runHour))
	})

	r.Post("/retention/preview", httpkit.Call(h.retentionPreview))
}

// HealthResponse is the health payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service"`
	Started string `json:"started"`
	Now     string `json:"now"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok degraded fail
	Checks []ReadyCheck `json:"checks"`
}

// JobSummary is the list row for a job
type JobSummary struct {
	Date      string    `json:"date"`
	Status    string    `json:"status"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Pending   int       `json:"pending"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateJobRequest materializes a day's job document ahead of schedule
type CreateJobRequest struct {
	Date string `json:"date" validate:"required,datekey"`
}

// RunAccepted acknowledges an on-demand hour run
type RunAccepted struct {
	Date      string `json:"date"`
	HourRange string `json:"hour_range"`
}

func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{
		OK:      true,
		Service: h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Now:     time.Now().UTC().Format(time.RFC3339),
	}, nil
}

func (h *handlers) ready(_ *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(stdctx.Background(), 2*time.Second)
	defer cancel()

	check := func(name string, c any) ReadyCheck {
		if c == nil {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		p, ok := c.(Pinger)
		if !ok {
			return ReadyCheck{Name: name, Status: "skipped"}
		}
		if err := p.Ping(ctx); err != nil {
			return ReadyCheck{Name: name, Status: "fail", Error: err.Error()}
		}
		return ReadyCheck{Name: name, Status: "ok"}
	}

	pg := check("pg", h.deps.PG)
	ch := check("ch", h.deps.CH)

	overall := "ok"
	if pg.Status == "fail" || ch.Status == "fail" {
		overall = "fail"
	}
	return ReadyResponse{Status: overall, Checks: []ReadyCheck{pg, ch}}, nil
}

func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}

func (h *handlers) listJobs(r *http.Request) (any, error) {
	q := r.URL.Query()
	from := q.Get("from")
	to := q.Get("to")
	if from == "" || to == "" {
		// default to the trailing week
		nowD := time.Now().UTC()
		if to == "" {
			to = nowD.Format(hourwindow.DateLayout)
		}
		if from == "" {
			from = nowD.AddDate(0, 0, -7).Format(hourwindow.DateLayout)
		}
	}

	jobs, err := h.deps.Jobs.List(r.Context(), from, to)
	if err != nil {
		return nil, err
	}

	out := make([]JobSummary, 0, len(jobs))
	for _, j := range jobs {
		s := JobSummary{Date: j.Date, Status: string(j.Status), CreatedAt: j.CreatedAt}
		for _, u := range j.Hours {
			switch u.Status {
			case jobsdom.StatusSuccess:
				s.Succeeded++
			case jobsdom.StatusFailed:
				s.Failed++
			default:
				s.Pending++
			}
		}
		out = append(out, s)
	}
	return out, nil
}

// createJob is idempotent: creating a date that already has a document
// returns the existing one with 200 instead of 201
func (h *handlers) createJob(r *http.Request, in CreateJobRequest) httpkit.Response {
	job, created, err := h.deps.Factory.EnsureJob(r.Context(), in.Date)
	if err != nil {
		return httpkit.Error(err)
	}
	if created {
		return httpkit.Created(job)
	}
	return httpkit.OK(job)
}

func (h *handlers) getJob(r *http.Request) (any, error) {
	return h.deps.Jobs.Get(r.Context(), httpkit.Param(r, "date"))
}

func (h *handlers) jobLogs(r *http.Request) (any, error) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, perr.InvalidArgf("bad limit %q", raw)
		}
		limit = n
	}
	return h.deps.Jobs.Actions(r.Context(), httpkit.Param(r, "date"), limit)
}

// runHour triggers one hour synchronously; the hour parameter accepts a
// slot ("14") or a range label ("14-15")
func (h *handlers) runHour(r *http.Request) httpkit.Response {
	date := httpkit.Param(r, "date")
	slot, err := parseHour(httpkit.Param(r, "hour"))
	if err != nil {
		return httpkit.Error(err)
	}

	if err := h.deps.Runner.RunAt(r.Context(), date, slot); err != nil {
		return httpkit.Error(err)
	}
	return httpkit.Accepted(RunAccepted{Date: date, HourRange: hourwindow.MustRange(slot)})
}

func (h *handlers) retentionPreview(r *http.Request) (any, error) {
	return h.deps.Sweeper.Run(r.Context(), true)
}

func parseHour(raw string) (int, error) {
	if slot, err := hourwindow.Slot(raw); err == nil {
		return slot, nil
	}
	slot, err := strconv.Atoi(raw)
	if err != nil {
		return 0, perr.InvalidArgf("bad hour %q", raw)
	}
	if _, err := hourwindow.Range(slot); err != nil {
		return 0, err
	}
	return slot, nil
}
