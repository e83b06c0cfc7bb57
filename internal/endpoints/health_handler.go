package endpoints

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"gcp-health-agent/internal/agent"
	"gcp-health-agent/internal/domain"
	"gcp-health-agent/internal/util"
)

// Health serves the JSON API. Unlike the web form, these handlers do not
// substitute neutral values on upstream failure; the caller gets a 502
// envelope instead.
type Health struct {
	Response APIResponse
	logger   *util.AgentLogger
	agent    *agent.HealthAgent
	store    domain.ReportStore
	projects []string
}

// Init wires the handler. store may be nil when no history database is
// configured; the history endpoint then answers 503.
func (h *Health) Init(a *agent.HealthAgent, store domain.ReportStore, projects []string, logger *util.AgentLogger) {
	h.agent = a
	h.store = store
	h.projects = projects
	h.logger = logger
}

func (h *Health) knownProject(project string) bool {
	for _, p := range h.projects {
		if p == project {
			return true
		}
	}
	return false
}

func (h *Health) GetHealthHandler(w http.ResponseWriter, r *http.Request) {
	project := mux.Vars(r)["project"]

	if !h.knownProject(project) {
		h.logger.LogEvent(util.LOG_LEVEL_WARN, "Health requested for unknown project - ", project)
		h.Response.WriteErrorResponseWithStatusCode(w, ErrUnknownProject, http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	health := domain.ProjectHealth{Project: project}

	cpu, err := h.agent.ProjectCPUAverage(ctx, project)
	if err != nil {
		h.upstreamError(w, "CPU query failed for "+project, err)
		return
	}
	health.CPUAvg = cpu

	mem, err := h.agent.ProjectMemoryAverage(ctx, project)
	if err != nil {
		h.upstreamError(w, "Memory query failed for "+project, err)
		return
	}
	health.MemAvg = mem

	count, vms, err := h.agent.ListRunningVMs(ctx, project)
	if err != nil {
		h.upstreamError(w, "VM list failed for "+project, err)
		return
	}
	health.VMCount = count
	health.VMs = vms

	if count > 0 {
		rows, err := h.agent.PerInstanceBreakdown(ctx, project)
		if err != nil {
			h.upstreamError(w, "Per-instance query failed for "+project, err)
			return
		}
		health.Instances = rows
	}

	h.Response.WriteResultResponse(w, NewHealthResult(health))
}

func (h *Health) upstreamError(w http.ResponseWriter, msg string, err error) {
	if err == context.Canceled {
		h.logger.LogEvent(util.LOG_LEVEL_WARN, "Context cancelled")
		h.Response.WriteErrorResponseWithStatusCode(w, ErrRequestCancelled, http.StatusRequestTimeout)
		return
	}
	h.logger.LogEvent(util.LOG_LEVEL_ERROR, msg, ". Err - ", err)
	h.Response.WriteErrorResponseWithStatusCode(w, ErrUpstreamUnavailable, http.StatusBadGateway)
}

func (h *Health) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	routeParamValue := mux.Vars(r)

	project := routeParamValue["project"]
	if !h.knownProject(project) {
		h.logger.LogEvent(util.LOG_LEVEL_WARN, "History requested for unknown project - ", project)
		h.Response.WriteErrorResponseWithStatusCode(w, ErrUnknownProject, http.StatusBadRequest)
		return
	}

	if h.store == nil {
		h.Response.WriteErrorResponseWithStatusCode(w, ErrHistoryNotConfigured, http.StatusServiceUnavailable)
		return
	}

	limit, err := strconv.Atoi(routeParamValue["limit"])
	if err != nil {
		h.logger.LogEvent(util.LOG_LEVEL_ERROR, "While getting limit from URL. Err - ", err)
		h.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return
	}

	offset, err := strconv.Atoi(routeParamValue["offset"])
	if err != nil {
		h.logger.LogEvent(util.LOG_LEVEL_ERROR, "While getting offset from URL. Err - ", err)
		h.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return
	}

	startTime, endTime, err := historyRange(r)
	if err != nil {
		h.logger.LogEvent(util.LOG_LEVEL_ERROR, "While parsing start/end query params. Err - ", err)
		h.Response.WriteErrorResponseWithStatusCode(w, ErrInvalidParameters, http.StatusBadRequest)
		return
	}

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	snapshots, err := h.store.GetSnapshots(r.Context(), project, startTime, endTime, limit, offset)
	if err != nil {
		if err == context.Canceled {
			h.logger.LogEvent(util.LOG_LEVEL_WARN, "Context cancelled")
			h.Response.WriteErrorResponseWithStatusCode(w, ErrRequestCancelled, http.StatusRequestTimeout)
			return
		}
		h.logger.LogEvent(util.LOG_LEVEL_ERROR, "Occured while GetSnapshots(). Err - ", err)
		h.Response.WriteErrorResponse(w, err)
		return
	}

	if len(snapshots) == 0 {
		h.logger.LogEvent(util.LOG_LEVEL_WARN, "No snapshots for project - ", project)
		h.Response.WriteErrorResponseWithStatusCode(w, ErrNoHistoryAvailable, http.StatusNotFound)
		return
	}

	views := make([]SnapshotView, 0, len(snapshots))
	for _, snap := range snapshots {
		views = append(views, NewSnapshotView(snap))
	}
	h.Response.WriteResultResponse(w, views)
}

// historyRange reads optional start/end unix-second query parameters,
// defaulting to the trailing 24 hours.
func historyRange(r *http.Request) (int64, int64, error) {
	startTime := time.Now().Add(-24 * time.Hour).Unix()
	endTime := time.Now().Unix()

	if raw := r.URL.Query().Get("start"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, 0, err
		}
		startTime = parsed
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, 0, err
		}
		endTime = parsed
	}
	return startTime, endTime, nil
}
