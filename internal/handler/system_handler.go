package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/response"
)

const checkTimeout = 2 * time.Second

// SystemHandler reports liveness of the backing services and runtime stats.
type SystemHandler struct {
	checks    map[string]func(ctx context.Context) error
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a SystemHandler. checks maps a dependency name
// ("database", "sessions") to its ping.
func NewSystemHandler(checks map[string]func(ctx context.Context) error, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		checks:    checks,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type dependencyStatus struct {
	Name      string `json:"name"`
	OK        bool   `json:"ok"`
	LatencyMS int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type runtimeStats struct {
	Uptime     string `json:"uptime"`
	GoVersion  string `json:"go_version"`
	NumCPU     int    `json:"num_cpu"`
	Goroutines int    `json:"goroutines"`
	HeapAlloc  uint64 `json:"heap_alloc"`
	HeapSys    uint64 `json:"heap_sys"`
	NumGC      uint32 `json:"num_gc"`
}

// Health godoc
// GET /health
// 200 when every dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	deps, healthy := h.probe(c.Request.Context())
	status, state := http.StatusOK, "ok"
	if !healthy {
		status, state = http.StatusServiceUnavailable, "degraded"
	}
	response.Success(c, status, gin.H{"status": state, "dependencies": deps})
}

// Stats godoc
// GET /api/v1/admin/system
func (h *SystemHandler) Stats(c *gin.Context) {
	deps, _ := h.probe(c.Request.Context())

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	response.Success(c, http.StatusOK, gin.H{
		"runtime": runtimeStats{
			Uptime:     formatDuration(time.Since(h.startTime)),
			GoVersion:  runtime.Version(),
			NumCPU:     runtime.NumCPU(),
			Goroutines: runtime.NumGoroutine(),
			HeapAlloc:  ms.HeapAlloc,
			HeapSys:    ms.HeapSys,
			NumGC:      ms.NumGC,
		},
		"dependencies": deps,
	})
}

func (h *SystemHandler) probe(ctx context.Context) ([]dependencyStatus, bool) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	out := make([]dependencyStatus, 0, len(names))
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		start := time.Now()
		err := h.checks[name](cctx)
		cancel()

		st := dependencyStatus{Name: name, OK: err == nil, LatencyMS: time.Since(start).Milliseconds()}
		if err != nil {
			healthy = false
			st.Error = err.Error()
			h.log.Warn().Err(err).Str("dependency", name).Msg("health check failed")
		}
		out = append(out, st)
	}
	return out, healthy
}

func formatDuration(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}
