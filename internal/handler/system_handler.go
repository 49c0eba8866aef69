package handler

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/config"
	"github.com/stemsi/examprep-backend/internal/response"
)

const pingTimeout = 2 * time.Second

// SystemHandler reports process health and runtime figures. pool and rdb are
// nil when the server runs on the memory store without Redis.
type SystemHandler struct {
	pool        *pgxpool.Pool
	rdb         *redis.Client
	storeDriver string
	startTime   time.Time
	log         zerolog.Logger
}

func NewSystemHandler(pool *pgxpool.Pool, rdb *redis.Client, storeDriver string, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		pool:        pool,
		rdb:         rdb,
		storeDriver: storeDriver,
		startTime:   time.Now(),
		log:         log.With().Str("component", "system_handler").Logger(),
	}
}

type systemStatus struct {
	Timestamp   int64  `json:"timestamp"`
	Uptime      string `json:"uptime"`
	StoreDriver string `json:"store_driver"`

	// Go Application
	Goroutines  int    `json:"goroutines"`
	HeapAlloc   uint64 `json:"heap_alloc"`
	HeapSys     uint64 `json:"heap_sys"`
	NumGC       uint32 `json:"num_gc"`
	AppRSSBytes uint64 `json:"app_rss_bytes"`
	GoVersion   string `json:"go_version"`
	NumCPU      int    `json:"num_cpu"`

	// Worker Queues, -1 when Redis is not configured
	QueueActivityLogs int64 `json:"queue_activity_logs"`
}

// Health godoc
// GET /health
// Pings the configured backends.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), pingTimeout)
	defer cancel()

	checks := gin.H{"store": h.storeDriver}
	healthy := true
	if h.pool != nil {
		checks["postgres"] = "ok"
		if err := h.pool.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("PostgreSQL ping failed")
			checks["postgres"] = "down"
			healthy = false
		}
	}
	if h.rdb != nil {
		checks["redis"] = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			h.log.Warn().Err(err).Msg("Redis ping failed")
			checks["redis"] = "down"
			healthy = false
		}
	}

	if !healthy {
		checks["status"] = "degraded"
		response.Success(c, http.StatusServiceUnavailable, checks)
		return
	}
	checks["status"] = "ok"
	response.Success(c, http.StatusOK, checks)
}

// Status godoc
// GET /api/v1/admin/system/status
func (h *SystemHandler) Status(c *gin.Context) {
	response.Success(c, http.StatusOK, h.collect(c.Request.Context()))
}

func (h *SystemHandler) collect(ctx context.Context) systemStatus {
	s := systemStatus{
		Timestamp:         time.Now().Unix(),
		Uptime:            formatDuration(time.Since(h.startTime)),
		StoreDriver:       h.storeDriver,
		GoVersion:         runtime.Version(),
		NumCPU:            runtime.NumCPU(),
		QueueActivityLogs: -1,
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.Goroutines = runtime.NumGoroutine()
	s.HeapAlloc = ms.HeapAlloc
	s.HeapSys = ms.Sys
	s.NumGC = ms.NumGC

	s.AppRSSBytes, _ = readProcessRSS()

	if h.rdb != nil {
		ctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		if n, err := h.rdb.LLen(ctx, config.WorkerKey.PersistActivityLogQueue).Result(); err == nil {
			s.QueueActivityLogs = n
		}
	}

	return s
}

// readProcessRSS reads VmRSS from /proc/self/status.
func readProcessRSS() (uint64, error) {
	f, err := os.Open("/proc/self/status")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "VmRSS:") {
			// Format: "VmRSS:     10240 kB"
			fields := strings.Fields(line)
			if len(fields) < 2 {
				break
			}
			kb, _ := strconv.ParseUint(fields[1], 10, 64)
			return kb * 1024, nil
		}
	}
	return 0, fmt.Errorf("VmRSS not found")
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
