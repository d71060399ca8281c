package api

import (
	"net/http"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

type healthResponse struct {
	Status            string  `json:"status"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	Goroutines        int     `json:"goroutines"`
	Devices           int     `json:"devices"`
}

func (s *APIServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: time.Since(s.startedAt).Seconds(),
		Goroutines:    runtime.NumGoroutine(),
		Devices:       len(s.store.List()),
	}

	if percentages, err := cpu.Percent(0, false); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to get CPU usage")
	} else if len(percentages) > 0 {
		resp.CPUPercent = percentages[0]
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to get memory usage")
	} else {
		resp.MemoryUsedPercent = vm.UsedPercent
	}

	s.writeJSON(w, http.StatusOK, resp)
}
