package api

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"github.com/willheto/game-server/internal/minimap"
)

// Handler methods for routerHandlers
// These are used by both the standalone router (for testing) and the full Server.

func (h *routerHandlers) handleGetState(w http.ResponseWriter, r *http.Request) {
	// Lock-free: the snapshot is immutable once published
	snap := h.world.Snapshot()
	if snap == nil {
		writeError(w, "world not ready", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap)
}

func (h *routerHandlers) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"world":       h.world.Stats(),
		"rateLimiter": h.rateLimiter.GetStats(),
	}
	if h.sessionStats != nil {
		stats["sessions"] = h.sessionStats()
	}
	if el := h.world.EventLog(); el != nil {
		stats["eventLog"] = el.GetStats()
	}
	writeJSON(w, stats)
}

func (h *routerHandlers) handleGetMap(w http.ResponseWriter, r *http.Request) {
	opts := h.minimapOpts
	if r.URL.Query().Get("names") == "1" {
		opts.ShowNames = true
	}

	// Render into a buffer so a failure can still return a proper status
	var buf bytes.Buffer
	if err := minimap.EncodePNG(&buf, h.world.TileMap(), h.world.Snapshot(), opts); err != nil {
		log.Printf("⚠️ Minimap render failed: %v", err)
		writeError(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (h *routerHandlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
