package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"nav-tracker/internal/markethours"
	"nav-tracker/internal/tracker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:       func(r *http.Request) bool { return true },
	EnableCompression: true,
}

// SetCORS sets CORS headers for REST endpoints.
func SetCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// RegisterRoutes registers all HTTP routes on the provided mux.
func RegisterRoutes(mux *http.ServeMux, hub *Hub, processStart time.Time) {
	tr := hub.Tracker

	// Dashboard page
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(dashboardPage))
	})

	// WebSocket endpoint
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("[gateway] ws upgrade error: %v", err)
			return
		}
		hub.HandleWSRequest(conn)
	})

	// REST: latest sample with derived percent difference
	mux.HandleFunc("/api/latest", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")

		resp := LatestResponse{}
		if s, ok := tr.Latest(); ok {
			resp.Sample = &s
			resp.DifferencePct = s.DifferencePct()
			lu := tr.LastUpdate()
			resp.LastUpdate = &lu
		}
		json.NewEncoder(w).Encode(resp)
	})

	// REST: full rolling buffer (the raw-data view)
	mux.HandleFunc("/api/samples", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")

		samples := tr.Snapshot()
		json.NewEncoder(w).Encode(map[string]interface{}{
			"symbol":  tr.Symbol(),
			"count":   len(samples),
			"cap":     tr.BufferCap(),
			"samples": samples,
		})
	})

	// REST: recent-history table with lag deltas and styling directions
	mux.HandleFunc("/api/table", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(tr.RecentRows(tracker.RecentTableSize))
	})

	// REST: force refresh — rewinds the interval gate so the next
	// scheduler tick appends without waiting out the debounce.
	mux.HandleFunc("/api/refresh", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, `{"error":"POST required"}`, http.StatusMethodNotAllowed)
			return
		}

		tr.ForceRefresh()
		log.Println("[gateway] force refresh requested")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	// REST: health
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		SetCORS(w)
		w.Header().Set("Content-Type", "application/json")

		now := time.Now()
		resp := HealthResponse{
			Status:       "ok",
			Symbol:       tr.Symbol(),
			IndexSymbol:  tr.IndexSymbol(),
			BufferLen:    tr.BufferLen(),
			BufferCap:    tr.BufferCap(),
			MarketOpen:   markethours.IsMarketOpen(now),
			MarketStatus: markethours.StatusString(now),
			WSClients:    hub.ClientCount(),
			UptimeSec:    int64(now.Sub(processStart).Seconds()),
		}
		if lu := tr.LastUpdate(); !lu.IsZero() {
			resp.LastUpdate = &lu
		}
		json.NewEncoder(w).Encode(resp)
	})
}
