package gateway

import (
	"time"

	"nav-tracker/internal/model"
	"nav-tracker/internal/tracker"
)

// SampleEnvelope is pushed over WebSocket for each newly appended sample.
// The recent table is included so clients re-render it without a second
// round trip.
type SampleEnvelope struct {
	Type   string             `json:"type"` // "sample"
	Sample model.Sample       `json:"sample"`
	Table  []tracker.TableRow `json:"table"`
}

// SnapshotEnvelope is sent once on WebSocket connect: the full buffer plus
// the static facts the page needs to render.
type SnapshotEnvelope struct {
	Type        string             `json:"type"` // "snapshot"
	Symbol      string             `json:"symbol"`
	IndexSymbol string             `json:"indexSymbol"`
	Samples     []model.Sample     `json:"samples"`
	Table       []tracker.TableRow `json:"table"`
	BufferCap   int                `json:"bufferCap"`
	TS          time.Time          `json:"ts"`
}

// LatestResponse is the /api/latest payload. Sample is null while the
// buffer is empty.
type LatestResponse struct {
	Sample        *model.Sample `json:"sample"`
	DifferencePct float64       `json:"differencePct"`
	LastUpdate    *time.Time    `json:"lastUpdate,omitempty"`
}

// HealthResponse is the /api/health payload.
type HealthResponse struct {
	Status       string     `json:"status"`
	Symbol       string     `json:"symbol"`
	IndexSymbol  string     `json:"indexSymbol"`
	BufferLen    int        `json:"bufferLen"`
	BufferCap    int        `json:"bufferCap"`
	MarketOpen   bool       `json:"marketOpen"`
	MarketStatus string     `json:"marketStatus"`
	WSClients    int        `json:"wsClients"`
	LastUpdate   *time.Time `json:"lastUpdate,omitempty"`
	UptimeSec    int64      `json:"uptimeSec"`
}
