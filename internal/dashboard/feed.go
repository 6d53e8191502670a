package dashboard

import (
	"encoding/json"
	"time"
)

// Payload shapes for the typed messages.

type ChangesDetectedData struct {
	Added    int `json:"added"`
	Removed  int `json:"removed"`
	Modified int `json:"modified"`
}

type DayRolloverData struct {
	DayStart time.Time `json:"day_start"`
}

type RootsRefreshedData struct {
	Roots []string `json:"roots"`
}

type CycleStartedData struct {
	Roots      int `json:"roots"`
	Candidates int `json:"candidates"`
}

type ChunkResultData struct {
	Root     string `json:"root"`
	Paths    int    `json:"paths"`
	ExitCode int    `json:"exit_code"`
}

type CycleFinishedData struct {
	Committed int `json:"committed"`
	Failed    int `json:"failed"`
}

type UpdateRunData struct {
	Roots int `json:"roots"`
}

// Feed adapts the engine's event sink and the orchestrator's reporter
// onto the broadcast server. Both interfaces are satisfied
// structurally, so the engine and orchestrator packages never import
// this one.
type Feed struct {
	server *Server
}

// NewFeed wraps a server.
func NewFeed(server *Server) *Feed { return &Feed{server: server} }

func (f *Feed) send(t MessageType, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	f.server.Broadcast(Message{Type: t, Timestamp: time.Now(), Data: data})
}

// Engine events.

func (f *Feed) ChangesDetected(added, removed, modified int) {
	f.send(TypeChangesDetected, ChangesDetectedData{Added: added, Removed: removed, Modified: modified})
}

func (f *Feed) DayRollover(dayStart time.Time) {
	f.send(TypeDayRollover, DayRolloverData{DayStart: dayStart})
}

func (f *Feed) RootsRefreshed(roots []string) {
	f.send(TypeRootsRefreshed, RootsRefreshedData{Roots: roots})
}

// Orchestrator events.

func (f *Feed) CycleStarted(roots, candidates int) {
	f.send(TypeCycleStarted, CycleStartedData{Roots: roots, Candidates: candidates})
}

func (f *Feed) ChunkResult(root string, paths, exitCode int) {
	f.send(TypeChunkResult, ChunkResultData{Root: root, Paths: paths, ExitCode: exitCode})
}

func (f *Feed) CycleFinished(committed, failed int) {
	f.send(TypeCycleFinished, CycleFinishedData{Committed: committed, Failed: failed})
}

func (f *Feed) UpdateRun(roots int) {
	f.send(TypeUpdateRun, UpdateRunData{Roots: roots})
}
