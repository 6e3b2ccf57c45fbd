package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pthm-cable/swarmpaint/config"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds the exported state of a canvas.
type Snapshot struct {
	Version int     `json:"version"`
	RNGSeed int64   `json:"rng_seed"`
	Tick    uint64  `json:"tick"`
	SimTime float64 `json:"sim_time"`

	Settings config.Settings `json:"settings"`

	Agents    []AgentState    `json:"agents"`
	Lines     []LineState     `json:"lines"`
	Obstacles []ObstacleState `json:"obstacles"`
}

// AgentState holds one agent's exported state.
type AgentState struct {
	ID     uint32         `json:"id"`
	State  string         `json:"state"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	VelX   float64        `json:"vel_x"`
	VelY   float64        `json:"vel_y"`
	BornAt float64        `json:"born_at"`
	Stroke string         `json:"stroke"`
	Fill   string         `json:"fill"`
	Links  []uint32       `json:"links,omitempty"`
	Branch int            `json:"branch,omitempty"`
	Trail  [][][2]float64 `json:"trail,omitempty"`
}

// LineState is one drawn connection between two agents.
type LineState struct {
	A      uint32     `json:"a"`
	B      uint32     `json:"b"`
	From   [2]float64 `json:"from"`
	To     [2]float64 `json:"to"`
	Branch int        `json:"branch,omitempty"`
	Kind   string     `json:"kind"` // aggregation or dla
}

// ObstacleState is one obstacle outline.
type ObstacleState struct {
	ID         int          `json:"id"`
	Kind       string       `json:"kind"`
	IsObstacle bool         `json:"is_obstacle"`
	Points     [][2]float64 `json:"points"`
}

// SaveSnapshot writes a snapshot to path, creating its directory.
func SaveSnapshot(snapshot *Snapshot, path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
