package systems

// SystemInfo describes a tick phase or force module for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (perf phase or module name)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping: "driver", "core" or "force"
}

// SystemRegistry holds metadata about all tick phases and force modules.
// This centralizes naming so the UI and perf tracker stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known systems to the registry.
// Update this when adding new phases or modules.
func (r *SystemRegistry) registerDefaults() {
	// Driver phases
	r.Register(SystemInfo{ID: "input", Name: "Input", Description: "Applies queued settings", Category: "driver"})
	r.Register(SystemInfo{ID: "telemetry", Name: "Telemetry", Description: "Collects and flushes window stats", Category: "driver"})

	// Updater phases
	r.Register(SystemInfo{ID: PhasePrepare, Name: "Prepare", Description: "Paint mode, DLA seeds, module setup", Category: "core"})
	r.Register(SystemInfo{ID: PhaseSnapshot, Name: "Snapshot", Description: "Builds the frame and spatial grid", Category: "core"})
	r.Register(SystemInfo{ID: PhaseAgents, Name: "Agents", Description: "Blends forces and integrates", Category: "core"})
	r.Register(SystemInfo{ID: PhaseCleanup, Name: "Cleanup", Description: "Refreshes lines and trails", Category: "core"})

	// Force modules
	r.Register(SystemInfo{ID: "separation", Name: "Separation", Description: "Steers away from close neighbors", Category: "force"})
	r.Register(SystemInfo{ID: "cohesion", Name: "Cohesion", Description: "Steers toward the local center", Category: "force"})
	r.Register(SystemInfo{ID: "alignment", Name: "Alignment", Description: "Matches neighbor headings", Category: "force"})
	r.Register(SystemInfo{ID: "wander", Name: "Wander", Description: "Random heading drift", Category: "force"})
	r.Register(SystemInfo{ID: "external", Name: "External", Description: "Directional wind", Category: "force"})
	r.Register(SystemInfo{ID: "avoidance", Name: "Avoidance", Description: "Pushes away from obstacles", Category: "force"})
	r.Register(SystemInfo{ID: "magnetism", Name: "Magnetism", Description: "Turns toward the nearest neighbor", Category: "force"})
	r.Register(SystemInfo{ID: "aggregation", Name: "Aggregation", Description: "Links agents into branches", Category: "force"})
	r.Register(SystemInfo{ID: "dla", Name: "DLA", Description: "Sticks agents to seeds", Category: "force"})
	r.Register(SystemInfo{ID: "color_field", Name: "Color Field", Description: "Steers by background brightness", Category: "force"})
}

// Register adds a system to the registry. A repeated ID replaces the earlier entry.
func (r *SystemRegistry) Register(info SystemInfo) {
	if _, ok := r.byID[info.ID]; ok {
		for i := range r.systems {
			if r.systems[i].ID == info.ID {
				r.systems[i] = info
			}
		}
	} else {
		r.systems = append(r.systems, info)
	}
	r.byID[info.ID] = info
}

// Get returns system info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories in registration order.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
