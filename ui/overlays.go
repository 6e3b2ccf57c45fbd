package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies a canvas layer.
type OverlayID string

// Canvas layers.
const (
	OverlayBackground OverlayID = "background"
	OverlayTrails     OverlayID = "trails"
	OverlayAgents     OverlayID = "agents"
	OverlayLines      OverlayID = "lines"
	OverlayObstacles  OverlayID = "obstacles"
	OverlayHeadings   OverlayID = "headings"
	OverlayPerf       OverlayID = "perf"
)

// OverlayDescriptor defines a layer that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID
	Name        string
	Description string
	Key         int32  // Keyboard key to toggle (0 = no key)
	KeyLabel    string // Key label for display
	Category    string // "canvas" or "debug"
	Default     bool
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with the default layers.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	r.Register(OverlayDescriptor{ID: OverlayBackground, Name: "Background", Description: "Color field brightness", Key: rl.KeyB, KeyLabel: "B", Category: "canvas", Default: true})
	r.Register(OverlayDescriptor{ID: OverlayTrails, Name: "Trails", Description: "Painted agent trails", Key: rl.KeyT, KeyLabel: "T", Category: "canvas", Default: true})
	r.Register(OverlayDescriptor{ID: OverlayAgents, Name: "Agents", Description: "Agent markers", Key: rl.KeyM, KeyLabel: "M", Category: "canvas", Default: true})
	r.Register(OverlayDescriptor{ID: OverlayLines, Name: "Lines", Description: "Aggregation and DLA links", Key: rl.KeyL, KeyLabel: "L", Category: "canvas", Default: true})
	r.Register(OverlayDescriptor{ID: OverlayObstacles, Name: "Shapes", Description: "Obstacles and decorative shapes", Key: rl.KeyO, KeyLabel: "O", Category: "canvas", Default: true})
	r.Register(OverlayDescriptor{ID: OverlayHeadings, Name: "Headings", Description: "Velocity vectors", Key: rl.KeyV, KeyLabel: "V", Category: "debug"})
	r.Register(OverlayDescriptor{ID: OverlayPerf, Name: "Performance", Description: "Tick phase timings", Key: rl.KeyP, KeyLabel: "P", Category: "debug"})
}

// Register adds an overlay in its default state.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	next := !r.enabled[id]
	r.SetEnabled(id, next)
	return next
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// All returns all registered overlays in registration order.
func (r *OverlayRegistry) All() []OverlayDescriptor {
	return r.descriptors
}

// HandleKeyPress checks if a key corresponds to an overlay toggle.
// Returns the overlay ID, its new state, and whether a toggle occurred.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			return desc.ID, r.Toggle(desc.ID), true
		}
	}
	return "", false, false
}

// OverlayPanel lists the overlays and their keys.
type OverlayPanel struct {
	renderer *Renderer
	width    int32
}

// NewOverlayPanel creates an overlay legend of the given width.
func NewOverlayPanel(width int32) *OverlayPanel {
	return &OverlayPanel{renderer: NewRenderer(), width: width}
}

// Height returns the panel height for the registry's contents.
func (p *OverlayPanel) Height(reg *OverlayRegistry) int32 {
	th := p.renderer.Theme
	return int32(len(reg.All())+1)*th.LineHeight + th.Padding*2
}

// Draw renders the legend with its top-left corner at (x, y).
func (p *OverlayPanel) Draw(x, y int32, reg *OverlayRegistry) {
	r := p.renderer
	padding := r.Theme.Padding
	r.DrawPanel(x, y, p.width, p.Height(reg))

	y = r.DrawSectionHeader(x+padding, y+padding, "Layers")
	for _, desc := range reg.All() {
		y = r.DrawToggle(x+padding, y, desc.Name, desc.KeyLabel, reg.IsEnabled(desc.ID), p.width-padding*2)
	}
}
