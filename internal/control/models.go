// Package control implements the dual-mode playback orchestration core: the
// mode controller abstraction, the capture topology builder, and the program
// session coordinator that routes navigation commands to the active backend.
package control

import "time"

// ProgramID uniquely identifies an imported program. IDs are derived
// deterministically from the source filename; see ProgramIDFromFilename.
type ProgramID string

// Mode declares which playback backend presents a program.
type Mode string

const (
	// ModeLiveRender plays the deck through an external rendering process
	// whose output window is framed by a capture binding.
	ModeLiveRender Mode = "live-render"

	// ModeSceneGraph pre-materializes each act as its own capture
	// container and switches between them directly.
	ModeSceneGraph Mode = "scene-graph"
)

// Valid reports whether m is one of the two declared modes.
func (m Mode) Valid() bool {
	return m == ModeLiveRender || m == ModeSceneGraph
}

// Act is one addressable unit of presented content (one slide). Acts are
// created by the import pipeline and read-only to the core.
type Act struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	ImagePath string `json:"image_path,omitempty"`
	VideoPath string `json:"video_path,omitempty"`
	HasVideo  bool   `json:"has_video,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Program is the unit of schedulable content: an imported, mode-tagged,
// navigable presentation. Mode is immutable after creation; the core never
// mutates a Program.
type Program struct {
	ID         ProgramID `json:"id"`
	Name       string    `json:"name"`
	SourcePath string    `json:"source_path"`
	Mode       Mode      `json:"mode"`
	SlideCount int       `json:"slide_count"`
	Acts       []Act     `json:"acts,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// TotalSlides returns len(Acts) when acts are populated, otherwise the
// externally supplied estimate.
func (p *Program) TotalSlides() int {
	if len(p.Acts) > 0 {
		return len(p.Acts)
	}
	return p.SlideCount
}

// SceneRecord describes one capture container synthesized for an act.
type SceneRecord struct {
	Name       string `json:"name"`
	ActIndex   int    `json:"actIndex"`
	ActName    string `json:"actName"`
	VideoScene string `json:"videoScene,omitempty"`
	HasVideo   bool   `json:"hasVideo"`
}

// PositionNone is the navigation position sentinel used before first
// navigation and after blackout/stop.
const PositionNone = -1

// Status is the I/O-free snapshot of a mode controller's session state.
// Live-render populates Running/CurrentSlide/TotalSlides; scene-graph
// populates CurrentScene/TotalScenes/Scenes. Fields of the inactive
// variant stay at their zero values.
type Status struct {
	Mode          Mode          `json:"mode"`
	ProgramLoaded bool          `json:"programLoaded"`
	Running       bool          `json:"running"`
	CurrentSlide  int           `json:"currentSlide"`
	TotalSlides   int           `json:"totalSlides"`
	CurrentScene  int           `json:"currentScene"`
	TotalScenes   int           `json:"totalScenes"`
	Scenes        []SceneRecord `json:"scenes,omitempty"`
}
