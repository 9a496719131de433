package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/spheresim/internal/dynamo"
	"github.com/san-kum/spheresim/internal/physics"
)

const (
	canvasWidth  = 60
	canvasHeight = 26
	trailLength  = 400
	graphWindow  = 600
	tickRate     = time.Second / 60
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(tickRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// PlayerConfig describes a recorded run for the player.
type PlayerConfig struct {
	Title   string
	Radius  float64
	Gravity float64
	Dt      float64
	// Phases is optional; when set it must be parallel to the trajectory.
	Phases  []dynamo.Phase
	GIFPath string
	Theme   string
}

// Player is a bubbletea model that scrubs through a recorded trajectory
// inside a wireframe sphere.
type Player struct {
	cfg      PlayerConfig
	pb       *Playback
	canvas   *Canvas
	camera   *Camera
	sphere   *Wireframe
	showAxes bool
	showHelp bool
	theme    int
	pal      palette
	heights  []float64
	speeds   []float64
	critical float64
	recorder *Recorder
	status   string
	quitting bool
}

func NewPlayer(traj dynamo.Trajectory, cfg PlayerConfig) Player {
	if cfg.Radius <= 0 {
		cfg.Radius = 1
	}
	if cfg.Dt <= 0 {
		cfg.Dt = physics.DefaultTuning().Dt
	}
	if cfg.Gravity <= 0 {
		cfg.Gravity = physics.StandardGravity
	}
	if cfg.GIFPath == "" {
		cfg.GIFPath = "spheresim.gif"
	}
	if len(cfg.Phases) != traj.Len() {
		cfg.Phases = nil
	}

	pb := NewPlayback(traj, cfg.Dt)
	// roughly real time at the tick rate
	pb.SetSpeed(int(math.Round(tickRate.Seconds() / cfg.Dt)))

	heights := make([]float64, traj.Len())
	speeds := make([]float64, traj.Len())
	for i := range traj.Positions {
		heights[i] = traj.Positions[i].Y()
		speeds[i] = traj.Velocities[i].Len()
	}

	theme := themeIndex(cfg.Theme)
	return Player{
		cfg:      cfg,
		pb:       pb,
		canvas:   NewCanvas(canvasWidth, canvasHeight),
		camera:   NewCamera(cfg.Radius * 1.1),
		sphere:   SphereWireframe(cfg.Radius, 5, 6),
		theme:    theme,
		pal:      newPalette(Themes[theme]),
		heights:  heights,
		speeds:   speeds,
		critical: math.Sqrt(cfg.Gravity * cfg.Radius),
	}
}

func (m Player) Playback() *Playback { return m.pb }

func (m Player) Init() tea.Cmd {
	return tick()
}

func (m Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case TickMsg:
		if m.pb.Advance() && m.recorder != nil {
			m.render()
			m.recorder.Capture(m.canvas)
		}
		return m, tick()
	}
	return m, nil
}

func (m Player) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	case " ", "space":
		m.pb.Toggle()
	case "left", "h":
		m.pb.Pause()
		m.pb.Step(-1)
	case "right", "l":
		m.pb.Pause()
		m.pb.Step(1)
	case "[":
		m.pb.Step(-50)
	case "]":
		m.pb.Step(50)
	case "home", "0":
		m.pb.Seek(0)
	case "end", "$":
		m.pb.Seek(m.pb.Len() - 1)
	case ">", ".":
		m.pb.SetSpeed(m.pb.Speed() * 2)
	case "<", ",":
		m.pb.SetSpeed(m.pb.Speed() / 2)
	case "x":
		m.camera.RotateX(0.1)
	case "X":
		m.camera.RotateX(-0.1)
	case "y":
		m.camera.RotateY(0.1)
	case "Y":
		m.camera.RotateY(-0.1)
	case "+", "=":
		m.camera.ZoomIn()
	case "-", "_":
		m.camera.ZoomOut()
	case "a":
		m.showAxes = !m.showAxes
	case "r":
		m.pb.Pause()
		m.pb.Seek(0)
		m.camera.Reset()
	case "t":
		m.theme = (m.theme + 1) % len(Themes)
		m.pal = newPalette(Themes[m.theme])
	case "g":
		m.toggleRecording()
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Player) toggleRecording() {
	if m.recorder == nil {
		m.recorder = NewRecorder()
		m.status = "recording"
		return
	}
	n := m.recorder.Len()
	if err := m.recorder.Save(m.cfg.GIFPath); err != nil {
		m.status = "gif: " + err.Error()
	} else {
		m.status = fmt.Sprintf("saved %d frames to %s", n, m.cfg.GIFPath)
	}
	m.recorder = nil
}

// render redraws the canvas for the current frame.
func (m *Player) render() {
	m.canvas.Clear()
	Render3D(m.canvas, m.sphere, m.camera)
	if m.showAxes {
		Render3D(m.canvas, CreateAxesWireframe(m.cfg.Radius*0.5), m.camera)
	}

	s, ok := m.pb.Current()
	if !ok {
		return
	}

	frame := m.pb.Frame()
	start := max(0, frame-trailLength)
	trail := NewWireframe()
	trail.AddPath(m.pb.Trajectory().Positions[start : frame+1])
	Render3D(m.canvas, trail, m.camera)

	sw, sh := m.canvas.PixelSize()
	px, py, _, vis := m.camera.Project(s.Position, sw, sh)
	if !vis {
		return
	}
	m.canvas.Blob(px, py, 1)

	// velocity arrow shows a quarter second of travel
	tip := s.Position.Add(s.Velocity.Mul(0.25))
	if tx, ty, _, ok := m.camera.Project(tip, sw, sh); ok && s.Speed() > 1e-9 {
		m.canvas.Arrow(px, py, tx, ty)
	}
	g := s.Position.Add(mgl64.Vec3{0, -0.25 * m.cfg.Radius, 0})
	if gx, gy, _, ok := m.camera.Project(g, sw, sh); ok {
		m.canvas.Arrow(px, py, gx, gy)
	}
}

func (m Player) View() string {
	if m.quitting {
		return ""
	}
	m.render()
	canvasView := m.pal.canvas.Render(m.canvas.String())
	panel := m.pal.panel.Render(m.info())
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panel)
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (m Player) info() string {
	p := m.pal
	var b strings.Builder
	title := m.cfg.Title
	if title == "" {
		title = "spheresim"
	}
	b.WriteString(p.header.Render(strings.ToUpper(title)) + "\n")

	s, ok := m.pb.Current()
	if !ok {
		b.WriteString(p.warning.Render("NO SAMPLES") + "\n\n")
		b.WriteString(p.label.Render("Radius") + p.value.Render(fmt.Sprintf("%.3f m", m.cfg.Radius)) + "\n")
		b.WriteString(p.help.Render("nothing to play back\nq:Quit"))
		return b.String()
	}

	if m.recorder != nil {
		b.WriteString(p.bad.Render("● REC") + " ")
	}
	if m.pb.Playing() {
		b.WriteString(p.good.Render(fmt.Sprintf("PLAYING x%d", m.pb.Speed())))
	} else {
		b.WriteString(p.warning.Render("PAUSED"))
	}
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(p.muted.Render(m.status) + "\n")
	}
	b.WriteString("\n")

	frame, n := m.pb.Frame(), m.pb.Len()
	frac := 0.0
	if n > 1 {
		frac = float64(frame) / float64(n-1)
	}
	b.WriteString(p.ProgressBar(frac, 30) + "\n")
	b.WriteString(p.label.Render("Time") + p.value.Render(fmt.Sprintf("%.3f s", m.pb.Time())) + "\n")
	b.WriteString(p.label.Render("Frame") + p.value.Render(fmt.Sprintf("%d / %d", frame, n-1)) + "\n")
	b.WriteString(p.label.Render("Position") + p.value.Render(formatVec(s.Position)) + "\n")
	b.WriteString(p.label.Render("Velocity") + p.value.Render(formatVec(s.Velocity)) + "\n")

	speed := s.Speed()
	speedStyle := p.value
	if speed >= m.critical {
		speedStyle = p.accent
	}
	b.WriteString(p.label.Render("Speed") + speedStyle.Render(fmt.Sprintf("%.3f m/s", speed)) + "\n")
	b.WriteString(p.label.Render("Critical") + p.value.Render(fmt.Sprintf("%.3f m/s", m.critical)) + "\n")
	b.WriteString(p.label.Render("Surface") + p.value.Render(fmt.Sprintf("%+.2e m", s.Position.Len()-m.cfg.Radius)) + "\n")
	if m.cfg.Phases != nil {
		ph := m.cfg.Phases[frame]
		style := p.good
		if ph == dynamo.FreeFlight {
			style = p.warning
		}
		b.WriteString(p.label.Render("Phase") + style.Render(ph.String()) + "\n")
	}

	lo := max(0, frame-graphWindow)
	if window := m.heights[lo : frame+1]; len(window) > 1 {
		graph := asciigraph.Plot(window,
			asciigraph.Height(5), asciigraph.Width(30),
			asciigraph.Caption("height y (m)"))
		b.WriteString("\n" + p.muted.Render(graph) + "\n")
		b.WriteString(p.label.Render("Speed") + p.accent.Render(Sparkline(m.speeds[lo:frame+1], 30)) + "\n")
	}

	b.WriteString(p.help.Render("SP:Play ←→:Step []:Jump <>:Speed\nxy:Rotate +-:Zoom T:Theme G:GIF ?:Help Q:Quit"))
	return b.String()
}

func formatVec(v mgl64.Vec3) string {
	return fmt.Sprintf("(%+.3f, %+.3f, %+.3f)", v[0], v[1], v[2])
}

const helpText = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Play/Pause               ║
║  ←/→ h/l  - Previous/next frame      ║
║  [ / ]    - Jump 50 frames           ║
║  0 / $    - First/last frame         ║
║  < / >    - Halve/double speed       ║
║  x y X Y  - Rotate camera            ║
║  + / -    - Zoom                     ║
║  A        - Toggle axes              ║
║  R        - Rewind and reset camera  ║
║  T        - Cycle themes             ║
║  G        - Toggle GIF recording     ║
║  ?        - Toggle this help         ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝
`

// RunPlayer runs the player full screen until the user quits.
func RunPlayer(traj dynamo.Trajectory, cfg PlayerConfig) error {
	_, err := tea.NewProgram(NewPlayer(traj, cfg), tea.WithAltScreen()).Run()
	return err
}
