package replay

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/vinayprograms/mafiareplay/internal/gamelog"
	"github.com/vinayprograms/mafiareplay/internal/logging"
	"github.com/vinayprograms/mafiareplay/internal/playback"
	"github.com/vinayprograms/mafiareplay/internal/search"
	"github.com/vinayprograms/mafiareplay/internal/timeline"
)

const (
	minSpeed = 0.25
	maxSpeed = 4.0
)

// StepperOptions configures the interactive stepper.
type StepperOptions struct {
	Mode          timeline.Mode
	Autoplay      bool
	ShowReasoning bool
	Speed         float64
	View          timeline.View
	Follow        bool // reload the file when it changes
	Logger        *logging.Logger
}

// Stepper is an interactive terminal viewer that plays a game beat by beat.
type Stepper struct {
	path   string
	opts   StepperOptions
	loader *Loader
}

// NewStepper creates a stepper for the log at path.
func NewStepper(path string, opts StepperOptions) *Stepper {
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	if opts.Mode == "" {
		opts.Mode = timeline.ModePublic
	}
	return &Stepper{
		path:   path,
		opts:   opts,
		loader: NewLoader(opts.Logger),
	}
}

// Run loads the log and starts the stepper. It blocks until the user quits.
func (s *Stepper) Run(ctx context.Context) error {
	log, err := s.loader.Load(ctx, s.path)
	if err != nil {
		return err
	}

	m := newStepperModel(ctx, s.loader, log, s.opts)
	m.path = s.path

	if s.opts.Follow {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(s.path); err != nil {
			return fmt.Errorf("failed to watch file: %w", err)
		}
		m.watcher = watcher
		m.live = true
	}
	defer m.closeIndex()

	prog := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	_, err = prog.Run()
	return err
}

// timerMsg is a playback timer that expired.
type timerMsg struct {
	timer playback.Timer
}

// fileChangedMsg is sent when the watched file changes.
type fileChangedMsg struct{}

// stepperModel is the Bubble Tea model for the stepper.
type stepperModel struct {
	ctx    context.Context
	loader *Loader
	logger *logging.Logger
	path   string
	log    *gamelog.Log

	driver        *playback.Driver
	view          timeline.View
	speed         float64
	showReasoning bool
	pending       []playback.Timer

	viewport viewport.Model
	ready    bool

	live       bool
	watcher    *fsnotify.Watcher
	lastUpdate time.Time
	loadErr    error

	// Search state
	index        *search.Index
	searching    bool
	searchInput  textinput.Model
	searchQuery  string
	searchHits   []int // beat indices matching the query
	searchPos    int
	searchFailed bool
}

func newStepperModel(ctx context.Context, loader *Loader, log *gamelog.Log, opts StepperOptions) *stepperModel {
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	if opts.Mode == "" {
		opts.Mode = timeline.ModePublic
	}
	if loader == nil {
		loader = NewLoader(opts.Logger)
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	m := &stepperModel{
		ctx:           ctx,
		loader:        loader,
		logger:        logger.WithComponent("stepper"),
		log:           log,
		view:          opts.View,
		speed:         opts.Speed,
		showReasoning: opts.ShowReasoning,
	}
	m.driver = playback.NewDriver(loader.Compile(ctx, log, opts.Mode))
	m.rebuildIndex()

	start := m.driver.Index()
	if indexes := m.indexes(); len(indexes) > 0 {
		start = indexes[0]
	}
	m.pending = m.driver.Seek(start)
	if opts.Autoplay {
		m.pending = append(m.pending, m.driver.Play()...)
	}
	return m
}

func (m *stepperModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.arm(m.pending)}
	m.pending = nil
	if m.live && m.watcher != nil {
		cmds = append(cmds, m.watchFile())
	}
	return tea.Batch(cmds...)
}

// arm turns driver timers into ticks scaled by the playback speed.
func (m *stepperModel) arm(timers []playback.Timer) tea.Cmd {
	if len(timers) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(timers))
	for _, t := range timers {
		delay := time.Duration(float64(t.Delay) / m.speed)
		cmds = append(cmds, tea.Tick(delay, func(time.Time) tea.Msg {
			return timerMsg{timer: t}
		}))
	}
	return tea.Batch(cmds...)
}

// watchFile returns a command that waits for file changes.
func (m *stepperModel) watchFile() tea.Cmd {
	watcher := m.watcher
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					// Debounce: wait a bit for writes to settle
					time.Sleep(100 * time.Millisecond)
					return fileChangedMsg{}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
			}
		}
	}
}

func (m *stepperModel) timeline() *timeline.Timeline {
	return m.driver.Timeline()
}

func (m *stepperModel) indexes() []int {
	return m.timeline().Indexes(m.view)
}

func (m *stepperModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	// Handle search input mode
	if m.searching {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "enter":
				m.searching = false
				cmd = m.runSearch(m.searchInput.Value())
				m.refresh()
				return m, cmd
			case "esc", "ctrl+c":
				m.searching = false
				return m, nil
			}
			m.searchInput, cmd = m.searchInput.Update(msg)
			return m, cmd
		}
		m.searchInput, cmd = m.searchInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {
	case timerMsg:
		cmds = append(cmds, m.fire(msg.timer))
		m.refresh()
		return m, tea.Batch(cmds...)

	case fileChangedMsg:
		cmds = append(cmds, m.reload(), m.watchFile())
		m.refresh()
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		c, quit, handled := m.handleKey(msg)
		if quit {
			return m, tea.Quit
		}
		if handled {
			m.refresh()
			return m, tea.Batch(append(cmds, c)...)
		}

	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 1
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.refresh()
	}

	// Unhandled keys and mouse events scroll the beat pane.
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey applies a key press. It reports whether to quit and whether
// the key was consumed.
func (m *stepperModel) handleKey(msg tea.KeyMsg) (cmd tea.Cmd, quit, handled bool) {
	handled = true
	switch msg.String() {
	case "q", "ctrl+c":
		return nil, true, true
	case "esc":
		if m.searchQuery == "" {
			return nil, true, true
		}
		m.clearSearch()
	case " ", "p":
		cmd = m.arm(m.driver.Toggle())
	case "right", "l":
		cmd = m.step(1)
	case "left", "h":
		cmd = m.step(-1)
	case "home", "g":
		if indexes := m.indexes(); len(indexes) > 0 {
			cmd = m.seek(indexes[0])
		}
	case "end", "G":
		if indexes := m.indexes(); len(indexes) > 0 {
			cmd = m.seek(indexes[len(indexes)-1])
		}
	case "]":
		cmd = m.jumpPhase(1)
	case "[":
		cmd = m.jumpPhase(-1)
	case "m":
		cmd = m.toggleMode()
	case "r":
		if m.timeline().Mode == timeline.ModeOmniscient {
			m.showReasoning = !m.showReasoning
		}
	case "f":
		cmd = m.cyclePhaseFilter()
	case "o":
		cmd = m.cyclePlayerFilter()
	case "+", "=":
		m.speed = min(m.speed*2, maxSpeed)
	case "-":
		m.speed = max(m.speed/2, minSpeed)
	case "/":
		m.searching = true
		m.searchInput = textinput.New()
		m.searchInput.Placeholder = "Search beats..."
		m.searchInput.Focus()
		m.searchInput.CharLimit = 100
		m.searchInput.Width = 40
		if m.searchQuery != "" {
			m.searchInput.SetValue(m.searchQuery)
		}
		cmd = textinput.Blink
	case "n":
		cmd = m.nextHit(1)
	case "N":
		cmd = m.nextHit(-1)
	default:
		handled = false
	}
	return cmd, false, handled
}

// fire delivers an expired timer. When auto-play lands outside the
// current filter it skips ahead to the next visible beat.
func (m *stepperModel) fire(t playback.Timer) tea.Cmd {
	before := m.driver.Index()
	timers := m.driver.Fire(t)
	if t.Kind != playback.TimerAdvance || m.driver.Index() == before {
		return m.arm(timers)
	}

	indexes := m.indexes()
	if slices.Contains(indexes, m.driver.Index()) {
		return m.arm(timers)
	}
	next := nextAfter(indexes, before)
	if next < 0 {
		m.driver.Pause()
		return nil
	}
	return m.arm(m.driver.Seek(next))
}

// nextAfter returns the first index greater than current, or -1.
func nextAfter(indexes []int, current int) int {
	for _, i := range indexes {
		if i > current {
			return i
		}
	}
	return -1
}

func (m *stepperModel) seek(index int) tea.Cmd {
	return m.arm(m.driver.Seek(index))
}

func (m *stepperModel) step(dir int) tea.Cmd {
	return m.seek(timeline.Step(m.indexes(), m.driver.Index(), dir))
}

// jumpPhase moves to the first visible beat of the next or previous phase.
func (m *stepperModel) jumpPhase(dir int) tea.Cmd {
	tl := m.timeline()
	cur, ok := tl.Beat(m.driver.Index())
	if !ok {
		return nil
	}
	phases := tl.PhaseIndex.Phases()
	pos := slices.Index(phases, cur.Phase)
	for p := pos + dir; p >= 0 && p < len(phases); p += dir {
		v := m.view
		v.Phase = phases[p]
		if indexes := tl.Indexes(v); len(indexes) > 0 {
			return m.seek(indexes[0])
		}
	}
	return nil
}

// toggleMode recompiles the log for the other mode. Playback restarts from
// the first beat.
func (m *stepperModel) toggleMode() tea.Cmd {
	mode := m.timeline().Mode.Toggle()
	timers := m.driver.Load(m.loader.Compile(m.ctx, m.log, mode))
	if mode == timeline.ModePublic {
		m.showReasoning = false
	}
	m.rebuildIndex()
	m.clearSearch()
	if !m.timeline().PhaseIndex.Has(m.view.Phase) {
		m.view.Phase = ""
	}
	return m.arm(timers)
}

func (m *stepperModel) cyclePhaseFilter() tea.Cmd {
	m.view.Phase = cycle(m.timeline().PhaseIndex.Phases(), m.view.Phase)
	return m.snapToView()
}

func (m *stepperModel) cyclePlayerFilter() tea.Cmd {
	names := make([]string, 0, len(m.timeline().Players))
	for _, p := range m.timeline().Players {
		names = append(names, p.Name)
	}
	m.view.Player = cycle(names, m.view.Player)
	return m.snapToView()
}

// snapToView moves onto the filtered list if the current beat left it.
func (m *stepperModel) snapToView() tea.Cmd {
	indexes := m.indexes()
	if len(indexes) == 0 || slices.Contains(indexes, m.driver.Index()) {
		return nil
	}
	return m.seek(timeline.Step(indexes, m.driver.Index(), 1))
}

// cycle returns the entry after current, wrapping through "" (no filter).
func cycle(values []string, current string) string {
	if current == "" {
		if len(values) == 0 {
			return ""
		}
		return values[0]
	}
	i := slices.Index(values, current)
	if i < 0 || i+1 >= len(values) {
		return ""
	}
	return values[i+1]
}

// reload re-reads the watched file. A failed read (typically a partial
// write) keeps the current timeline.
func (m *stepperModel) reload() tea.Cmd {
	log, err := m.loader.Load(m.ctx, m.path)
	if err != nil {
		m.loadErr = err
		m.logger.LogReloaded(m.path, m.driver.Len(), err)
		return nil
	}
	m.loadErr = nil
	m.log = log
	m.lastUpdate = time.Now()

	index, playing := m.driver.Index(), m.driver.Playing()
	m.driver.Load(m.loader.Compile(m.ctx, log, m.timeline().Mode))
	m.rebuildIndex()
	if m.searchQuery != "" {
		m.findHits(m.searchQuery, index)
	}
	m.logger.LogReloaded(m.path, m.driver.Len(), nil)

	timers := m.driver.Seek(index)
	if playing {
		timers = append(timers, m.driver.Play()...)
	}
	return m.arm(timers)
}

func (m *stepperModel) rebuildIndex() {
	m.closeIndex()
	index, err := search.Build(m.timeline())
	if err != nil {
		m.logger.Warn("search_index_failed", map[string]interface{}{"error": err.Error()})
		return
	}
	m.index = index
}

func (m *stepperModel) closeIndex() {
	if m.index != nil {
		m.index.Close()
		m.index = nil
	}
}

// runSearch finds the beats matching q and jumps to the first hit at or
// after the current beat.
func (m *stepperModel) runSearch(q string) tea.Cmd {
	if !m.findHits(q, m.driver.Index()) {
		return nil
	}
	return m.seek(m.searchHits[m.searchPos])
}

// findHits refreshes the hits for q and points at the first one at or after
// from, without moving the driver.
func (m *stepperModel) findHits(q string, from int) bool {
	m.searchQuery = q
	m.searchHits = nil
	m.searchPos = 0
	m.searchFailed = false
	if q == "" || m.index == nil {
		return false
	}

	hits, err := m.index.Indexes(q)
	if err != nil || len(hits) == 0 {
		m.searchFailed = true
		return false
	}
	m.searchHits = hits
	for i, h := range hits {
		if h >= from {
			m.searchPos = i
			break
		}
	}
	return true
}

func (m *stepperModel) nextHit(dir int) tea.Cmd {
	if len(m.searchHits) == 0 {
		return nil
	}
	m.searchPos = (m.searchPos + dir + len(m.searchHits)) % len(m.searchHits)
	return m.seek(m.searchHits[m.searchPos])
}

func (m *stepperModel) clearSearch() {
	m.searchQuery = ""
	m.searchHits = nil
	m.searchPos = 0
	m.searchFailed = false
}

// refresh re-renders the beat pane into the viewport.
func (m *stepperModel) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderBeat(m.viewport.Width))
}
