package tui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-arp/debug"
	"go-arp/host"
	"go-arp/midi"
	"go-arp/pattern"
	"go-arp/sequencer"
	"go-arp/theme"
	"go-arp/theory"
	"go-arp/util"
	"go-arp/widgets"
)

type mode int

const (
	modeNormal mode = iota
	modeEditPattern
	modeEuclid
	modePreset
)

type Model struct {
	Manager   *host.Manager
	DeviceMgr *midi.DeviceManager // nil without MIDI input
	Theme     *theme.Theme
	App       *host.App // nil runs without autosave or presets

	ctrl     *sequencer.Controller
	board    *sequencer.Board
	selected int
	mode     mode
	input    string
	errMsg   string
	keyboard string // id of the connected keyboard
	showHelp bool
	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(manager *host.Manager, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	return Model{
		Manager:   manager,
		DeviceMgr: deviceMgr,
		Theme:     th,
		ctrl:      manager.Engine().Controller(),
		board:     manager.Engine().Board(),
	}
}

// Selected returns the voice the keys act on
func (m Model) Selected() int {
	return m.selected
}

// Select focuses voice i
func (m *Model) Select(i int) {
	m.selected = util.Clamp(i, 0, sequencer.MaxVoices-1)
}

// NewAppModel is NewModel with autosave and presets, focused on the voice
// the app was last left on
func NewAppModel(app *host.App, th *theme.Theme) Model {
	m := NewModel(app.Manager, app.Devices, th)
	m.App = app
	m.Select(app.FocusedVoice())
	return m
}

func ListenForUpdates(manager *host.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Manager)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.updateInput(msg), nil
		}
		return m.updateNormal(msg)

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			debug.Log("tui", "keyboard connected: %s", event.ID)
			m.keyboard = event.ID
			m.Manager.SetMIDIInput(event.Controller)
		case midi.DeviceDisconnected:
			if m.keyboard == event.ID {
				m.keyboard = ""
				m.Manager.SetMIDIInput(nil)
			}
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.errMsg = ""
	p := m.ctrl.Load()
	v := p.Voices[m.selected]
	var err error

	switch key := msg.String(); key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Manager.Stop()
		if m.App != nil {
			m.App.SetFocusedVoice(m.selected)
			if err := m.App.Saver.Flush(); err != nil {
				debug.Log("tui", "save on quit: %v", err)
			}
		}
		return m, tea.Quit

	case "p":
		if playing, _, _ := m.Manager.GetState(); playing {
			m.Manager.Stop()
		} else {
			m.Manager.Play()
		}
		m.touch()
		return m, nil

	case "+", "=":
		_, tempo, _ := m.Manager.GetState()
		m.Manager.SetTempo(tempo + 5)
		m.touch()
		return m, nil

	case "-", "_":
		_, tempo, _ := m.Manager.GetState()
		m.Manager.SetTempo(tempo - 5)
		m.touch()
		return m, nil

	case "1", "2", "3", "4":
		i := int(key[0] - '1')
		err = m.ctrl.SetVoiceOn(i, !p.Voices[i].On)

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "tab":
		m.selected = (m.selected + 1) % sequencer.MaxVoices
		return m, nil

	case "shift+tab":
		m.selected = util.Mod(m.selected-1, sequencer.MaxVoices)
		return m, nil

	case "e":
		m.mode = modeEditPattern
		if v.Pattern != nil {
			m.input = v.Pattern.Text
		}
		return m, nil

	case "E":
		m.mode = modeEuclid
		m.input = fmt.Sprintf("%d %d", pattern.DefaultHits, pattern.DefaultSteps)
		return m, nil

	case "w":
		if m.App == nil {
			m.errMsg = "presets need a config directory"
			return m, nil
		}
		m.mode = modePreset
		m.input = ""
		return m, nil

	case "o":
		if m.App == nil {
			m.errMsg = "presets need a config directory"
			return m, nil
		}
		err = m.App.LoadPreset("")

	case "R":
		err = m.ctrl.SetPattern(m.selected, pattern.Random())

	case "m":
		err = m.ctrl.SetMethod(theory.ChordMethod(util.Mod(int(p.Method)+1, int(theory.MethodCount))))

	case "s":
		err = m.ctrl.SetScale(theory.ScaleType(util.Mod(int(p.Scale)+1, int(theory.ScaleCount))))

	case "S":
		err = m.ctrl.SetScale(theory.ScaleType(util.Mod(int(p.Scale)-1, int(theory.ScaleCount))))

	case "]":
		err = m.ctrl.SetRoot(util.Mod(p.Root+1, 12))

	case "[":
		err = m.ctrl.SetRoot(util.Mod(p.Root-1, 12))

	case "f":
		err = m.ctrl.SetFollowInput(!p.FollowInput)

	case "c":
		err = m.ctrl.SetMidiChannel(m.selected, util.Mod(int(v.Channel), 16)+1)

	case "C":
		err = m.ctrl.SetMidiChannel(m.selected, util.Mod(int(v.Channel)-2, 16)+1)

	case ">", ".":
		err = m.ctrl.SetSubdivision(m.selected, sequencer.Subdivision(util.Mod(int(v.Subdivision)+1, int(sequencer.SubdivisionCount))))

	case "<", ",":
		err = m.ctrl.SetSubdivision(m.selected, sequencer.Subdivision(util.Mod(int(v.Subdivision)-1, int(sequencer.SubdivisionCount))))

	default:
		return m, nil
	}

	if err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.touch()
	return m, nil
}

// updateInput edits the prompt line; enter applies, esc cancels
func (m Model) updateInput(msg tea.KeyMsg) Model {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input = ""
		m.errMsg = ""
	case tea.KeyEnter:
		m.submit()
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m
}

func (m *Model) submit() {
	text := m.input
	if m.mode == modePreset {
		name := strings.TrimSpace(text)
		if name == "" {
			m.errMsg = "preset needs a name"
			return
		}
		if _, err := m.App.SavePreset(name); err != nil {
			m.errMsg = err.Error()
			return
		}
		m.mode = modeNormal
		m.input = ""
		m.errMsg = ""
		return
	}
	if m.mode == modeEuclid {
		hits, steps, err := parseEuclid(text)
		if err != nil {
			m.errMsg = err.Error()
			return
		}
		text = pattern.Euclid(hits, steps)
	}

	// a bad pattern keeps the prompt open with the old one still playing
	if err := m.ctrl.SetPattern(m.selected, text); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.mode = modeNormal
	m.input = ""
	m.errMsg = ""
	m.touch()
}

// parseEuclid reads "hits steps"; each is at most two digits
func parseEuclid(text string) (hits, steps int, err error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("want: hits steps")
	}
	vals := [2]int{}
	for i, f := range fields {
		if len(f) > 2 {
			return 0, 0, fmt.Errorf("%q: two digits at most", f)
		}
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return 0, 0, fmt.Errorf("%q: not a number", f)
		}
		vals[i] = n
	}
	return vals[0], vals[1], nil
}

func (m Model) touch() {
	if m.App != nil {
		m.App.Saver.Touch()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	th := m.Theme
	p := m.ctrl.Load()
	playing, tempo, beat := m.Manager.GetState()

	headerStyle := lipgloss.NewStyle().Foreground(th.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(th.Muted())
	fgStyle := lipgloss.NewStyle().Foreground(th.FG())
	errStyle := lipgloss.NewStyle().Foreground(th.Warning())

	playState := dimStyle.Render("STOP")
	if playing {
		playState = lipgloss.NewStyle().Foreground(th.Success()).Bold(true).Render("PLAY")
	}
	follow := ""
	if p.FollowInput {
		follow = "  follow"
	}
	kb := "  no keyboard"
	if m.keyboard != "" {
		kb = "  kb:" + m.keyboard
	}
	header := headerStyle.Render("go-arp  ") + playState + "  " + beatBar(th, beat, playing) +
		headerStyle.Render(fmt.Sprintf("  %3dbpm  %s  %s%s%s", tempo, p.ScaleValue(), p.Method, follow, kb))

	var voices strings.Builder
	for i := range p.Voices {
		voices.WriteString(m.voiceLine(i, &p.Voices[i]))
		voices.WriteString("\n")
	}

	chord := dimStyle.Render("held: ") + fgStyle.Render(noteList(m.board.HeldNotes()))
	keys := widgets.ScaleKeyboard{
		Scale:   p.ScaleValue(),
		Held:    m.board.HeldNotes(),
		Current: m.board.CurrentNotes(),
	}.Render(th)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(voices.String())
	out.WriteString("\n")
	out.WriteString(chord)
	out.WriteString("\n\n")
	out.WriteString(keys)
	out.WriteString("\n\n")

	switch m.mode {
	case modeEditPattern:
		out.WriteString(fgStyle.Render(fmt.Sprintf("pattern %d> %s_", m.selected+1, m.input)))
		out.WriteString("\n")
	case modeEuclid:
		out.WriteString(fgStyle.Render(fmt.Sprintf("euclid %d (hits steps)> %s_", m.selected+1, m.input)))
		out.WriteString("\n")
	case modePreset:
		out.WriteString(fgStyle.Render(fmt.Sprintf("preset name> %s_", m.input)))
		out.WriteString("\n")
	}
	if m.errMsg != "" {
		out.WriteString(errStyle.Render(m.errMsg))
		out.WriteString("\n")
	}
	if m.showHelp {
		out.WriteString(lipgloss.NewStyle().Background(th.BG()).Foreground(th.FG()).Render(widgets.RenderKeyHelp(keySections, headerStyle, lipgloss.NewStyle().Foreground(th.Cursor()))))
	} else {
		out.WriteString(dimStyle.Render(helpLine))
	}
	return out.String()
}

const helpLine = "1-4:voice tab:select e:edit E:euclid R:random m:method s:scale [/]:root p:play ?:help q:quit"

var keySections = []widgets.KeySection{
	{Title: "Voices", Keys: []widgets.KeyBinding{
		{Key: "1-4", Desc: "toggle voice"},
		{Key: "tab/S-tab", Desc: "select voice"},
		{Key: "c/C", Desc: "MIDI channel up/down"},
		{Key: "</>", Desc: "step length"},
	}},
	{Title: "Patterns", Keys: []widgets.KeyBinding{
		{Key: "e", Desc: "edit pattern (enter applies, esc cancels)"},
		{Key: "E", Desc: "Euclidean rhythm: hits steps"},
		{Key: "R", Desc: "random pattern"},
	}},
	{Title: "Harmony", Keys: []widgets.KeyBinding{
		{Key: "m", Desc: "chord method"},
		{Key: "s/S", Desc: "scale type"},
		{Key: "[/]", Desc: "root"},
		{Key: "f", Desc: "follow input"},
	}},
	{Title: "Transport", Keys: []widgets.KeyBinding{
		{Key: "p", Desc: "play/stop"},
		{Key: "+/-", Desc: "tempo"},
		{Key: "w/o", Desc: "write preset, open newest"},
		{Key: "q", Desc: "quit"},
	}},
}

// beatBar lights the current beat of a 4/4 bar, shaded along the palette
func beatBar(th *theme.Theme, beat float64, playing bool) string {
	cur := -1
	if playing {
		cur = util.Mod(int(beat), 4)
	}
	out := ""
	for i := 0; i < 4; i++ {
		if i == cur {
			out += lipgloss.NewStyle().Foreground(th.Color(0.4 + 0.2*float64(i))).Render(string(th.Symbols.Solid))
		} else {
			out += lipgloss.NewStyle().Foreground(th.Muted()).Render(string(th.Symbols.Empty))
		}
	}
	return out
}

func (m Model) voiceLine(i int, vp *sequencer.VoiceParams) string {
	th := m.Theme
	st := m.board.Voice(i)
	color := lipgloss.NewStyle().Foreground(th.Voice(i))
	dim := lipgloss.NewStyle().Foreground(th.Muted())
	fg := lipgloss.NewStyle().Foreground(th.FG())

	cursor := "  "
	if i == m.selected {
		cursor = lipgloss.NewStyle().Foreground(th.Cursor()).Render("> ")
	}

	on := th.Symbols.Empty
	if vp.On {
		on = th.Symbols.Solid
	}
	state := " "
	switch st.State {
	case sequencer.Stepping:
		state = lipgloss.NewStyle().Foreground(th.Active()).Render(string(th.Symbols.Playhead))
	case sequencer.Releasing:
		state = dim.Render(string(th.Symbols.Parked))
	}

	note := "-"
	if st.LastNote >= 0 {
		note = theory.NoteName(st.LastNote)
	}

	text := ""
	if vp.Pattern != nil {
		text = vp.Pattern.Text
	}
	// the highlight only makes sense while the board shows the same pattern
	span, hasSpan := st.Span, st.HasSpan && st.Pattern != nil && st.Pattern.Text == text
	pat := widgets.RenderPattern(text, span, hasSpan, fg, color.Reverse(true))

	return fmt.Sprintf("%s%s %s %s  %s  %s  %-4s  %s",
		cursor,
		color.Render(strconv.Itoa(i+1)),
		color.Render(string(on)),
		state,
		dim.Render(fmt.Sprintf("ch%-2d", vp.Channel)),
		dim.Render(fmt.Sprintf("%-5s", vp.Subdivision)),
		note,
		pat,
	)
}

func noteList(notes []uint8) string {
	if len(notes) == 0 {
		return "-"
	}
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = theory.NoteName(int(n))
	}
	return strings.Join(names, " ")
}
