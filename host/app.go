package host

import (
	"context"
	"sync"

	"go-arp/config"
	"go-arp/debug"
	"go-arp/midi"
	"go-arp/sequencer"
)

// App is the engine restored from a config and wired to the MIDI ports it
// names. The TUI and the headless server both run on one.
type App struct {
	Manager *Manager
	Devices *midi.DeviceManager
	Saver   *config.AutoSaver

	mu  sync.Mutex
	cfg *config.Config
}

// NewApp builds the engine from cfg. Session values that fail to restore
// are logged and keep their defaults.
func NewApp(cfg *config.Config) *App {
	ctrl := sequencer.NewController(sequencer.DefaultParams())
	if err := ctrl.Restore(cfg.Session); err != nil {
		debug.Log("app", "restore session: %v", err)
	}
	engine := sequencer.NewEngine(float64(cfg.Audio.SampleRate), ctrl)

	a := &App{
		Manager: NewManager(engine, NewTransport(cfg.UI.LastTempo), cfg.Audio.BlockSize),
		Devices: midi.NewDeviceManager(cfg.MIDI.InputPort, cfg.MIDI.OutputPort),
		cfg:     cfg,
	}
	a.Saver = config.NewAutoSaver(config.DefaultAutoSaveDelay, a.Save)
	return a
}

func (a *App) Controller() *sequencer.Controller {
	return a.Manager.Engine().Controller()
}

// OpenOutput connects the configured output port. Without one the engine
// still runs, it just isn't heard.
func (a *App) OpenOutput() error {
	send, err := midi.OpenOutput(a.cfg.MIDI.OutputPort)
	if err != nil {
		return err
	}
	a.Manager.SetOutput(send)
	return nil
}

// Start runs the host loops and device scanning until ctx is done
func (a *App) Start(ctx context.Context) {
	a.Manager.StartRuntime(ctx)
	go a.Devices.Run(ctx)
}

// FollowDevices plays from whichever keyboard connected last. The TUI does
// this itself, so only headless runs call it.
func (a *App) FollowDevices() {
	current := ""
	for event := range a.Devices.Events() {
		switch event.Type {
		case midi.DeviceConnected:
			debug.Log("app", "keyboard connected: %s", event.ID)
			current = event.ID
			a.Manager.SetMIDIInput(event.Controller)
		case midi.DeviceDisconnected:
			if event.ID == current {
				current = ""
				a.Manager.SetMIDIInput(nil)
			}
		}
	}
}

// Config returns a copy of the config as it will next be saved
func (a *App) Config() config.Config {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := *a.cfg
	c.Session = a.Controller().Session()
	c.UI.LastTempo = a.Manager.Transport().Tempo()
	return c
}

func (a *App) SetFocusedVoice(i int) {
	a.mu.Lock()
	a.cfg.UI.LastFocusedVoice = i
	a.mu.Unlock()
}

func (a *App) FocusedVoice() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cfg.UI.LastFocusedVoice
}

// Save writes the current session and tempo into the config file
func (a *App) Save() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cfg.Session = a.Controller().Session()
	a.cfg.UI.LastTempo = a.Manager.Transport().Tempo()
	return a.cfg.Save()
}

// SavePreset stores the session and tempo as a named preset
func (a *App) SavePreset(name string) (string, error) {
	return config.SavePreset(config.Preset{
		Name:    name,
		Tempo:   a.Manager.Transport().Tempo(),
		Session: a.Controller().Session(),
	})
}

// LoadPreset restores a preset, "" meaning the newest one
func (a *App) LoadPreset(filename string) error {
	p, err := config.LoadPreset(filename)
	if err != nil {
		return err
	}
	if p.Tempo > 0 {
		a.Manager.SetTempo(p.Tempo)
	}
	err = a.Controller().Restore(p.Session)
	a.Saver.Touch()
	return err
}
