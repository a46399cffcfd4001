package midi

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-arp/debug"
)

// DeviceEvent reports a keyboard appearing or going away
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller // nil on disconnect
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// scanTimeout bounds port enumeration (CoreMIDI can hang)
const scanTimeout = 3 * time.Second

var (
	ErrScanTimeout  = errors.New("midi port scan timed out")
	ErrPortNotFound = errors.New("midi port not found")
)

// Ports is a snapshot of the available MIDI ports
type Ports struct {
	In  []drivers.In
	Out []drivers.Out
}

// ListPorts enumerates ports, giving up after scanTimeout
func ListPorts() (Ports, error) {
	ch := make(chan Ports, 1)
	go func() {
		ch <- Ports{In: gomidi.GetInPorts(), Out: gomidi.GetOutPorts()}
	}()

	select {
	case p := <-ch:
		return p, nil
	case <-time.After(scanTimeout):
		return Ports{}, ErrScanTimeout
	}
}

// OpenOutput returns a sender for the named output port. An empty name
// picks the first port.
func OpenOutput(portName string) (func(gomidi.Message) error, error) {
	ports, err := ListPorts()
	if err != nil {
		return nil, err
	}
	for _, port := range ports.Out {
		if portName != "" && port.String() != portName {
			continue
		}
		send, err := gomidi.SendTo(port)
		if err != nil {
			return nil, fmt.Errorf("open output %q: %w", port.String(), err)
		}
		debug.Log("midi", "output %s", port.String())
		return send, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, portName)
}

// DeviceManager polls for keyboards coming and going. Everything but
// Events belongs to the Run goroutine.
type DeviceManager struct {
	events   chan DeviceEvent
	pollRate time.Duration
	open     func(id string, port drivers.In) (Controller, error)

	connected map[string]Controller

	// Only input ports containing filter (case-insensitive) are opened;
	// skipName is our own output, which must never loop back in
	filter   string
	skipName string
}

func NewDeviceManager(filter, skipName string) *DeviceManager {
	return &DeviceManager{
		events:   make(chan DeviceEvent, 16),
		pollRate: time.Second,
		open: func(id string, port drivers.In) (Controller, error) {
			return OpenKeyboard(id, port)
		},
		connected: make(map[string]Controller),
		filter:    strings.ToLower(filter),
		skipName:  strings.ToLower(skipName),
	}
}

// Events delivers connects and disconnects; it is closed when Run returns
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Run polls until ctx is done, then closes every keyboard
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()
	defer close(dm.events)

	for {
		if ports, err := ListPorts(); err == nil {
			present := make(map[string]drivers.In, len(ports.In))
			for _, p := range ports.In {
				present[p.String()] = p
			}
			dm.reconcile(present)
		} else {
			debug.LogEvery(30, "midi", "scan: %v", err)
		}

		select {
		case <-ctx.Done():
			for id, c := range dm.connected {
				c.Close()
				delete(dm.connected, id)
			}
			return
		case <-ticker.C:
		}
	}
}

// reconcile opens wanted ports that are new and drops ones that vanished
func (dm *DeviceManager) reconcile(present map[string]drivers.In) {
	for id, port := range present {
		if _, ok := dm.connected[id]; ok || !dm.wants(id) {
			continue
		}
		c, err := dm.open(id, port)
		if err != nil {
			debug.Log("midi", "open %s: %v", id, err)
			continue
		}
		dm.connected[id] = c
		dm.events <- DeviceEvent{Type: DeviceConnected, Controller: c, ID: id}
	}

	for id, c := range dm.connected {
		if _, ok := present[id]; ok {
			continue
		}
		c.Close()
		delete(dm.connected, id)
		dm.events <- DeviceEvent{Type: DeviceDisconnected, ID: id}
	}
}

func (dm *DeviceManager) wants(name string) bool {
	name = strings.ToLower(name)
	switch {
	case dm.skipName != "" && name == dm.skipName:
		return false
	case strings.Contains(name, "through"):
		return false
	}
	return dm.filter == "" || strings.Contains(name, dm.filter)
}
