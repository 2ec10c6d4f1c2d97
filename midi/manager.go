package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"xtlz-piano/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DeviceManager handles hot-plug detection of MIDI keyboards and merges
// their events into one stream
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	notes       chan Event
	pollRate    time.Duration
	filter      string
	forwarders  sync.WaitGroup

	listPorts func() []drivers.In
	open      func(id string, in drivers.In) (Controller, error)
}

// NewDeviceManager creates a device manager. A non-empty filter restricts
// it to ports whose name contains filter (case-insensitive).
func NewDeviceManager(filter string) *DeviceManager {
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		notes:       make(chan Event, 128),
		pollRate:    time.Second,
		filter:      filter,
		listPorts: func() []drivers.In {
			return gomidi.GetInPorts()
		},
		open: func(id string, in drivers.In) (Controller, error) {
			return NewKeyboardController(id, in)
		},
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Notes returns the merged event stream of all connected keyboards
func (dm *DeviceManager) Notes() <-chan Event {
	return dm.notes
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			dm.forwarders.Wait()
			close(dm.events)
			close(dm.notes)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// Port enumeration can hang on some backends
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- dm.listPorts()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("midi", "port scan timed out")
		return
	}

	ports := make(map[string]drivers.In)
	for _, in := range inPorts {
		if Matches(in.String(), dm.filter) {
			ports[in.String()] = in
		}
	}
	dm.sync(ports)
}

// sync opens newly seen ports and closes vanished ones
func (dm *DeviceManager) sync(ports map[string]drivers.In) {
	for id, in := range ports {
		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		c, err := dm.open(id, in)
		if err != nil {
			debug.Log("midi", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()

		dm.forwarders.Add(1)
		go dm.forward(c)
		dm.emit(DeviceEvent{Type: DeviceConnected, Controller: c, ID: id})
	}

	// Check for disconnects
	dm.mu.Lock()
	var gone []string
	for id, c := range dm.controllers {
		if _, ok := ports[id]; !ok {
			c.Close()
			delete(dm.controllers, id)
			gone = append(gone, id)
		}
	}
	dm.mu.Unlock()

	for _, id := range gone {
		dm.emit(DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

// forward copies one controller's events until it is closed
func (dm *DeviceManager) forward(c Controller) {
	defer dm.forwarders.Done()
	for ev := range c.Events() {
		select {
		case dm.notes <- ev:
		default:
			debug.LogEvery(100, "midi", "note stream full, dropping event from %s", c.ID())
		}
	}
}

func (dm *DeviceManager) emit(ev DeviceEvent) {
	select {
	case dm.events <- ev:
	default:
		debug.Log("midi", "device event dropped: %s type=%d", ev.ID, ev.Type)
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// Matches reports whether a port name should be opened as a keyboard.
// The loopback "through" ports are never opened.
func Matches(name, filter string) bool {
	lower := strings.ToLower(name)
	if strings.Contains(lower, "through") {
		return false
	}
	return filter == "" || strings.Contains(lower, strings.ToLower(filter))
}
