package midi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

func TestEventMessageUsesZeroBasedChannel(t *testing.T) {
	on := On(12, 60, 100)
	on.Channel = 3
	var ch, key, vel uint8
	require.True(t, on.Message().GetNoteOn(&ch, &key, &vel))
	assert.Equal(t, uint8(2), ch)
	assert.Equal(t, uint8(60), key)
	assert.Equal(t, uint8(100), vel)

	off := Off(0, 64)
	require.True(t, off.Message().GetNoteOff(&ch, &key, &vel))
	assert.Equal(t, uint8(0), ch)
	assert.Equal(t, uint8(64), key)
}

func TestFromMessage(t *testing.T) {
	evt, ok := FromMessage(gomidi.NoteOn(9, 61, 90), 7)
	require.True(t, ok)
	assert.Equal(t, Event{Offset: 7, Type: NoteOn, Channel: 10, Note: 61, Velocity: 90}, evt)

	// velocity 0 note-on is a release
	evt, ok = FromMessage(gomidi.NoteOn(0, 61, 0), 0)
	require.True(t, ok)
	assert.True(t, evt.IsNoteOff())

	_, ok = FromMessage(gomidi.ControlChange(0, 7, 100), 0)
	assert.False(t, ok)
}

func TestKeyboardForwardsOnAndOff(t *testing.T) {
	kb, err := OpenKeyboard("test", nil)
	require.NoError(t, err)
	defer kb.Close()

	now := time.Now()
	kb.handle(gomidi.NoteOn(0, 60, 80), now)
	kb.handle(gomidi.NoteOff(0, 60), now)
	kb.handle(gomidi.ProgramChange(0, 3), now)

	first := <-kb.NoteEvents()
	assert.True(t, first.On)
	assert.Equal(t, uint8(80), first.Velocity)
	second := <-kb.NoteEvents()
	assert.False(t, second.On)
	assert.Equal(t, uint8(60), second.Note)
	assert.Len(t, kb.NoteEvents(), 0)
}

func TestDeviceManagerFilter(t *testing.T) {
	dm := NewDeviceManager("", "Arp Out")
	assert.True(t, dm.wants("USB Keystation 61"))
	assert.False(t, dm.wants("Midi Through Port-0"))
	assert.False(t, dm.wants("arp out"))

	dm = NewDeviceManager("keystation", "")
	assert.True(t, dm.wants("USB Keystation 61"))
	assert.False(t, dm.wants("nanoKEY2"))
}

func TestNoteEventAt(t *testing.T) {
	on := NoteEvent{Note: 60, Velocity: 90, Channel: 2, On: true}.At(17)
	assert.Equal(t, Event{Offset: 17, Type: NoteOn, Channel: 2, Note: 60, Velocity: 90}, on)

	off := NoteEvent{Note: 60, Velocity: 0, On: true}.At(3)
	assert.True(t, off.IsNoteOff())
	assert.Equal(t, 3, off.Offset)
}

func TestDeviceManagerReconcile(t *testing.T) {
	dm := NewDeviceManager("", "Arp Out")
	opened := 0
	dm.open = func(id string, _ drivers.In) (Controller, error) {
		opened++
		return OpenKeyboard(id, nil)
	}

	dm.reconcile(map[string]drivers.In{"Keystation": nil, "Arp Out": nil})
	require.Len(t, dm.events, 1)
	evt := <-dm.events
	assert.Equal(t, DeviceConnected, evt.Type)
	assert.Equal(t, "Keystation", evt.ID)
	require.NotNil(t, evt.Controller)

	// already open: nothing happens
	dm.reconcile(map[string]drivers.In{"Keystation": nil})
	assert.Empty(t, dm.events)
	assert.Equal(t, 1, opened)

	dm.reconcile(map[string]drivers.In{})
	evt = <-dm.events
	assert.Equal(t, DeviceDisconnected, evt.Type)
	assert.Nil(t, evt.Controller)
	assert.Empty(t, dm.connected)
}
