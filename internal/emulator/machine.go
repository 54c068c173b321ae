package emulator

import (
	"fmt"

	"github.com/ddugovic/tasbot/internal/domain"
)

// RAM addresses of the reference machine. The machine is a stand-in
// for a real console core behind the same adapter: a small fixed-point
// world whose RAM exhibits the byte patterns the objective model feeds
// on — monotone counters, position bytes, multi-byte little-endian
// values.
const (
	addrFrameLo = 0x00
	addrFrameHi = 0x01
	addrPosX    = 0x10
	addrPosY    = 0x11
	addrScreen  = 0x12
	addrScoreLo = 0x20
	addrScoreHi = 0x21
	addrTimer   = 0x30
	addrNoise   = 0x40
)

// Machine is the deterministic reference console. The entire state
// lives in work RAM, so Save and Load are RAM copies.
type Machine struct {
	ram [domain.RAMSize]byte
}

// NewMachine returns a machine in its power-on state.
func NewMachine() *Machine {
	m := &Machine{}
	m.ram[addrTimer] = 0xFF
	return m
}

// Step advances one frame.
func (m *Machine) Step(input byte) {
	frame := uint16(m.ram[addrFrameLo]) | uint16(m.ram[addrFrameHi])<<8
	frame++
	m.ram[addrFrameLo] = byte(frame)
	m.ram[addrFrameHi] = byte(frame >> 8)

	if input&domain.BtnRight != 0 {
		m.ram[addrPosX]++
		if m.ram[addrPosX] == 0 {
			m.ram[addrScreen]++
		}
	}
	if input&domain.BtnLeft != 0 && m.ram[addrPosX] > 0 {
		m.ram[addrPosX]--
	}
	if input&domain.BtnDown != 0 {
		m.ram[addrPosY]++
	}
	if input&domain.BtnUp != 0 && m.ram[addrPosY] > 0 {
		m.ram[addrPosY]--
	}

	if input&domain.BtnA != 0 && frame%4 == 0 {
		score := uint16(m.ram[addrScoreLo]) | uint16(m.ram[addrScoreHi])<<8
		score++
		m.ram[addrScoreLo] = byte(score)
		m.ram[addrScoreHi] = byte(score >> 8)
	}

	if frame%16 == 0 && m.ram[addrTimer] > 0 {
		m.ram[addrTimer]--
	}

	// Deterministic scratch byte so unrelated RAM is not constant.
	m.ram[addrNoise] = m.ram[addrNoise]*31 + input + byte(frame)
}

// CachedStep on the bare machine is a plain Step; caching lives in the
// Cached wrapper.
func (m *Machine) CachedStep(input byte) { m.Step(input) }

// Save captures the machine state.
func (m *Machine) Save() Snapshot {
	return append(Snapshot(nil), m.ram[:]...)
}

// Load restores a state captured by Save.
func (m *Machine) Load(s Snapshot) {
	if len(s) != domain.RAMSize {
		panic(fmt.Sprintf("emulator: snapshot size %d, want %d", len(s), domain.RAMSize))
	}
	copy(m.ram[:], s)
}

// ReadRAM returns a copy of the work RAM.
func (m *Machine) ReadRAM() []byte {
	return append([]byte(nil), m.ram[:]...)
}

// ResetCache is a no-op on the bare machine.
func (m *Machine) ResetCache(capacityA, capacityB int) {}
