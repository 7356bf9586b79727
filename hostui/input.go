package hostui

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/retrohost/corehost/input"
)

// host is the subset of *corehost.Host a Poller drives. Defined locally
// so Poller needs only the two input-setting methods and the input
// package's types, not a concrete *corehost.Host.
type host interface {
	SetInput(port uint8, in input.Input, value int16) bool
	SetKey(port uint8, in input.Input, key uint16, pressed bool) bool
}

// gamepadDeadzone is the minimum abs(axis) before an analog stick tilt is
// treated as a directional press.
const gamepadDeadzone = 0.5

// Poller reads keyboard and gamepad state once per frame and writes it
// into a Host's input store, mirroring libretro's "frontend polls, core
// doesn't" division: the module never calls anything to produce input,
// it only reads back whatever the last Poll wrote.
type Poller struct{}

// NewPoller returns a Poller. It holds no per-frame state of its own.
func NewPoller() *Poller {
	return &Poller{}
}

// Poll reads the current keyboard and all connected gamepads' digital
// and analog state and writes joypad button values for port into h.
func (p *Poller) Poll(h host, port uint8) {
	pressed := map[int]bool{
		input.JoypadUp:     ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW),
		input.JoypadDown:   ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS),
		input.JoypadLeft:   ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA),
		input.JoypadRight:  ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD),
		input.JoypadA:      ebiten.IsKeyPressed(ebiten.KeyX),
		input.JoypadB:      ebiten.IsKeyPressed(ebiten.KeyZ),
		input.JoypadX:      ebiten.IsKeyPressed(ebiten.KeyC),
		input.JoypadY:      ebiten.IsKeyPressed(ebiten.KeyV),
		input.JoypadStart:  ebiten.IsKeyPressed(ebiten.KeyEnter),
		input.JoypadSelect: ebiten.IsKeyPressed(ebiten.KeyShift),
		input.JoypadL:      ebiten.IsKeyPressed(ebiten.KeyQ),
		input.JoypadR:      ebiten.IsKeyPressed(ebiten.KeyE),
	}

	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if !ebiten.IsStandardGamepadLayoutAvailable(id) {
			continue
		}

		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftTop) {
			pressed[input.JoypadUp] = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftBottom) {
			pressed[input.JoypadDown] = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftLeft) {
			pressed[input.JoypadLeft] = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftRight) {
			pressed[input.JoypadRight] = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom) {
			pressed[input.JoypadB] = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightRight) {
			pressed[input.JoypadA] = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightTop) {
			pressed[input.JoypadY] = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightLeft) {
			pressed[input.JoypadX] = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonCenterLeft) {
			pressed[input.JoypadSelect] = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonCenterRight) {
			pressed[input.JoypadStart] = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontTopLeft) {
			pressed[input.JoypadL] = true
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontTopRight) {
			pressed[input.JoypadR] = true
		}

		axisX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		axisY := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
		if axisX < -gamepadDeadzone {
			pressed[input.JoypadLeft] = true
		}
		if axisX > gamepadDeadzone {
			pressed[input.JoypadRight] = true
		}
		if axisY < -gamepadDeadzone {
			pressed[input.JoypadUp] = true
		}
		if axisY > gamepadDeadzone {
			pressed[input.JoypadDown] = true
		}
	}

	for id, down := range pressed {
		value := int16(0)
		if down {
			value = 1
		}
		h.SetInput(port, input.MakeInput(input.DeviceJoypad, 0, uint8(id)), value)
	}
}
