package input

import "testing"

const (
	idJoypadB = 0
)

func TestInput_EncodeDecode(t *testing.T) {
	in := MakeInput(DeviceJoypad, 3, idJoypadB)
	if in.Device() != DeviceJoypad {
		t.Errorf("Device() = %d, want %d", in.Device(), DeviceJoypad)
	}
	if in.Index() != 3 {
		t.Errorf("Index() = %d, want 3", in.Index())
	}
	if in.ID() != idJoypadB {
		t.Errorf("ID() = %d, want %d", in.ID(), idJoypadB)
	}
}

// TestStore_JoypadRoundTrip exercises setInput(0, JOYPAD_B, 1), which
// must be visible to the module's read path at the same
// coordinates.
func TestStore_JoypadRoundTrip(t *testing.T) {
	s := NewStore()
	in := MakeInput(DeviceJoypad, 0, idJoypadB)

	if !s.SetInput(0, in, 1) {
		t.Fatal("SetInput failed")
	}

	got := s.Read(0, DeviceJoypad, 0, idJoypadB)
	if got != 1 {
		t.Fatalf("Read() = %d, want 1", got)
	}
}

func TestStore_SetInputRejectsPointerDevice(t *testing.T) {
	s := NewStore()
	in := MakeInput(DevicePointer, 0, 0)
	if s.SetInput(0, in, 1) {
		t.Fatal("SetInput should reject Pointer device")
	}
}

func TestStore_SetPointerInput(t *testing.T) {
	s := NewStore()
	in := MakeInput(DevicePointer, 0, 2) // id = 2 (e.g. RETRO_DEVICE_ID_POINTER_PRESSED)

	if !s.SetPointerInput(0, in, 5, 1) {
		t.Fatal("SetPointerInput failed")
	}

	got := s.Read(0, DevicePointer, 5, 2)
	if got != 1 {
		t.Fatalf("Read() = %d, want 1", got)
	}
}

func TestStore_SetPointerInputRejectsNonPointerDevice(t *testing.T) {
	s := NewStore()
	in := MakeInput(DeviceJoypad, 0, 0)
	if s.SetPointerInput(0, in, 0, 1) {
		t.Fatal("SetPointerInput should reject non-Pointer device")
	}
}

func TestStore_SetInputBoundsChecked(t *testing.T) {
	s := NewStore()
	cases := []Input{
		MakeInput(250, 0, 0), // device out of range
	}
	for _, in := range cases {
		if s.SetInput(0, in, 1) {
			t.Errorf("SetInput(%v) should have failed bounds check", in)
		}
	}
	if s.SetInput(200, MakeInput(DeviceJoypad, 0, 0), 1) {
		t.Error("SetInput with out-of-range port should fail")
	}
}

func TestStore_SetKeyAndReadBack(t *testing.T) {
	s := NewStore()
	in := MakeInput(DeviceKeyboard, 0, 0)

	if !s.SetKey(0, in, 42, true) {
		t.Fatal("SetKey failed")
	}
	if got := s.Read(0, DeviceKeyboard, 0, 42); got != 32767 {
		t.Fatalf("Read() = %d, want 32767", got)
	}

	if !s.SetKey(0, in, 42, false) {
		t.Fatal("SetKey (release) failed")
	}
	if got := s.Read(0, DeviceKeyboard, 0, 42); got != 0 {
		t.Fatalf("Read() = %d, want 0 after release", got)
	}
}

func TestStore_SetKeyRejectsNonKeyboardDevice(t *testing.T) {
	s := NewStore()
	in := MakeInput(DeviceJoypad, 0, 0)
	if s.SetKey(0, in, 42, true) {
		t.Fatal("SetKey should reject non-Keyboard device")
	}
}

func TestStore_SetKeyRejectsOutOfRangeKey(t *testing.T) {
	s := NewStore()
	in := MakeInput(DeviceKeyboard, 0, 0)
	if s.SetKey(0, in, RetroKLast, true) {
		t.Fatal("SetKey should reject key >= RetroKLast")
	}
}

func TestStore_ReadMasksQualifierBits(t *testing.T) {
	s := NewStore()
	in := MakeInput(DeviceJoypad, 0, idJoypadB)
	s.SetInput(0, in, 7)

	// A raw device value with extra high bits set (as a module might pass
	// when combining device with a sub-device qualifier) must still
	// resolve to plain Joypad after masking.
	got := s.Read(0, uint32(DeviceJoypad)|0x0100, 0, idJoypadB)
	if got != 7 {
		t.Fatalf("Read() = %d, want 7", got)
	}
}

func TestStore_ReadOutOfRangeReturnsZero(t *testing.T) {
	s := NewStore()
	if got := s.Read(0, DeviceJoypad, 0, 99); got != 0 {
		t.Fatalf("Read() = %d, want 0 for out-of-range id", got)
	}
	if got := s.Read(99, DeviceJoypad, 0, 0); got != 0 {
		t.Fatalf("Read() = %d, want 0 for out-of-range port", got)
	}
}

func TestStore_DefaultsAreZero(t *testing.T) {
	s := NewStore()
	if got := s.Read(0, DeviceJoypad, 0, idJoypadB); got != 0 {
		t.Fatalf("Read() = %d, want 0 by default", got)
	}
	if got := s.Read(0, DeviceKeyboard, 0, 42); got != 0 {
		t.Fatalf("Read() = %d, want 0 by default for keyboard", got)
	}
}
