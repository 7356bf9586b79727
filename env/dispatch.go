package env

import (
	"strings"
	"unsafe"

	"github.com/retrohost/corehost/memmap"
)

// cString reads a NUL-terminated C string starting at ptr. A nil ptr
// yields "".
func cString(ptr unsafe.Pointer) string {
	if ptr == nil {
		return ""
	}
	var b strings.Builder
	for p := uintptr(ptr); ; p++ {
		c := *(*byte)(unsafe.Pointer(p))
		if c == 0 {
			break
		}
		b.WriteByte(c)
	}
	return b.String()
}

// cStringArray walks a NULL-terminated array of C string pointers
// (char**), as used by retro_system_info.valid_extensions-style vectors
// elsewhere in libretro; not currently exercised by a command here but
// kept as the one chokepoint callers needing it should use.
func cStringArray(ptr unsafe.Pointer) []string {
	if ptr == nil {
		return nil
	}
	var out []string
	for p := uintptr(ptr); ; p += unsafe.Sizeof(uintptr(0)) {
		entry := *(*unsafe.Pointer)(unsafe.Pointer(p))
		if entry == nil {
			break
		}
		out = append(out, cString(entry))
	}
	return out
}

// cVariable mirrors retro_variable: two C string pointers.
type cVariable struct {
	Key   unsafe.Pointer
	Value unsafe.Pointer
}

// cInputDescriptor mirrors retro_input_descriptor.
type cInputDescriptor struct {
	Port        uint32
	Device      uint32
	Index       uint32
	ID          uint32
	Description unsafe.Pointer
}

// cMemoryDescriptor mirrors retro_memory_descriptor (size_t fields are
// taken as 64-bit, matching every platform this host targets).
type cMemoryDescriptor struct {
	Flags      uint64
	Ptr        unsafe.Pointer
	Offset     uint64
	Start      uint64
	Select     uint64
	Disconnect uint64
	Len        uint64
	AddrSpace  unsafe.Pointer
}

// cMemoryMap mirrors retro_memory_map.
type cMemoryMap struct {
	Descriptors    unsafe.Pointer
	NumDescriptors uint32
}

// cMessage mirrors retro_message.
type cMessage struct {
	Msg             unsafe.Pointer
	FramesToDisplay uint32
}

func decodeMemoryMap(data unsafe.Pointer) []memmap.Descriptor {
	if data == nil {
		return nil
	}
	m := (*cMemoryMap)(data)
	if m.Descriptors == nil || m.NumDescriptors == 0 {
		return nil
	}

	out := make([]memmap.Descriptor, 0, m.NumDescriptors)
	size := unsafe.Sizeof(cMemoryDescriptor{})
	base := uintptr(m.Descriptors)
	for i := uint32(0); i < m.NumDescriptors; i++ {
		d := (*cMemoryDescriptor)(unsafe.Pointer(base + uintptr(i)*size))
		out = append(out, memmap.Descriptor{
			Flags:      d.Flags,
			Ptr:        uintptr(d.Ptr),
			Offset:     d.Offset,
			Start:      d.Start,
			Select:     d.Select,
			Disconnect: d.Disconnect,
			Len:        d.Len,
			AddrSpace:  cString(d.AddrSpace),
		})
	}
	return out
}

// Dispatch implements the module-facing retro_environment_t callback:
// cmd selects the handler, data points at command-specific, C-ABI
// layout-compatible memory owned by the caller (the module, or the host
// for GET_* commands writing a result back). Unhandled commands return
// false, matching libretro's convention that a core must tolerate a
// false return from any environment call.
func (s *State) Dispatch(cmd uint32, data unsafe.Pointer) bool {
	switch cmd {
	case CmdGetOverscan:
		if data != nil {
			*(*bool)(data) = false
		}
		return true

	case CmdGetCanDupe:
		if data != nil {
			*(*bool)(data) = true
		}
		return true

	case CmdSetPixelFormat:
		if data == nil {
			return false
		}
		return s.SetPixelFormat(*(*uint32)(data))

	case CmdSetPerformanceLevel:
		if data == nil {
			return false
		}
		s.SetPerformanceLevel(int(*(*uint32)(data)))
		return true

	case CmdSetInputDescriptors:
		descs := decodeInputDescriptors(data)
		s.SetInputDescriptors(descs)
		return true

	case CmdSetVariables:
		raw := decodeVariables(data)
		s.SetVariables(raw)
		return true

	case CmdGetVariable:
		if data == nil {
			return false
		}
		v := (*cVariable)(data)
		key := cString(v.Key)
		buf, ok := s.SelectedBuf(key)
		if !ok {
			v.Value = nil
			return false
		}
		v.Value = unsafe.Pointer(&buf[0])
		return true

	case CmdGetVariableUpdate:
		if data == nil {
			return false
		}
		*(*bool)(data) = s.GetVariableUpdate()
		return true

	case CmdSetHWRender:
		if data == nil {
			return false
		}
		cb := *(*HWRenderCallback)(data)
		return s.SetHWRender(cb)

	case CmdSetSystemAVInfo:
		if data == nil {
			return false
		}
		s.SetSystemAVInfo(*(*SystemAVInfo)(data))
		return true

	case CmdSetGeometry:
		if data == nil {
			return false
		}
		s.SetGeometry(*(*GameGeometry)(data))
		return true

	case CmdSetMemoryMaps:
		s.SetMemoryMaps(decodeMemoryMap(data))
		return true

	case CmdSetSupportNoGame:
		if data == nil {
			return false
		}
		s.SetSupportNoGame(*(*bool)(data))
		return true

	case CmdSetSupportAchievements:
		if data == nil {
			return false
		}
		s.SetSupportAchievements(*(*bool)(data))
		return true

	case CmdGetSystemDirectory:
		return writeBufOut(data, s.SystemDirBuf())

	case CmdGetCoreAssetsDirectory:
		return writeBufOut(data, s.CoreAssetsDirBuf())

	case CmdGetSaveDirectory:
		return writeBufOut(data, s.SaveDirBuf())

	case CmdGetLibretroPath:
		return writeBufOut(data, s.LibretroPathBuf())

	case CmdSetMessage:
		if data == nil {
			return false
		}
		msg := (*cMessage)(data)
		s.SetMessage(cString(msg.Msg), msg.FramesToDisplay)
		return true

	case CmdGetLanguage:
		if data == nil {
			return false
		}
		*(*uint32)(data) = 0 // RETRO_LANGUAGE_ENGLISH
		return true

	case CmdShutdown:
		return false

	case CmdGetLogInterface:
		// Filled in by the caller with a trampoline to the host logger;
		// this package only owns the pure command semantics.
		return data != nil

	default:
		return false
	}
}

// writeBufOut writes a pointer to buf's first byte into data. buf must
// be a retained, NUL-terminated buffer owned by State (not a transient
// allocation) so the pointer stays valid after Dispatch returns.
func writeBufOut(data unsafe.Pointer, buf []byte) bool {
	if data == nil {
		return false
	}
	*(*unsafe.Pointer)(data) = unsafe.Pointer(&buf[0])
	return true
}

func decodeVariables(data unsafe.Pointer) []struct{ Key, Value string } {
	if data == nil {
		return nil
	}
	var out []struct{ Key, Value string }
	size := unsafe.Sizeof(cVariable{})
	for p := uintptr(data); ; p += size {
		v := (*cVariable)(unsafe.Pointer(p))
		if v.Key == nil {
			break
		}
		out = append(out, struct{ Key, Value string }{cString(v.Key), cString(v.Value)})
	}
	return out
}

func decodeInputDescriptors(data unsafe.Pointer) []InputDescriptor {
	if data == nil {
		return nil
	}
	var out []InputDescriptor
	size := unsafe.Sizeof(cInputDescriptor{})
	for p := uintptr(data); ; p += size {
		d := (*cInputDescriptor)(unsafe.Pointer(p))
		if d.Description == nil {
			break
		}
		out = append(out, InputDescriptor{
			Port:        d.Port,
			Device:      d.Device,
			Index:       d.Index,
			ID:          d.ID,
			Description: cString(d.Description),
		})
	}
	return out
}
