// Package retromodule implements the Core Host's dynamic module loader
// (spec C1): it opens a libretro shared library, resolves every symbol
// of the ~25-function ABI, and exposes a typed façade. Symbol resolution
// and callback registration use github.com/ebitengine/purego, so no cgo
// and no platform C compiler are required to reach the module's C ABI.
package retromodule

import "unsafe"

// GameInfo mirrors struct retro_game_info.
type GameInfo struct {
	Path unsafe.Pointer // const char*
	Data unsafe.Pointer // const void*
	Size uint64
	Meta unsafe.Pointer // const char*
}

// SystemInfo mirrors struct retro_system_info.
type SystemInfo struct {
	LibraryName     unsafe.Pointer // const char*
	LibraryVersion  unsafe.Pointer // const char*
	ValidExtensions unsafe.Pointer // const char*, '|'-delimited
	NeedFullpath    bool
	BlockExtract    bool
}

// GameGeometry mirrors struct retro_game_geometry.
type GameGeometry struct {
	BaseWidth   uint32
	BaseHeight  uint32
	MaxWidth    uint32
	MaxHeight   uint32
	AspectRatio float32
}

// SystemTiming mirrors struct retro_system_timing.
type SystemTiming struct {
	FPS        float64
	SampleRate float64
}

// SystemAVInfo mirrors struct retro_system_av_info.
type SystemAVInfo struct {
	Geometry GameGeometry
	Timing   SystemTiming
}

// Callback function pointer types, matching the libretro.h typedefs.
// These are the Go-side signatures purego.RegisterLibFunc binds retro_set_*
// to, and purego.NewCallback produces a C-callable trampoline from.
type (
	EnvironmentFunc  func(cmd uint32, data unsafe.Pointer) bool
	VideoRefreshFunc func(data unsafe.Pointer, width, height uint32, pitch uintptr)
	AudioSampleFunc  func(left, right int16)
	AudioBatchFunc   func(data unsafe.Pointer, frames uintptr) uintptr
	InputPollFunc    func()
	InputStateFunc   func(port, device, index, id uint32) int16
)

// requiredSymbols is the full libretro ABI surface a Module must
// resolve before it can be used.
var requiredSymbols = []string{
	"retro_init",
	"retro_deinit",
	"retro_api_version",
	"retro_get_system_info",
	"retro_get_system_av_info",
	"retro_set_environment",
	"retro_set_video_refresh",
	"retro_set_audio_sample",
	"retro_set_audio_sample_batch",
	"retro_set_input_poll",
	"retro_set_input_state",
	"retro_set_controller_port_device",
	"retro_reset",
	"retro_run",
	"retro_serialize_size",
	"retro_serialize",
	"retro_unserialize",
	"retro_cheat_reset",
	"retro_cheat_set",
	"retro_load_game",
	"retro_load_game_special",
	"retro_unload_game",
	"retro_get_region",
	"retro_get_memory_data",
	"retro_get_memory_size",
}
