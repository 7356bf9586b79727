package retromodule

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
)

// ErrSymbolMissing is returned (wrapped with the missing symbol's name
// and the platform loader's error text) when a required libretro symbol
// cannot be resolved.
type ErrSymbolMissing struct {
	Symbol string
	Cause  error
}

func (e *ErrSymbolMissing) Error() string {
	return fmt.Sprintf("retromodule: symbol %q missing: %v", e.Symbol, e.Cause)
}

func (e *ErrSymbolMissing) Unwrap() error { return e.Cause }

// Module wraps a loaded libretro shared library. It holds no emulator
// state beyond the dlopen handle and the resolved function pointers.
type Module struct {
	handle uintptr

	initFn                 func()
	deinitFn                func()
	apiVersionFn            func() uint32
	getSystemInfoFn         func(out *SystemInfo)
	getSystemAVInfoFn       func(out *SystemAVInfo)
	setEnvironmentFn        func(cb uintptr)
	setVideoRefreshFn       func(cb uintptr)
	setAudioSampleFn        func(cb uintptr)
	setAudioSampleBatchFn   func(cb uintptr)
	setInputPollFn          func(cb uintptr)
	setInputStateFn         func(cb uintptr)
	setControllerPortDevFn  func(port, device uint32)
	resetFn                 func()
	runFn                   func()
	serializeSizeFn         func() uintptr
	serializeFn             func(data unsafe.Pointer, size uintptr) bool
	unserializeFn           func(data unsafe.Pointer, size uintptr) bool
	cheatResetFn            func()
	cheatSetFn              func(index uint32, enabled bool, code unsafe.Pointer)
	loadGameFn              func(game *GameInfo) bool
	loadGameSpecialFn       func(gameType uint32, info *GameInfo, numInfo uintptr) bool
	unloadGameFn            func()
	getRegionFn             func() uint32
	getMemoryDataFn         func(id uint32) unsafe.Pointer
	getMemorySizeFn         func(id uint32) uintptr
}

// Open opens the shared library at path and resolves every required
// libretro symbol. If any symbol is missing, the handle is closed and
// an *ErrSymbolMissing is returned.
func Open(path string) (*Module, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("retromodule: opening %q: %w", path, err)
	}

	for _, name := range requiredSymbols {
		if _, err := purego.Dlsym(handle, name); err != nil {
			purego.Dlclose(handle)
			return nil, &ErrSymbolMissing{Symbol: name, Cause: err}
		}
	}

	m := &Module{handle: handle}
	purego.RegisterLibFunc(&m.initFn, handle, "retro_init")
	purego.RegisterLibFunc(&m.deinitFn, handle, "retro_deinit")
	purego.RegisterLibFunc(&m.apiVersionFn, handle, "retro_api_version")
	purego.RegisterLibFunc(&m.getSystemInfoFn, handle, "retro_get_system_info")
	purego.RegisterLibFunc(&m.getSystemAVInfoFn, handle, "retro_get_system_av_info")
	purego.RegisterLibFunc(&m.setEnvironmentFn, handle, "retro_set_environment")
	purego.RegisterLibFunc(&m.setVideoRefreshFn, handle, "retro_set_video_refresh")
	purego.RegisterLibFunc(&m.setAudioSampleFn, handle, "retro_set_audio_sample")
	purego.RegisterLibFunc(&m.setAudioSampleBatchFn, handle, "retro_set_audio_sample_batch")
	purego.RegisterLibFunc(&m.setInputPollFn, handle, "retro_set_input_poll")
	purego.RegisterLibFunc(&m.setInputStateFn, handle, "retro_set_input_state")
	purego.RegisterLibFunc(&m.setControllerPortDevFn, handle, "retro_set_controller_port_device")
	purego.RegisterLibFunc(&m.resetFn, handle, "retro_reset")
	purego.RegisterLibFunc(&m.runFn, handle, "retro_run")
	purego.RegisterLibFunc(&m.serializeSizeFn, handle, "retro_serialize_size")
	purego.RegisterLibFunc(&m.serializeFn, handle, "retro_serialize")
	purego.RegisterLibFunc(&m.unserializeFn, handle, "retro_unserialize")
	purego.RegisterLibFunc(&m.cheatResetFn, handle, "retro_cheat_reset")
	purego.RegisterLibFunc(&m.cheatSetFn, handle, "retro_cheat_set")
	purego.RegisterLibFunc(&m.loadGameFn, handle, "retro_load_game")
	purego.RegisterLibFunc(&m.loadGameSpecialFn, handle, "retro_load_game_special")
	purego.RegisterLibFunc(&m.unloadGameFn, handle, "retro_unload_game")
	purego.RegisterLibFunc(&m.getRegionFn, handle, "retro_get_region")
	purego.RegisterLibFunc(&m.getMemoryDataFn, handle, "retro_get_memory_data")
	purego.RegisterLibFunc(&m.getMemorySizeFn, handle, "retro_get_memory_size")

	return m, nil
}

// Close closes the library handle. Safe to call once; the Module must
// not be used afterward.
func (m *Module) Close() error {
	return purego.Dlclose(m.handle)
}

func (m *Module) Init()   { m.initFn() }
func (m *Module) Deinit() { m.deinitFn() }
func (m *Module) APIVersion() uint32 { return m.apiVersionFn() }

func (m *Module) GetSystemInfo() SystemInfo {
	var out SystemInfo
	m.getSystemInfoFn(&out)
	return out
}

func (m *Module) GetSystemAVInfo() SystemAVInfo {
	var out SystemAVInfo
	m.getSystemAVInfoFn(&out)
	return out
}

// SetEnvironment registers cb, a C function pointer produced by
// purego.NewCallback from an EnvironmentFunc, as the module's
// environment callback.
func (m *Module) SetEnvironment(cb uintptr)       { m.setEnvironmentFn(cb) }
func (m *Module) SetVideoRefresh(cb uintptr)      { m.setVideoRefreshFn(cb) }
func (m *Module) SetAudioSample(cb uintptr)       { m.setAudioSampleFn(cb) }
func (m *Module) SetAudioSampleBatch(cb uintptr)  { m.setAudioSampleBatchFn(cb) }
func (m *Module) SetInputPoll(cb uintptr)         { m.setInputPollFn(cb) }
func (m *Module) SetInputState(cb uintptr)        { m.setInputStateFn(cb) }

func (m *Module) SetControllerPortDevice(port, device uint32) {
	m.setControllerPortDevFn(port, device)
}

func (m *Module) Reset() { m.resetFn() }
func (m *Module) Run()   { m.runFn() }

func (m *Module) SerializeSize() uintptr { return m.serializeSizeFn() }

func (m *Module) Serialize(data []byte) bool {
	if len(data) == 0 {
		return m.serializeFn(nil, 0)
	}
	return m.serializeFn(unsafe.Pointer(&data[0]), uintptr(len(data)))
}

func (m *Module) Unserialize(data []byte) bool {
	if len(data) == 0 {
		return m.unserializeFn(nil, 0)
	}
	return m.unserializeFn(unsafe.Pointer(&data[0]), uintptr(len(data)))
}

func (m *Module) CheatReset() { m.cheatResetFn() }

func (m *Module) CheatSet(index uint32, enabled bool, code string) {
	b := append([]byte(code), 0)
	m.cheatSetFn(index, enabled, unsafe.Pointer(&b[0]))
}

func (m *Module) LoadGame(game *GameInfo) bool {
	return m.loadGameFn(game)
}

func (m *Module) LoadGameSpecial(gameType uint32, info []GameInfo) bool {
	if len(info) == 0 {
		return m.loadGameSpecialFn(gameType, nil, 0)
	}
	return m.loadGameSpecialFn(gameType, &info[0], uintptr(len(info)))
}

func (m *Module) UnloadGame() { m.unloadGameFn() }

func (m *Module) GetRegion() uint32 { return m.getRegionFn() }

func (m *Module) GetMemoryData(id uint32) unsafe.Pointer { return m.getMemoryDataFn(id) }
func (m *Module) GetMemorySize(id uint32) uintptr         { return m.getMemorySizeFn(id) }
