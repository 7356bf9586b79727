// Package corehost implements the Core Host orchestrator (spec C7): it
// owns a loaded libretro module plus every piece of state the other six
// components manage, drives the init/loadGame/run/deinit lifecycle, and
// exposes the public surface (step, setInput, setKey, setVariable,
// accessors) that an outer presentation layer drives.
package corehost

import (
	"fmt"
	"log"
	"unsafe"

	"github.com/retrohost/corehost/audio"
	"github.com/retrohost/corehost/env"
	"github.com/retrohost/corehost/input"
	"github.com/retrohost/corehost/retromodule"
	"github.com/retrohost/corehost/romloader"
	"github.com/retrohost/corehost/router"
	"github.com/retrohost/corehost/video"
)

// Paths are the three configured directories, set once by the caller and
// surfaced to the module via the environment dispatcher's
// GET_SYSTEM_DIRECTORY / GET_CORE_ASSETS_DIRECTORY / GET_SAVE_DIRECTORY.
// GET_LIBRETRO_PATH answers with the corePath passed to New.
type Paths struct {
	System     string
	CoreAssets string
	Save       string
}

// SystemInfo is the module-reported library identity.
type SystemInfo struct {
	LibraryName     string
	LibraryVersion  string
	ValidExtensions []string
	NeedFullPath    bool
	BlockExtract    bool
}

// Host is one Core Host instance: one loaded libretro module plus its
// surrounding state. A Host is pinned to the goroutine that constructed
// it; Step, SetInput/SetKey/SetVariable/SetControllerPortDevice, and
// Close must all be called from that same goroutine.
type Host struct {
	module *retromodule.Module
	env    *env.State

	translator *video.Translator
	inputs     *input.Store
	fifo       *audio.FIFO
	resampler  *audio.Resampler

	systemInfo SystemInfo

	loadedGame  bool
	initialized bool

	logger *log.Logger

	sampleCount int
	audioBatch  []int16
}

// SetLogger installs the logger used for the tolerant-but-logged
// memory-map-preprocess-failure path and for non-fatal video
// translation errors. A nil logger (the default) discards these.
func (h *Host) SetLogger(l *log.Logger) {
	h.logger = l
}

func (h *Host) logf(format string, args ...any) {
	if h.logger != nil {
		h.logger.Printf(format, args...)
	}
}

// New opens the module at corePath and optionally loads gamePath,
// running it through the standard libretro construction sequence. On
// any failure after the module has been init'ed, unloadGame (if
// loadGame already succeeded) and deinit are called before the error is
// returned.
func New(corePath, gamePath string, paths Paths, graphics video.HostGraphics) (*Host, error) {
	ensureCallbacks()

	guard := router.Acquire((*Host)(nil))
	defer guard.Release()

	module, err := retromodule.Open(corePath)
	if err != nil {
		if missing, ok := err.(*retromodule.ErrSymbolMissing); ok {
			return nil, newError(KindModuleSymbolMissing, "resolving libretro symbols", missing)
		}
		return nil, newError(KindModuleLoadFailed, "opening core library", err)
	}

	h := &Host{
		module:     module,
		env:        env.NewState(env.Paths{System: paths.System, CoreAssets: paths.CoreAssets, Save: paths.Save, LibretroLib: corePath}),
		translator: video.NewTranslator(graphics),
		inputs:     input.NewStore(),
	}

	// Re-acquire with the real instance now that h exists, so callbacks
	// fired during init/loadGame route to it instead of the nil placeholder.
	guard.Release()
	guard = router.Acquire(h)
	defer guard.Release()

	raw := module.GetSystemInfo()
	h.systemInfo = SystemInfo{
		LibraryName:    cString(raw.LibraryName),
		LibraryVersion: cString(raw.LibraryVersion),
		NeedFullPath:   raw.NeedFullpath,
		BlockExtract:   raw.BlockExtract,
	}
	if ext := cString(raw.ValidExtensions); ext != "" {
		h.systemInfo.ValidExtensions = splitPipe(ext)
	}

	module.SetEnvironment(environmentCB)
	module.Init()
	h.initialized = true

	var gameInfo *retromodule.GameInfo
	var gameData []byte
	if gamePath == "" {
		if !h.env.SupportNoGame {
			module.Deinit()
			return nil, newError(KindNoGameData, "core requires a game but gamePath is empty", nil)
		}
	} else if h.systemInfo.NeedFullPath {
		pathBytes := append([]byte(gamePath), 0)
		gameInfo = &retromodule.GameInfo{Path: unsafe.Pointer(&pathBytes[0])}
	} else {
		data, _, err := romloader.LoadGame(gamePath, h.systemInfo.ValidExtensions)
		if err != nil {
			module.Deinit()
			return nil, newError(KindIoError, fmt.Sprintf("loading game %q", gamePath), err)
		}
		gameData = data
		pathBytes := append([]byte(gamePath), 0)
		info := &retromodule.GameInfo{
			Path: unsafe.Pointer(&pathBytes[0]),
			Size: uint64(len(gameData)),
		}
		if len(gameData) > 0 {
			info.Data = unsafe.Pointer(&gameData[0])
		}
		gameInfo = info
	}

	if !module.LoadGame(gameInfo) {
		module.Deinit()
		return nil, newError(KindLoadGameFailed, "module rejected game data", nil)
	}
	h.loadedGame = true

	module.SetVideoRefresh(videoRefreshCB)
	module.SetAudioSample(audioSampleCB)
	module.SetAudioSampleBatch(audioBatchCB)
	module.SetInputPoll(inputPollCB)
	module.SetInputState(inputStateCB)

	avInfo := module.GetSystemAVInfo()
	h.env.SetSystemAVInfo(env.SystemAVInfo{
		Geometry: env.GameGeometry{
			BaseWidth:   avInfo.Geometry.BaseWidth,
			BaseHeight:  avInfo.Geometry.BaseHeight,
			MaxWidth:    avInfo.Geometry.MaxWidth,
			MaxHeight:   avInfo.Geometry.MaxHeight,
			AspectRatio: avInfo.Geometry.AspectRatio,
		},
		Timing: env.SystemTiming{FPS: avInfo.Timing.FPS, SampleRate: avInfo.Timing.SampleRate},
	})
	h.env.GeometryChanged = false
	h.translator.InvalidateGeometry()

	h.fifo = audio.NewFIFO(8192)
	sampleRate := avInfo.Timing.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	h.resampler = audio.NewResampler(h.fifo, sampleRate, 48000)

	for port := uint32(0); port < uint32(len(h.env.ControllerInfo)); port++ {
		module.SetControllerPortDevice(port, input.DeviceNone)
	}

	return h, nil
}

// Close unwinds the module in the mandated order: unloadGame, then
// deinit, with every step attempted even if an earlier one panics.
func (h *Host) Close() {
	guard := router.Acquire(h)
	defer guard.Release()

	func() {
		defer func() { recover() }()
		if h.loadedGame {
			h.module.UnloadGame()
		}
	}()
	func() {
		defer func() { recover() }()
		if h.initialized {
			h.module.Deinit()
		}
	}()
	h.module.Close()
}

// Step runs exactly one module frame: reset the per-frame sample count,
// call retro_run, and feed any samples produced to the resampler.
func (h *Host) Step() {
	guard := router.Acquire(h)
	defer guard.Release()

	h.sampleCount = 0
	h.audioBatch = h.audioBatch[:0]

	h.module.Run()

	if len(h.audioBatch) > 0 {
		h.resampler.Submit(h.audioBatch)
	}
}

func (h *Host) SetControllerPortDevice(port, device uint32) {
	guard := router.Acquire(h)
	defer guard.Release()
	h.module.SetControllerPortDevice(port, device)
}

func (h *Host) SetInput(port uint8, in input.Input, value int16) bool {
	return h.inputs.SetInput(port, in, value)
}

func (h *Host) SetPointerInput(port uint8, in input.Input, index uint8, value int16) bool {
	return h.inputs.SetPointerInput(port, in, index, value)
}

func (h *Host) SetKey(port uint8, in input.Input, key uint16, pressed bool) bool {
	return h.inputs.SetKey(port, in, key, pressed)
}

func (h *Host) SetVariable(key, value string) bool {
	return h.env.SetVariable(key, value)
}

// SerializeSize returns the module's current savestate size in bytes, or
// 0 if the module reports it cannot serialize.
func (h *Host) SerializeSize() uintptr {
	guard := router.Acquire(h)
	defer guard.Release()
	return h.module.SerializeSize()
}

// Serialize writes the module's full savestate into buf, which must be
// at least SerializeSize() bytes, and reports whether the module
// accepted the call.
func (h *Host) Serialize(buf []byte) bool {
	guard := router.Acquire(h)
	defer guard.Release()
	return h.module.Serialize(buf)
}

// Unserialize restores the module's state from buf, a buffer previously
// filled by Serialize against a compatible core build.
func (h *Host) Unserialize(buf []byte) bool {
	guard := router.Acquire(h)
	defer guard.Release()
	return h.module.Unserialize(buf)
}

func (h *Host) GetImage() video.Image            { return h.translator.Image() }
func (h *Host) GetAspectRatio() float32          { return h.env.AVInfo.Geometry.AspectRatio }
func (h *Host) GetSystemInfo() SystemInfo        { return h.systemInfo }
func (h *Host) GetSystemAVInfo() env.SystemAVInfo { return h.env.AVInfo }
func (h *Host) GetInputDescriptors() []env.InputDescriptor {
	return h.env.InputDescriptors
}
func (h *Host) GetControllerInfo() []env.ControllerInfo { return h.env.ControllerInfo }
func (h *Host) GetVariables() []env.Variable            { return h.env.GetVariables() }

// GetAudioFIFO returns the resampled output ring buffer a presentation
// layer's audio sink pulls from.
func (h *Host) GetAudioFIFO() *audio.FIFO { return h.fifo }

func (h *Host) handleVideoRefresh(data unsafe.Pointer, width, height uint32, pitch uintptr) {
	var bytes []byte
	if data != nil {
		bytes = unsafe.Slice((*byte)(data), int(height)*int(pitch))
	}

	pf := translatePixelFormat(h.env.PixelFormat)
	if err := h.translator.Refresh(bytes, pf, int(width), int(height), int(pitch)); err != nil {
		h.logf("video refresh: %v", err)
	}

	if h.env.GeometryChanged {
		h.translator.InvalidateGeometry()
		h.env.GeometryChanged = false
	}
}

func (h *Host) handleAudioSample(left, right int16) {
	h.audioBatch = append(h.audioBatch, left, right)
	h.sampleCount++
}

func (h *Host) handleAudioBatch(data unsafe.Pointer, frames uintptr) uintptr {
	if data == nil || frames == 0 {
		return 0
	}
	src := unsafe.Slice((*int16)(data), int(frames)*2)
	h.audioBatch = append(h.audioBatch, src...)
	h.sampleCount += int(frames)
	return frames
}

func (h *Host) handleInputPoll() {}

func (h *Host) handleInputState(port, device, index, id uint32) int16 {
	return h.inputs.Read(uint8(port), device, index, id)
}

func translatePixelFormat(pf env.PixelFormat) video.PixelFormat {
	switch pf {
	case env.PixelFormatXRGB8888:
		return video.FormatXRGB8888
	case env.PixelFormat0RGB1555:
		return video.FormatXRGB1555
	default:
		return video.FormatRGB565
	}
}

func cString(ptr unsafe.Pointer) string {
	if ptr == nil {
		return ""
	}
	var n int
	for {
		c := *(*byte)(unsafe.Pointer(uintptr(ptr) + uintptr(n)))
		if c == 0 {
			break
		}
		n++
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}

func splitPipe(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '|' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}
