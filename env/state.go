// Package env implements the libretro environment dispatcher (spec C6):
// the command table a loaded module uses to query and mutate every
// piece of negotiable core state — pixel format, variables, descriptor
// vectors, geometry, memory maps, and configured paths.
package env

import (
	"strings"

	"github.com/retrohost/corehost/memmap"
)

// PixelFormat mirrors the libretro retro_pixel_format enum.
type PixelFormat uint32

const (
	PixelFormat0RGB1555 PixelFormat = 0
	PixelFormatXRGB8888 PixelFormat = 1
	PixelFormatRGB565   PixelFormat = 2
	PixelFormatUnknown  PixelFormat = 0xFFFFFFFF
)

// GameGeometry mirrors retro_game_geometry.
type GameGeometry struct {
	BaseWidth   uint32
	BaseHeight  uint32
	MaxWidth    uint32
	MaxHeight   uint32
	AspectRatio float32
}

// SystemTiming mirrors retro_system_timing.
type SystemTiming struct {
	FPS        float64
	SampleRate float64
}

// SystemAVInfo mirrors retro_system_av_info.
type SystemAVInfo struct {
	Geometry GameGeometry
	Timing   SystemTiming
}

// Variable is one host-facing configuration key, with the raw
// description string the module advertised and the list of options
// parsed out of it.
type Variable struct {
	Key         string
	Description string // human-readable label before the first ';'
	Options     []string
	Selected    string

	rawOptions  string // "A|B|C", kept for SetVariable's substring+boundary check
	selectedBuf []byte // NUL-terminated copy of Selected, retained for GET_VARIABLE
}

// InputDescriptor mirrors one entry of retro_input_descriptor after
// string decoding.
type InputDescriptor struct {
	Port        uint32
	Device      uint32
	Index       uint32
	ID          uint32
	Description string
}

// ControllerDescription names one controller type selectable on a port.
type ControllerDescription struct {
	Description string
	ID          uint32
}

// ControllerInfo lists the controller types available on one port.
type ControllerInfo struct {
	Types []ControllerDescription
}

// SubsystemInfo mirrors retro_subsystem_info after string decoding.
type SubsystemInfo struct {
	Description string
	Ident       string
	ID          uint32
}

// HWRenderCallback mirrors the fields of retro_hw_render_callback this
// host acts on; the function-pointer fields are opaque uintptrs copied
// from the module's request. SetHWRender stores them as given and does
// not fill in GetCurrentFramebuffer or GetProcAddress.
type HWRenderCallback struct {
	ContextType           uint32
	ContextReset          uintptr
	GetCurrentFramebuffer uintptr
	GetProcAddress        uintptr
	Depth                 bool
	Stencil               bool
	BottomLeftOrigin      bool
	VersionMajor          uint32
	VersionMinor          uint32
}

// Paths are the three directories and the core library path the
// dispatcher answers GET_SYSTEM_DIRECTORY / GET_CORE_ASSETS_DIRECTORY /
// GET_SAVE_DIRECTORY / GET_LIBRETRO_PATH with, set once by corehost.New.
type Paths struct {
	System      string
	CoreAssets  string
	Save        string
	LibretroLib string
}

// VideoSupportsContext reports whether the host can satisfy a
// SET_HW_RENDER request for the given context type. This host does not
// implement GL/Vulkan rendering, so callers should leave this nil, in
// which case SET_HW_RENDER always fails.
type VideoSupportsContext func(contextType uint32) bool

// State holds every piece of mutable core state an environment-command
// handler reads or writes. It is owned by the caller (corehost.Host)
// and passed by reference; handlers never allocate a new State.
type State struct {
	Paths Paths

	PixelFormat        PixelFormat
	PerformanceLevel    int
	InputDescriptors    []InputDescriptor
	Variables           []Variable
	variablesUpdated    bool
	AVInfo              SystemAVInfo
	SubsystemInfo       []SubsystemInfo
	ControllerInfo      []ControllerInfo
	MemoryDescriptors   []memmap.Descriptor
	MemoryMapPreprocessFailed bool
	SupportNoGame       bool
	SupportAchievements bool
	NeedsHardwareRender bool
	HWRender            HWRenderCallback

	VideoSupportsContext VideoSupportsContext

	// GeometryChanged is set whenever SET_SYSTEM_AV_INFO/SET_GEOMETRY
	// fire; corehost reads and clears it to trigger video reconstruction.
	GeometryChanged bool

	// Message holds the most recent SET_MESSAGE payload. It is only
	// stored; nothing in this host displays it.
	Message       string
	MessageFrames uint32

	LastLog string

	// systemDirBuf, coreAssetsDirBuf, saveDirBuf and libretroPathBuf are
	// NUL-terminated copies of the corresponding Paths field, retained
	// for the lifetime of the State so a pointer handed to a module via
	// GET_SYSTEM_DIRECTORY and friends stays valid for as long as the
	// module may hold onto it.
	systemDirBuf     []byte
	coreAssetsDirBuf []byte
	saveDirBuf       []byte
	libretroPathBuf  []byte
}

// NewState returns a State with Unknown pixel format and the given
// configured directories.
func NewState(paths Paths) *State {
	return &State{
		Paths:            paths,
		PixelFormat:      PixelFormatUnknown,
		systemDirBuf:     nulTerminated(paths.System),
		coreAssetsDirBuf: nulTerminated(paths.CoreAssets),
		saveDirBuf:       nulTerminated(paths.Save),
		libretroPathBuf:  nulTerminated(paths.LibretroLib),
	}
}

// nulTerminated returns a fresh owned, NUL-terminated copy of s. Always
// at least one byte long, so callers can safely take &buf[0].
func nulTerminated(s string) []byte {
	b := make([]byte, len(s)+1)
	copy(b, s)
	return b
}

// SystemDirBuf, CoreAssetsDirBuf, SaveDirBuf and LibretroPathBuf return
// the retained NUL-terminated directory buffers the environment
// dispatcher hands out for GET_SYSTEM_DIRECTORY / GET_CORE_ASSETS_DIRECTORY
// / GET_SAVE_DIRECTORY / GET_LIBRETRO_PATH.
func (s *State) SystemDirBuf() []byte     { return s.systemDirBuf }
func (s *State) CoreAssetsDirBuf() []byte { return s.coreAssetsDirBuf }
func (s *State) SaveDirBuf() []byte       { return s.saveDirBuf }
func (s *State) LibretroPathBuf() []byte  { return s.libretroPathBuf }

// SetPixelFormat implements SET_PIXEL_FORMAT: unknown values default the
// format to RGB565 and report failure to the module.
func (s *State) SetPixelFormat(raw uint32) bool {
	switch PixelFormat(raw) {
	case PixelFormat0RGB1555, PixelFormatXRGB8888, PixelFormatRGB565:
		s.PixelFormat = PixelFormat(raw)
		return true
	default:
		s.PixelFormat = PixelFormatRGB565
		return false
	}
}

// SetPerformanceLevel implements SET_PERFORMANCE_LEVEL.
func (s *State) SetPerformanceLevel(level int) {
	s.PerformanceLevel = level
}

// SetInputDescriptors implements SET_INPUT_DESCRIPTORS.
func (s *State) SetInputDescriptors(descs []InputDescriptor) {
	s.InputDescriptors = descs
}

// SetSubsystemInfo replaces the subsystem list. Dispatch does not route
// SET_SUBSYSTEM_INFO here: that command returns false to the module and
// leaves the list unchanged.
func (s *State) SetSubsystemInfo(info []SubsystemInfo) {
	s.SubsystemInfo = info
}

// SetControllerInfo replaces the per-port controller list. Dispatch does
// not route SET_CONTROLLER_INFO here: that command returns false to the
// module and leaves the list unchanged.
func (s *State) SetControllerInfo(info []ControllerInfo) {
	s.ControllerInfo = info
}

// SetSupportNoGame implements SET_SUPPORT_NO_GAME.
func (s *State) SetSupportNoGame(v bool) {
	s.SupportNoGame = v
}

// SetSupportAchievements implements SET_SUPPORT_ACHIEVEMENTS.
func (s *State) SetSupportAchievements(v bool) {
	s.SupportAchievements = v
}

// SetMessage implements SET_MESSAGE.
func (s *State) SetMessage(msg string, frames uint32) {
	s.Message = msg
	s.MessageFrames = frames
}

// SetHWRender implements SET_HW_RENDER: fails unless a
// VideoSupportsContext callback is installed and accepts the requested
// context type.
func (s *State) SetHWRender(cb HWRenderCallback) bool {
	if s.VideoSupportsContext == nil || !s.VideoSupportsContext(cb.ContextType) {
		return false
	}
	s.HWRender = cb
	s.NeedsHardwareRender = true
	return true
}

// SetSystemAVInfo implements SET_SYSTEM_AV_INFO: replaces the whole AV
// info, recomputing aspect ratio from the base dimensions if the
// supplied value is non-positive, and marks geometry as changed.
func (s *State) SetSystemAVInfo(info SystemAVInfo) {
	s.AVInfo = normalizeAVInfo(info)
	s.GeometryChanged = true
}

// SetGeometry implements SET_GEOMETRY: same normalization as
// SetSystemAVInfo but only touches the geometry half, leaving timing
// untouched.
func (s *State) SetGeometry(geo GameGeometry) {
	s.AVInfo.Geometry = normalizeGeometry(geo)
	s.GeometryChanged = true
}

func normalizeAVInfo(info SystemAVInfo) SystemAVInfo {
	info.Geometry = normalizeGeometry(info.Geometry)
	return info
}

func normalizeGeometry(geo GameGeometry) GameGeometry {
	if geo.AspectRatio <= 0 && geo.BaseHeight != 0 {
		geo.AspectRatio = float32(geo.BaseWidth) / float32(geo.BaseHeight)
	}
	return geo
}

// SetMemoryMaps implements SET_MEMORY_MAPS: copies the descriptors and
// attempts preprocessing, tolerating failure. SET_MEMORY_MAPS itself
// always reports success to the module; a failed preprocess leaves the
// raw, unprocessed descriptors in place and is only visible via
// MemoryMapPreprocessFailed / the host's log.
func (s *State) SetMemoryMaps(descs []memmap.Descriptor) {
	processed, err := memmap.Preprocess(descs)
	if err != nil {
		s.MemoryMapPreprocessFailed = true
		s.MemoryDescriptors = descs
		s.LastLog = "memmap preprocess failed: " + err.Error()
		return
	}
	s.MemoryMapPreprocessFailed = false
	s.MemoryDescriptors = processed
}

// SetVariables implements SET_VARIABLES: parses each raw (key, value)
// pair into a Variable with its description, option list, and default
// selection (the first option). The value grammar is
// "<description>; <opt1>|<opt2>|...".
func (s *State) SetVariables(raw []struct{ Key, Value string }) {
	vars := make([]Variable, 0, len(raw))
	for _, kv := range raw {
		vars = append(vars, parseVariable(kv.Key, kv.Value))
	}
	s.Variables = vars
}

func parseVariable(key, value string) Variable {
	desc := value
	options := value

	if i := strings.IndexByte(value, ';'); i >= 0 {
		desc = value[:i]
		options = strings.TrimLeft(value[i+1:], " \t")
	}

	first := options
	if i := strings.IndexByte(options, '|'); i >= 0 {
		first = options[:i]
	}

	return Variable{
		Key:         key,
		Description: desc,
		Options:     strings.Split(options, "|"),
		Selected:    first,
		rawOptions:  options,
		selectedBuf: nulTerminated(first),
	}
}

// GetVariable implements GET_VARIABLE: returns the currently selected
// value for key, and whether the key exists at all.
func (s *State) GetVariable(key string) (string, bool) {
	for i := range s.Variables {
		if s.Variables[i].Key == key {
			return s.Variables[i].Selected, true
		}
	}
	return "", false
}

// SelectedBuf returns the retained NUL-terminated bytes backing key's
// currently selected value, for the environment dispatcher to hand the
// module a stable interior pointer. The returned slice is replaced, not
// mutated, by the next SetVariable/SetVariables call, so a pointer
// already handed out stays valid until then.
func (s *State) SelectedBuf(key string) ([]byte, bool) {
	for i := range s.Variables {
		if s.Variables[i].Key == key {
			return s.Variables[i].selectedBuf, true
		}
	}
	return nil, false
}

// GetVariableUpdate implements GET_VARIABLE_UPDATE: returns and clears
// the latched update flag.
func (s *State) GetVariableUpdate() bool {
	v := s.variablesUpdated
	s.variablesUpdated = false
	return v
}

// SetVariable is the host-facing (not module-facing) variable setter
// used by corehost.Host.SetVariable. value is accepted only if it
// appears as a '|'-delimited option in the variable's raw option
// string: find value as a plain substring, then require the character
// immediately following the match to be either end-of-string or '|'.
// This rejects "P" against "NTSC|PAL|Auto" (the character after the
// match is 'A', not a boundary).
func (s *State) SetVariable(key, value string) bool {
	for i := range s.Variables {
		if s.Variables[i].Key != key {
			continue
		}
		opts := s.Variables[i].rawOptions
		idx := strings.Index(opts, value)
		if idx < 0 {
			return false
		}
		end := idx + len(value)
		if end != len(opts) && opts[end] != '|' {
			return false
		}
		s.Variables[i].Selected = value
		s.Variables[i].selectedBuf = nulTerminated(value)
		s.variablesUpdated = true
		return true
	}
	return false
}

// GetVariables returns the full variable list (corehost accessor
// getVariables).
func (s *State) GetVariables() []Variable {
	return s.Variables
}
