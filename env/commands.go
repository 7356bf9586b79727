package env

// Environment command codes, matching libretro.h's RETRO_ENVIRONMENT_*
// constants (the RETRO_ENVIRONMENT_EXPERIMENTAL bit is not set on any of
// these; corehost's environment trampoline masks that bit off a
// module's command before dispatch).
const (
	CmdGetOverscan            uint32 = 2
	CmdGetCanDupe             uint32 = 3
	CmdSetMessage             uint32 = 6
	CmdShutdown               uint32 = 7
	CmdSetPerformanceLevel    uint32 = 8
	CmdGetSystemDirectory     uint32 = 9
	CmdSetPixelFormat         uint32 = 10
	CmdSetInputDescriptors    uint32 = 11
	CmdSetHWRender            uint32 = 14
	CmdGetVariable            uint32 = 15
	CmdSetVariables           uint32 = 16
	CmdGetVariableUpdate      uint32 = 17
	CmdSetSupportNoGame       uint32 = 18
	CmdGetLibretroPath        uint32 = 19
	CmdGetLogInterface        uint32 = 27
	CmdGetCoreAssetsDirectory uint32 = 30
	CmdGetSaveDirectory       uint32 = 31
	CmdSetSystemAVInfo        uint32 = 32
	CmdSetSubsystemInfo       uint32 = 34
	CmdSetControllerInfo      uint32 = 35
	CmdSetMemoryMaps          uint32 = 36
	CmdSetGeometry            uint32 = 37
	CmdGetLanguage            uint32 = 39
	CmdSetSupportAchievements uint32 = 42
)
