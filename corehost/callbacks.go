package corehost

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/retrohost/corehost/env"
	"github.com/retrohost/corehost/router"
)

// The module calls back into the host through these six stateless
// trampolines. Each looks up the currently routed *Host via the
// goroutine-local instance router (C2) and forwards. The C-callable
// function pointers are created once per process with purego.NewCallback
// and handed to every Host's module, since routing — not the pointer
// value — disambiguates which instance a call belongs to.
var (
	callbacksOnce sync.Once

	environmentCB  uintptr
	videoRefreshCB uintptr
	audioSampleCB  uintptr
	audioBatchCB   uintptr
	inputPollCB    uintptr
	inputStateCB   uintptr
)

func ensureCallbacks() {
	callbacksOnce.Do(func() {
		environmentCB = purego.NewCallback(environmentTrampoline)
		videoRefreshCB = purego.NewCallback(videoRefreshTrampoline)
		audioSampleCB = purego.NewCallback(audioSampleTrampoline)
		audioBatchCB = purego.NewCallback(audioBatchTrampoline)
		inputPollCB = purego.NewCallback(inputPollTrampoline)
		inputStateCB = purego.NewCallback(inputStateTrampoline)
	})
}

func currentHost() *Host {
	h, _ := router.Current().(*Host)
	return h
}

func environmentTrampoline(cmd uint32, data unsafe.Pointer) bool {
	h := currentHost()
	if h == nil {
		return false
	}
	// Strip RETRO_ENVIRONMENT_EXPERIMENTAL (0x10000) so the command
	// matches env's plain codes.
	cmd &^= 0x10000
	ok := h.env.Dispatch(cmd, data)
	if cmd == env.CmdSetMemoryMaps && h.env.MemoryMapPreprocessFailed {
		h.logf("%s", h.env.LastLog)
	}
	return ok
}

func videoRefreshTrampoline(data unsafe.Pointer, width, height uint32, pitch uintptr) {
	h := currentHost()
	if h == nil {
		return
	}
	h.handleVideoRefresh(data, width, height, pitch)
}

func audioSampleTrampoline(left, right int16) {
	h := currentHost()
	if h == nil {
		return
	}
	h.handleAudioSample(left, right)
}

func audioBatchTrampoline(data unsafe.Pointer, frames uintptr) uintptr {
	h := currentHost()
	if h == nil {
		return 0
	}
	return h.handleAudioBatch(data, frames)
}

func inputPollTrampoline() {
	h := currentHost()
	if h == nil {
		return
	}
	h.handleInputPoll()
}

func inputStateTrampoline(port, device, index, id uint32) int16 {
	h := currentHost()
	if h == nil {
		return 0
	}
	return h.handleInputState(port, device, index, id)
}
