// Package router implements the thread-local instance router (spec C2):
// the only sanctioned mechanism by which the stateless libretro C-ABI
// callback trampolines find the *corehost.Host that owns the module
// currently running.
//
// Go has no native thread-local storage. The router fakes one by keying
// the active-instance table off the calling goroutine's id, extracted
// from runtime.Stack. This is equivalent to a real OS-thread key as long
// as callers honor a single-thread-per-instance discipline: a Host is
// constructed, stepped, and destroyed from the same goroutine for its
// entire lifetime, and the module never spawns a thread of its own that
// calls back into the host.
package router

import (
	"bytes"
	"runtime"
	"strconv"
	"sync"
)

var (
	mu      sync.Mutex
	current = map[int64]any{}
)

// Guard is a scoped handle returned by Acquire. Release must be called
// exactly once, on every exit path (including panics), to restore the
// instance that was active before Acquire.
type Guard struct {
	gid  int64
	prev any
	done bool
}

// Acquire installs inst as the active core instance for the calling
// goroutine, saving whatever was previously installed. Nested Acquire
// calls on the same goroutine are supported: each Guard restores exactly
// the value seen at its own Acquire.
func Acquire(inst any) *Guard {
	gid := goroutineID()

	mu.Lock()
	prev := current[gid]
	current[gid] = inst
	mu.Unlock()

	return &Guard{gid: gid, prev: prev}
}

// Release restores the instance that was active before the matching
// Acquire. Safe to call from a deferred statement on any exit path,
// including after a recovered panic. Calling Release more than once is a
// no-op.
func (g *Guard) Release() {
	if g == nil || g.done {
		return
	}
	g.done = true

	mu.Lock()
	if g.prev == nil {
		delete(current, g.gid)
	} else {
		current[g.gid] = g.prev
	}
	mu.Unlock()
}

// Current returns the active instance for the calling goroutine, or nil
// if none is installed. Stateless C-ABI callback trampolines call this
// to recover the *corehost.Host that should handle the callback.
func Current() any {
	gid := goroutineID()

	mu.Lock()
	inst := current[gid]
	mu.Unlock()

	return inst
}

// goroutineID extracts the calling goroutine's id from its stack trace
// header ("goroutine 123 [running]:"). It is the standard trick used to
// fake goroutine-local storage when no thread-affine primitive is
// available.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	b = bytes.TrimPrefix(b, []byte(prefix))

	i := bytes.IndexByte(b, ' ')
	if i < 0 {
		return 0
	}

	id, err := strconv.ParseInt(string(b[:i]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
