package hostui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/retrohost/corehost/audio"
)

const hostSampleRate = 48000

var (
	otoCtx      *oto.Context
	otoInitOnce sync.Once
	otoInitErr  error
)

func ensureOtoContext() (*oto.Context, error) {
	otoInitOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   hostSampleRate,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
			BufferSize:   50 * time.Millisecond,
		}
		var ready chan struct{}
		otoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr != nil {
			return
		}
		<-ready
	})
	return otoCtx, otoInitErr
}

// fifoReader adapts an audio.FIFO's truncating, non-blocking Read to the
// io.Reader oto.Player pulls from: a short read (including zero bytes) is
// reported as success with silence left for the caller to fill, since a
// FIFO underrun is an expected steady-state condition, not an error.
type fifoReader struct {
	fifo *audio.FIFO
}

func (r *fifoReader) Read(p []byte) (int, error) {
	n := r.fifo.Read(p)
	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}

// AudioSink plays the resampled output FIFO through an oto.Player, pulling
// host-rate PCM at whatever pace oto's mixer drains it.
type AudioSink struct {
	player *oto.Player
}

// NewAudioSink opens an oto player that reads from fifo.
func NewAudioSink(fifo *audio.FIFO) (*AudioSink, error) {
	ctx, err := ensureOtoContext()
	if err != nil {
		return nil, fmt.Errorf("hostui: oto audio not available: %w", err)
	}

	var r io.Reader = &fifoReader{fifo: fifo}
	player := ctx.NewPlayer(r)
	player.SetBufferSize(19200)
	player.Play()

	return &AudioSink{player: player}, nil
}

// Close stops playback and releases the player.
func (s *AudioSink) Close() error {
	if s.player == nil {
		return nil
	}
	return s.player.Close()
}
