package hostui

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/retrohost/corehost/corehost"
)

// Game wires a *corehost.Host into an ebiten.Game loop: poll input, step
// the module one frame, draw whatever image the Translator produced. The
// host steps the module; Game is the only thing that polls input or
// touches the screen.
type Game struct {
	host   *corehost.Host
	poller *Poller
	sink   *AudioSink
}

// NewGame wraps host in an ebiten.Game loop. sink may be nil if audio
// output has not been wired up (e.g. when NewAudioSink fails).
func NewGame(host *corehost.Host, sink *AudioSink) *Game {
	return &Game{
		host:   host,
		poller: NewPoller(),
		sink:   sink,
	}
}

// Update implements ebiten.Game: poll input for port 0, then step the
// module one frame.
func (g *Game) Update() error {
	if !ebiten.IsFocused() {
		return nil
	}
	g.poller.Poll(g.host, 0)
	g.host.Step()
	return nil
}

// Draw implements ebiten.Game: blit the Translator's current image,
// scaled to fit the window while preserving the core's aspect ratio.
func (g *Game) Draw(screen *ebiten.Image) {
	img := g.host.GetImage()
	if img == nil {
		return
	}
	fi, ok := img.(*frameImage)
	if !ok {
		return
	}

	screenW, screenH := screen.Bounds().Dx(), screen.Bounds().Dy()
	nativeW, nativeH := float64(fi.width), float64(fi.height)
	if ar := g.host.GetAspectRatio(); ar > 0 {
		nativeW = nativeH * float64(ar)
	}

	scale := float64(screenW) / nativeW
	if alt := float64(screenH) / nativeH; alt < scale {
		scale = alt
	}

	// sx/sy are the per-axis scale factors applied to the native
	// fi.width x fi.height image: sx absorbs the aspect-ratio correction,
	// sy is the plain fit-to-window scale.
	sx := scale * (nativeW / float64(fi.width))
	sy := scale

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(sx, sy)
	op.GeoM.Translate((float64(screenW)-float64(fi.width)*sx)/2, (float64(screenH)-float64(fi.height)*sy)/2)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(fi.img, op)
}

// Layout implements ebiten.Game, letting Draw control scaling itself.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

// Close releases the audio sink, if any.
func (g *Game) Close() {
	if g.sink != nil {
		g.sink.Close()
	}
}
