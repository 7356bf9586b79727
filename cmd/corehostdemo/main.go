// Command corehostdemo loads a libretro core and, optionally, a game
// file, and runs it in an ebiten window — the reference consumer of the
// corehost package.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/retrohost/corehost/corehost"
	"github.com/retrohost/corehost/hostui"
)

func main() {
	corePath := flag.String("core", "", "path to the libretro core library (.so/.dylib/.dll)")
	gamePath := flag.String("game", "", "path to the game file (omit for cores that support no-game mode)")
	systemDir := flag.String("system-dir", ".", "system assets directory reported to the core")
	saveDir := flag.String("save-dir", ".", "save data directory reported to the core")
	assetsDir := flag.String("core-assets-dir", ".", "core assets directory reported to the core")
	flag.Parse()

	if *corePath == "" {
		log.Fatal("corehostdemo: -core is required")
	}

	graphics := hostui.NewGraphics()
	host, err := corehost.New(*corePath, *gamePath, corehost.Paths{
		System:     *systemDir,
		CoreAssets: *assetsDir,
		Save:       *saveDir,
	}, graphics)
	if err != nil {
		log.Fatalf("corehostdemo: loading core: %v", err)
	}
	defer host.Close()

	info := host.GetSystemInfo()
	log.Printf("loaded core %q %s", info.LibraryName, info.LibraryVersion)

	avInfo := host.GetSystemAVInfo()
	sink, err := hostui.NewAudioSink(host.GetAudioFIFO())
	if err != nil {
		log.Printf("corehostdemo: audio disabled: %v", err)
		sink = nil
	}

	game := hostui.NewGame(host, sink)
	defer game.Close()

	geom := avInfo.Geometry
	ebiten.SetWindowSize(int(geom.BaseWidth)*2, int(geom.BaseHeight)*2)
	ebiten.SetWindowTitle(info.LibraryName)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if avInfo.Timing.FPS > 0 {
		ebiten.SetTPS(int(avInfo.Timing.FPS))
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
