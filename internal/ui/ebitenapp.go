package ui

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/proj-gbcore/gbcore/internal/emu"
)

const (
	screenW = 160
	screenH = 144
)

// App is a minimal ebiten host: it paces Machine.TickFrame at the display's
// refresh rate, blits the resulting framebuffer, and translates keyboard
// state into the joypad bitmask.
type App struct {
	cfg    Config
	m      *emu.Machine
	tex    *ebiten.Image
	paused bool
	fb     [screenW * screenH * 3]byte
}

func NewApp(cfg Config, m *emu.Machine) *App {
	cfg.Defaults()
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(screenW*cfg.Scale, screenH*cfg.Scale)
	return &App{
		cfg: cfg,
		m:   m,
		tex: ebiten.NewImage(screenW, screenH),
	}
}

func (a *App) Run() error { return ebiten.RunGame(a) }

func (a *App) readButtons() byte {
	var b byte
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		b |= emu.ButtonRight
	}
	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		b |= emu.ButtonLeft
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		b |= emu.ButtonUp
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		b |= emu.ButtonDown
	}
	if ebiten.IsKeyPressed(ebiten.KeyZ) {
		b |= emu.ButtonA
	}
	if ebiten.IsKeyPressed(ebiten.KeyX) {
		b |= emu.ButtonB
	}
	if ebiten.IsKeyPressed(ebiten.KeyEnter) {
		b |= emu.ButtonStart
	}
	if ebiten.IsKeyPressed(ebiten.KeyShiftRight) || ebiten.IsKeyPressed(ebiten.KeyShiftLeft) {
		b |= emu.ButtonSelect
	}
	return b
}

func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		a.paused = !a.paused
	}
	if a.paused {
		return nil
	}
	a.m.TickFrame(a.readButtons(), &a.fb)
	return nil
}

func (a *App) Draw(screen *ebiten.Image) {
	a.tex.WritePixels(rgbToRGBA(a.fb[:]))
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(a.cfg.Scale), float64(a.cfg.Scale))
	screen.DrawImage(a.tex, op)
	if a.paused {
		ebitenutil.DebugPrint(screen, "paused")
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenW * a.cfg.Scale, screenH * a.cfg.Scale
}

// rgbToRGBA expands the core's packed RGB framebuffer to the RGBA bytes
// ebiten.Image.WritePixels expects.
func rgbToRGBA(rgb []byte) []byte {
	out := make([]byte, screenW*screenH*4)
	for i := 0; i < screenW*screenH; i++ {
		out[i*4+0] = rgb[i*3+0]
		out[i*4+1] = rgb[i*3+1]
		out[i*4+2] = rgb[i*3+2]
		out[i*4+3] = 0xFF
	}
	return out
}
