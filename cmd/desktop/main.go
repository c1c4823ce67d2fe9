package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"hackasm/pkg/cpu"
	"hackasm/pkg/utils"
)

const statusHeight = 16

var specialKeys = map[ebiten.Key]uint16{
	ebiten.KeyEnter:      cpu.KeyNewline,
	ebiten.KeyBackspace:  cpu.KeyBackspace,
	ebiten.KeyArrowLeft:  cpu.KeyLeft,
	ebiten.KeyArrowUp:    cpu.KeyUp,
	ebiten.KeyArrowRight: cpu.KeyRight,
	ebiten.KeyArrowDown:  cpu.KeyDown,
	ebiten.KeyHome:       cpu.KeyHome,
	ebiten.KeyEnd:        cpu.KeyEnd,
	ebiten.KeyPageUp:     cpu.KeyPageUp,
	ebiten.KeyPageDown:   cpu.KeyPageDown,
	ebiten.KeyInsert:     cpu.KeyInsert,
	ebiten.KeyDelete:     cpu.KeyDelete,
	ebiten.KeyEscape:     cpu.KeyEsc,
}

func init() {
	fkeys := []ebiten.Key{
		ebiten.KeyF1, ebiten.KeyF2, ebiten.KeyF3, ebiten.KeyF4,
		ebiten.KeyF5, ebiten.KeyF6, ebiten.KeyF7, ebiten.KeyF8,
		ebiten.KeyF9, ebiten.KeyF10, ebiten.KeyF11, ebiten.KeyF12,
	}
	for i, k := range fkeys {
		specialKeys[k] = cpu.KeyF1 + uint16(i)
	}
}

// hackKey picks the value of the KBD register for this frame. held is the
// character code published last frame; it stays while any key is down.
func hackKey(pressed []ebiten.Key, typed []rune, held uint16) uint16 {
	if len(pressed) == 0 {
		return 0
	}
	for _, k := range pressed {
		if code, ok := specialKeys[k]; ok {
			return code
		}
	}
	for i := len(typed) - 1; i >= 0; i-- {
		if typed[i] > 0 && typed[i] < 128 {
			return uint16(typed[i])
		}
	}
	if held >= cpu.KeyNewline {
		return 0
	}
	return held
}

type Game struct {
	vm             *cpu.CPU
	title          string
	cyclesPerFrame int
	paused         bool

	screenImg *ebiten.Image // reused 512×256 canvas
	face      *text.GoXFace
	key       uint16
}

func NewGame(vm *cpu.CPU, title string, cyclesPerFrame int) *Game {
	return &Game{
		vm:             vm,
		title:          title,
		cyclesPerFrame: cyclesPerFrame,
		face:           text.NewGoXFace(basicfont.Face7x13),
	}
}

// tick publishes key and runs one frame worth of instructions.
func (g *Game) tick(key uint16) {
	g.key = key
	g.vm.SetKey(key)
	if g.paused {
		return
	}
	for i := 0; i < g.cyclesPerFrame && !g.vm.Halted; i++ {
		g.vm.Step()
	}
}

func (g *Game) Update() error {
	// Ctrl+R resets, Ctrl+P pauses. Neither reaches the program.
	if ebiten.IsKeyPressed(ebiten.KeyControl) {
		if inpututil.IsKeyJustPressed(ebiten.KeyR) {
			g.vm.Reset()
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyP) {
			g.paused = !g.paused
		}
		g.tick(0)
		return nil
	}

	pressed := inpututil.AppendPressedKeys(nil)
	typed := ebiten.AppendInputChars(nil)
	g.tick(hackKey(pressed, typed, g.key))
	return nil
}

func (g *Game) status() string {
	state := "running"
	switch {
	case g.vm.Halted:
		state = "halted"
	case g.paused:
		state = "paused"
	}
	return fmt.Sprintf("%s  %s  PC=%d A=%d D=%d KBD=%d cycles=%d",
		g.title, state, g.vm.PC, g.vm.A, g.vm.D, g.key, g.vm.Cycles)
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screenImg == nil {
		g.screenImg = ebiten.NewImage(cpu.ScreenWidth, cpu.ScreenHeight)
	}
	g.screenImg.WritePixels(g.vm.GetFramebufferRGBA())
	screen.DrawImage(g.screenImg, nil)

	op := &text.DrawOptions{}
	op.GeoM.Translate(4, cpu.ScreenHeight+2)
	op.ColorScale.ScaleWithColor(color.RGBA{0xC0, 0xC0, 0xC0, 0xFF})
	text.Draw(screen, g.status(), g.face, op)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return cpu.ScreenWidth, cpu.ScreenHeight + statusHeight
}

func main() {
	cyclesPerFrame := flag.Int("speed", 50000, "instructions executed per frame")
	scale := flag.Int("scale", 2, "window scale factor")
	flag.Parse()
	if flag.NArg() != 1 {
		log.Fatalf("usage: desktop [-speed n] [-scale n] <file.asm|file.hack>")
	}

	words, err := utils.LoadProgram(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}

	vm := cpu.NewCPU()
	if err := vm.LoadProgram(words); err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(cpu.ScreenWidth*(*scale), (cpu.ScreenHeight+statusHeight)*(*scale))
	ebiten.SetWindowTitle("Hack - " + filepath.Base(flag.Arg(0)))

	game := NewGame(vm, filepath.Base(flag.Arg(0)), *cyclesPerFrame)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
