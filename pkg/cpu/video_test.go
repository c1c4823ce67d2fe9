package cpu

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func pixelIsBlack(pix []byte, x, y int) bool {
	i := (y*ScreenWidth + x) * 4
	return pix[i] == 0 && pix[i+1] == 0 && pix[i+2] == 0 && pix[i+3] == 0xFF
}

func TestFramebufferLayout(t *testing.T) {
	c := NewCPU()
	// Pixels (0,0), (31,0), (2,1) and (511,255).
	c.RAM[ScreenBase] = 0x0001
	c.RAM[ScreenBase+1] = 0x8000
	c.RAM[ScreenBase+32] = 0x0004
	c.RAM[ScreenBase+8191] = 0x8000

	pix := c.GetFramebufferRGBA()
	if len(pix) != ScreenWidth*ScreenHeight*4 {
		t.Fatalf("len(pix) = %d", len(pix))
	}

	black := [][2]int{{0, 0}, {31, 0}, {2, 1}, {511, 255}}
	for _, p := range black {
		if !pixelIsBlack(pix, p[0], p[1]) {
			t.Errorf("pixel (%d,%d) should be black", p[0], p[1])
		}
	}

	white := [][2]int{{1, 0}, {16, 0}, {0, 1}, {510, 255}}
	for _, p := range white {
		if pixelIsBlack(pix, p[0], p[1]) {
			t.Errorf("pixel (%d,%d) should be white", p[0], p[1])
		}
	}
}

func TestRectangle(t *testing.T) {
	// Draws a 16-pixel wide rectangle R0 rows tall at the top left corner.
	c := load(t, `
    @0
    D=M
    @INFINITE_LOOP
    D;JLE
    @counter
    M=D
    @SCREEN
    D=A
    @address
    M=D
(LOOP)
    @address
    A=M
    M=-1
    @address
    D=M
    @32
    D=D+A
    @address
    M=D
    @counter
    MD=M-1
    @LOOP
    D;JGT
(INFINITE_LOOP)
    @INFINITE_LOOP
    0;JMP
`)
	c.RAM[0] = 4
	if !c.Run(100000) {
		t.Fatalf("rect program did not halt")
	}

	img := c.GetFramebufferImage()
	if img.Rect.Dx() != ScreenWidth || img.Rect.Dy() != ScreenHeight {
		t.Fatalf("image size: expected 512x256, got %dx%d", img.Rect.Dx(), img.Rect.Dy())
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 18; x++ {
			want := y < 4 && x < 16
			if got := pixelIsBlack(img.Pix, x, y); got != want {
				t.Errorf("pixel (%d,%d) black=%v, want %v", x, y, got, want)
			}
		}
	}
}

func TestSaveScreenshot(t *testing.T) {
	c := NewCPU()
	c.RAM[ScreenBase] = 0xFFFF

	path := filepath.Join(t.TempDir(), "screen.png")
	if err := c.SaveScreenshot(path); err != nil {
		t.Fatalf("SaveScreenshot: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open screenshot: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode screenshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != ScreenWidth || b.Dy() != ScreenHeight {
		t.Errorf("screenshot is %dx%d", b.Dx(), b.Dy())
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r != 0 {
		t.Errorf("pixel (0,0) should be black")
	}
	if r, _, _, _ := img.At(16, 0).RGBA(); r == 0 {
		t.Errorf("pixel (16,0) should be white")
	}
}
