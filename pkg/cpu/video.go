package cpu

import (
	"image"
	"image/png"
	"os"

	"hackasm/pkg/grid"
)

const (
	ScreenWidth  = 512
	ScreenHeight = 256

	wordsPerRow = ScreenWidth / 16
)

// GetFramebufferRGBA decodes the screen memory map into a 512×256 RGBA8888
// byte slice. Bit 0 of each word is its leftmost pixel; a set bit is black.
func (c *CPU) GetFramebufferRGBA() []byte {
	pixels := make([]byte, ScreenWidth*ScreenHeight*4)
	for i := range pixels {
		pixels[i] = 0xFF
	}

	for wordIdx := 0; wordIdx < ScreenWords; wordIdx++ {
		word := c.RAM[int(ScreenBase)+wordIdx]
		if word == 0 {
			continue
		}
		col, row := grid.GetGridCoords(wordIdx, wordsPerRow)
		for bit := 0; bit < 16; bit++ {
			if word&(1<<bit) == 0 {
				continue
			}
			pixelIdx := (row*ScreenWidth + col*16 + bit) * 4
			pixels[pixelIdx+0] = 0
			pixels[pixelIdx+1] = 0
			pixels[pixelIdx+2] = 0
		}
	}

	return pixels
}

// GetFramebufferImage returns the screen as an *image.RGBA.
func (c *CPU) GetFramebufferImage() *image.RGBA {
	pix := c.GetFramebufferRGBA()
	return &image.RGBA{
		Pix:    pix,
		Stride: ScreenWidth * 4,
		Rect:   image.Rect(0, 0, ScreenWidth, ScreenHeight),
	}
}

// SaveScreenshot encodes the current screen as a PNG and writes it to filename.
func (c *CPU) SaveScreenshot(filename string) error {
	img := c.GetFramebufferImage()
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}
