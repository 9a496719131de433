package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"
)

const (
	gifCellW = 8
	gifCellH = 16
	// maxGIFFrames bounds memory while recording long runs.
	maxGIFFrames = 1800
)

var gifPalette = color.Palette{color.Black, color.RGBA{0x00, 0xff, 0xff, 0xff}}

// Recorder collects canvas snapshots for an animated GIF.
type Recorder struct {
	frames []*image.Paletted
}

func NewRecorder() *Recorder {
	return &Recorder{frames: make([]*image.Paletted, 0, 64)}
}

func (r *Recorder) Len() int { return len(r.frames) }

// Capture rasterises every set dot of c as a block of pixels.
func (r *Recorder) Capture(c *Canvas) {
	if len(r.frames) >= maxGIFFrames {
		return
	}
	dotW, dotH := gifCellW/2, gifCellH/4
	img := image.NewPaletted(image.Rect(0, 0, c.Width*gifCellW, c.Height*gifCellH), gifPalette)
	c.EachDot(func(x, y int) {
		for py := 0; py < dotH; py++ {
			for px := 0; px < dotW; px++ {
				img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
			}
		}
	})
	r.frames = append(r.frames, img)
}

func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return errors.New("no frames recorded")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
