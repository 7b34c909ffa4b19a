// Command shmring-produce creates a segment and publishes synthetic frames
// into it at a fixed rate, for exercising readers against a real producer
// without a capture driver attached (spec §1 "the hardware capture driver
// bindings... are excluded. Those are treated as external collaborators").
package main

import (
	"flag"
	"time"

	"github.com/ultraframe/shmring/internal/logx"
	"github.com/ultraframe/shmring/pkg/shmring"
)

func main() {
	name := flag.String("name", "ultraframe0", "segment name")
	size := flag.Int("size", 16<<20, "segment size in bytes")
	width := flag.Uint("width", 1920, "frame width")
	height := flag.Uint("height", 1080, "frame height")
	fps := flag.Float64("fps", 30, "frames per second")
	dropWhenFull := flag.Bool("drop-when-full", true, "drop-when-full vs overwrite-on-full policy")
	flag.Parse()

	log := logx.New("shmring-produce", nil)

	cfg := shmring.DefaultConfig()
	cfg.Name = *name
	cfg.Size = *size
	cfg.Create = true
	cfg.DropWhenFull = *dropWhenFull

	seg, err := shmring.Open(cfg, nil)
	if err != nil {
		log.Errorf("open: %v", err)
		return
	}
	defer seg.Close()

	bpp := uint32(2)
	dataSize := uint32(*width) * uint32(*height) * bpp
	pixels := make([]byte, dataSize)
	for i := range pixels {
		pixels[i] = 0xAB
	}

	period := time.Duration(float64(time.Second) / *fps)
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var frameID uint64
	for range ticker.C {
		err := seg.WriteFrame(shmring.WriteRequest{
			FrameID:       frameID,
			Width:         uint32(*width),
			Height:        uint32(*height),
			BytesPerPixel: bpp,
			Format:        shmring.FormatYUV422,
			Data:          pixels,
		})
		if err != nil {
			if shmring.StatusOf(err) != shmring.StatusBufferFull {
				log.Errorf("writeFrame: %v", err)
			}
		}
		frameID++
	}
}
