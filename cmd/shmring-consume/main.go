// Command shmring-consume attaches to a segment created by
// shmring-produce (or any compatible producer) and prints each frame it
// receives in publication order.
package main

import (
	"flag"
	"time"

	"github.com/ultraframe/shmring/internal/logx"
	"github.com/ultraframe/shmring/pkg/shmring"
)

func main() {
	name := flag.String("name", "ultraframe0", "segment name")
	size := flag.Int("size", 16<<20, "segment size in bytes, must match the producer")
	waitMs := flag.Int("wait-ms", 30, "how long to wait for a frame before returning BUFFER_EMPTY/TIMEOUT")
	flag.Parse()

	log := logx.New("shmring-consume", nil)

	cfg := shmring.DefaultConfig()
	cfg.Name = *name
	cfg.Size = *size
	cfg.Create = false

	seg, err := shmring.Open(cfg, nil)
	if err != nil {
		log.Errorf("open: %v", err)
		return
	}
	defer seg.Close()

	log.Infof("attached to %s: %d slots of %d bytes", seg.Name(), seg.SlotCount(), seg.SlotSize())

	wait := time.Duration(*waitMs) * time.Millisecond
	for {
		fr, err := seg.ReadNextFrame(wait)
		if err != nil {
			switch shmring.StatusOf(err) {
			case shmring.StatusBufferEmpty, shmring.StatusTimeout:
				continue
			default:
				log.Errorf("readNextFrame: %v", err)
				return
			}
		}
		log.Infof("frame %s", fr.Header.String())
	}
}
