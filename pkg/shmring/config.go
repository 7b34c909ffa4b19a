// Package shmring is the public API for the shared-memory ring-buffer
// transport: a single producer publishes frames into a named segment and
// any number of readers consume them with zero-copy views, following the
// contract described in internal/engine.
package shmring

import (
	"fmt"

	"github.com/ultraframe/shmring/internal/engine"
	"github.com/ultraframe/shmring/internal/segment"
)

// Backend selects which of the four interchangeable segment backends a
// Config uses.
type Backend = segment.Backend

const (
	BackendPOSIX    = segment.BackendPOSIX
	BackendSysV     = segment.BackendSysV
	BackendFile     = segment.BackendFile
	BackendHugePage = segment.BackendHugePage
)

// Config is the full set of options recognised at create time (spec §6).
type Config struct {
	// Name identifies the segment; interpretation depends on Backend.
	Name string
	// Size is the segment's total byte size, including control block and
	// metadata region.
	Size int
	// Backend selects the segment backend (default BackendPOSIX).
	Backend Backend
	// Create selects producer (true) vs. attacher (false) semantics.
	Create bool
	// FilePath overrides the default path for BackendFile.
	FilePath string
	// LockInMemory requests the kernel pin the mapping (soft failure).
	LockInMemory bool
	// MaxFrameSize is the slot-size hint; 0 selects a 1080p default.
	MaxFrameSize int
	// MaxFrames is a capacity hint: when nonzero and Create is set, the
	// segment's derived slot count must equal it exactly or Open fails with
	// InvalidSize, catching a Size/MaxFrameSize combination that doesn't
	// actually deliver the capacity the caller asked for.
	MaxFrames int
	// FrameFormat names the canonical pixel format stamped into metadata
	// ("YUV", "BGRA", "YUV10", "RGB10"); only meaningful when Create.
	FrameFormat string
	// MetadataSize is the fixed size of the metadata region; 0 selects a
	// 4 KiB default.
	MetadataSize int
	// EnableMetadata turns on writing and opportunistic refresh of the
	// metadata region (default true via DefaultConfig).
	EnableMetadata bool
	// DropWhenFull selects the fullness policy (default true via
	// DefaultConfig): drop-and-count vs. overwrite-the-oldest-slot.
	DropWhenFull bool
}

// DefaultConfig returns a Config with every documented default applied,
// leaving Name, Size, and Create for the caller to fill in.
func DefaultConfig() *Config {
	return &Config{
		Backend:        BackendPOSIX,
		MaxFrameSize:   0,
		FrameFormat:    "YUV",
		MetadataSize:   engine.DefaultMetadataSize,
		EnableMetadata: true,
		DropWhenFull:   true,
	}
}

// Validate rejects configurations spec §4.1/§8 calls out as malformed
// before any backend syscall is attempted.
func Validate(cfg *Config) error {
	if cfg.Name == "" {
		return fmt.Errorf("shmring: Name must not be empty")
	}
	if cfg.Size <= 0 {
		return fmt.Errorf("shmring: Size must be positive, got %d", cfg.Size)
	}
	if cfg.MaxFrameSize < 0 {
		return fmt.Errorf("shmring: MaxFrameSize must not be negative, got %d", cfg.MaxFrameSize)
	}
	if cfg.MaxFrames < 0 {
		return fmt.Errorf("shmring: MaxFrames must not be negative, got %d", cfg.MaxFrames)
	}
	if cfg.MetadataSize < 0 {
		return fmt.Errorf("shmring: MetadataSize must not be negative, got %d", cfg.MetadataSize)
	}
	if cfg.Backend == BackendFile && cfg.FilePath == "" && !cfg.Create {
		return fmt.Errorf("shmring: FilePath required to attach to a BackendFile segment")
	}
	return nil
}

func (cfg *Config) toEngineConfig() engine.Config {
	return engine.Config{
		Name:           cfg.Name,
		Size:           cfg.Size,
		Backend:        cfg.Backend,
		Create:         cfg.Create,
		FilePath:       cfg.FilePath,
		LockInMemory:   cfg.LockInMemory,
		MaxFrameSize:   cfg.MaxFrameSize,
		MaxFrames:      cfg.MaxFrames,
		FrameFormat:    cfg.FrameFormat,
		MetadataSize:   cfg.MetadataSize,
		EnableMetadata: cfg.EnableMetadata,
		DropWhenFull:   cfg.DropWhenFull,
	}
}
