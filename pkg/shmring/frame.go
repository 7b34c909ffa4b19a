package shmring

import (
	"github.com/ultraframe/shmring/internal/engine"
	"github.com/ultraframe/shmring/internal/frame"
)

// FormatCode is the wire format identifier stored in a frame header.
type FormatCode = frame.FormatCode

const (
	FormatYUV422  = frame.FormatYUV422
	FormatBGRA    = frame.FormatBGRA
	FormatYUV10   = frame.FormatYUV10
	FormatRGB10   = frame.FormatRGB10
	FormatUnknown = frame.FormatUnknown
)

// ParseFormat converts a canonical or alias format string into a
// FormatCode (spec §11 format aliases).
func ParseFormat(s string) FormatCode { return frame.ParseFormat(s) }

// Flags is the frame-header bitfield (spec §6).
type Flags = frame.Flags

const (
	FlagInPlace           = frame.FlagInPlace
	FlagSegmentation       = frame.FlagSegmentation
	FlagCalibration        = frame.FlagCalibration
	FlagPipelineProcessed  = frame.FlagPipelineProcessed
)

// Header is the decoded frame header a reader observes (spec §3).
type Header = frame.Header

// Frame is a reader's zero-copy view over one published slot; see
// engine.Frame's doc comment for the view's lifetime contract.
type Frame = engine.Frame

// WriteRequest describes one frame a producer publishes.
type WriteRequest = engine.WriteRequest
