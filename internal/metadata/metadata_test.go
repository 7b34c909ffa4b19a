package metadata

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteIntoThenReadFromRoundTrip(t *testing.T) {
	region := make([]byte, 4096)
	doc := NewDocument("YUV", 7, 8<<20, 128, 1<<20)
	doc.LastFrame = &LastFrame{FrameID: 1, SequenceNumber: 0, Width: 1920, Height: 1080, Format: "YUV", DataSize: 4147200, TimestampNS: 1000}

	require.NoError(t, WriteInto(region, doc))

	got, err := ReadFrom(region)
	require.NoError(t, err)
	require.Equal(t, doc.FormatVersion, got.FormatVersion)
	require.Equal(t, doc.Type, got.Type)
	require.Equal(t, doc.MaxFrames, got.MaxFrames)
	require.Equal(t, doc.DataOffset, got.DataOffset)
	require.NotNil(t, got.LastFrame)
	require.Equal(t, uint64(1), got.LastFrame.FrameID)
}

func TestWriteIntoRejectsOversizeAndLeavesRegionIntact(t *testing.T) {
	// 240 bytes holds the original document (at most about 203 bytes with
	// its newline and NUL) but not the oversized one (at least about 252).
	region := make([]byte, 240)
	original := NewDocument("YUV", 1, 1<<20, 128, 4096)
	require.NoError(t, WriteInto(region, original))
	before := append([]byte(nil), region...)

	oversized := NewDocument("YUV422_10_but_a_much_longer_frame_format_string_than_fits", 99999, 99999, 99999, 99999)
	err := WriteInto(region, oversized)
	require.ErrorIs(t, err, ErrTooLarge)
	require.Equal(t, before, region)
}

func TestReadFromToleratesMissingOptionalFields(t *testing.T) {
	region := make([]byte, 256)
	copy(region, `{"format_version":"1.0","type":"medical_imaging_frames"}`)

	doc, err := ReadFrom(region)
	require.NoError(t, err)
	require.Equal(t, "1.0", doc.FormatVersion)
	require.Nil(t, doc.LastFrame)
}

func TestReadFromNeverPanicsOnGarbage(t *testing.T) {
	region := []byte("not json at all\x00\x00\x00")
	_, err := ReadFrom(region)
	require.Error(t, err)
}
