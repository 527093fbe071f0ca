package lcloud

import (
	"bytes"
	"testing"

	"github.com/ordlucas/lcloud/internal/frame"
	"github.com/stretchr/testify/require"
)

func TestWriteSpanningTwoBlocksFillsSecondFromDevice(t *testing.T) {
	// A freshly allocated block's untouched tail reads back whatever the
	// remote device returns for a never-written sector (here: zeros,
	// since the fake server backs unwritten sectors with zero-filled
	// storage).
	s := oneDeviceSession(t)
	fh, _ := s.Open("a")
	payload := bytes.Repeat([]byte("X"), 300)
	n, err := s.Write(fh, payload)
	require.NoError(t, err)
	require.Equal(t, 300, n)
	require.Len(t, s.files[0].Blocks, 2)

	_, _ = s.Seek(fh, 0)
	buf := make([]byte, 300)
	_, err = s.Read(fh, buf)
	require.NoError(t, err)
	require.Equal(t, []byte("X"), buf[255:256])
	// The tail lies past EOF, so it is checked on the cached copy of block 1.
	block1, ok := s.cacheP.Get(s.files[0].Blocks[1])
	require.True(t, ok)
	require.Equal(t, byte(0), block1[44]) // first byte past the 44 written bytes of block 1
}

func TestDeviceBoundarySpillsToNextDevice(t *testing.T) {
	// Two devices, 1 sector x 2 blocks each = 4 blocks total; a write of
	// 1024 bytes (4 blocks) must succeed by spilling from device 1 (the
	// higher-numbered, first-probed device) onto device 0.
	s := newTestSession(t, 0b11, map[uint8][2]uint16{
		0: {1, 2},
		1: {1, 2},
	})
	fh, _ := s.Open("a")
	n, err := s.Write(fh, bytes.Repeat([]byte("Y"), 1024))
	require.NoError(t, err)
	require.Equal(t, 1024, n)
	require.Equal(t, uint8(1), s.files[0].Blocks[0].Dev, "highest-numbered device is probed first")
	require.Equal(t, uint8(0), s.files[0].Blocks[2].Dev)
}

func TestWriteBeyondClusterCapacityFails(t *testing.T) {
	s := newTestSession(t, 0b11, map[uint8][2]uint16{
		0: {1, 2},
		1: {1, 2},
	})
	fh, _ := s.Open("a")
	_, err := s.Write(fh, bytes.Repeat([]byte("Y"), 1024))
	require.NoError(t, err)
	_, err = s.Write(fh, []byte("Z"))
	require.ErrorIs(t, err, ErrClusterFull)
}

func TestReadPastEOFReturnsRequestedLength(t *testing.T) {
	// Read returns len, not the truncated effective count, when the
	// requested range extends past EOF.
	s := oneDeviceSession(t)
	fh, _ := s.Open("a")
	_, err := s.Write(fh, []byte("0123456789"))
	require.NoError(t, err)
	_, err = s.Seek(fh, 10)
	require.NoError(t, err)

	buf := bytes.Repeat([]byte{0xFF}, 50)
	n, err := s.Read(fh, buf)
	require.NoError(t, err)
	require.Equal(t, 50, n)
	// Nothing meaningful was actually copied; the buffer is untouched.
	require.Equal(t, byte(0xFF), buf[0])
}

func TestReadExactlyOneBlock(t *testing.T) {
	s := oneDeviceSession(t)
	fh, _ := s.Open("a")
	payload := bytes.Repeat([]byte("Q"), frame.BlockSize)
	_, err := s.Write(fh, payload)
	require.NoError(t, err)
	require.Len(t, s.files[0].Blocks, 1)

	_, _ = s.Seek(fh, 0)
	buf := make([]byte, frame.BlockSize)
	_, err = s.Read(fh, buf)
	require.NoError(t, err)
	require.Equal(t, payload, buf)
}

func TestWriteExactlyNBlocks(t *testing.T) {
	s := oneDeviceSession(t)
	fh, _ := s.Open("a")
	payload := bytes.Repeat([]byte("N"), frame.BlockSize*3)
	n, err := s.Write(fh, payload)
	require.NoError(t, err)
	require.Equal(t, frame.BlockSize*3, n)
	require.Len(t, s.files[0].Blocks, 3)
}

func TestBlockMapLengthInvariantAfterWrites(t *testing.T) {
	s := oneDeviceSession(t)
	fh, _ := s.Open("a")
	for _, n := range []int{10, 250, 1, 400} {
		_, err := s.Write(fh, bytes.Repeat([]byte("Z"), n))
		require.NoError(t, err)
		f := s.files[0]
		require.Equal(t, ceilDiv(f.Size, frame.BlockSize), len(f.Blocks))
	}
}

func TestBlockAddressesNeverShareAcrossFiles(t *testing.T) {
	s := oneDeviceSession(t)
	fh1, _ := s.Open("a")
	fh2, _ := s.Open("b")
	_, err := s.Write(fh1, bytes.Repeat([]byte("A"), 300))
	require.NoError(t, err)
	_, err = s.Write(fh2, bytes.Repeat([]byte("B"), 300))
	require.NoError(t, err)

	seen := make(map[BlockAddress]bool)
	for _, f := range s.files {
		for _, addr := range f.Blocks {
			require.False(t, seen[addr], "block address reused across files")
			seen[addr] = true
		}
	}
}

func TestCacheMissThenHitOnSameBlock(t *testing.T) {
	s := oneDeviceSession(t)
	fh, _ := s.Open("a")
	_, err := s.Write(fh, bytes.Repeat([]byte("X"), frame.BlockSize))
	require.NoError(t, err)

	statsBefore := s.cacheP.Stats()
	_, _ = s.Seek(fh, 0)
	buf := make([]byte, frame.BlockSize)
	_, err = s.Read(fh, buf)
	require.NoError(t, err)
	statsAfter := s.cacheP.Stats()
	require.Greater(t, statsAfter.Hits, statsBefore.Hits)
}
