package lcloud

import "github.com/ordlucas/lcloud/internal/frame"

// ceilDiv computes ⌈a/b⌉ for non-negative a and positive b.
func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

// readBlockCached returns a copy of the block at addr, consulting the
// cache first and falling back to the device on a miss, writing the
// fetched block back into the cache.
func (s *Session) readBlockCached(addr BlockAddress) ([]byte, error) {
	if payload, ok := s.cacheP.Get(addr); ok {
		buf := make([]byte, frame.BlockSize)
		copy(buf, payload)
		return buf, nil
	}
	buf := make([]byte, frame.BlockSize)
	if err := s.ctrl.ReadBlock(buf, addr.Dev, addr.Sec, addr.Blk); err != nil {
		return nil, err
	}
	s.cacheP.Put(addr, buf)
	return buf, nil
}

// Read validates fh, then reads up to len(buf) bytes from the file's
// current position. Reads past end of file are truncated to the bytes
// actually available, but the return value is always len(buf), not the
// truncated count.
func (s *Session) Read(fh int, buf []byte) (int, error) {
	if !s.powered {
		return 0, ErrPoweredOff
	}
	file, err := s.fileAt(fh)
	if err != nil {
		return 0, err
	}

	p := file.Pos
	length := len(buf)
	avail := file.Size - p
	if avail < 0 {
		avail = 0
	}
	readLen := avail
	if readLen > length {
		readLen = length
	}

	blocksTouched := ceilDiv(p%frame.BlockSize+readLen, frame.BlockSize)
	remaining := readLen
	copied := 0

	for iter := 0; iter < blocksTouched; iter++ {
		i := p / frame.BlockSize
		o := p % frame.BlockSize
		if i >= len(file.Blocks) {
			break
		}
		block, err := s.readBlockCached(file.Blocks[i])
		if err != nil {
			return 0, err
		}
		chunk := frame.BlockSize - o
		if chunk > remaining {
			chunk = remaining
		}
		copy(buf[copied:copied+chunk], block[o:o+chunk])
		copied += chunk
		remaining -= chunk
		p += chunk
	}
	file.Pos = p
	return length, nil
}

// Write validates fh, allocates any new blocks the write requires, then
// read-modifies-writes each touched block through the device and the
// cache. Returns len(buf) on success.
func (s *Session) Write(fh int, buf []byte) (int, error) {
	if !s.powered {
		return 0, ErrPoweredOff
	}
	file, err := s.fileAt(fh)
	if err != nil {
		return 0, err
	}

	p := file.Pos
	length := len(buf)
	blocksTouched := ceilDiv(p%frame.BlockSize+length, frame.BlockSize)

	if file.Size == 0 {
		addrs, err := s.allocate(blocksTouched)
		if err != nil {
			return 0, err
		}
		file.Blocks = addrs
	} else if p+length > file.Size {
		finalLen := ceilDiv(p+length, frame.BlockSize)
		if finalLen > len(file.Blocks) {
			addrs, err := s.allocate(finalLen - len(file.Blocks))
			if err != nil {
				return 0, err
			}
			file.Blocks = append(file.Blocks, addrs...)
		}
	}

	remaining := length
	copied := 0
	for iter := 0; iter < blocksTouched; iter++ {
		i := p / frame.BlockSize
		o := p % frame.BlockSize
		addr := file.Blocks[i]

		block, err := s.readBlockCached(addr)
		if err != nil {
			return 0, err
		}
		chunk := frame.BlockSize - o
		if chunk > remaining {
			chunk = remaining
		}
		copy(block[o:o+chunk], buf[copied:copied+chunk])

		if err := s.ctrl.WriteBlock(block, addr.Dev, addr.Sec, addr.Blk); err != nil {
			return 0, err
		}
		s.cacheP.Put(addr, block)

		copied += chunk
		remaining -= chunk
		p += chunk
	}

	if p > file.Size {
		file.Size = p
	}
	file.Pos = p
	return length, nil
}
