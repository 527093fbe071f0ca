package lcloud

import (
	"github.com/ordlucas/lcloud/internal/frame"
)

// fakeDeviceServer is an in-process stand-in for the remote device
// server, implementing device.Requester directly in terms of the
// register-frame opcodes. It backs every block with an in-memory byte
// slice so read-modify-write and eviction/round-trip behavior can be
// exercised without a real bus or TCP connection.
type fakeDeviceServer struct {
	probeBitmap uint16
	capacities  map[uint8][2]uint16 // dev id -> (numSec, numBlk)
	storage     map[[3]uint16][]byte
}

func newFakeDeviceServer(probeBitmap uint16, capacities map[uint8][2]uint16) *fakeDeviceServer {
	return &fakeDeviceServer{
		probeBitmap: probeBitmap,
		capacities:  capacities,
		storage:     make(map[[3]uint16][]byte),
	}
}

func (f *fakeDeviceServer) key(dev uint8, sec, blk uint16) [3]uint16 {
	return [3]uint16{uint16(dev), sec, blk}
}

func (f *fakeDeviceServer) Request(req frame.Frame, buf []byte) (frame.Frame, error) {
	switch req.C0 {
	case frame.OpPowerOn, frame.OpPowerOff:
		return frame.Response(req.C0, 0, 0, 0, 0), nil
	case frame.OpDevProbe:
		return frame.Response(frame.OpDevProbe, 0, 0, f.probeBitmap, 0), nil
	case frame.OpDevInit:
		cap := f.capacities[req.C1]
		return frame.Response(frame.OpDevInit, 0, req.C1, cap[0], cap[1]), nil
	case frame.OpBlockXfer:
		k := f.key(req.C1, req.D0, req.D1)
		if frame.Xfer(req.C2) == frame.XferRead {
			stored, ok := f.storage[k]
			if !ok {
				stored = make([]byte, frame.BlockSize) // never-written sector reads as zeros
			}
			copy(buf, stored)
		} else {
			stored := make([]byte, frame.BlockSize)
			copy(stored, buf)
			f.storage[k] = stored
		}
		return frame.Response(frame.OpBlockXfer, req.C1, req.C2, req.D0, req.D1), nil
	}
	return frame.Frame{}, nil
}
