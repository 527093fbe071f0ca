package lcloud

// allocate assigns n new logical blocks by scanning devices in probe
// order and picking the first with spare capacity: a device is filled
// to its last block before allocation moves on to the next one, with no
// rebalancing between devices.
func (s *Session) allocate(n int) ([]BlockAddress, error) {
	addrs := make([]BlockAddress, 0, n)
	for i := 0; i < n; i++ {
		addr, err := s.allocateOne()
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

func (s *Session) allocateOne() (BlockAddress, error) {
	for _, d := range s.devices {
		if d.Full {
			continue
		}
		addr := BlockAddress{Dev: d.ID, Sec: d.NextSec, Blk: d.NextBlk}
		d.NextBlk++
		if d.NextBlk == d.NumBlk {
			d.NextBlk = 0
			d.NextSec++
			if d.NextSec == d.NumSec {
				d.Full = true
			}
		}
		return addr, nil
	}
	return BlockAddress{}, ErrClusterFull
}
