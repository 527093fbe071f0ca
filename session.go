// Package lcloud implements a userspace file abstraction layered over a
// cluster of remote block-addressable storage devices reached over a
// thin request/response bus: the filesystem layer (file table, block
// maps, partial-block I/O arithmetic, cluster lifecycle), the block
// cache, and the bus client.
package lcloud

import (
	"fmt"

	"github.com/ordlucas/lcloud/internal/bus"
	"github.com/ordlucas/lcloud/internal/cache"
	"github.com/ordlucas/lcloud/internal/config"
	"github.com/ordlucas/lcloud/internal/device"
	log "github.com/sirupsen/logrus"
)

// Session bundles the file table, device list, power flag, bus
// connection, and cache behind one value instead of package-level
// globals, so multiple clusters can be driven from the same process.
// It is not safe for concurrent use.
type Session struct {
	cfg     config.Config
	ctrl    *device.Controller
	devices []*device.Device
	cacheP  *cache.Cache
	files   []*File
	powered bool
}

// New creates a Session against the device server described by cfg. The
// cluster itself is not contacted until the first Open.
func New(cfg config.Config) *Session {
	client := bus.New(bus.Config{Address: cfg.Address, Encrypted: cfg.Encrypted})
	return newWithRequester(cfg, client)
}

// newWithRequester builds a Session against an arbitrary device.Requester,
// letting tests substitute an in-process fake for the real TCP bus client.
func newWithRequester(cfg config.Config, requester device.Requester) *Session {
	return &Session{cfg: cfg, ctrl: device.New(requester)}
}

// Open creates or reopens path, powering on the cluster on first use.
func (s *Session) Open(path string) (int, error) {
	for _, f := range s.files {
		if f.Path == path && f.Open {
			return 0, ErrAlreadyOpen
		}
	}
	if !s.powered {
		if err := s.powerOn(); err != nil {
			return 0, err
		}
	}
	for _, f := range s.files {
		if f.Path == path && !f.Open {
			f.Open = true
			log.Debugf("[FS] reopened %q as handle %d", path, f.Handle)
			return f.Handle, nil
		}
	}
	handle := len(s.files)
	s.files = append(s.files, &File{Path: path, Handle: handle, Open: true})
	log.Debugf("[FS] created %q as handle %d", path, handle)
	return handle, nil
}

// Close flips the handle's open flag. No I/O is issued and the block map
// is preserved so a later Open of the same path sees the same data.
func (s *Session) Close(fh int) error {
	f, err := s.fileAt(fh)
	if err != nil {
		return err
	}
	f.Open = false
	return nil
}

// Seek repositions fh's cursor. It fails if off is negative or exceeds
// the file's current size; a handle that is not open also fails.
func (s *Session) Seek(fh int, off int) (int, error) {
	f, err := s.fileAt(fh)
	if err != nil {
		return 0, err
	}
	if off < 0 || off > f.Size {
		return 0, ErrSeekPastEOF
	}
	f.Pos = off
	return off, nil
}

// Shutdown frees the device list, drops every file's block map, closes
// the cache (logging final hit/miss statistics), and issues POWER_OFF.
func (s *Session) Shutdown() error {
	if !s.powered {
		return ErrAlreadyShutdown
	}
	s.devices = nil
	for _, f := range s.files {
		f.Blocks = nil
	}
	s.cacheP.Close()
	s.cacheP = nil
	err := s.ctrl.PowerOff()
	s.powered = false
	if err != nil {
		return fmt.Errorf("power off: %w", err)
	}
	return nil
}

func (s *Session) powerOn() error {
	if err := s.ctrl.PowerOn(); err != nil {
		return err
	}
	ids, err := s.ctrl.Probe()
	if err != nil {
		return err
	}
	devices := make([]*device.Device, 0, len(ids))
	for _, id := range ids {
		d, err := s.ctrl.Init(id)
		if err != nil {
			return err
		}
		devices = append(devices, d)
	}
	s.devices = devices
	s.cacheP = cache.New(s.cfg.CacheCapacity)
	s.powered = true
	log.Infof("[FS] powered on with %d device(s)", len(devices))
	return nil
}

func (s *Session) fileAt(fh int) (*File, error) {
	if fh < 0 || fh >= len(s.files) {
		return nil, ErrUnknownHandle
	}
	f := s.files[fh]
	if !f.Open {
		return nil, ErrUnknownHandle
	}
	return f, nil
}
