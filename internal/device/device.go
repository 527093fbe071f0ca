// Package device implements the thin, fail-fast wrappers around the bus
// client for each opcode: power on/off, device probing and
// initialization, and block read/write.
//
// Grounded on the teacher's SDO client wrapper pattern (pack a request,
// call the bus, unpack and validate the response, fail-fast on a
// mismatched echo) from pkg/sdo/client.go and pkg/sdo/requests.go.
package device

import (
	"fmt"

	"github.com/ordlucas/lcloud/internal/frame"
	"github.com/ordlucas/lcloud/internal/lerr"
	log "github.com/sirupsen/logrus"
)

// Requester is the subset of *bus.Client the controller depends on,
// narrowed to keep this package free of a direct bus import cycle and
// easy to fake in tests.
type Requester interface {
	Request(req frame.Frame, buf []byte) (frame.Frame, error)
}

// ID identifies a device within the 17-bit DEVPROBE bitmap.
type ID = uint8

// Device records one cluster device's identity, capacity, and the
// allocation cursor used by the filesystem's allocator.
type Device struct {
	ID      ID
	NumSec  uint16
	NumBlk  uint16
	NextSec uint16
	NextBlk uint16
	Full    bool
}

// Controller issues the opcode-specific requests over a Requester (a bus
// client) and validates every response before returning.
type Controller struct {
	bus Requester
}

// New creates a Controller bound to the given bus client.
func New(bus Requester) *Controller {
	return &Controller{bus: bus}
}

// PowerOn issues POWER_ON and validates the echoed opcode.
func (c *Controller) PowerOn() error {
	resp, err := c.bus.Request(frame.Request(frame.OpPowerOn, 0, 0, 0, 0), nil)
	if err != nil {
		return err
	}
	return c.validate(resp, frame.OpPowerOn)
}

// PowerOff issues POWER_OFF and validates the echoed opcode.
func (c *Controller) PowerOff() error {
	resp, err := c.bus.Request(frame.Request(frame.OpPowerOff, 0, 0, 0, 0), nil)
	if err != nil {
		return err
	}
	return c.validate(resp, frame.OpPowerOff)
}

// Probe issues DEVPROBE and enumerates the present devices from bit 16
// down to bit 0. The ordering matters: it is also the block-allocation
// scan order, so the highest-numbered present device is the first to
// receive writes.
func (c *Controller) Probe() ([]ID, error) {
	resp, err := c.bus.Request(frame.Request(frame.OpDevProbe, 0, 0, 0, 0), nil)
	if err != nil {
		return nil, err
	}
	if err := c.validate(resp, frame.OpDevProbe); err != nil {
		return nil, err
	}
	return frame.ProbeBits(resp.D0), nil
}

// Init issues DEVINIT for dev and records its capacity.
func (c *Controller) Init(id ID) (*Device, error) {
	resp, err := c.bus.Request(frame.Request(frame.OpDevInit, id, 0, 0, 0), nil)
	if err != nil {
		return nil, err
	}
	if err := c.validate(resp, frame.OpDevInit); err != nil {
		return nil, err
	}
	if resp.C2 != id {
		return nil, fmt.Errorf("devinit echoed device %d, expected %d: %w", resp.C2, id, lerr.ErrProtocol)
	}
	return &Device{ID: id, NumSec: resp.D0, NumBlk: resp.D1}, nil
}

// ReadBlock reads exactly frame.BlockSize bytes from (dev, sec, blk) into buf.
func (c *Controller) ReadBlock(buf []byte, dev ID, sec, blk uint16) error {
	if len(buf) != frame.BlockSize {
		return fmt.Errorf("read buffer must be %d bytes, got %d: %w", frame.BlockSize, len(buf), lerr.ErrState)
	}
	req := frame.Request(frame.OpBlockXfer, dev, uint8(frame.XferRead), sec, blk)
	resp, err := c.bus.Request(req, buf)
	if err != nil {
		return err
	}
	log.Debugf("[DEVICE] read dev=%d sec=%d blk=%d", dev, sec, blk)
	return c.validate(resp, frame.OpBlockXfer)
}

// WriteBlock writes exactly frame.BlockSize bytes from buf to (dev, sec, blk).
func (c *Controller) WriteBlock(buf []byte, dev ID, sec, blk uint16) error {
	if len(buf) != frame.BlockSize {
		return fmt.Errorf("write buffer must be %d bytes, got %d: %w", frame.BlockSize, len(buf), lerr.ErrState)
	}
	req := frame.Request(frame.OpBlockXfer, dev, uint8(frame.XferWrite), sec, blk)
	resp, err := c.bus.Request(req, buf)
	if err != nil {
		return err
	}
	log.Debugf("[DEVICE] write dev=%d sec=%d blk=%d", dev, sec, blk)
	return c.validate(resp, frame.OpBlockXfer)
}

func (c *Controller) validate(resp frame.Frame, want frame.Opcode) error {
	if !resp.OK() {
		return fmt.Errorf("device server returned error for opcode %d: %w", want, lerr.ErrProtocol)
	}
	if resp.C0 != want {
		return fmt.Errorf("echoed opcode %d, expected %d: %w", resp.C0, want, lerr.ErrProtocol)
	}
	return nil
}
