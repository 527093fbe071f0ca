// Package bus implements the client side of the fixed-width register-frame
// protocol: connection lifecycle, frame and payload transfer, and optional
// AES-128-CBC encryption of BLOCK_XFER payloads.
//
// Grounded on the teacher's virtual CAN-bus TCP client (net.Dial,
// SetNoDelay, big-endian wire framing) and on the pack's rlpx frame
// encryption (crypto/aes, crypto/cipher) for the cipher wiring.
package bus

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
	"net"

	"github.com/ordlucas/lcloud/internal/frame"
	"github.com/ordlucas/lcloud/internal/lerr"
	log "github.com/sirupsen/logrus"
)

const keySize = 16 // AES-128

// Config configures a Client's connection and optional encryption.
type Config struct {
	Address   string // host:port of the device server
	Encrypted bool   // enable AES-128-CBC payload encryption
}

// Client maintains a single TCP connection to the configured device server.
// It is not safe for concurrent use: the core is single-threaded per
// spec, same as the teacher's bus manager.
type Client struct {
	cfg  Config
	conn net.Conn

	block cipher.Block
	key   [keySize]byte
	iv    [keySize]byte
}

// New creates a Client. The connection is opened lazily on first Request.
func New(cfg Config) *Client {
	return &Client{cfg: cfg}
}

func (c *Client) ensureConnected() error {
	if c.conn != nil {
		return nil
	}
	conn, err := net.Dial("tcp", c.cfg.Address)
	if err != nil {
		return fmt.Errorf("dial %s: %w: %v", c.cfg.Address, lerr.ErrTransport, err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	c.conn = conn
	if c.cfg.Encrypted {
		if _, err := rand.Read(c.key[:]); err != nil {
			return fmt.Errorf("generate session key: %w: %v", lerr.ErrCrypto, err)
		}
		if _, err := rand.Read(c.iv[:]); err != nil {
			return fmt.Errorf("generate session iv: %w: %v", lerr.ErrCrypto, err)
		}
		block, err := aes.NewCipher(c.key[:])
		if err != nil {
			return fmt.Errorf("init cipher: %w: %v", lerr.ErrCrypto, err)
		}
		c.block = block
	}
	log.Debugf("[BUS] connected to %s (encrypted=%v)", c.cfg.Address, c.cfg.Encrypted)
	return nil
}

// Request issues one frame to the device server and returns its response,
// exchanging a BLOCK_XFER payload through buf when the opcode requires it.
// buf must be exactly frame.BlockSize bytes for BLOCK_XFER opcodes.
//
// On any transport or crypto failure, Request returns the zero Frame and
// an error; it does not close the connection, leaving it for the next
// call to observe and fail on, per protocol.
func (c *Client) Request(req frame.Frame, buf []byte) (frame.Frame, error) {
	if err := c.ensureConnected(); err != nil {
		return frame.Frame{}, err
	}

	wire := req.Encode()
	if err := writeFull(c.conn, wire[:]); err != nil {
		return frame.Frame{}, fmt.Errorf("write request frame: %w: %v", lerr.ErrTransport, err)
	}

	switch {
	case req.C0 == frame.OpBlockXfer && frame.Xfer(req.C2) == frame.XferRead:
		return c.doBlockRead(buf)
	case req.C0 == frame.OpBlockXfer && frame.Xfer(req.C2) == frame.XferWrite:
		return c.doBlockWrite(buf)
	case req.C0 == frame.OpPowerOff:
		return c.doPowerOff()
	default:
		return c.readResponseFrame()
	}
}

func (c *Client) doBlockRead(buf []byte) (frame.Frame, error) {
	resp, err := c.readResponseFrame()
	if err != nil {
		return frame.Frame{}, err
	}
	staging := make([]byte, frame.BlockSize)
	if err := readFull(c.conn, staging); err != nil {
		return frame.Frame{}, fmt.Errorf("read block payload: %w: %v", lerr.ErrTransport, err)
	}
	if c.cfg.Encrypted {
		decrypter := cipher.NewCBCDecrypter(c.block, c.iv[:])
		decrypter.CryptBlocks(buf, staging)
	} else {
		copy(buf, staging)
	}
	return resp, nil
}

func (c *Client) doBlockWrite(buf []byte) (frame.Frame, error) {
	payload := buf
	if c.cfg.Encrypted {
		staging := make([]byte, frame.BlockSize)
		encrypter := cipher.NewCBCEncrypter(c.block, c.iv[:])
		encrypter.CryptBlocks(staging, buf)
		payload = staging
	}
	if err := writeFull(c.conn, payload); err != nil {
		return frame.Frame{}, fmt.Errorf("write block payload: %w: %v", lerr.ErrTransport, err)
	}
	return c.readResponseFrame()
}

func (c *Client) doPowerOff() (frame.Frame, error) {
	resp, err := c.readResponseFrame()
	if err != nil {
		return frame.Frame{}, err
	}
	c.conn.Close()
	c.conn = nil
	c.block = nil
	c.key = [keySize]byte{}
	c.iv = [keySize]byte{}
	return resp, nil
}

func (c *Client) readResponseFrame() (frame.Frame, error) {
	var wire [8]byte
	if err := readFull(c.conn, wire[:]); err != nil {
		return frame.Frame{}, fmt.Errorf("read response frame: %w: %v", lerr.ErrTransport, err)
	}
	return frame.Decode(wire[:]), nil
}

func readFull(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	return err
}

func writeFull(w io.Writer, buf []byte) error {
	for written := 0; written < len(buf); {
		n, err := w.Write(buf[written:])
		if err != nil {
			return err
		}
		written += n
	}
	return nil
}
