//go:build unix

// Package compositor is a minimal in-process Wayland compositor for tests.
// It answers wl_display.sync and can be told to fail with wl_display.error.
package compositor

import (
	"encoding/binary"
	"errors"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"golang.org/x/sys/unix"
)

var byteOrder = binary.NativeEndian

// Compositor serves a listening socket or a single pre-connected peer.
type Compositor struct {
	ln       net.Listener
	path     string
	wg       sync.WaitGroup
	mu       sync.Mutex
	conns    []net.Conn
	requests atomic.Int64
	hangups  chan struct{}

	// ErrorOnSync makes the next sync answer with wl_display.error.
	ErrorOnSync atomic.Bool
	// Silent drops sync requests without answering.
	Silent atomic.Bool
	// ExtraEvent precedes each done with an event for an unknown object.
	ExtraEvent atomic.Bool
}

// RuntimeDir returns a short lived directory usable as XDG_RUNTIME_DIR.
// t.TempDir() paths can exceed the socket path limit.
func RuntimeDir(t testing.TB) string {
	t.Helper()
	dir, err := os.MkdirTemp(``, `wl`)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	return dir
}

// Listen starts a compositor on runtimeDir/display.
func Listen(t testing.TB, runtimeDir, display string) *Compositor {
	t.Helper()
	path := filepath.Join(runtimeDir, display)
	ln, err := net.Listen(`unix`, path)
	if err != nil {
		t.Fatal(err)
	}
	c := newCompositor()
	c.ln = ln
	c.path = path
	c.wg.Add(1)
	go c.accept()
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// Socketpair returns a compositor serving one end of a socketpair and the
// client end as raw fd, to be handed over through WAYLAND_SOCKET.
func Socketpair(t testing.TB) (*Compositor, int) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		t.Fatal(err)
	}
	f := os.NewFile(uintptr(fds[0]), `compositor-end`)
	conn, err := net.FileConn(f)
	_ = f.Close()
	if err != nil {
		_ = unix.Close(fds[1])
		t.Fatal(err)
	}
	c := newCompositor()
	c.track(conn)
	c.wg.Add(1)
	go c.serve(conn)
	t.Cleanup(func() { _ = c.Close() })
	return c, fds[1]
}

func newCompositor() *Compositor {
	return &Compositor{hangups: make(chan struct{}, 16)}
}

// Path is the socket path of a listening compositor.
func (c *Compositor) Path() string { return c.path }

// Requests counts the requests received.
func (c *Compositor) Requests() int64 { return c.requests.Load() }

// Hangups yields one value per client that closed its end.
func (c *Compositor) Hangups() <-chan struct{} { return c.hangups }

func (c *Compositor) Close() error {
	var err error
	if c.ln != nil {
		err = c.ln.Close()
	}
	c.mu.Lock()
	for _, conn := range c.conns {
		_ = conn.Close()
	}
	c.conns = nil
	c.mu.Unlock()
	c.wg.Wait()
	if errors.Is(err, net.ErrClosed) {
		err = nil
	}
	return err
}

func (c *Compositor) track(conn net.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conns = append(c.conns, conn)
}

func (c *Compositor) accept() {
	defer c.wg.Done()
	for {
		conn, err := c.ln.Accept()
		if err != nil {
			return
		}
		c.track(conn)
		c.wg.Add(1)
		go c.serve(conn)
	}
}

func (c *Compositor) serve(conn net.Conn) {
	defer c.wg.Done()
	var serial uint32
	for {
		var hdr [8]byte
		if _, err := io.ReadFull(conn, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				select {
				case c.hangups <- struct{}{}:
				default:
				}
			}
			return
		}
		sender := byteOrder.Uint32(hdr[0:4])
		word := byteOrder.Uint32(hdr[4:8])
		size, opcode := int(word>>16), uint16(word&0xffff)
		if size < 8 {
			return
		}
		body := make([]byte, size-8)
		if _, err := io.ReadFull(conn, body); err != nil {
			return
		}
		c.requests.Add(1)
		if sender != 1 || opcode != 0 || len(body) < 4 {
			continue
		}
		callback := byteOrder.Uint32(body[0:4])
		switch {
		case c.ErrorOnSync.Load():
			_, _ = conn.Write(displayError(1, 1, `invalid method`))
			continue
		case c.Silent.Load():
			continue
		}
		serial++
		var out []byte
		if c.ExtraEvent.Load() {
			out = append(out, event(callback+1000, 3, 7)...)
		}
		out = append(out, event(callback, 0, serial)...)
		out = append(out, event(1, 1, callback)...)
		if _, err := conn.Write(out); err != nil {
			return
		}
	}
}

func event(sender uint32, opcode uint16, args ...uint32) []byte {
	size := 8 + 4*len(args)
	b := make([]byte, 0, size)
	b = byteOrder.AppendUint32(b, sender)
	b = byteOrder.AppendUint32(b, uint32(size)<<16|uint32(opcode))
	for _, a := range args {
		b = byteOrder.AppendUint32(b, a)
	}
	return b
}

func displayError(objectID, code uint32, msg string) []byte {
	n := len(msg) + 1
	pad := (4 - n%4) % 4
	size := 8 + 4 + 4 + 4 + n + pad
	b := make([]byte, 0, size)
	b = byteOrder.AppendUint32(b, 1)
	b = byteOrder.AppendUint32(b, uint32(size)<<16)
	b = byteOrder.AppendUint32(b, objectID)
	b = byteOrder.AppendUint32(b, code)
	b = byteOrder.AppendUint32(b, uint32(n))
	b = append(b, msg...)
	b = append(b, make([]byte, 1+pad)...)
	return b
}
