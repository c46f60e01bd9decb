// Package udp receives display datagrams and publishes the decoded scenes.
package udp

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/rs/zerolog/log"
	"go.uber.org/atomic"

	"github.com/coreman2200/funtimes-pushbridge/internal/diagnostics"
	"github.com/coreman2200/funtimes-pushbridge/internal/protocol"
	"github.com/coreman2200/funtimes-pushbridge/internal/scene"
)

// MaxDatagram is the receive buffer size. Larger datagrams are truncated by
// the kernel and then fail framing.
const MaxDatagram = 64 << 10

type Publisher interface {
	Publish(*scene.Scene)
}

type PublisherFunc func(*scene.Scene)

func (f PublisherFunc) Publish(s *scene.Scene) { f(s) }

// Listener owns at most one socket. Start replaces a running socket.
type Listener struct {
	pub  Publisher
	diag diagnostics.Sink

	mu   sync.Mutex
	conn *net.UDPConn
	done chan struct{}

	port     atomic.Int32
	received atomic.Uint64
	failed   atomic.Uint64
}

func NewListener(pub Publisher, diag diagnostics.Sink) *Listener {
	if diag == nil {
		diag = diagnostics.Discard
	}
	return &Listener{pub: pub, diag: diag}
}

// Start stops any running socket and listens on port. Port 0 picks a free
// port; see Port.
func (l *Listener) Start(port int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()

	l.info("UDP.START", fmt.Sprintf("Starting UDP server on port %d.", port))
	conn, err := net.ListenUDP("udp", &net.UDPAddr{Port: port})
	if err != nil {
		l.diag.Report(diagnostics.Diagnostic{
			Severity: diagnostics.Err, Code: "UDP.BIND",
			Summary: fmt.Sprintf("Could not bind port %d", port), Detail: err.Error(),
		})
		return err
	}
	l.conn = conn
	l.done = make(chan struct{})
	l.port.Store(int32(conn.LocalAddr().(*net.UDPAddr).Port))
	go l.receive(conn, l.done)
	return nil
}

// Stop closes the socket and waits for the receive loop to exit.
func (l *Listener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

func (l *Listener) stopLocked() {
	if l.conn == nil {
		return
	}
	l.info("UDP.STOP", "Stopping UDP server.")
	_ = l.conn.Close()
	<-l.done
	l.conn, l.done = nil, nil
	l.port.Store(0)
	l.info("UDP.STOPPED", "UDP server stopped.")
}

func (l *Listener) receive(conn *net.UDPConn, done chan struct{}) {
	defer close(done)
	buf := make([]byte, MaxDatagram)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				l.diag.Report(diagnostics.Diagnostic{Severity: diagnostics.Err, Code: "UDP.READ", Summary: err.Error()})
			}
			return
		}
		l.Handle(buf[:n])
	}
}

// Handle decodes one datagram and publishes a grid. Failures are reported
// and leave the current scene alone.
func (l *Listener) Handle(data []byte) {
	l.received.Inc()
	msg, err := protocol.Decode(data)
	if err != nil {
		l.failed.Inc()
		l.reportDecode(err)
		return
	}
	switch msg.Command {
	case protocol.CommandGrid:
		l.pub.Publish(msg.Scene)
	case protocol.CommandShutdown:
		// recognised and ignored; the host's shutdown request stays inert
		log.Debug().Msg("shutdown command ignored")
	}
}

func (l *Listener) reportDecode(err error) {
	d := diagnostics.Diagnostic{Severity: diagnostics.Warn}
	var cmd *protocol.UnknownCommandError
	switch {
	case errors.Is(err, protocol.ErrUnformatted):
		d.Code, d.Summary = "UDP.UNFORMATTED", "Unformatted message received."
	case errors.As(err, &cmd):
		d.Code, d.Summary = "UDP.COMMAND", fmt.Sprintf("Unknown display command: %d", int8(cmd.Code))
	default:
		d.Code, d.Summary = "UDP.GRID", "Unparsable grid element message: "+err.Error()
	}
	l.diag.Report(d)
}

func (l *Listener) info(code, summary string) {
	l.diag.Report(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: code, Summary: summary})
}

// Port is the bound port, or 0 when stopped.
func (l *Listener) Port() int { return int(l.port.Load()) }

func (l *Listener) Running() bool { return l.Port() != 0 }

// Addr is the bound address, or nil when stopped.
func (l *Listener) Addr() *net.UDPAddr {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr().(*net.UDPAddr)
}

// Received counts datagrams; Failed counts those that did not decode.
func (l *Listener) Received() uint64 { return l.received.Load() }
func (l *Listener) Failed() uint64   { return l.failed.Load() }
