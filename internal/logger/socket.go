// internal/logger/socket.go

package logger

import (
	"crypto/tls"
	"errors"
	"net"
	"strconv"
	"time"
)

// DefaultConnectTimeout bounds the blocking connect in Open.
const DefaultConnectTimeout = 30 * time.Second

// Dial functions as variables to allow mocking in tests.
var (
	dialPlain = func(addr string, timeout time.Duration) (net.Conn, error) {
		return net.DialTimeout("tcp", addr, timeout)
	}
	dialTLS = func(addr string, timeout time.Duration, cfg *tls.Config) (net.Conn, error) {
		return tls.DialWithDialer(&net.Dialer{Timeout: timeout}, "tcp", addr, cfg)
	}
)

// SocketDestination writes rendered records to a TCP stream, optionally
// wrapped in TLS. Open blocks the worker until the connection (and TLS
// handshake, if configured) completes or times out. Records are written as
// raw UTF-8 bytes with no framing beyond the trailing newline each record
// carries; the consumer applies its own delimiting.
type SocketDestination struct {
	host      string
	port      int
	tlsConfig *tls.Config // nil means plain TCP
	timeout   time.Duration
	conn      net.Conn
	lastErr   string
}

// NewSocketDestination creates a plain TCP destination for host:port.
func NewSocketDestination(host string, port int) *SocketDestination {
	return &SocketDestination{
		host:    host,
		port:    port,
		timeout: DefaultConnectTimeout,
	}
}

// NewTLSSocketDestination creates a TLS destination for host:port. A nil
// cfg gets a default configuration verifying against host.
func NewTLSSocketDestination(host string, port int, cfg *tls.Config) *SocketDestination {
	if cfg == nil {
		cfg = &tls.Config{ServerName: host}
	}
	return &SocketDestination{
		host:      host,
		port:      port,
		tlsConfig: cfg,
		timeout:   DefaultConnectTimeout,
	}
}

// Open connects to the configured host and port, performing the TLS
// handshake when the destination was built with a TLS configuration. It
// blocks until connected or the connect timeout elapses.
func (d *SocketDestination) Open() error {
	addr := net.JoinHostPort(d.host, strconv.Itoa(d.port))

	var conn net.Conn
	var err error
	if d.tlsConfig != nil {
		conn, err = dialTLS(addr, d.timeout, d.tlsConfig)
	} else {
		conn, err = dialPlain(addr, d.timeout)
	}
	if err != nil {
		d.lastErr = err.Error()
		return err
	}
	d.conn = conn
	return nil
}

// IsOpen reports whether the socket is connected.
func (d *SocketDestination) IsOpen() bool {
	return d.conn != nil
}

// Write sends s to the socket. It blocks until the OS accepted the bytes
// into the transport buffer.
func (d *SocketDestination) Write(s string) (int, error) {
	if d.conn == nil {
		d.lastErr = "socket destination is not connected"
		return 0, errors.New("write to closed socket destination")
	}
	n, err := d.conn.Write([]byte(s))
	if err != nil {
		d.lastErr = err.Error()
		return n, err
	}
	return n, nil
}

// Close disconnects. Best-effort: it does not wait for pending transport
// buffers and tolerates repeated calls.
func (d *SocketDestination) Close() error {
	if d.conn == nil {
		return nil
	}
	err := d.conn.Close()
	d.conn = nil
	if err != nil {
		d.lastErr = err.Error()
	}
	return err
}

// ErrorString returns the last transport error description.
func (d *SocketDestination) ErrorString() string {
	return d.lastErr
}

// SetHost changes the host used by the next Open; close first if connected.
func (d *SocketDestination) SetHost(host string) {
	d.host = host
}

// Host returns the configured host.
func (d *SocketDestination) Host() string {
	return d.host
}

// SetPort changes the port used by the next Open; close first if connected.
func (d *SocketDestination) SetPort(port int) {
	d.port = port
}

// Port returns the configured port.
func (d *SocketDestination) Port() int {
	return d.port
}

// SetConnectTimeout changes the bound on the blocking connect in Open.
func (d *SocketDestination) SetConnectTimeout(timeout time.Duration) {
	d.timeout = timeout
}

// ConnectTimeout returns the connect timeout.
func (d *SocketDestination) ConnectTimeout() time.Duration {
	return d.timeout
}

var _ Destination = (*SocketDestination)(nil)
