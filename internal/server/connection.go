package server

import (
	"bufio"
	"errors"
	"io"
	"net"

	"odin-cache/internal/protocol"
)

// ErrConnectionClosed is returned by Connection.ReadValue when the peer has
// half-closed the socket with no partial frame pending.
var ErrConnectionClosed = errors.New("connection closed")

// Connection wraps one TCP socket with a private read accumulator and a
// buffered writer. It holds no cross-connection state: every Connection
// owns its buffer exclusively.
type Connection struct {
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	accum  []byte
}

// NewConnection wraps socket with a ~4KiB initial read buffer, matching the
// sizing in adred-codev-ws_poc/src/buffer.go's small buffer tier.
func NewConnection(socket net.Conn) *Connection {
	return &Connection{
		conn:   socket,
		reader: bufio.NewReader(socket),
		writer: bufio.NewWriter(socket),
		accum:  make([]byte, 0, 4096),
	}
}

// ReadValue decodes and returns one complete message, reading more bytes
// from the socket as needed. It returns ErrConnectionClosed if the peer
// half-closes with no partial frame buffered, or the underlying I/O error
// otherwise. A partial frame left over from a prior malformed read is never
// produced; decode failures propagate immediately without retrying.
func (c *Connection) ReadValue() (protocol.Value, error) {
	for {
		value, consumed, err := protocol.Decode(c.accum)
		if err == nil {
			c.accum = append(c.accum[:0], c.accum[consumed:]...)
			return value, nil
		}
		if !errors.Is(err, protocol.ErrIncomplete) {
			return protocol.Value{}, err
		}

		chunk := make([]byte, 4096)
		n, readErr := c.reader.Read(chunk)
		if n > 0 {
			c.accum = append(c.accum, chunk[:n]...)
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) && len(c.accum) == 0 {
				return protocol.Value{}, ErrConnectionClosed
			}
			return protocol.Value{}, readErr
		}
	}
}

// WriteValue encodes v and flushes it to the socket. Writes are serialized
// per connection by the caller holding exclusive use of the handler's
// response path — Connection itself does no additional locking; there is
// only ever one writer at a time per connection.
func (c *Connection) WriteValue(v protocol.Value) error {
	if _, err := c.writer.Write(protocol.Encode(v)); err != nil {
		return err
	}
	return c.writer.Flush()
}

// Close closes the underlying socket.
func (c *Connection) Close() error {
	return c.conn.Close()
}
