// Package udp provides the single outbound socket RTP packets are fanned
// out over; the server never listens for incoming RTP/RTCP traffic.
package udp

import (
	"net"

	"github.com/pkg/errors"
)

// Sender is an ephemeral UDP socket used only to transmit. One Sender
// is shared by every mount and session; the OS picks its local port.
type Sender struct {
	conn *net.UDPConn
}

// NewSender binds an ephemeral UDP socket on all interfaces.
func NewSender() (*Sender, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4zero, Port: 0})
	if err != nil {
		return nil, errors.Wrap(err, "udp: bind ephemeral socket")
	}
	return &Sender{conn: conn}, nil
}

// SendTo writes payload as one UDP datagram to ip:port and returns the
// number of bytes written.
func (s *Sender) SendTo(payload []byte, ip net.IP, port uint16) (int, error) {
	dst := &net.UDPAddr{IP: ip, Port: int(port)}
	n, err := s.conn.WriteTo(payload, dst)
	if err != nil {
		return n, errors.Wrapf(err, "udp: send to %s", dst)
	}
	return n, nil
}

// Close releases the underlying socket.
func (s *Sender) Close() error {
	return s.conn.Close()
}
