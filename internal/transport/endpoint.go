package transport

import (
	"net"
	"strconv"
)

// Endpoint identifies a remote peer by its UDP address. It is comparable by
// value and usable as the value half of a map entry; Key() supplies the
// string form used as the map key itself since *net.UDPAddr is a pointer and
// two reads of "the same" peer address are not guaranteed to share one.
type Endpoint struct {
	IP   string
	Port int
	Zone string
}

// EndpointFromUDPAddr converts a net.UDPAddr into an Endpoint.
func EndpointFromUDPAddr(addr *net.UDPAddr) Endpoint {
	return Endpoint{IP: addr.IP.String(), Port: addr.Port, Zone: addr.Zone}
}

// UDPAddr reconstructs a *net.UDPAddr suitable for WriteToUDP.
func (e Endpoint) UDPAddr() *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP(e.IP), Port: e.Port, Zone: e.Zone}
}

// Key returns the string used to index the peer table.
func (e Endpoint) Key() string {
	return e.IP + ":" + strconv.Itoa(e.Port)
}

func (e Endpoint) String() string {
	return e.Key()
}
