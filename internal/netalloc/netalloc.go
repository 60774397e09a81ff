// Package netalloc allocates loopback endpoints for harness runs.
package netalloc

import (
	"fmt"
	"math/rand/v2"
	"net"
	"strconv"
)

// Randomly allocated ports come from the IANA ephemeral range. The range
// is 16384 values wide; combined with the randomized loopback address,
// collisions between concurrent harness invocations are rare enough that
// no collision detection is attempted.
const (
	portMin = 49152
	portMax = 65536 // exclusive
)

// Endpoint is the loopback address and port shared read-only by the
// server, the replay client and the capture process for one run.
type Endpoint struct {
	Addr string
	Port int
}

// HostPort returns the endpoint in "addr:port" form for net.Dial.
func (e Endpoint) HostPort() string {
	return net.JoinHostPort(e.Addr, strconv.Itoa(e.Port))
}

// Allocate returns a randomized loopback endpoint. A valid explicitPort
// is used verbatim; zero or out-of-range values select a random port from
// the ephemeral range. Address octets stay within [1,254] so neither a
// .0 network address nor a .255 broadcast-looking address can appear.
func Allocate(explicitPort int) Endpoint {
	port := explicitPort
	if port <= 0 || port > 65535 {
		port = portMin + rand.IntN(portMax-portMin)
	}
	return Endpoint{
		Addr: fmt.Sprintf("127.%d.%d.%d", octet(), octet(), octet()),
		Port: port,
	}
}

func octet() int { return 1 + rand.IntN(254) }
