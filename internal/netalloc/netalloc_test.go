package netalloc

import (
	"regexp"
	"strconv"
	"testing"
)

var addrPattern = regexp.MustCompile(`^127\.(\d+)\.(\d+)\.(\d+)$`)

func TestAllocate_AddressShape(t *testing.T) {
	for i := 0; i < 500; i++ {
		ep := Allocate(0)
		m := addrPattern.FindStringSubmatch(ep.Addr)
		if m == nil {
			t.Fatalf("Addr = %q, want 127.x.y.z", ep.Addr)
		}
		for _, s := range m[1:] {
			o, _ := strconv.Atoi(s)
			if o < 1 || o > 254 {
				t.Fatalf("Addr = %q, octet %d outside [1,254]", ep.Addr, o)
			}
		}
	}
}

func TestAllocate_PortRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		ep := Allocate(0)
		if ep.Port < portMin || ep.Port >= portMax {
			t.Fatalf("Port = %d, want in [%d,%d)", ep.Port, portMin, portMax)
		}
	}
}

func TestAllocate_ExplicitPort(t *testing.T) {
	ep := Allocate(4433)
	if ep.Port != 4433 {
		t.Errorf("Port = %d, want 4433", ep.Port)
	}
}

func TestAllocate_InvalidExplicitPort(t *testing.T) {
	for _, bad := range []int{-1, 0, 65536, 1 << 20} {
		ep := Allocate(bad)
		if ep.Port < portMin || ep.Port >= portMax {
			t.Errorf("Allocate(%d).Port = %d, want random ephemeral", bad, ep.Port)
		}
	}
}

func TestHostPort(t *testing.T) {
	ep := Endpoint{Addr: "127.3.5.7", Port: 50000}
	if got := ep.HostPort(); got != "127.3.5.7:50000" {
		t.Errorf("HostPort() = %q, want 127.3.5.7:50000", got)
	}
}
