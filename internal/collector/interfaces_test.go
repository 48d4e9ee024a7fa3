package collector

import (
	"errors"
	"net"
	"testing"

	"github.com/nhdewitt/netscope/internal/protocol"
)

type fakeInterfaces struct {
	ifaces  []net.Interface
	addrs   map[string][]net.Addr
	failFor map[string]bool
	listErr error
}

func (f fakeInterfaces) Interfaces() ([]net.Interface, error) {
	return f.ifaces, f.listErr
}

func (f fakeInterfaces) Addrs(iface net.Interface) ([]net.Addr, error) {
	if f.failFor[iface.Name] {
		return nil, errors.New("address lookup failed")
	}
	return f.addrs[iface.Name], nil
}

func mustCIDR(t *testing.T, s string) *net.IPNet {
	t.Helper()
	ip, ipnet, err := net.ParseCIDR(s)
	if err != nil {
		t.Fatalf("ParseCIDR(%s): %v", s, err)
	}
	ipnet.IP = ip
	return ipnet
}

func TestInspector_Enumerate(t *testing.T) {
	mac, _ := net.ParseMAC("aa:bb:cc:dd:ee:ff")

	src := fakeInterfaces{
		ifaces: []net.Interface{
			{Name: "lo"},
			{Name: "eth0", HardwareAddr: mac},
		},
		addrs: map[string][]net.Addr{
			"lo": {
				mustCIDR(t, "127.0.0.1/8"),
				mustCIDR(t, "::1/128"),
			},
			"eth0": {
				mustCIDR(t, "192.168.1.10/24"),
				mustCIDR(t, "fe80::1/64"),
			},
		},
	}

	records, err := (&Inspector{src: src}).Enumerate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	lo := records[0]
	if lo.Name != "lo" {
		t.Errorf("Name: got %s, want lo", lo.Name)
	}
	if lo.MAC != nil {
		t.Errorf("lo MAC should be absent, got %q", *lo.MAC)
	}
	if len(lo.IPv4) != 1 || lo.IPv4[0].Address != "127.0.0.1" || lo.IPv4[0].Netmask != "255.0.0.0" {
		t.Errorf("lo IPv4: got %+v", lo.IPv4)
	}
	if len(lo.IPv6) != 1 || lo.IPv6[0] != "::1" {
		t.Errorf("lo IPv6: got %v", lo.IPv6)
	}

	eth := records[1]
	if eth.MAC == nil || *eth.MAC != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("eth0 MAC: got %v", eth.MAC)
	}
	if len(eth.IPv4) != 1 || eth.IPv4[0].Address != "192.168.1.10" || eth.IPv4[0].Netmask != "255.255.255.0" {
		t.Errorf("eth0 IPv4: got %+v", eth.IPv4)
	}
	if len(eth.IPv6) != 1 || eth.IPv6[0] != "fe80::1" {
		t.Errorf("eth0 IPv6: got %v", eth.IPv6)
	}
}

func TestInspector_AddrFailureKeepsInterface(t *testing.T) {
	src := fakeInterfaces{
		ifaces: []net.Interface{{Name: "broken"}, {Name: "eth0"}},
		addrs: map[string][]net.Addr{
			"eth0": {mustCIDR(t, "10.0.0.5/16")},
		},
		failFor: map[string]bool{"broken": true},
	}

	records, err := (&Inspector{src: src}).Enumerate()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	broken := records[0]
	if broken.Name != "broken" {
		t.Errorf("Name: got %s", broken.Name)
	}
	if broken.IPv4 == nil || len(broken.IPv4) != 0 || broken.IPv6 == nil || len(broken.IPv6) != 0 {
		t.Errorf("failed interface should have empty (non-nil) lists: %+v", broken)
	}

	if len(records[1].IPv4) != 1 || records[1].IPv4[0].Netmask != "255.255.0.0" {
		t.Errorf("eth0 should still be enumerated: %+v", records[1])
	}
}

func TestInspector_ListFailure(t *testing.T) {
	src := fakeInterfaces{listErr: errors.New("netlink unavailable")}

	_, err := (&Inspector{src: src}).Enumerate()
	if err == nil {
		t.Fatal("expected error when interfaces cannot be listed")
	}
}

func TestAppendAddrs_IPAddrAndUnknown(t *testing.T) {
	rec := protocol.InterfaceRecord{}
	appendAddrs(&rec, []net.Addr{
		&net.IPAddr{IP: net.ParseIP("10.1.2.3").To4()},
		&net.UnixAddr{Name: "/tmp/sock", Net: "unix"},
	})

	if len(rec.IPv4) != 1 || rec.IPv4[0].Address != "10.1.2.3" || rec.IPv4[0].Netmask != "255.255.255.255" {
		t.Errorf("IPAddr should become a host entry: %+v", rec.IPv4)
	}
	if len(rec.IPv6) != 0 {
		t.Errorf("unexpected IPv6 entries: %v", rec.IPv6)
	}
}

func TestAppendAddrs_IPAddrSixteenByteForm(t *testing.T) {
	rec := protocol.InterfaceRecord{}
	appendAddrs(&rec, []net.Addr{
		&net.IPAddr{IP: net.ParseIP("10.0.0.1")},
		&net.IPAddr{IP: net.ParseIP("2001:db8::5")},
	})

	if len(rec.IPv4) != 1 || rec.IPv4[0].Address != "10.0.0.1" || rec.IPv4[0].Netmask != "255.255.255.255" {
		t.Errorf("16-byte IPv4 should become a host entry: %+v", rec.IPv4)
	}
	if len(rec.IPv6) != 1 || rec.IPv6[0] != "2001:db8::5" {
		t.Errorf("IPv6: got %v", rec.IPv6)
	}
}

func TestAppendAddrs_MappedIPNet(t *testing.T) {
	rec := protocol.InterfaceRecord{}
	appendAddrs(&rec, []net.Addr{
		&net.IPNet{IP: net.ParseIP("192.168.5.9"), Mask: net.CIDRMask(24, 32)},
	})

	if len(rec.IPv4) != 1 || rec.IPv4[0].Address != "192.168.5.9" || rec.IPv4[0].Netmask != "255.255.255.0" {
		t.Errorf("IPv4: got %+v", rec.IPv4)
	}
}

func TestInspector_Real(t *testing.T) {
	records, err := NewInspector().Enumerate()
	if err != nil {
		t.Skipf("interfaces unavailable: %v", err)
	}
	for _, r := range records {
		if r.Name == "" {
			t.Error("interface with empty name")
		}
		if r.MAC != nil && *r.MAC == "" {
			t.Errorf("%s: MAC must be absent rather than empty", r.Name)
		}
	}
}
