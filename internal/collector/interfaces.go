package collector

import (
	"fmt"
	"net"
	"net/netip"

	"go4.org/netipx"

	"github.com/nhdewitt/netscope/internal/protocol"
)

// interfaceSource abstracts OS interface enumeration so tests can inject failures.
type interfaceSource interface {
	Interfaces() ([]net.Interface, error)
	Addrs(iface net.Interface) ([]net.Addr, error)
}

type osInterfaces struct{}

func (osInterfaces) Interfaces() ([]net.Interface, error) { return net.Interfaces() }

func (osInterfaces) Addrs(iface net.Interface) ([]net.Addr, error) { return iface.Addrs() }

// Inspector enumerates local network interfaces.
type Inspector struct {
	src interfaceSource
}

func NewInspector() *Inspector {
	return &Inspector{src: osInterfaces{}}
}

// Enumerate returns one record per OS-visible interface. An interface whose
// address lookup fails is still reported, with empty address lists. The
// error is non-nil only when the interface list itself is unavailable.
func (in *Inspector) Enumerate() ([]protocol.InterfaceRecord, error) {
	ifaces, err := in.src.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("listing interfaces: %w", err)
	}

	records := make([]protocol.InterfaceRecord, 0, len(ifaces))
	for _, iface := range ifaces {
		rec := protocol.InterfaceRecord{
			Name: iface.Name,
			IPv4: []protocol.IPv4Entry{},
			IPv6: []string{},
		}

		if len(iface.HardwareAddr) > 0 {
			mac := iface.HardwareAddr.String()
			rec.MAC = &mac
		}

		if addrs, err := in.src.Addrs(iface); err == nil {
			appendAddrs(&rec, addrs)
		}

		records = append(records, rec)
	}

	return records, nil
}

func appendAddrs(rec *protocol.InterfaceRecord, addrs []net.Addr) {
	for _, a := range addrs {
		var (
			prefix netip.Prefix
			ok     bool
		)
		switch v := a.(type) {
		case *net.IPNet:
			prefix, ok = netipx.FromStdIPNet(v)
		case *net.IPAddr:
			var addr netip.Addr
			if addr, ok = netipx.FromStdIP(v.IP); ok {
				prefix = netip.PrefixFrom(addr, addr.BitLen())
			}
		}
		if !ok || !prefix.IsValid() {
			continue
		}

		addr := prefix.Addr()
		if addr.Is4() {
			mask := net.IP(net.CIDRMask(prefix.Bits(), 32))
			rec.IPv4 = append(rec.IPv4, protocol.IPv4Entry{
				Address: addr.String(),
				Netmask: mask.String(),
			})
			continue
		}

		rec.IPv6 = append(rec.IPv6, addr.String())
	}
}
