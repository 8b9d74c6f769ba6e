// Package telemetry reads CPU, memory, disk, network and boot information from the OS.
package telemetry

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"

	"github.com/vietddude/autodash/internal/core/domain"
)

// Source is the OS telemetry collaborator.
type Source interface {
	CPUPercent(ctx context.Context, interval time.Duration) (float64, error)
	Memory(ctx context.Context) (domain.MemoryStat, error)
	Disk(ctx context.Context, path string) (domain.DiskStat, error)
	Interfaces(ctx context.Context) ([]domain.NetInterface, error)
	BootTime(ctx context.Context) (time.Time, error)
}

// SystemSource implements Source with gopsutil.
type SystemSource struct{}

func NewSystemSource() *SystemSource {
	return &SystemSource{}
}

func (SystemSource) CPUPercent(ctx context.Context, interval time.Duration) (float64, error) {
	pct, err := cpu.PercentWithContext(ctx, interval, false)
	if err != nil {
		return 0, fmt.Errorf("cpu percent: %w", err)
	}
	if len(pct) == 0 {
		return 0, fmt.Errorf("cpu percent: no samples")
	}
	return pct[0], nil
}

func (SystemSource) Memory(ctx context.Context) (domain.MemoryStat, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return domain.MemoryStat{}, fmt.Errorf("virtual memory: %w", err)
	}
	return domain.MemoryStat{Total: vm.Total, Used: vm.Used, UsedPercent: vm.UsedPercent}, nil
}

func (SystemSource) Disk(ctx context.Context, path string) (domain.DiskStat, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return domain.DiskStat{}, fmt.Errorf("disk usage: %w", err)
	}
	return domain.DiskStat{Path: path, Total: u.Total, Used: u.Used, UsedPercent: u.UsedPercent}, nil
}

func (SystemSource) Interfaces(ctx context.Context) ([]domain.NetInterface, error) {
	ifaces, err := psnet.InterfacesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("net interfaces: %w", err)
	}

	out := make([]domain.NetInterface, 0, len(ifaces))
	for _, iface := range ifaces {
		addrs := make([]string, 0, len(iface.Addrs))
		for _, a := range iface.Addrs {
			addrs = append(addrs, a.Addr)
		}
		out = append(out, ConvertInterface(iface.Name, iface.HardwareAddr, iface.Flags, addrs))
	}
	return out, nil
}

func (SystemSource) BootTime(ctx context.Context) (time.Time, error) {
	secs, err := host.BootTimeWithContext(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("boot time: %w", err)
	}
	return time.Unix(int64(secs), 0), nil
}

// ConvertInterface classifies raw addresses into families. Addresses come as CIDR strings;
// anything that does not parse is kept with FamilyUnknown.
func ConvertInterface(name, hardwareAddr string, flags []string, addrs []string) domain.NetInterface {
	ni := domain.NetInterface{Name: name}
	broadcastCapable := hasFlag(flags, "broadcast")

	for _, raw := range addrs {
		ip, ipnet, err := net.ParseCIDR(raw)
		if err != nil {
			if parsed := net.ParseIP(raw); parsed != nil {
				ip = parsed
			} else {
				ni.Addrs = append(ni.Addrs, domain.InterfaceAddr{Family: domain.FamilyUnknown, Address: raw})
				continue
			}
		}

		if v4 := ip.To4(); v4 != nil {
			a := domain.InterfaceAddr{Family: domain.FamilyIPv4, Address: v4.String()}
			if ipnet != nil {
				a.Netmask = net.IP(ipnet.Mask).String()
				if broadcastCapable {
					a.Broadcast = broadcastOf(v4, ipnet.Mask).String()
				}
			}
			ni.Addrs = append(ni.Addrs, a)
			continue
		}

		a := domain.InterfaceAddr{Family: domain.FamilyIPv6, Address: ip.String()}
		if ipnet != nil {
			a.Netmask = net.IP(ipnet.Mask).String()
		}
		ni.Addrs = append(ni.Addrs, a)
	}

	if hardwareAddr != "" {
		ni.Addrs = append(ni.Addrs, domain.InterfaceAddr{Family: domain.FamilyLink, Address: hardwareAddr})
	}
	return ni
}

func broadcastOf(ip net.IP, mask net.IPMask) net.IP {
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	out := make(net.IP, net.IPv4len)
	for i := range out {
		out[i] = ip[i] | ^mask[i]
	}
	return out
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}

// LooksLikeMAC reports whether s is twelve hex digits once colons and dashes are removed.
func LooksLikeMAC(s string) bool {
	h := strings.NewReplacer(":", "", "-", "").Replace(s)
	if len(h) != 12 {
		return false
	}
	for _, c := range h {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
