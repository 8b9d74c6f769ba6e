package domain

import "time"

// AddrFamily mirrors the socket address families reported by the OS.
type AddrFamily int

const (
	FamilyUnknown AddrFamily = iota
	FamilyIPv4
	FamilyIPv6
	FamilyLink // AF_LINK / AF_PACKET
)

// InterfaceAddr is one address bound to a network interface.
type InterfaceAddr struct {
	Family    AddrFamily
	Address   string
	Netmask   string
	Broadcast string
}

// NetInterface is a network interface and its addresses.
type NetInterface struct {
	Name  string
	Addrs []InterfaceAddr
}

// MemoryStat is virtual memory utilisation in bytes.
type MemoryStat struct {
	Total       uint64
	Used        uint64
	UsedPercent float64
}

// DiskStat is utilisation of the filesystem holding Path.
type DiskStat struct {
	Path        string
	Total       uint64
	Used        uint64
	UsedPercent float64
}

// MachineSnapshot is everything the machine report renders.
type MachineSnapshot struct {
	TakenAt    time.Time
	CPUPercent float64
	Memory     MemoryStat
	Disk       DiskStat
	Interfaces []NetInterface
	BootTime   time.Time
}
