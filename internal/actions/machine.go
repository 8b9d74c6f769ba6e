package actions

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/infra/telemetry"
)

const (
	gib          = 1 << 30
	reportLayout = "2006-01-02 15:04:05"
)

// MachineReport collects a telemetry snapshot and renders it.
func (s *Service) MachineReport(ctx context.Context) domain.Result {
	if s.deps.Telemetry == nil {
		return domain.Failure(domain.ActionMachineReport, domain.KindConfig, "Telemetry source is not configured.")
	}

	snap, err := s.snapshot(ctx)
	if err != nil {
		return domain.Failure(domain.ActionMachineReport, domain.KindIO, fmt.Sprintf("Error collecting machine report: %v", err))
	}
	return domain.Success(domain.ActionMachineReport, RenderReport(snap))
}

func (s *Service) snapshot(ctx context.Context) (domain.MachineSnapshot, error) {
	src := s.deps.Telemetry
	snap := domain.MachineSnapshot{TakenAt: s.deps.Now()}

	diskPath := s.cfg.Telemetry.DiskPath
	if diskPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return snap, err
		}
		diskPath = wd
	}

	var err error
	if snap.CPUPercent, err = src.CPUPercent(ctx, s.cfg.Telemetry.CPUSampleInterval); err != nil {
		return snap, err
	}
	if snap.Memory, err = src.Memory(ctx); err != nil {
		return snap, err
	}
	if snap.Disk, err = src.Disk(ctx, diskPath); err != nil {
		return snap, err
	}
	if snap.Interfaces, err = src.Interfaces(ctx); err != nil {
		return snap, err
	}
	if snap.BootTime, err = src.BootTime(ctx); err != nil {
		return snap, err
	}
	return snap, nil
}

// RenderReport formats a snapshot as the markdown report shown on the dashboard.
func RenderReport(snap domain.MachineSnapshot) string {
	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	add("**System Information (%s)**", snap.TakenAt.Format(reportLayout))
	add("---")
	add("CPU Usage: %.1f%%", snap.CPUPercent)
	add("Memory Usage: %.2f GB / %.2f GB (%.1f%%)",
		float64(snap.Memory.Used)/gib, float64(snap.Memory.Total)/gib, snap.Memory.UsedPercent)
	add("Disk Usage (%s): %.2f GB / %.2f GB (%.1f%%)",
		snap.Disk.Path, float64(snap.Disk.Used)/gib, float64(snap.Disk.Total)/gib, snap.Disk.UsedPercent)

	add("\n**Network Interfaces:**")
	if len(snap.Interfaces) == 0 {
		add("  No network interfaces found.")
	}
	for _, iface := range snap.Interfaces {
		add("  - **%s:**", iface.Name)
		if len(iface.Addrs) == 0 {
			add("    - No address details.")
			continue
		}
		foundIP := false
		for _, a := range iface.Addrs {
			switch a.Family {
			case domain.FamilyIPv4:
				add("    - IP Address: %s", a.Address)
				add("    - Netmask: %s", a.Netmask)
				if a.Broadcast != "" {
					add("    - Broadcast: %s", a.Broadcast)
				}
				foundIP = true
			case domain.FamilyIPv6:
				add("    - IPv6 Address: %s", a.Address)
			case domain.FamilyLink:
				add("    - MAC Address: %s", a.Address)
			default:
				if !foundIP && telemetry.LooksLikeMAC(a.Address) {
					add("    - MAC Address (heuristic): %s", a.Address)
				}
			}
		}
	}

	add("\nSystem Boot Time: %s", snap.BootTime.Format(reportLayout))
	add("System Uptime: %s", formatUptime(snap.TakenAt.Sub(snap.BootTime)))

	return strings.Join(lines, "\n")
}

// formatUptime renders d as "N days, H:MM:SS".
func formatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Truncate(time.Second)
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	sec := d / time.Second

	clock := fmt.Sprintf("%d:%02d:%02d", h, m, sec)
	switch days {
	case 0:
		return clock
	case 1:
		return "1 day, " + clock
	default:
		return fmt.Sprintf("%d days, %s", days, clock)
	}
}
