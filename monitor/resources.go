package monitor

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"
)

const (
	DefResourceInterval = 2 * time.Second

	bytesPerMB = 1024 * 1024
)

// Resources is one sample of the resource panel shown next to a running job.
type Resources struct {
	GPUMemoryGB   float64   `json:"gpu_memory_gb"`
	CPUPercent    float64   `json:"cpu_percent"`
	MemoryPercent float64   `json:"memory_percent,omitempty"`
	DiskIOMBps    float64   `json:"disk_io_mbps"`
	NetworkIOMBps float64   `json:"network_io_mbps"`
	Timestamp     time.Time `json:"timestamp"`
}

type ResourceSource interface {
	Next(ctx context.Context) (Resources, error)
}

type walk struct {
	min, max, spread float64
}

func (w walk) step(v, r float64) float64 {
	return max(w.min, min(w.max, v+(r-0.5)*w.spread))
}

var (
	gpuWalk  = walk{min: 12, max: 15.8, spread: 0.4}
	cpuWalk  = walk{min: 45, max: 85, spread: 8}
	diskWalk = walk{min: 5, max: 65, spread: 15}
	netWalk  = walk{min: 2, max: 35, spread: 8}
)

// RandomWalk produces plausible resource figures by letting each value drift
// within fixed bounds. It reports no real measurement.
type RandomWalk struct {
	mu  sync.Mutex
	cur Resources
	rnd *rand.Rand
	now func() time.Time
}

func NewRandomWalk(seed uint64) *RandomWalk {
	return &RandomWalk{
		cur: Resources{
			GPUMemoryGB:   14.2,
			CPUPercent:    67,
			DiskIOMBps:    24,
			NetworkIOMBps: 12,
		},
		rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

func (w *RandomWalk) Next(ctx context.Context) (Resources, error) {
	if err := ctx.Err(); err != nil {
		return Resources{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.cur.GPUMemoryGB = gpuWalk.step(w.cur.GPUMemoryGB, w.rnd.Float64())
	w.cur.CPUPercent = cpuWalk.step(w.cur.CPUPercent, w.rnd.Float64())
	w.cur.DiskIOMBps = diskWalk.step(w.cur.DiskIOMBps, w.rnd.Float64())
	w.cur.NetworkIOMBps = netWalk.step(w.cur.NetworkIOMBps, w.rnd.Float64())
	w.cur.Timestamp = w.now()

	return w.cur, nil
}

// HostSource samples the local machine. GPU memory is not available and is reported as 0.
// Disk and network figures are rates since the previous sample.
type HostSource struct {
	mu       sync.Mutex
	last     time.Time
	diskLast uint64
	netLast  uint64
}

func NewHostSource() *HostSource {
	return &HostSource{}
}

func (h *HostSource) Next(ctx context.Context) (Resources, error) {
	cpus, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return Resources{}, err
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Resources{}, err
	}
	diskTotal, err := diskBytes(ctx)
	if err != nil {
		return Resources{}, err
	}
	netTotal, err := netBytes(ctx)
	if err != nil {
		return Resources{}, err
	}

	now := time.Now()
	res := Resources{
		MemoryPercent: vm.UsedPercent,
		Timestamp:     now,
	}
	if len(cpus) > 0 {
		res.CPUPercent = cpus[0]
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.last.IsZero() {
		secs := now.Sub(h.last).Seconds()
		res.DiskIOMBps = rate(diskTotal, h.diskLast, secs)
		res.NetworkIOMBps = rate(netTotal, h.netLast, secs)
	}
	h.last, h.diskLast, h.netLast = now, diskTotal, netTotal

	return res, nil
}

func diskBytes(ctx context.Context) (uint64, error) {
	counters, err := disk.IOCountersWithContext(ctx)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, c := range counters {
		total += c.ReadBytes + c.WriteBytes
	}

	return total, nil
}

func netBytes(ctx context.Context) (uint64, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, c := range counters {
		total += c.BytesSent + c.BytesRecv
	}

	return total, nil
}

func rate(cur, prev uint64, secs float64) float64 {
	if secs <= 0 || cur < prev {
		return 0
	}

	return float64(cur-prev) / bytesPerMB / secs
}

// Sample reads src every interval and hands each sample to fn until ctx ends
// or src fails. A non-positive interval means DefResourceInterval.
func Sample(ctx context.Context, src ResourceSource, interval time.Duration, fn func(Resources)) error {
	if interval <= 0 {
		interval = DefResourceInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r, err := src.Next(ctx)
			if err != nil {
				return err
			}
			fn(r)
		}
	}
}
