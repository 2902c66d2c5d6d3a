package network

import (
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"

	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/sim"
)

// DeviceStats counts what happened at one device.
type DeviceStats struct {
	Name       string
	Sent       int
	Received   int
	Collisions int
	Frames     int
	BadFrames  int
}

// StatsCollector is a hook that counts signal and frame events per device.
type StatsCollector struct {
	byName map[string]*DeviceStats
}

// NewStatsCollector creates an empty collector.
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{byName: make(map[string]*DeviceStats)}
}

// Func counts the event.
func (c *StatsCollector) Func(ctx sim.HookCtx) {
	d, ok := ctx.Domain.(device.Device)
	if !ok {
		return
	}

	s := c.entry(d.Name())

	switch ctx.Pos {
	case device.HookPosSignalSend:
		s.Sent++
	case device.HookPosSignalRecv:
		s.Received++
	case device.HookPosCollision:
		s.Collisions++
	case device.HookPosFrameRecv:
		s.Frames++
		if rec, ok := ctx.Item.(device.FrameRecord); ok && !rec.Valid {
			s.BadFrames++
		}
	}
}

func (c *StatsCollector) entry(name string) *DeviceStats {
	s, ok := c.byName[name]
	if !ok {
		s = &DeviceStats{Name: name}
		c.byName[name] = s
	}

	return s
}

// Devices returns the counters of every device that saw an event, sorted by
// name.
func (c *StatsCollector) Devices() []DeviceStats {
	out := make([]DeviceStats, 0, len(c.byName))
	for _, s := range c.byName {
		out = append(out, *s)
	}

	slices.SortFunc(out, func(a, b DeviceStats) int {
		return strings.Compare(a.Name, b.Name)
	})

	return out
}

// Summary aggregates the counters of a run.
type Summary struct {
	Frames         int
	BadFrames      int
	Collisions     int
	MeanFrames     float64
	StdDevFrames   float64
	ReceivingHosts int
}

// Summarize aggregates the counters of the hosts of n.
func (c *StatsCollector) Summarize(n *Network) Summary {
	var (
		sum    Summary
		frames []float64
	)

	for _, h := range n.hosts() {
		s := c.entry(h.Name())

		sum.Frames += s.Frames
		sum.BadFrames += s.BadFrames
		frames = append(frames, float64(s.Frames))

		if s.Frames > 0 {
			sum.ReceivingHosts++
		}
	}

	for _, s := range c.byName {
		sum.Collisions += s.Collisions
	}

	if len(frames) > 1 {
		sum.MeanFrames, sum.StdDevFrames = stat.MeanStdDev(frames, nil)
	} else if len(frames) == 1 {
		sum.MeanFrames = frames[0]
	}

	return sum
}
