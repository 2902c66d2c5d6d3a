package network

import (
	"context"

	"github.com/sarchlab/ethersim/datarecording"
	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/sim"
)

// Table names written by FrameRecorder.
const (
	FramesTable     = "frames"
	CollisionsTable = "collisions"
	LearningTable   = "mac_learning"
)

// FrameEntry is a row of the frames table.
type FrameEntry struct {
	Tick    uint64
	Host    string
	Src     string
	Dst     string
	Payload string
	Valid   bool
}

// CollisionEntry is a row of the collisions table.
type CollisionEntry struct {
	Tick   uint64
	Device string
	Where  string
	Signal string
}

// LearnEntry is a row of the mac_learning table.
type LearnEntry struct {
	Tick   uint64
	Switch string
	Port   string
	MAC    string
}

// FrameRecorder is a hook that records received frames, collisions and
// learned addresses into a DataRecorder.
type FrameRecorder struct {
	timeTeller sim.TimeTeller
	recorder   datarecording.DataRecorder
}

// NewFrameRecorder creates the tables and returns the hook.
func NewFrameRecorder(
	recorder datarecording.DataRecorder,
	timeTeller sim.TimeTeller,
) *FrameRecorder {
	recorder.CreateTable(FramesTable, FrameEntry{})
	recorder.CreateTable(CollisionsTable, CollisionEntry{})
	recorder.CreateTable(LearningTable, LearnEntry{})

	return &FrameRecorder{
		timeTeller: timeTeller,
		recorder:   recorder,
	}
}

// Func records the hook item.
func (r *FrameRecorder) Func(ctx sim.HookCtx) {
	now := uint64(r.timeTeller.CurrentTime())

	switch item := ctx.Item.(type) {
	case device.FrameRecord:
		r.recorder.InsertData(FramesTable, FrameEntry{
			Tick:    now,
			Host:    item.Host,
			Src:     item.Src.String(),
			Dst:     item.Dst.String(),
			Payload: frame.HexData(item.Payload),
			Valid:   item.Valid,
		})
	case device.SignalRecord:
		if ctx.Pos != device.HookPosCollision {
			return
		}

		d, _ := ctx.Domain.(device.Device)
		name := ""
		if d != nil {
			name = d.Name()
		}

		r.recorder.InsertData(CollisionsTable, CollisionEntry{
			Tick:   now,
			Device: name,
			Where:  item.Where,
			Signal: item.Signal.String(),
		})
	case device.LearnRecord:
		port := ""
		if d, ok := ctx.Domain.(device.Device); ok {
			port = d.PortName(item.Port)
		}

		r.recorder.InsertData(LearningTable, LearnEntry{
			Tick:   now,
			Switch: item.Switch,
			Port:   port,
			MAC:    item.MAC.String(),
		})
	}
}

// Close flushes and closes the recorder.
func (r *FrameRecorder) Close() error {
	return r.recorder.Close()
}

// FrameFilter selects recorded frames.
type FrameFilter struct {
	// Host keeps the frames received by one host. Empty keeps every host.
	Host string

	// OnlyErrors keeps the frames that failed detection.
	OnlyErrors bool

	// Limit caps the number of frames returned. 0 returns all of them.
	Limit int
}

// ReadFrames returns the recorded frames that pass f in tick order, and how
// many pass f without the limit.
func ReadFrames(
	ctx context.Context,
	r *datarecording.Reader,
	f FrameFilter,
) ([]FrameEntry, int, error) {
	filter := datarecording.Filter{
		Equal:   map[string]any{},
		OrderBy: "Tick",
		Limit:   f.Limit,
	}

	if f.Host != "" {
		filter.Equal["Host"] = f.Host
	}

	if f.OnlyErrors {
		filter.Equal["Valid"] = false
	}

	return datarecording.Select[FrameEntry](ctx, r, FramesTable, filter)
}
