package simulation

import (
	"io"
	"log"

	"github.com/rs/xid"

	"github.com/sarchlab/ethersim/config"
	"github.com/sarchlab/ethersim/datarecording"
	"github.com/sarchlab/ethersim/monitoring"
	"github.com/sarchlab/ethersim/network"
	"github.com/sarchlab/ethersim/sim"
)

// Builder can be used to build a simulation.
type Builder struct {
	cfg               config.Config
	monitorOn         bool
	eventLog          io.Writer
	deterministicWait bool
}

// MakeBuilder creates a new builder with the default configuration and no
// monitor.
func MakeBuilder() Builder {
	return Builder{
		cfg: config.Default(),
	}
}

// WithConfig sets the configuration of the run.
func (b Builder) WithConfig(cfg config.Config) Builder {
	b.cfg = cfg
	return b
}

// WithMonitoring starts the web monitor on the configured port.
func (b Builder) WithMonitoring() Builder {
	b.monitorOn = true
	return b
}

// WithEventLog writes every engine event to w.
func (b Builder) WithEventLog(w io.Writer) Builder {
	b.eventLog = w
	return b
}

// WithDeterministicBackoff makes hosts retry after the longest backoff of
// their window, so that runs repeat exactly.
func (b Builder) WithDeterministicBackoff() Builder {
	b.deterministicWait = true
	return b
}

// Build wipes the output directory and assembles the engine, the network and
// the hooks that log it.
func (b Builder) Build() (*Simulation, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	if err := config.PrepareOutput(b.cfg.OutputDir); err != nil {
		return nil, err
	}

	s := &Simulation{
		id:     xid.New().String(),
		engine: sim.NewSerialEngine(),
		stats:  network.NewStatsCollector(),
	}

	nb := network.MakeBuilder().
		WithEngine(s.engine).
		WithTicksPerBit(b.cfg.SignalTime).
		WithCodec(b.cfg.Codec()).
		WithMaxTicks(b.cfg.MaxTicks)
	if b.deterministicWait {
		nb = nb.WithDeterministicBackoff()
	}

	s.network = nb.Build("Network")

	b.attachLoggers(s)

	if b.cfg.RecordDB != "" {
		rec := network.NewFrameRecorder(
			datarecording.New(b.cfg.RecordDB), s.engine)
		s.network.AcceptDeviceHook(rec)
		s.network.AddCloser(rec)
	}

	if b.eventLog != nil {
		s.engine.AcceptHook(sim.NewEventLogger(log.New(b.eventLog, "", 0)))
	}

	if b.monitorOn {
		b.startMonitor(s)
	}

	return s, nil
}

func (b Builder) attachLoggers(s *Simulation) {
	devLog := network.NewDeviceLogger(b.cfg.OutputDir, s.engine)
	dataLog := network.NewDataLogger(b.cfg.OutputDir, s.engine)

	s.network.AcceptDeviceHook(devLog)
	s.network.AcceptDeviceHook(dataLog)
	s.network.AcceptDeviceHook(s.stats)
	s.network.AddCloser(devLog)
	s.network.AddCloser(dataLog)
}

func (b Builder) startMonitor(s *Simulation) {
	s.monitor = monitoring.NewMonitor()
	if b.cfg.MonitorPort > 0 {
		s.monitor.WithPortNumber(b.cfg.MonitorPort)
	}

	s.monitor.RegisterEngine(s.engine)
	s.monitor.RegisterDevices(s.network)

	s.progress = s.monitor.CreateProgressBar("Ticks", b.cfg.MaxTicks)
	s.engine.AcceptHook(monitoring.NewTickProgress(s.progress))

	s.monitorURL = s.monitor.StartServer()
	s.network.AddCloser(s.monitor)
}
