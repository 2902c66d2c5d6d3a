// Package simulation assembles a complete run: the engine, the network, the
// device logs and the optional recorder and monitor.
package simulation

import (
	"github.com/sarchlab/ethersim/monitoring"
	"github.com/sarchlab/ethersim/network"
	"github.com/sarchlab/ethersim/script"
	"github.com/sarchlab/ethersim/sim"
)

// A Simulation is a network ready to run instructions.
type Simulation struct {
	id     string
	engine *sim.SerialEngine
	stats  *network.StatsCollector

	network *network.Network

	monitor    *monitoring.Monitor
	monitorURL string
	progress   *monitoring.ProgressBar
}

// ID returns the unique ID of the run.
func (s *Simulation) ID() string {
	return s.id
}

// GetEngine returns the engine used in the simulation.
func (s *Simulation) GetEngine() sim.Engine {
	return s.engine
}

// GetNetwork returns the simulated network.
func (s *Simulation) GetNetwork() *network.Network {
	return s.network
}

// GetStats returns the per-device counters.
func (s *Simulation) GetStats() *network.StatsCollector {
	return s.stats
}

// MonitorURL returns the address of the web monitor, empty when it is off.
func (s *Simulation) MonitorURL() string {
	return s.monitorURL
}

// Run schedules the instructions and simulates until the network is quiet or
// the tick limit is reached.
func (s *Simulation) Run(insts []script.Instruction) error {
	s.network.Schedule(insts)

	err := s.network.Run()

	if s.progress != nil {
		s.monitor.CompleteProgressBar(s.progress)
		s.progress = nil
	}

	return err
}

// Summary aggregates the counters of the run.
func (s *Simulation) Summary() network.Summary {
	return s.stats.Summarize(s.network)
}

// Terminate closes the logs, the recorder and the monitor.
func (s *Simulation) Terminate() error {
	return s.network.Close()
}
