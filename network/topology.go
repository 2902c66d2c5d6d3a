package network

import (
	"fmt"

	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/wiring"
)

// AddHost creates a host with the network's codec.
func (n *Network) AddHost(name string) (*device.Host, error) {
	b := device.MakeHostBuilder().WithCodec(n.codec)
	if !n.randBackoff {
		b = b.WithoutRandomBackoff()
	}

	h := b.Build(name)
	if err := n.register(h); err != nil {
		return nil, err
	}

	return h, nil
}

// AddHub creates a hub.
func (n *Network) AddHub(name string, ports int) (*device.Hub, error) {
	if ports <= 0 {
		return nil, fmt.Errorf("hub %s needs at least one port", name)
	}

	h := device.MakeHubBuilder().WithNumPorts(ports).Build(name)
	if err := n.register(h); err != nil {
		return nil, err
	}

	return h, nil
}

// AddSwitch creates a switch.
func (n *Network) AddSwitch(name string, ports int) (*device.Switch, error) {
	if ports <= 0 {
		return nil, fmt.Errorf("switch %s needs at least one port", name)
	}

	s := device.MakeSwitchBuilder().WithNumPorts(ports).Build(name)
	if err := n.register(s); err != nil {
		return nil, err
	}

	return s, nil
}

func (n *Network) register(d device.Device) error {
	if _, ok := n.byName[d.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, d.Name())
	}

	d.SetIndex(len(n.devices))
	n.byName[d.Name()] = len(n.devices)
	n.devices = append(n.devices, d)

	for _, h := range n.deviceHooks {
		d.AcceptHook(h)
	}

	return nil
}

// Connect joins two ports with a new wire. When either side is a switch the
// wire is full duplex; otherwise both ends send on the same channel and
// share it.
func (n *Network) Connect(portA, portB string) (*wiring.Wire, error) {
	a, ai, err := n.resolvePort(portA)
	if err != nil {
		return nil, err
	}

	b, bi, err := n.resolvePort(portB)
	if err != nil {
		return nil, err
	}

	if a == b && ai == bi {
		return nil, fmt.Errorf("%w: %s", ErrPortInUse, portA)
	}

	for _, p := range []struct {
		d    device.Device
		i    int
		name string
	}{{a, ai, portA}, {b, bi, portB}} {
		if p.d.Port(p.i).Connected() {
			return nil, fmt.Errorf("%w: %s", ErrPortInUse, p.name)
		}
	}

	h := n.freeHandle()
	w := wiring.Connect(h,
		wiring.Endpoint{Device: a.Index(), Port: ai, Name: a.PortName(ai)},
		wiring.Endpoint{Device: b.Index(), Port: bi, Name: b.PortName(bi)})
	n.wires[h] = w

	a.Plug(ai, device.PluggedInto(h, wiring.EndA))
	b.Plug(bi, device.PluggedInto(h, wiring.EndB))

	chA, chB := channelsFor(a, b)
	a.SetSendChannel(ai, chA)
	b.SetSendChannel(bi, chB)

	return w, nil
}

func channelsFor(a, b device.Device) (wiring.Channel, wiring.Channel) {
	_, aSwitch := a.(*device.Switch)
	_, bSwitch := b.(*device.Switch)

	if aSwitch || bSwitch {
		return wiring.ChannelA, wiring.ChannelB
	}

	return wiring.ChannelB, wiring.ChannelB
}

func (n *Network) freeHandle() wiring.Handle {
	for i, w := range n.wires {
		if w == nil {
			return wiring.Handle(i)
		}
	}

	n.wires = append(n.wires, nil)

	return wiring.Handle(len(n.wires) - 1)
}

// Disconnect removes the wire plugged into a port. Both ends become
// unconnected.
func (n *Network) Disconnect(port string) error {
	d, i, err := n.resolvePort(port)
	if err != nil {
		return err
	}

	ref := d.Port(i)
	if !ref.Connected() {
		return fmt.Errorf("%w: %s", ErrNotConnected, port)
	}

	w := n.wires[ref.Wire()]
	peer := w.Peer(ref.End())

	d.Unplug(i)
	d.SetSendChannel(i, wiring.ChannelB)

	if other := n.LookupByIndex(peer.Device); other != nil {
		other.Unplug(peer.Port)
		other.SetSendChannel(peer.Port, wiring.ChannelB)
	}

	n.wires[ref.Wire()] = nil

	return nil
}
