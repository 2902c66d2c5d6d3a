package network

import (
	"fmt"

	"github.com/sarchlab/ethersim/script"
)

// Apply carries out one instruction right away.
func (n *Network) Apply(inst script.Instruction) error {
	switch inst := inst.(type) {
	case script.CreateHost:
		_, err := n.AddHost(inst.Name)
		return err
	case script.CreateHub:
		_, err := n.AddHub(inst.Name, inst.Ports)
		return err
	case script.CreateSwitch:
		_, err := n.AddSwitch(inst.Name, inst.Ports)
		return err
	case script.Connect:
		_, err := n.Connect(inst.PortA, inst.PortB)
		return err
	case script.Disconnect:
		return n.Disconnect(inst.Port)
	case script.SetMAC:
		h, err := n.Host(inst.Host)
		if err != nil {
			return err
		}

		h.SetMAC(inst.MAC)

		return nil
	case script.SetIP:
		h, err := n.Host(inst.Host)
		if err != nil {
			return err
		}

		h.SetIP(inst.Addr, inst.Mask)

		return nil
	case script.Send:
		h, err := n.Host(inst.Host)
		if err != nil {
			return err
		}

		h.Queue(inst.Data, false)

		return nil
	case script.SendFrame:
		h, err := n.Host(inst.Host)
		if err != nil {
			return err
		}

		return h.QueueFrame(inst.Dst, inst.Data)
	case script.SendPacket:
		h, err := n.Host(inst.Host)
		if err != nil {
			return err
		}

		return h.SendPacket(inst.Dst, inst.Data)
	default:
		return fmt.Errorf("unsupported instruction %T", inst)
	}
}
