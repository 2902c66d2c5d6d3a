package device

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/wiring"
)

var _ = Describe("Hub", func() {
	var (
		pc1, pc2, pc3 *Host
		hub           *Hub
		net           *testNet
		rec           *hookRecorder
	)

	BeforeEach(func() {
		pc1 = MakeHostBuilder().WithMAC(0x0001).Build("pc1")
		pc2 = MakeHostBuilder().WithMAC(0x0002).Build("pc2")
		pc3 = MakeHostBuilder().WithMAC(0x0003).Build("pc3")
		hub = MakeHubBuilder().WithNumPorts(4).Build("hub")
		net = newTestNet(1, pc1, pc2, pc3, hub)
		net.connect(pc1, 0, hub, 0)
		net.connect(pc2, 0, hub, 1)
		net.connect(pc3, 0, hub, 2)

		rec = &hookRecorder{}
		for _, d := range net.devices {
			d.AcceptHook(rec)
		}
	})

	It("should repeat a signal to every other host", func() {
		Expect(pc1.Send(net, []wiring.Signal{wiring.One}, false)).To(BeTrue())

		Expect(pc2.Read(net, false)).To(Equal(wiring.One))
		Expect(pc3.Read(net, false)).To(Equal(wiring.One))
		Expect(hub.LastRead(0)).To(Equal(wiring.One))

		ports := []string{}
		for _, r := range rec.signals(HookPosSignalSend, hub) {
			ports = append(ports, r.Where)
		}
		Expect(ports).To(ConsistOf("hub_2", "hub_3"))
	})

	It("should make a second sender collide", func() {
		Expect(pc1.Send(net, []wiring.Signal{wiring.One}, false)).To(BeTrue())
		Expect(pc2.Send(net, []wiring.Signal{wiring.Zero}, false)).To(BeFalse())

		collisions := rec.signals(HookPosCollision, pc2)
		Expect(collisions).To(HaveLen(1))
		Expect(collisions[0].Where).To(Equal("pc2"))
		Expect(pc2.Aborted()).To(BeTrue())
		Expect(pc3.Read(net, false)).To(Equal(wiring.One))
	})

	It("should not change anything when probed", func() {
		res := hub.Resend(net, wiring.One, 0, false)

		Expect(res.Kind).To(Equal(Probed))
		Expect(res.Ports).To(ConsistOf(1, 2))
		for _, w := range net.wires {
			Expect(w.Occupied(wiring.ChannelB)).To(BeFalse())
		}
		Expect(rec.ctxs).To(BeEmpty())
	})

	It("should report a loop as a collision", func() {
		pc := MakeHostBuilder().Build("pc")
		hubA := MakeHubBuilder().WithNumPorts(3).Build("hubA")
		hubB := MakeHubBuilder().WithNumPorts(2).Build("hubB")
		loop := newTestNet(1, pc, hubA, hubB)
		loop.connect(pc, 0, hubA, 2)
		loop.connect(hubA, 0, hubB, 0)
		loop.connect(hubA, 1, hubB, 1)

		Expect(pc.Send(loop, []wiring.Signal{wiring.One}, false)).To(BeFalse())
	})

	It("should deliver a frame to the addressed host", func() {
		Expect(pc1.QueueFrame(0x0003, []byte{0x10, 0x20})).To(Succeed())

		net.runUntilIdle(1000)

		Expect(pc2.Payloads().Len()).To(BeZero())
		f, ok := pc3.Payloads().Last()
		Expect(ok).To(BeTrue())
		Expect(f.Src).To(Equal(frame.MAC(0x0001)))
		Expect(f.Payload).To(Equal([]byte{0x10, 0x20}))
	})
})
