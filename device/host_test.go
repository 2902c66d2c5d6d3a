package device

import (
	"net/netip"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/ethersim/detection"
	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/wiring"
)

var _ = Describe("Host sending", func() {
	var (
		mockCtrl *gomock.Controller
		fab      *MockFabric
		host     *Host
		rec      *hookRecorder
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		fab = NewMockFabric(mockCtrl)
		fab.EXPECT().TicksPerBit().Return(3).AnyTimes()

		host = MakeHostBuilder().Build("pc")
		rec = &hookRecorder{}
		host.AcceptHook(rec)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	sent := func() string {
		var out []wiring.Signal
		for _, r := range rec.signals(HookPosSignalSend, host) {
			out = append(out, r.Signal)
		}

		return wiring.SignalsString(out)
	}

	It("should hold each bit for one bit time", func() {
		Expect(host.Send(fab, []wiring.Signal{wiring.One, wiring.Zero}, false)).
			To(BeTrue())

		Expect(host.KeepSending(fab)).To(BeTrue())
		Expect(host.KeepSending(fab)).To(BeTrue())
		Expect(sent()).To(Equal("111"))

		Expect(host.KeepSending(fab)).To(BeTrue())
		Expect(sent()).To(Equal("1110"))
	})

	It("should emit idle after the last bit and accept a new send", func() {
		host.Send(fab, []wiring.Signal{wiring.One}, false)

		Expect(host.KeepSending(fab)).To(BeTrue())
		Expect(host.KeepSending(fab)).To(BeTrue())
		Expect(host.KeepSending(fab)).To(BeFalse())

		Expect(host.Sending()).To(BeFalse())
		Expect(sent()).To(Equal("111"))
		Expect(host.Send(fab, []wiring.Signal{wiring.Zero}, false)).To(BeTrue())
	})

	It("should reject a send while busy", func() {
		host.Send(fab, []wiring.Signal{wiring.One}, false)

		Expect(host.Send(fab, []wiring.Signal{wiring.Zero}, false)).To(BeFalse())
	})

	It("should label sends with the port name", func() {
		host.Send(fab, []wiring.Signal{wiring.One}, false)

		r := rec.signals(HookPosSignalSend, host)
		Expect(r).To(HaveLen(1))
		Expect(r[0].Where).To(Equal("pc_1"))
		Expect(r[0].Confirmed).To(BeTrue())
	})

	It("should build its ARP query", func() {
		ip := netip.MustParseAddr("10.0.0.2")

		Expect(BuildQueryFrame(ip)).To(Equal("FFFF 415250510A000002"))
	})
})

var _ = Describe("Host link", func() {
	var (
		pc1, pc2 *Host
		net      *testNet
	)

	BeforeEach(func() {
		pc1 = MakeHostBuilder().WithMAC(0x0001).Build("pc1")
		pc2 = MakeHostBuilder().WithMAC(0x0002).Build("pc2")
		net = newTestNet(2, pc1, pc2)
		net.connect(pc1, 0, pc2, 0)
	})

	It("should deliver a frame intact", func() {
		payload := []byte{0xAB, 0x01, 0xFF}
		Expect(pc1.QueueFrame(0x0002, payload)).To(Succeed())

		net.runUntilIdle(1000)

		f, ok := pc2.Payloads().Last()
		Expect(ok).To(BeTrue())
		Expect(f.Valid).To(BeTrue())
		Expect(f.Src).To(Equal(frame.MAC(0x0001)))
		Expect(f.Dst).To(Equal(frame.MAC(0x0002)))
		Expect(f.Payload).To(Equal(payload))
		Expect(pc1.Pending()).To(BeZero())
	})

	It("should accept broadcast frames", func() {
		Expect(pc1.QueueFrame(frame.Broadcast, []byte{0x42})).To(Succeed())

		net.runUntilIdle(1000)

		Expect(pc2.Payloads().Valid()).To(Equal([][]byte{{0x42}}))
	})

	It("should drop frames addressed elsewhere", func() {
		Expect(pc1.QueueFrame(0x0009, []byte{0x42})).To(Succeed())

		net.runUntilIdle(1000)

		Expect(pc2.Payloads().Len()).To(BeZero())
	})

	It("should complete frames without payload or detection bytes", func() {
		pc1 = MakeHostBuilder().WithMAC(0x0001).
			WithCodec(detection.None{}).Build("pc1")
		pc2 = MakeHostBuilder().WithMAC(0x0002).
			WithCodec(detection.None{}).Build("pc2")
		net = newTestNet(1, pc1, pc2)
		net.connect(pc1, 0, pc2, 0)

		Expect(pc1.QueueFrame(0x0002, nil)).To(Succeed())

		net.runUntilIdle(1000)

		f, ok := pc2.Payloads().Last()
		Expect(ok).To(BeTrue())
		Expect(f.Valid).To(BeTrue())
		Expect(f.Payload).To(BeEmpty())
	})

	It("should flag frames that fail detection", func() {
		bits, err := frame.Frame{
			Dst:     0x0002,
			Src:     0x0001,
			Payload: []byte{0x01},
			Detect:  []byte{0, 0, 0, 0},
		}.Bits()
		Expect(err).NotTo(HaveOccurred())

		signals, err := wiring.ParseSignals(bits)
		Expect(err).NotTo(HaveOccurred())
		pc1.Queue(signals, true)

		net.runUntilIdle(1000)

		f, ok := pc2.Payloads().Last()
		Expect(ok).To(BeTrue())
		Expect(f.Valid).To(BeFalse())
		Expect(f.Payload).To(Equal([]byte{0x01}))
	})

	It("should restart on a preamble in the middle of a frame", func() {
		net = newTestNet(3, pc1, pc2)
		net.connect(pc1, 0, pc2, 0)

		f, err := pc1.BuildFrame(0x0002, []byte{0x5A}, detection.CRC32{})
		Expect(err).NotTo(HaveOccurred())
		full, err := f.Signals()
		Expect(err).NotTo(HaveOccurred())

		cut := append([]wiring.Signal{}, full[:20]...)
		pc1.Queue(append(cut, full...), true)

		net.runUntilIdle(2000)

		Expect(pc2.Payloads().Valid()).To(Equal([][]byte{{0x5A}}))
		Expect(pc2.Payloads().Len()).To(Equal(1))
	})

	It("should resolve an address before sending a packet", func() {
		pc1.SetIP(netip.MustParseAddr("10.0.0.1"),
			netip.MustParseAddr("255.255.255.0"))
		pc2.SetIP(netip.MustParseAddr("10.0.0.2"),
			netip.MustParseAddr("255.255.255.0"))

		Expect(pc1.SendPacket(netip.MustParseAddr("10.0.0.2"),
			[]byte{0xCA, 0xFE})).To(Succeed())
		Expect(pc1.Parked()).To(Equal(1))

		for i := 0; i < 5000 && pc2.Payloads().Len() < 2; i++ {
			net.tick()
		}

		m, ok := pc1.ARP().Lookup(netip.MustParseAddr("10.0.0.2"))
		Expect(ok).To(BeTrue())
		Expect(m).To(Equal(frame.MAC(0x0002)))
		Expect(pc1.Parked()).To(BeZero())
		Expect(pc2.Payloads().Valid()).To(ContainElement([]byte{0xCA, 0xFE}))
	})

	It("should refuse an oversized packet before resolving it", func() {
		pc1.SetIP(netip.MustParseAddr("10.0.0.1"),
			netip.MustParseAddr("255.255.255.0"))

		err := pc1.SendPacket(netip.MustParseAddr("10.0.0.2"),
			make([]byte, 256))

		Expect(err).To(MatchError(frame.ErrPayloadTooLong))
		Expect(pc1.Parked()).To(BeZero())
		Expect(pc1.Pending()).To(BeZero())
	})

	It("should need an IP to send packets", func() {
		err := pc1.SendPacket(netip.MustParseAddr("10.0.0.2"), []byte{1})

		Expect(err).To(MatchError(ErrNoIP))
	})
})
