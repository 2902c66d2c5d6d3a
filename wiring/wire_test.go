package wiring

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Wire", func() {
	var (
		pc1  Endpoint
		hub  Endpoint
		wire *Wire
	)

	BeforeEach(func() {
		pc1 = Endpoint{Device: 0, Port: 0, Name: "pc1_1"}
		hub = Endpoint{Device: 1, Port: 2, Name: "hub_3"}
		wire = Connect(3, pc1, hub)
	})

	It("should be named after its ports", func() {
		Expect(wire.Name()).To(Equal("pc1_1-hub_3"))
		Expect(wire.Handle()).To(Equal(Handle(3)))
	})

	It("should not connect a port to itself", func() {
		Expect(func() { Connect(0, pc1, pc1) }).To(Panic())
	})

	It("should resolve peers and ends", func() {
		Expect(wire.Peer(EndA)).To(Equal(hub))
		Expect(wire.Peer(EndB)).To(Equal(pc1))
		Expect(wire.EndOf(1, 2)).To(Equal(EndB))
		Expect(func() { wire.EndOf(1, 0) }).
			To(PanicWith("port not connected to this wire"))
	})

	It("should carry one signal per channel", func() {
		Expect(wire.Write(ChannelA, One)).To(Succeed())
		Expect(wire.Write(ChannelB, Zero)).To(Succeed())

		Expect(wire.Read(ChannelA)).To(Equal(One))
		Expect(wire.Read(ChannelB)).To(Equal(Zero))
	})

	It("should report a collision and keep the held signal", func() {
		Expect(wire.Write(ChannelB, One)).To(Succeed())

		err := wire.Write(ChannelB, Zero)

		Expect(errors.Is(err, ErrCollision)).To(BeTrue())
		var ce *CollisionError
		Expect(errors.As(err, &ce)).To(BeTrue())
		Expect(ce.Held).To(Equal(One))
		Expect(ce.Attempted).To(Equal(Zero))
		Expect(wire.Read(ChannelB)).To(Equal(One))
	})

	It("should not collide when writing idle", func() {
		Expect(wire.Write(ChannelA, Preamble)).To(Succeed())
		Expect(wire.Write(ChannelA, NoSignal)).To(Succeed())
		Expect(wire.Read(ChannelA)).To(Equal(Preamble))
	})

	It("should accept writes again after clearing", func() {
		Expect(wire.Write(ChannelA, One)).To(Succeed())
		wire.Clear()

		Expect(wire.Occupied(ChannelA)).To(BeFalse())
		Expect(wire.Write(ChannelA, Zero)).To(Succeed())
	})
})

var _ = Describe("Signal", func() {
	It("should round trip through its text form", func() {
		for _, r := range "0121" {
			s, err := ParseSignal(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.String()).To(Equal(string(r)))
		}
	})

	It("should reject unknown symbols", func() {
		_, err := ParseSignal('x')
		Expect(err).To(MatchError(ErrInvalidSignal))
	})

	It("should render sequences", func() {
		Expect(SignalsString([]Signal{Preamble, One, NoSignal, Zero})).
			To(Equal("210"))
	})
})
