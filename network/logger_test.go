package network

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/ethersim/datarecording"
	"github.com/sarchlab/ethersim/device"
	"github.com/sarchlab/ethersim/frame"
	"github.com/sarchlab/ethersim/sim"
	"github.com/sarchlab/ethersim/wiring"
)

type fixedTime sim.VTick

func (t fixedTime) CurrentTime() sim.VTick {
	return sim.VTick(t)
}

func readLog(dir, name string) string {
	data, err := os.ReadFile(filepath.Join(dir, name))
	Expect(err).ToNot(HaveOccurred())

	return string(data)
}

var _ = Describe("Logging hooks", func() {
	var (
		dir  string
		host *device.Host
		sw   *device.Switch
	)

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		host = device.MakeHostBuilder().WithMAC(0x0B01).Build("pc")
		sw = device.MakeSwitchBuilder().WithNumPorts(2).Build("sw")
	})

	It("should write one line per signal event", func() {
		l := NewDeviceLogger(dir, fixedTime(7))

		l.Func(sim.HookCtx{Domain: host, Pos: device.HookPosSignalSend,
			Item: device.SignalRecord{
				Where: "pc_1", Signal: wiring.Preamble, Confirmed: true}})
		l.Func(sim.HookCtx{Domain: host, Pos: device.HookPosCollision,
			Item: device.SignalRecord{Where: "pc", Signal: wiring.One}})
		l.Func(sim.HookCtx{Domain: sw, Pos: device.HookPosSignalRecv,
			Item: device.SignalRecord{Where: "sw_2", Signal: wiring.Zero}})
		l.Func(sim.HookCtx{Domain: sw, Pos: device.HookPosMACLearned,
			Item: device.LearnRecord{Switch: "sw", Port: 1, MAC: 0x0B01}})

		Expect(l.Close()).To(Succeed())

		Expect(readLog(dir, "pc.txt")).To(Equal(
			"7 pc_1 send 2 ok\n" +
				"7 pc send 1 collision\n"))
		Expect(readLog(dir, "sw.txt")).To(Equal(
			"7 sw_2 receive 0\n" +
				"7 sw_2 learn 0B01\n"))
	})

	It("should ignore hooks from other domains", func() {
		l := NewDeviceLogger(dir, fixedTime(1))

		l.Func(sim.HookCtx{Domain: sim.NewSerialEngine(),
			Pos: sim.HookPosBeforeEvent})

		Expect(l.Close()).To(Succeed())
		entries, _ := os.ReadDir(dir)
		Expect(entries).To(BeEmpty())
	})

	It("should report files it cannot create", func() {
		l := NewDeviceLogger(filepath.Join(dir, "missing"), fixedTime(1))

		l.Func(sim.HookCtx{Domain: host, Pos: device.HookPosSignalSend,
			Item: device.SignalRecord{Where: "pc_1", Signal: wiring.One}})

		Expect(l.Close()).ToNot(Succeed())
	})

	It("should write received payloads", func() {
		l := NewDataLogger(dir, fixedTime(12))

		l.Func(sim.HookCtx{Domain: host, Pos: device.HookPosFrameRecv,
			Item: device.FrameRecord{Host: "pc", Src: 0x0A01, Dst: 0x0B01,
				Payload: []byte{0xAB, 0x01}, Valid: true}})
		l.Func(sim.HookCtx{Domain: host, Pos: device.HookPosFrameRecv,
			Item: device.FrameRecord{Host: "pc", Src: 0x0A02, Dst: 0x0B01,
				Payload: []byte{0x10}, Valid: false}})

		Expect(l.Close()).To(Succeed())
		Expect(readLog(dir, "pc_data.txt")).To(Equal(
			"12 0A01 AB01\n" +
				"12 0A02 10 ERROR\n"))
	})

	It("should record frames, collisions and learned addresses", func() {
		path := filepath.Join(dir, "rec")
		r := NewFrameRecorder(datarecording.New(path), fixedTime(3))

		r.Func(sim.HookCtx{Domain: host, Pos: device.HookPosFrameRecv,
			Item: device.FrameRecord{Host: "pc", Src: 0x0A01, Dst: 0x0B01,
				Payload: []byte{0xAB}, Valid: true}})
		r.Func(sim.HookCtx{Domain: host, Pos: device.HookPosCollision,
			Item: device.SignalRecord{Where: "pc", Signal: wiring.One}})
		r.Func(sim.HookCtx{Domain: host, Pos: device.HookPosSignalSend,
			Item: device.SignalRecord{Where: "pc_1", Signal: wiring.One}})
		r.Func(sim.HookCtx{Domain: sw, Pos: device.HookPosMACLearned,
			Item: device.LearnRecord{Switch: "sw", Port: 0, MAC: 0x0A01}})

		Expect(r.Close()).To(Succeed())

		reader, err := datarecording.OpenReader(path + ".sqlite3")
		Expect(err).ToNot(HaveOccurred())
		defer reader.Close()

		ctx := context.Background()

		frames, _, err := ReadFrames(ctx, reader, FrameFilter{})
		Expect(err).ToNot(HaveOccurred())
		Expect(frames).To(Equal([]FrameEntry{{
			Tick: 3, Host: "pc", Src: "0A01", Dst: "0B01",
			Payload: "AB", Valid: true}}))

		collisions, _, err := datarecording.Select[CollisionEntry](
			ctx, reader, CollisionsTable, datarecording.Filter{})
		Expect(err).ToNot(HaveOccurred())
		Expect(collisions).To(HaveLen(1))
		Expect(collisions[0].Device).To(Equal("pc"))

		learned, _, err := datarecording.Select[LearnEntry](
			ctx, reader, LearningTable, datarecording.Filter{})
		Expect(err).ToNot(HaveOccurred())
		Expect(learned).To(HaveLen(1))
		Expect(learned[0].Port).To(Equal("sw_1"))
		Expect(learned[0].MAC).To(Equal(frame.MAC(0x0A01).String()))
	})

	It("should filter recorded frames by host and validity", func() {
		path := filepath.Join(dir, "filtered")
		r := NewFrameRecorder(datarecording.New(path), fixedTime(5))

		for _, rec := range []device.FrameRecord{
			{Host: "pc", Src: 0x0A01, Dst: 0x0B01, Payload: []byte{1}, Valid: true},
			{Host: "pc", Src: 0x0A01, Dst: 0x0B01, Payload: []byte{2}},
			{Host: "other", Src: 0x0A01, Dst: 0x0B02, Payload: []byte{3}},
		} {
			r.Func(sim.HookCtx{Domain: host, Pos: device.HookPosFrameRecv,
				Item: rec})
		}

		Expect(r.Close()).To(Succeed())

		reader, err := datarecording.OpenReader(path + ".sqlite3")
		Expect(err).ToNot(HaveOccurred())
		defer reader.Close()

		ctx := context.Background()

		frames, total, err := ReadFrames(ctx, reader,
			FrameFilter{Host: "pc", OnlyErrors: true})
		Expect(err).ToNot(HaveOccurred())
		Expect(total).To(Equal(1))
		Expect(frames[0].Payload).To(Equal("02"))

		frames, total, err = ReadFrames(ctx, reader,
			FrameFilter{OnlyErrors: true, Limit: 1})
		Expect(err).ToNot(HaveOccurred())
		Expect(total).To(Equal(2))
		Expect(frames).To(HaveLen(1))
	})
})

var _ = Describe("StatsCollector", func() {
	It("should count events per device", func() {
		host := device.MakeHostBuilder().Build("pc")
		c := NewStatsCollector()

		c.Func(sim.HookCtx{Domain: host, Pos: device.HookPosSignalSend})
		c.Func(sim.HookCtx{Domain: host, Pos: device.HookPosSignalSend})
		c.Func(sim.HookCtx{Domain: host, Pos: device.HookPosCollision})
		c.Func(sim.HookCtx{Domain: host, Pos: device.HookPosFrameRecv,
			Item: device.FrameRecord{Valid: false}})

		Expect(c.Devices()).To(Equal([]DeviceStats{{
			Name: "pc", Sent: 2, Collisions: 1, Frames: 1, BadFrames: 1,
		}}))
	})

	It("should summarize the hosts of a network", func() {
		n := MakeBuilder().WithEngine(sim.NewSerialEngine()).Build("Network")
		a, _ := n.AddHost("A")
		b, _ := n.AddHost("B")
		_, _ = n.AddHub("H", 2)

		c := NewStatsCollector()
		for i := 0; i < 3; i++ {
			c.Func(sim.HookCtx{Domain: a, Pos: device.HookPosFrameRecv,
				Item: device.FrameRecord{Valid: true}})
		}
		c.Func(sim.HookCtx{Domain: b, Pos: device.HookPosFrameRecv,
			Item: device.FrameRecord{Valid: true}})

		sum := c.Summarize(n)

		Expect(sum.Frames).To(Equal(4))
		Expect(sum.ReceivingHosts).To(Equal(2))
		Expect(sum.MeanFrames).To(BeNumerically("~", 2.0))
		Expect(sum.StdDevFrames).To(BeNumerically("~", 1.4142, 1e-3))
	})
})
