package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

func expectEvent(evt *MockEvent, t VTick, h Handler, secondary bool) {
	evt.EXPECT().Time().Return(t).AnyTimes()
	evt.EXPECT().Handler().Return(h).AnyTimes()
	evt.EXPECT().IsSecondary().Return(secondary).AnyTimes()
}

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should schedule events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)
		evt3 := NewMockEvent(mockCtrl)
		evt4 := NewMockEvent(mockCtrl)

		expectEvent(evt1, 4, handler1, false)
		expectEvent(evt2, 2, handler2, false)
		expectEvent(evt3, 3, handler1, false)
		expectEvent(evt4, 5, handler1, false)

		handleEvt2 := handler2.EXPECT().Handle(evt2).Do(func(e Event) {
			engine.Schedule(evt3)
			engine.Schedule(evt4)
		})
		handleEvt3 := handler1.EXPECT().Handle(evt3).After(handleEvt2)
		handleEvt1 := handler1.EXPECT().Handle(evt1).After(handleEvt3)
		handler1.EXPECT().Handle(evt4).After(handleEvt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.CurrentTime()).To(Equal(VTick(5)))
	})

	It("should run same-tick events in scheduling order", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)
		evt3 := NewMockEvent(mockCtrl)

		expectEvent(evt1, 7, handler, false)
		expectEvent(evt2, 7, handler, false)
		expectEvent(evt3, 7, handler, false)

		gomock.InOrder(
			handler.EXPECT().Handle(evt1),
			handler.EXPECT().Handle(evt2),
			handler.EXPECT().Handle(evt3),
		)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		Expect(engine.Run()).To(Succeed())
	})

	It("should consider secondary events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		handler3 := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)
		evt3 := NewMockEvent(mockCtrl)

		expectEvent(evt1, 2, handler1, true)
		expectEvent(evt2, 2, handler2, false)
		expectEvent(evt3, 3, handler3, false)

		gomock.InOrder(
			handler2.EXPECT().Handle(evt2),
			handler1.EXPECT().Handle(evt1),
			handler3.EXPECT().Handle(evt3),
		)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		Expect(engine.Run()).To(Succeed())
	})

	It("should stop at the first handler error", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)

		expectEvent(evt1, 1, handler, false)
		expectEvent(evt2, 2, handler, false)

		boom := errors.New("boom")
		handler.EXPECT().Handle(evt1).Return(boom)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(MatchError(boom))
	})

	It("should panic when scheduling into the past", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := NewMockEvent(mockCtrl)
		evt2 := NewMockEvent(mockCtrl)

		expectEvent(evt1, 5, handler, false)
		expectEvent(evt2, 3, handler, false)

		handler.EXPECT().Handle(evt1).Do(func(e Event) {
			Expect(func() { engine.Schedule(evt2) }).To(Panic())
		})

		engine.Schedule(evt1)
		Expect(engine.Run()).To(Succeed())
	})

	It("should invoke hooks around every event", func() {
		handler := NewMockHandler(mockCtrl)
		evt := NewMockEvent(mockCtrl)
		expectEvent(evt, 1, handler, false)
		handler.EXPECT().Handle(evt)

		positions := []*HookPos{}
		engine.AcceptHook(HookFunc(func(ctx HookCtx) {
			positions = append(positions, ctx.Pos)
			Expect(ctx.Item).To(BeIdenticalTo(evt))
		}))

		engine.Schedule(evt)
		Expect(engine.Run()).To(Succeed())

		Expect(positions).To(Equal(
			[]*HookPos{HookPosBeforeEvent, HookPosAfterEvent}))
	})

	It("should hold events while paused", func() {
		handler := NewMockHandler(mockCtrl)
		evt := NewMockEvent(mockCtrl)
		expectEvent(evt, 1, handler, false)

		handled := make(chan struct{})
		handler.EXPECT().Handle(evt).Do(func(Event) { close(handled) })

		engine.Schedule(evt)
		engine.Pause()
		engine.Pause()

		done := make(chan error, 1)
		go func() { done <- engine.Run() }()

		Consistently(handled, "50ms").ShouldNot(BeClosed())

		engine.Continue()
		engine.Continue()

		Eventually(handled).Should(BeClosed())
		Eventually(done).Should(Receive(BeNil()))
	})

	It("should call simulation end handlers", func() {
		called := VTick(0)
		engine.RegisterSimulationEndHandler(endHandlerFunc(func(now VTick) {
			called = now + 1
		}))

		engine.Finished()

		Expect(called).To(Equal(VTick(1)))
	})
})

type endHandlerFunc func(now VTick)

func (f endHandlerFunc) Handle(now VTick) {
	f(now)
}
