package events

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/initr/internal/completion"
	"github.com/vk/initr/internal/dependency"
	"github.com/vk/initr/internal/dom"
)

type fakeHistory map[string]*dependency.Descriptor

func (h fakeHistory) Last(handle string) (dom.Selection, *dependency.Descriptor, bool) {
	d, ok := h[handle]
	if !ok {
		return nil, nil, false
	}
	return dom.Selection{dom.El("div", nil)}, d, true
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"nav":          "nav:done",
		"  nav  ":      "nav:done",
		"nav:":         "nav:done",
		"nav:done":     "nav:done",
		"nav:open":     "nav:open",
		"nav:open:now": "nav:open:now",
		" nav:open ":   "nav:open",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeName(in), "input %q", in)
	}
}

func TestSubscribe_BeforePublish(t *testing.T) {
	t.Parallel()
	bus := NewBus(fakeHistory{})
	var got []*dependency.Descriptor

	require.NoError(t, bus.Subscribe("nav", func(_ dom.Selection, d *dependency.Descriptor) error {
		got = append(got, d)
		return nil
	}))
	assert.Empty(t, got, "subscriber called before any publish")

	d := &dependency.Descriptor{Handle: "nav"}
	require.NoError(t, bus.Publish("nav:done", nil, d))

	require.Len(t, got, 1)
	assert.Same(t, d, got[0])
}

func TestSubscribe_ReplaysCompletedHandle(t *testing.T) {
	t.Parallel()
	d := &dependency.Descriptor{Handle: "nav"}
	bus := NewBus(fakeHistory{"nav": d})
	calls := 0

	err := bus.Subscribe(" nav ", func(els dom.Selection, got *dependency.Descriptor) error {
		calls++
		assert.Len(t, els, 1)
		assert.Same(t, d, got)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, bus.Subscribers("nav:done"))
}

func TestSubscribe_ReplayErrorPropagates(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	bus := NewBus(fakeHistory{"nav": &dependency.Descriptor{Handle: "nav"}})

	err := bus.Subscribe("nav", func(dom.Selection, *dependency.Descriptor) error { return boom })
	assert.ErrorIs(t, err, boom)
	var subErr *SubscriberError
	require.ErrorAs(t, err, &subErr)
	assert.True(t, subErr.Replay)
	assert.Equal(t, "nav:done", subErr.Event)
}

func TestSubscribe_IgnoresMissingArguments(t *testing.T) {
	t.Parallel()
	bus := NewBus(nil)
	assert.NoError(t, bus.Subscribe("", func(dom.Selection, *dependency.Descriptor) error { return nil }))
	assert.NoError(t, bus.Subscribe("nav", nil))
	assert.Zero(t, bus.Subscribers("nav"))
}

func TestPublish_OrderAndHalting(t *testing.T) {
	t.Parallel()
	boom := errors.New("second failed")
	bus := NewBus(nil)
	var order []int
	for i := 1; i <= 3; i++ {
		require.NoError(t, bus.Subscribe("nav", func(dom.Selection, *dependency.Descriptor) error {
			order = append(order, i)
			if i == 2 {
				return boom
			}
			return nil
		}))
	}

	err := bus.Publish("nav:done", nil, nil)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []int{1, 2}, order)
}

func TestPublish_UnregisteredNameIsNoop(t *testing.T) {
	t.Parallel()
	assert.NoError(t, NewBus(nil).Publish("ghost:done", nil, nil))
}

func TestAnnounce_StoresBeforeDelivering(t *testing.T) {
	t.Parallel()
	bus := NewBus(nil)
	var order []string
	require.NoError(t, bus.Subscribe("nav", func(dom.Selection, *dependency.Descriptor) error {
		order = append(order, "subscriber")
		return nil
	}))

	err := bus.Announce("nav:done", nil, nil,
		func() { order = append(order, "store") },
		func() { order = append(order, "before") })

	require.NoError(t, err)
	assert.Equal(t, []string{"store", "before", "subscriber"}, order)
}

func TestAnnounce_RacingSubscribersSeeCompletionOnce(t *testing.T) {
	t.Parallel()
	for i := 0; i < 50; i++ {
		store := completion.NewStore()
		bus := NewBus(store)
		store.SetPublisher(bus)
		handle := fmt.Sprintf("dep%d", i)

		var calls atomic.Int32
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, bus.Subscribe(handle, func(dom.Selection, *dependency.Descriptor) error {
				calls.Add(1)
				return nil
			}))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Record(&dependency.Descriptor{Handle: handle}, nil))
		}()
		wg.Wait()

		assert.Equal(t, int32(1), calls.Load(), "handle %s", handle)
	}
}
