package demo

import (
	"time"

	"github.com/vango-dev/vfiber/pkg/fiber"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// ClockLayout formats the clock.
const ClockLayout = "15:04:05"

// Clock renders the current time. With a dispatch prop it ticks every
// second from an effect; the ticker stops when the clock unmounts.
func Clock(h vdom.Hooks, props vdom.Props) *vdom.VNode {
	now, setNow := fiber.UseState(h, time.Now())
	dispatch, _ := props.Get(DispatchKey).(func(func()) error)

	fiber.UseEffect(h, func() func() {
		if dispatch == nil {
			return nil
		}
		ticker := time.NewTicker(time.Second)
		stop := make(chan struct{})
		go func() {
			for {
				select {
				case t := <-ticker.C:
					if dispatch(func() { setNow.Set(t) }) != nil {
						return
					}
				case <-stop:
					return
				}
			}
		}()
		return func() {
			ticker.Stop()
			close(stop)
		}
	}, fiber.NoDeps())

	return vdom.Div(vdom.Class("clock"),
		vdom.Code(now.Format(ClockLayout)),
	)
}
