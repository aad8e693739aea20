// Package fiber is an incremental reconciler for vdom descriptions.
//
// A Reconciler keeps two generations of work nodes ("fibers") in an arena: the
// committed tree and the work-in-progress tree built from the next
// description. Fibers link to their parent, first child, next sibling and
// their counterpart in the previous generation (the alternate). Children are
// diffed by position: each fiber is tagged Placement, Update or Deletion.
//
// Work is cooperative. RunSlice processes one fiber at a time and stops when
// the Deadline reports less than the minimum budget; the next call resumes at
// the same fiber. When the last fiber is processed the generation is
// committed in one pass:
//
//  1. pending deletions are removed from the host (their cleanups run first)
//  2. placements and attribute updates are applied depth-first
//  3. effect cleanups run for the whole generation, then effects run
//  4. the generation becomes the committed tree
//
// # Hooks
//
// Components keep state in hook cells matched by call order:
//
//	func Counter(h vdom.Hooks, props vdom.Props) *vdom.VNode {
//	    count, setCount := fiber.UseState(h, 0)
//	    fiber.UseEffect(h, func() func() {
//	        log.Println("count is", count)
//	        return nil
//	    }, []any{count})
//	    return vdom.Button(vdom.OnClick(func() {
//	        setCount.Update(func(n int) int { return n + 1 })
//	    }), "Count: ", count)
//	}
//
// A setter queues its transform on the cell and schedules a generation seeded
// at the component that owns the cell; only that subtree is processed.
// Updates that arrive while a generation is in flight run in a later
// generation.
//
// # Driving a reconciler
//
//	r := fiber.New(host)
//	_ = r.Render(vdom.Build(Counter, nil), container)
//	for r.Pending() {
//	    if _, err := r.RunSlice(ctx, fiber.Budget(5*time.Millisecond)); err != nil {
//	        return err
//	    }
//	}
//
// Long-running programs use a Loop, which owns the reconciler goroutine and
// accepts work through Dispatch.
package fiber
