// Package stream serves a reconciled memhost tree over HTTP and streams the
// mutations of every commit to websocket subscribers.
//
// Routes:
//
//	GET  /                       full page with the current tree
//	GET  /fragment               the current tree without the page shell
//	GET  /ws                     snapshot frame, then one mutation frame per commit
//	POST /events/{id}/{event}    dispatch an event to a node listener
//	GET  /metrics                Prometheus metrics
//	GET  /healthz                liveness
//
// All access to the tree goes through the fiber.Loop, so the reconciler is
// only ever touched from the loop goroutine.
package stream
