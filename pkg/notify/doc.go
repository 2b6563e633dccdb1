// Package notify delivers grid operation faults to subscribers through an
// in-memory hub.
//
// The orchestrator surfaces non-precondition failures as Events instead of
// returning errors across the UI boundary: each event carries the failing
// operation's name, the causing error, and a timestamp. Delivery is
// non-blocking; a subscriber that stops draining its channel loses events
// rather than stalling the grid.
//
// # Usage
//
//	hub := notify.NewHub(16)
//	defer hub.Close()
//
//	events := hub.Subscribe(ctx)
//	go func() {
//	    for e := range events {
//	        log.Printf("%s failed: %v", e.Op, e.Err)
//	    }
//	}()
//
//	hub.Publish(notify.Event{Op: "load_data", Err: err})
package notify
