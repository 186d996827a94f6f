// Package metrics exposes Prometheus counters for the relay.
//
// Two counter vectors are registered on a private registry:
//
//	support_relay_events_total{kind}          dispatched inbound events
//	support_relay_steps_total{step,outcome}   side effects, outcome ok|error
//
// The counters are served by Server on their own listener (metrics.addr) so
// the liveness server keeps a single route.
package metrics
