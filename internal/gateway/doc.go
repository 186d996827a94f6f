// Package gateway assembles and runs the support relay.
//
// # Overview
//
// New builds every component from a config.Config:
//
//   - the conversation store selected by store.backend
//   - the Telegram bot (token verified with getMe)
//   - the routing table, update dedupe cache and metrics
//   - the relay router that ties them together
//
// Run starts three concurrent parts: the Telegram poller, which dispatches
// updates to the router one at a time, the liveness server, and the metrics
// server when enabled. It returns when the context is canceled or any part
// fails; the remaining parts are then stopped and the store is closed.
//
// # Usage
//
//	gw, err := gateway.New(ctx, cfg, logger)
//	if err != nil {
//	    return err
//	}
//	return gw.Run(ctx)
package gateway
