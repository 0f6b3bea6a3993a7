// Package client posts serialized workflows to the execution endpoint.
//
// Run never returns a Go error. Every failure (a busy client, a transport
// problem, a non-2xx status or an unparseable body) is folded into the
// returned workflow.Result so the caller always has something to display.
package client
