// Package ipc exposes daemon control over a Unix domain socket using
// JSON-RPC. The CLI's status, scan, queue, and logs commands talk to a
// running daemon through this surface.
package ipc
