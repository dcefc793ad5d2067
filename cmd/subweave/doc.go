// Command subweave is the operator CLI: it runs and controls the daemon,
// inspects the queue and logs over the control socket, processes single
// files, and manages configuration and the translation cache.
package main
