// Package transport builds the HTTP clients used to talk to backend servers.
//
// Backends usually sit on a LAN and are reached directly. When they are only
// reachable through a SOCKS5 proxy (for example an SSH dynamic forward into
// the network hosting the servers) the client dials through that proxy
// instead. Every request carries the configured User-Agent.
package transport
