// Package lavalink talks to a Lavalink v4 node.
//
// Files:
// - client.go: REST client (version/info/stats/loadtracks) with taxonomy
//   error mapping
// - adapter.go: resolver backend over the client with bounded
//   exponential-backoff retries
// - spawn.go: optional supervisor that launches a local node jar and
//   tracks its lifecycle
// - jarfind.go: locating the node jar on disk
package lavalink
