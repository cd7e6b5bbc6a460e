// Package statsview serves runtime statistics of a long golden model run
// over HTTP. The server is only built with the statsview build tag:
//
//	go build -tags statsview ./cmd/rvgold
//
// After launch, graphs are viewable at
//
//	localhost:12600/debug/statsview
//
// and the standard Go pprof endpoints at
//
//	localhost:12600/debug/pprof/
package statsview

// DefaultAddress is the address the stats server listens on.
const DefaultAddress = "localhost:12600"

const url = "/debug/statsview"
