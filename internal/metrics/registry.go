// Package metrics exposes the Prometheus collectors used across the
// handshake, session, message, and crypto layers, all registered to a
// single process-wide registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "alpine"

// Registry is the process-wide collector registry every metric in this
// package registers itself to.
var Registry = prometheus.NewRegistry()
