package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Every collector in this package is prefixed emby_cdk_.
const namespace = "emby_cdk"

var (
	once    sync.Once
	pending []prometheus.Collector
)

// register queues collectors from each file's init; MustRegister flushes them.
func register(cs ...prometheus.Collector) {
	pending = append(pending, cs...)
}

// MustRegister installs the queued collectors on the default registry. Safe to call twice.
func MustRegister() {
	once.Do(func() { prometheus.MustRegister(pending...) })
}
