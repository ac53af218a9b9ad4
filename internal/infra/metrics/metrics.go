// File: internal/infra/metrics/metrics.go
package metrics

import "strings"

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Result labels shared by counters below.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

func result(ok bool) string {
	if ok {
		return ResultOK
	}
	return ResultFailed
}
