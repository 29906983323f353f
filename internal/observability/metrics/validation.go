package metrics

import "strconv"

// Validation records one account number validation.
func Validation(method, outcome string) {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled {
		return
	}
	validationTotal.WithLabelValues(method, outcome).Inc()
}

// Alternative records which chain entry decided a validation.
// Negative indexes are recorded as "none".
func Alternative(method string, index int) {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled {
		return
	}
	label := "none"
	if index >= 0 {
		label = strconv.Itoa(index)
	}
	alternativeTotal.WithLabelValues(method, label).Inc()
}

// BatchSize records the size of a batch request.
func BatchSize(n int) {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled {
		return
	}
	batchSize.Observe(float64(n))
}

// AuditFailure records a failed validation log write.
func AuditFailure() {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled {
		return
	}
	auditFailures.Inc()
}
