package kafka

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"
)

// HealthChecker checks that at least one seed broker accepts connections.
// The generator runs it before a run so an unreachable cluster fails fast
// instead of after the dataset is built.
type HealthChecker struct {
	brokers []string
	timeout time.Duration
}

// NewHealthChecker takes the comma-separated broker list of ProducerConfig.
func NewHealthChecker(brokers string) *HealthChecker {
	var list []string
	for _, b := range strings.Split(brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			list = append(list, b)
		}
	}
	return &HealthChecker{
		brokers: list,
		timeout: 5 * time.Second,
	}
}

// Health returns nil if at least one broker is reachable.
func (h *HealthChecker) Health(ctx context.Context) error {
	if len(h.brokers) == 0 {
		return fmt.Errorf("kafka brokers not configured")
	}

	var lastErr error
	for _, broker := range h.brokers {
		dialer := net.Dialer{Timeout: h.timeout}
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("no kafka brokers reachable: %w", lastErr)
}

// Name returns the check name for health reporting.
func (h *HealthChecker) Name() string {
	return "kafka"
}
