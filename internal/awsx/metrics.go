package awsx

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics publishes operational counters to CloudWatch. All methods are
// best-effort and safe on a nil receiver, so callers never guard for it.
type Metrics struct {
	client    CloudWatchAPI
	namespace string
}

// NewMetrics returns a Metrics publisher for the given namespace.
func NewMetrics(client CloudWatchAPI, namespace string) *Metrics {
	if namespace == "" {
		namespace = "PaymentService"
	}
	return &Metrics{client: client, namespace: namespace}
}

// CountOutcome records a processed payment outcome (Completed, Processing,
// Rejected, Failed) as a count of 1.
func (m *Metrics) CountOutcome(ctx context.Context, outcome string) {
	m.put(ctx, "PaymentOutcome", map[string]string{"Outcome": outcome})
}

// CountBreakerTransition records a circuit breaker state transition.
func (m *Metrics) CountBreakerTransition(ctx context.Context, to string) {
	m.put(ctx, "BreakerTransition", map[string]string{"To": to})
}

func (m *Metrics) put(ctx context.Context, name string, dims map[string]string) {
	if m == nil || m.client == nil {
		return
	}

	dimensions := make([]cwtypes.Dimension, 0, len(dims))
	for k, v := range dims {
		dimensions = append(dimensions, cwtypes.Dimension{
			Name:  awsString(k),
			Value: awsString(v),
		})
	}

	one := 1.0
	now := time.Now().UTC()
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &m.namespace,
		MetricData: []cwtypes.MetricDatum{{
			MetricName: awsString(name),
			Dimensions: dimensions,
			Timestamp:  &now,
			Unit:       cwtypes.StandardUnitCount,
			Value:      &one,
		}},
	})
	if err != nil {
		log.Printf("[metrics] put %s failed: %v", name, err)
	}
}
