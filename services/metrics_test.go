//go:build unit
// +build unit

// file: services/metrics_test.go
package services

import (
	"testing"

	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCloudWatch captures PutMetricData input.
type fakeCloudWatch struct {
	cloudwatchiface.CloudWatchAPI
	inputs chan *cloudwatch.PutMetricDataInput
}

func (f *fakeCloudWatch) PutMetricData(in *cloudwatch.PutMetricDataInput) (*cloudwatch.PutMetricDataOutput, error) {
	f.inputs <- in
	return &cloudwatch.PutMetricDataOutput{}, nil
}

// gathered flattens reg into "name{labelvalue}" -> value.
func gathered(t *testing.T, reg *prometheus.Registry) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := map[string]float64{}
	for _, f := range families {
		for _, m := range f.GetMetric() {
			key := f.GetName()
			for _, l := range m.GetLabel() {
				key += "{" + l.GetValue() + "}"
			}
			switch {
			case m.GetCounter() != nil:
				out[key] = m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				out[key] = m.GetGauge().GetValue()
			}
		}
	}
	return out
}

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg, nil)

	m.SubmissionAccepted("1 PM - 3 PM")
	m.SubmissionAccepted("1 PM - 3 PM")
	m.SubmissionRejected(KindSlotFull)
	m.SlotOccupancy("1 PM - 3 PM", 2, 16)
	m.AdminAction("open")

	got := gathered(t, reg)
	assert.Equal(t, 2.0, got["drop_registry_registrations_total{1 PM - 3 PM}"])
	assert.Equal(t, 1.0, got["drop_registry_rejections_total{SlotFullError}"])
	assert.Equal(t, 2.0, got["drop_registry_slot_registrations{1 PM - 3 PM}"])
	assert.Equal(t, 16.0, got["drop_registry_slot_capacity{1 PM - 3 PM}"])
	assert.Equal(t, 1.0, got["drop_registry_admin_actions_total{open}"])
}

func TestCloudWatchPublisher_Put(t *testing.T) {
	fake := &fakeCloudWatch{inputs: make(chan *cloudwatch.PutMetricDataInput, 1)}
	p := &CloudWatchPublisher{Client: fake, Namespace: "DropRegistry"}

	p.Put("SlotRegistrations", 3, cloudwatch.StandardUnitCount, "3 PM - 5 PM")

	in := <-fake.inputs
	assert.Equal(t, "DropRegistry", *in.Namespace)
	require.Len(t, in.MetricData, 1)
	assert.Equal(t, "SlotRegistrations", *in.MetricData[0].MetricName)
	assert.Equal(t, 3.0, *in.MetricData[0].Value)
	assert.Equal(t, "3 PM - 5 PM", *in.MetricData[0].Dimensions[0].Value)
}
