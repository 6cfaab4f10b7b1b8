// Package services
// File: services/metrics.go
package services

import (
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	"github.com/prometheus/client_golang/prometheus"
	"go-drop-registry/logger"
)

// Recorder receives business events worth counting.
type Recorder interface {
	SubmissionAccepted(slot string)
	SubmissionRejected(kind RejectionKind)
	SlotOccupancy(slot string, count, limit int)
	AdminAction(action string)
	ConnectedClients(topic string, n int)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) SubmissionAccepted(string)        {}
func (NopRecorder) SubmissionRejected(RejectionKind) {}
func (NopRecorder) SlotOccupancy(string, int, int)   {}
func (NopRecorder) AdminAction(string)               {}
func (NopRecorder) ConnectedClients(string, int)     {}

// ---------------- prometheus ----------------

const metricsNamespace = "drop_registry"

// Metrics exposes counters for Prometheus scraping and optionally mirrors the
// occupancy gauges to CloudWatch.
type Metrics struct {
	submissions  *prometheus.CounterVec
	rejections   *prometheus.CounterVec
	occupancy    *prometheus.GaugeVec
	capacity     *prometheus.GaugeVec
	adminActions *prometheus.CounterVec
	clients      *prometheus.GaugeVec
	cloud        *CloudWatchPublisher
}

var _ Recorder = (*Metrics)(nil)

// NewMetrics registers the collectors on reg. cloud may be nil.
func NewMetrics(reg prometheus.Registerer, cloud *CloudWatchPublisher) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "registrations_total",
			Help:      "Accepted registrations by time slot.",
		}, []string{"slot"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rejections_total",
			Help:      "Refused submissions by rejection kind.",
		}, []string{"kind"}),
		occupancy: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "slot_registrations",
			Help:      "Registrations in a slot for the current day.",
		}, []string{"slot"}),
		capacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "slot_capacity",
			Help:      "Configured capacity of a slot.",
		}, []string{"slot"}),
		adminActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "admin_actions_total",
			Help:      "Administrator operations by name.",
		}, []string{"action"}),
		clients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "live_clients",
			Help:      "Connected live feed clients by topic.",
		}, []string{"topic"}),
		cloud: cloud,
	}
	reg.MustRegister(m.submissions, m.rejections, m.occupancy, m.capacity, m.adminActions, m.clients)
	return m
}

func (m *Metrics) SubmissionAccepted(slot string) {
	m.submissions.WithLabelValues(slot).Inc()
}

func (m *Metrics) SubmissionRejected(kind RejectionKind) {
	m.rejections.WithLabelValues(string(kind)).Inc()
}

func (m *Metrics) SlotOccupancy(slot string, count, limit int) {
	m.occupancy.WithLabelValues(slot).Set(float64(count))
	m.capacity.WithLabelValues(slot).Set(float64(limit))
	if m.cloud != nil {
		go m.cloud.Put("SlotRegistrations", float64(count), cloudwatch.StandardUnitCount, slot)
	}
}

func (m *Metrics) AdminAction(action string) {
	m.adminActions.WithLabelValues(action).Inc()
}

func (m *Metrics) ConnectedClients(topic string, n int) {
	m.clients.WithLabelValues(topic).Set(float64(n))
	if m.cloud != nil {
		go m.cloud.Put("LiveClients", float64(n), cloudwatch.StandardUnitCount, topic)
	}
}

// ---------------- cloudwatch ----------------

// CloudWatchPublisher pushes single data points to CloudWatch.
type CloudWatchPublisher struct {
	Client    cloudwatchiface.CloudWatchAPI
	Namespace string
}

// NewCloudWatchPublisher uses the default AWS credential chain.
func NewCloudWatchPublisher(namespace string) *CloudWatchPublisher {
	return &CloudWatchPublisher{
		Client:    cloudwatch.New(session.Must(session.NewSession())),
		Namespace: namespace,
	}
}

// Put sends one datum with a Slot dimension. Failures are only logged.
func (p *CloudWatchPublisher) Put(metricName string, value float64, unit string, slot string) {
	_, err := p.Client.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace: aws.String(p.Namespace),
		MetricData: []*cloudwatch.MetricDatum{
			{
				MetricName: aws.String(metricName),
				Dimensions: []*cloudwatch.Dimension{
					{
						Name:  aws.String("Slot"),
						Value: aws.String(slot),
					},
				},
				Timestamp: aws.Time(time.Now()),
				Value:     aws.Float64(value),
				Unit:      aws.String(unit),
			},
		},
	})
	if err != nil {
		logger.Error.Printf("[CloudWatchPublisher.Put] metric %s failed: %v", metricName, err)
	}
}
