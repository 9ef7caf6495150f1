package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

type Metrics struct {
	registry          *prometheus.Registry
	searchRequests    *prometheus.CounterVec
	commentRequests   *prometheus.CounterVec
	submissions       *prometheus.CounterVec
	comments          *prometheus.CounterVec
	duplicatesSkipped *prometheus.CounterVec
	datasetRows       *prometheus.GaugeVec
}

func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,
		searchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedgrep_search_requests_total",
			Help: "Search pages requested from the source.",
		}, []string{"source"}),
		commentRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedgrep_comment_requests_total",
			Help: "Comment trees requested from the source.",
		}, []string{"source"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedgrep_submissions_collected_total",
			Help: "Submissions retained by the collector.",
		}, []string{"keyword"}),
		comments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedgrep_comments_collected_total",
			Help: "Comments retained by the collector.",
		}, []string{"keyword"}),
		duplicatesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedgrep_duplicates_skipped_total",
			Help: "Records skipped because their identifier was already seen.",
		}, []string{"kind"}),
		datasetRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "feedgrep_dataset_rows",
			Help: "Rows in the exported tables.",
		}, []string{"table"}),
	}
	registry.MustRegister(
		m.searchRequests,
		m.commentRequests,
		m.submissions,
		m.comments,
		m.duplicatesSkipped,
		m.datasetRows,
	)
	return m
}

func (m *Metrics) SearchRequest(source string) {
	m.searchRequests.WithLabelValues(source).Inc()
}

func (m *Metrics) CommentRequest(source string) {
	m.commentRequests.WithLabelValues(source).Inc()
}

func (m *Metrics) Collected(keyword string, submissions, comments int) {
	m.submissions.WithLabelValues(keyword).Add(float64(submissions))
	m.comments.WithLabelValues(keyword).Add(float64(comments))
}

func (m *Metrics) DuplicateSkipped(kind string) {
	m.duplicatesSkipped.WithLabelValues(kind).Inc()
}

func (m *Metrics) DatasetRows(table string, rows int) {
	m.datasetRows.WithLabelValues(table).Set(float64(rows))
}

// WriteTextfile dumps every registered metric in the text exposition format,
// suitable for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

// Totals sums every series of each metric family, keyed by family name.
func (m *Metrics) Totals() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	totals := make(map[string]float64, len(families))
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			totals[family.GetName()] += value(family.GetType(), metric)
		}
	}
	return totals, nil
}

func value(t dto.MetricType, metric *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return metric.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return metric.GetGauge().GetValue()
	}
	return 0
}
