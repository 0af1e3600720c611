// Package metrics exposes wirebit.LinkStats as Prometheus metrics an
// application can register into its own /metrics handler.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wirebit/wirebit"
)

// LinkCollector is a prometheus.Collector wrapping one or more named
// links' stats sources. It collects on demand — no polling goroutine —
// so counter values are read straight from each link's atomic
// LinkStats at scrape time.
type LinkCollector struct {
	links map[string]wirebit.Link

	framesSent       *prometheus.Desc
	framesReceived   *prometheus.Desc
	framesDropped    *prometheus.Desc
	framesDuplicated *prometheus.Desc
	framesCorrupted  *prometheus.Desc
	bytesSent        *prometheus.Desc
	bytesReceived    *prometheus.Desc
	sendErrors       *prometheus.Desc
	recvErrors       *prometheus.Desc
}

// NewLinkCollector builds a collector over the given name-to-link map.
// The name is attached to every metric as a "link" label.
func NewLinkCollector(links map[string]wirebit.Link) *LinkCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc("wirebit_"+name, help, []string{"link"}, nil)
	}
	return &LinkCollector{
		links:            links,
		framesSent:       desc("frames_sent_total", "Total frames sent on the link."),
		framesReceived:   desc("frames_received_total", "Total frames received on the link."),
		framesDropped:    desc("frames_dropped_total", "Total frames dropped by the link model."),
		framesDuplicated: desc("frames_duplicated_total", "Total frames duplicated by the link model."),
		framesCorrupted:  desc("frames_corrupted_total", "Total frames corrupted by the link model."),
		bytesSent:        desc("bytes_sent_total", "Total frame bytes (header, payload and meta) sent on the link."),
		bytesReceived:    desc("bytes_received_total", "Total frame bytes (header, payload and meta) received on the link."),
		sendErrors:       desc("send_errors_total", "Total send errors, including ring-full timeouts."),
		recvErrors:       desc("recv_errors_total", "Total non-timeout receive errors."),
	}
}

// Describe implements prometheus.Collector.
func (c *LinkCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.framesSent
	ch <- c.framesReceived
	ch <- c.framesDropped
	ch <- c.framesDuplicated
	ch <- c.framesCorrupted
	ch <- c.bytesSent
	ch <- c.bytesReceived
	ch <- c.sendErrors
	ch <- c.recvErrors
}

// Collect implements prometheus.Collector.
func (c *LinkCollector) Collect(ch chan<- prometheus.Metric) {
	for name, link := range c.links {
		s := link.Stats()
		ch <- prometheus.MustNewConstMetric(c.framesSent, prometheus.CounterValue, float64(s.FramesSent), name)
		ch <- prometheus.MustNewConstMetric(c.framesReceived, prometheus.CounterValue, float64(s.FramesReceived), name)
		ch <- prometheus.MustNewConstMetric(c.framesDropped, prometheus.CounterValue, float64(s.FramesDropped), name)
		ch <- prometheus.MustNewConstMetric(c.framesDuplicated, prometheus.CounterValue, float64(s.FramesDuplicated), name)
		ch <- prometheus.MustNewConstMetric(c.framesCorrupted, prometheus.CounterValue, float64(s.FramesCorrupted), name)
		ch <- prometheus.MustNewConstMetric(c.bytesSent, prometheus.CounterValue, float64(s.BytesSent), name)
		ch <- prometheus.MustNewConstMetric(c.bytesReceived, prometheus.CounterValue, float64(s.BytesReceived), name)
		ch <- prometheus.MustNewConstMetric(c.sendErrors, prometheus.CounterValue, float64(s.SendErrors), name)
		ch <- prometheus.MustNewConstMetric(c.recvErrors, prometheus.CounterValue, float64(s.RecvErrors), name)
	}
}
