/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package metrics exposes a Balancer's counters (§3, "Counters") as
// prometheus collectors, for the optional /metrics endpoint served
// alongside the balancer's own listening socket.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/zhangjinde/cerver/balancer"
	"github.com/zhangjinde/cerver/packet"
)

// Collector adapts a *balancer.Balancer's Stats block to
// prometheus.Collector. It reads the balancer's atomic counters on
// every Collect, so there is no separate bookkeeping to keep in sync.
type Collector struct {
	b *balancer.Balancer

	packetsReceived *prometheus.Desc
	bytesReceived   *prometheus.Desc
	badReceived     *prometheus.Desc
	packetsRouted   *prometheus.Desc
	bytesRouted     *prometheus.Desc
	packetsSent     *prometheus.Desc
	bytesSent       *prometheus.Desc
	unhandled       *prometheus.Desc
	byType          *prometheus.Desc
	servicesWorking *prometheus.Desc
}

// NewCollector builds a Collector for b, labeled with the balancer's
// display name.
func NewCollector(b *balancer.Balancer) *Collector {
	constLabels := prometheus.Labels{"balancer": b.Name()}
	return &Collector{
		b: b,
		packetsReceived: prometheus.NewDesc("cerver_balancer_packets_received_total",
			"Packets read from client connections.", nil, constLabels),
		bytesReceived: prometheus.NewDesc("cerver_balancer_bytes_received_total",
			"Bytes read from client connections, header included.", nil, constLabels),
		badReceived: prometheus.NewDesc("cerver_balancer_bad_packets_received_total",
			"Ingress packets rejected for an invalid packet_size.", nil, constLabels),
		packetsRouted: prometheus.NewDesc("cerver_balancer_packets_routed_total",
			"Packets forwarded from a client to a service.", nil, constLabels),
		bytesRouted: prometheus.NewDesc("cerver_balancer_bytes_routed_total",
			"Bytes forwarded from a client to a service, header included.", nil, constLabels),
		packetsSent: prometheus.NewDesc("cerver_balancer_packets_sent_total",
			"Packets forwarded from a service back to a client.", nil, constLabels),
		bytesSent: prometheus.NewDesc("cerver_balancer_bytes_sent_total",
			"Bytes forwarded from a service back to a client, header included.", nil, constLabels),
		unhandled: prometheus.NewDesc("cerver_balancer_unhandled_packets_total",
			"Packets drained instead of routed (no WORKING service, or a dead client/service mid-flight).", nil, constLabels),
		byType: prometheus.NewDesc("cerver_balancer_packets_by_type_total",
			"Packets observed per packet_type and direction.", []string{"type", "direction"}, constLabels),
		servicesWorking: prometheus.NewDesc("cerver_balancer_services_working",
			"Number of registered services currently WORKING.", nil, constLabels),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.packetsReceived
	ch <- c.bytesReceived
	ch <- c.badReceived
	ch <- c.packetsRouted
	ch <- c.bytesRouted
	ch <- c.packetsSent
	ch <- c.bytesSent
	ch <- c.unhandled
	ch <- c.byType
	ch <- c.servicesWorking
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	s := &c.b.Stats

	ch <- prometheus.MustNewConstMetric(c.packetsReceived, prometheus.CounterValue, float64(s.PacketsReceived.Load()))
	ch <- prometheus.MustNewConstMetric(c.bytesReceived, prometheus.CounterValue, float64(s.BytesReceived.Load()))
	ch <- prometheus.MustNewConstMetric(c.badReceived, prometheus.CounterValue, float64(s.BadPacketsReceived.Load()))
	ch <- prometheus.MustNewConstMetric(c.packetsRouted, prometheus.CounterValue, float64(s.PacketsRouted.Load()))
	ch <- prometheus.MustNewConstMetric(c.bytesRouted, prometheus.CounterValue, float64(s.BytesRouted.Load()))
	ch <- prometheus.MustNewConstMetric(c.packetsSent, prometheus.CounterValue, float64(s.PacketsSent.Load()))
	ch <- prometheus.MustNewConstMetric(c.bytesSent, prometheus.CounterValue, float64(s.BytesSent.Load()))
	ch <- prometheus.MustNewConstMetric(c.unhandled, prometheus.CounterValue, float64(s.UnhandledPackets.Load()))
	ch <- prometheus.MustNewConstMetric(c.servicesWorking, prometheus.GaugeValue, float64(c.b.Registry().CountWorking()))

	for t := packet.None; t <= packet.Bad; t++ {
		ch <- prometheus.MustNewConstMetric(c.byType, prometheus.CounterValue, float64(s.ReceivedByType(t)), t.String(), "received")
		ch <- prometheus.MustNewConstMetric(c.byType, prometheus.CounterValue, float64(s.RoutedByType(t)), t.String(), "routed")
		ch <- prometheus.MustNewConstMetric(c.byType, prometheus.CounterValue, float64(s.SentByType(t)), t.String(), "sent")
	}
}
