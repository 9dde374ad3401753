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

// Command cerver runs the front-end load balancer as a standalone
// process: load configuration, connect to every registered service,
// accept clients, and serve a Prometheus /metrics endpoint until a
// signal requests shutdown.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/zhangjinde/cerver/balancer"
	"github.com/zhangjinde/cerver/config"
	"github.com/zhangjinde/cerver/logger"
	"github.com/zhangjinde/cerver/metrics"
)

var (
	cfgFile    string
	metricsBnd string
)

func main() {
	root := &cobra.Command{
		Use:   "cerver",
		Short: "cerver runs the balancer front-end for a fixed pool of back-end services",
		RunE:  runBalancer,
	}
	root.Flags().StringVarP(&cfgFile, "config", "c", "cerver.yaml", "path to the balancer configuration file")
	root.Flags().StringVar(&metricsBnd, "metrics-addr", "", "address to serve Prometheus metrics on (empty disables it)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runBalancer(cmd *cobra.Command, _ []string) error {
	root, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log := logger.New(root.Level(), os.Stderr)

	b, berr := balancer.New(root.Balancer, log)
	if berr != nil {
		return fmt.Errorf("constructing balancer: %w", berr)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if serr := b.Start(ctx); serr != nil {
		return fmt.Errorf("starting balancer: %w", serr)
	}

	if metricsBnd != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(metrics.NewCollector(b))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: metricsBnd, Handler: mux}

		go func() {
			_ = srv.ListenAndServe()
		}()
		go func() {
			<-ctx.Done()
			_ = srv.Close()
		}()
	}

	log.Info("cerver running", logger.Fields{"addr": b.Addr().String()})

	<-ctx.Done()

	return b.Teardown(context.Background())
}
