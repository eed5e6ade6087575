package main

import (
	"context"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/armandov/sellerpulse/internal/adapters/http/api"
	service "github.com/armandov/sellerpulse/internal/app"
	"github.com/armandov/sellerpulse/internal/config"
	"github.com/armandov/sellerpulse/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			// Test with environment variables
			_ = os.Setenv("SELLERPULSE_ADDR", ":8080")
			_ = os.Setenv("SELLERPULSE_QUEUE_SIZE", "1000")
			_ = os.Setenv("SELLERPULSE_WORKER_COUNT", "4")
			defer func() {
				_ = os.Unsetenv("SELLERPULSE_ADDR")
				_ = os.Unsetenv("SELLERPULSE_QUEUE_SIZE")
				_ = os.Unsetenv("SELLERPULSE_WORKER_COUNT")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load()
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When testing service creation", func() {
			convey.Convey("Then service should be creatable with default options", func() {
				svc := service.New()
				convey.So(svc, convey.ShouldNotBeNil)
			})

			convey.Convey("And service should be creatable with custom options", func() {
				svc := service.New(
					service.WithWorkerCount(8),
					service.WithQueueSize(2000),
					service.WithDedupeSize(1000),
				)
				convey.So(svc, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing HTTP server creation", func() {
			svc := service.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then HTTP server should be creatable", func() {
				server := api.NewServer(svc, svc, 100)
				convey.So(server, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then metrics manager should be creatable", func() {
				manager := metrics.NewManager()
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given main application components", t, func() {
		convey.Convey("When testing service metrics updater", func() {
			svc := service.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it should stop with its context", func() {
				ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
				defer cancel()

				convey.So(func() {
					startServiceMetricsUpdater(ctx, svc)
				}, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When testing service metrics update", func() {
			svc := service.New()
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it should update metrics without panicking", func() {
				convey.So(func() {
					updateServiceMetrics(svc)
				}, convey.ShouldNotPanic)
			})
		})
	})
}

func TestServerTimeouts(t *testing.T) {
	convey.Convey("Given the HTTP server configuration", t, func() {
		srv := &http.Server{
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		}

		convey.Convey("Then the timeouts should be conservative", func() {
			convey.So(srv.ReadTimeout, convey.ShouldBeLessThanOrEqualTo, srv.IdleTimeout)
			convey.So(srv.ReadHeaderTimeout, convey.ShouldBeLessThanOrEqualTo, srv.ReadTimeout)
		})
	})
}
