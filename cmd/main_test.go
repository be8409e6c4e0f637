package main

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/agonhq/agon/internal/adapters/http/api"
	"github.com/agonhq/agon/internal/adapters/http/swagger"
	app "github.com/agonhq/agon/internal/app"
	"github.com/agonhq/agon/internal/config"
	"github.com/agonhq/agon/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestBootstrap(t *testing.T) {
	convey.Convey("Given the application bootstrap pieces", t, func() {
		convey.Convey("When loading configuration from the environment", func() {
			t.Setenv("AGON_ADDR", ":8080")
			t.Setenv("AGON_QUEUE_SIZE", "1000")
			t.Setenv("AGON_WORKER_COUNT", "4")

			cfg, err := config.Load(context.Background())

			convey.Convey("Then the overrides are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.EventQueueSize, convey.ShouldEqual, 1000)
				convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)
			})
		})

		convey.Convey("When creating the service from configuration", func() {
			svc := app.New(
				app.WithWorkerCount(2),
				app.WithQueueSize(128),
				app.WithDedupeSize(256),
				app.WithPageLimits(10, 100),
			)
			convey.So(svc, convey.ShouldNotBeNil)

			convey.Convey("Then it starts and stops cleanly", func() {
				ctx := context.Background()
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				svc.Stop()
			})
		})

		convey.Convey("When wiring the HTTP server", func() {
			ctx := context.Background()
			svc := app.New(app.WithWorkerCount(1), app.WithQueueSize(8))
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			mux := http.NewServeMux()
			swagger.Register(ctx, mux)
			api.NewServer(svc, svc).Register(ctx, mux)

			srv := &http.Server{
				Addr:              ":0",
				Handler:           mux,
				ReadHeaderTimeout: 5 * time.Second,
			}

			convey.Convey("Then the server is configured with the full route set", func() {
				convey.So(srv.Handler, convey.ShouldNotBeNil)

				for _, path := range []string{"/healthz", "/stats", "/matches", "/api-docs", "/openapi.yaml"} {
					req, _ := http.NewRequestWithContext(ctx, http.MethodGet, path, http.NoBody)
					_, pattern := mux.Handler(req)
					convey.So(pattern, convey.ShouldNotBeEmpty)
				}
			})
		})
	})
}
