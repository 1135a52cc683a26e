package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/psyscale/internal/adapters/repository"
	app "github.com/okian/psyscale/internal/app"
	"github.com/okian/psyscale/internal/config"
	"github.com/okian/psyscale/pkg/logger"
	"github.com/okian/psyscale/pkg/metrics"
)

func init() {
	_ = logger.Init()
}

func clearEnv() {
	for _, k := range []string{"PSYSCALE_CONFIG", "PSYSCALE_ADDR", "PSYSCALE_STORE_BACKEND", "PSYSCALE_STORE_DSN"} {
		_ = os.Unsetenv(k)
	}
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given configuration for each local backend", t, func() {
		ctx := context.Background()
		defer clearEnv()

		convey.Convey("When the sqlite backend points at a temp file", func() {
			_ = os.Setenv("PSYSCALE_STORE_DSN", filepath.Join(t.TempDir(), "main.db"))
			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)

			store, err := openStore(ctx, cfg)

			convey.Convey("Then a pooled store opens", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store, convey.ShouldNotBeNil)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the memory backend is selected", func() {
			_ = os.Setenv("PSYSCALE_STORE_BACKEND", "memory")
			cfg, err := config.Load(ctx)
			convey.So(err, convey.ShouldBeNil)

			store, err := openStore(ctx, cfg)

			convey.Convey("Then an in-memory store opens", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(store.Close(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the backend is unknown", func() {
			cfg := config.New(ctx)
			cfg.StoreBackend = "oracle"

			_, err := openStore(ctx, cfg)

			convey.Convey("Then opening fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestRouter(t *testing.T) {
	convey.Convey("Given the full router over a sqlite-backed service", t, func() {
		ctx := context.Background()
		cfg := config.New(ctx)
		cfg.StoreDSN = filepath.Join(t.TempDir(), "router.db")

		store, err := openStore(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		svc := app.New(app.WithStore(store))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		h := newRouter(ctx, svc)

		convey.Convey("When a completion arrives through a proxy", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/instruments/k10/completions", strings.NewReader(`{"client_type":2}`))
			req.Header.Set("X-Forwarded-For", "198.51.100.7")
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			convey.Convey("Then it is recorded and the statistics reflect it", func() {
				convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
				convey.So(w.Header().Get("X-Request-ID"), convey.ShouldNotBeEmpty)

				st, err := svc.Statistics(ctx, "k10")
				convey.So(err, convey.ShouldBeNil)
				convey.So(st.Count, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the docs and metrics routes are requested", func() {
			docs := httptest.NewRecorder()
			h.ServeHTTP(docs, httptest.NewRequest(http.MethodGet, "/api-docs", http.NoBody))
			spec := httptest.NewRecorder()
			h.ServeHTTP(spec, httptest.NewRequest(http.MethodGet, "/openapi.yaml", http.NoBody))
			scrape := httptest.NewRecorder()
			h.ServeHTTP(scrape, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

			convey.Convey("Then each is served", func() {
				convey.So(docs.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(spec.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(scrape.Code, convey.ShouldEqual, http.StatusOK)
			})
		})

		convey.Convey("When pool metrics are refreshed", func() {
			updatePoolMetrics(svc)

			convey.Convey("Then the open-connection gauge is published", func() {
				families, err := metrics.GetRegistry().Gather()
				convey.So(err, convey.ShouldBeNil)
				found := false
				for _, f := range families {
					if f.GetName() == "psyscale_statistics_storage_pool_open_connections" {
						found = true
					}
				}
				convey.So(found, convey.ShouldBeTrue)
			})
		})
	})
}

func TestConfigureMetrics(t *testing.T) {
	convey.Convey("Given a configured metrics namespace", t, func() {
		cfg := config.New(context.Background())
		cfg.MetricsNamespace = "clinic"
		configureMetrics(cfg)
		defer configureMetrics(config.New(context.Background()))

		convey.Convey("When system metrics are refreshed", func() {
			updateSystemMetrics()

			convey.Convey("Then they are published under the configured prefix", func() {
				count, err := testutil.GatherAndCount(metrics.GetRegistry(), "clinic_statistics_system_goroutine_count")
				convey.So(err, convey.ShouldBeNil)
				convey.So(count, convey.ShouldEqual, 1)
			})
		})
	})
}

func TestMetricsUpdater(t *testing.T) {
	convey.Convey("Given a started in-memory service", t, func() {
		svc := app.New(app.WithStore(repository.NewMemoryStore()))
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		convey.Convey("When the updater runs until its context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.Convey("Then it returns without panicking", func() {
				convey.So(func() { startMetricsUpdater(ctx, svc, 10*time.Millisecond) }, convey.ShouldNotPanic)
			})
		})

		convey.Convey("When system metrics are updated", func() {
			updateSystemMetrics()

			convey.Convey("Then the goroutine gauge is set", func() {
				count, err := testutil.GatherAndCount(metrics.GetRegistry(), "psyscale_statistics_system_goroutine_count")
				convey.So(err, convey.ShouldBeNil)
				convey.So(count, convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When pool metrics are updated for a store without a pool", func() {
			convey.Convey("Then nothing panics", func() {
				convey.So(func() { updatePoolMetrics(svc) }, convey.ShouldNotPanic)
			})
		})
	})
}
