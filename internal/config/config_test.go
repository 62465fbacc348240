package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/fplpredict/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.UpstreamBaseURL, convey.ShouldEqual, "https://fantasy.premierleague.com/api")
			convey.So(cfg.DefaultLimit, convey.ShouldEqual, 15)
			convey.So(cfg.SurpriseLimit, convey.ShouldEqual, 5)
			convey.So(cfg.MaxRound, convey.ShouldEqual, 38)
			convey.So(cfg.SurpriseOwnershipCutoff, convey.ShouldEqual, 5.0)
			convey.So(cfg.SurpriseFormCutoff, convey.ShouldEqual, 3.0)
			convey.So(cfg.FetchTimeout(), convey.ShouldEqual, 15*time.Second)
			convey.So(cfg.BreakerOpen(), convey.ShouldEqual, 30*time.Second)
			convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			convey.So(cfg.MetricsRefresh(), convey.ShouldEqual, 5*time.Second)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a zero surprise form cutoff", t, func() {
		cfg := config.New()
		cfg.SurpriseFormCutoff = 0

		convey.Convey("Then it is a valid floor", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out-of-range values", t, func() {
		cases := map[string]func(*config.Config){
			"addr must not be empty":    func(c *config.Config) { c.Addr = "" },
			"upstream_base_url":         func(c *config.Config) { c.UpstreamBaseURL = "" },
			"fetch_timeout_ms":          func(c *config.Config) { c.FetchTimeoutMS = 0 },
			"breaker_failures":          func(c *config.Config) { c.BreakerFailures = -1 },
			"breaker_open_ms":           func(c *config.Config) { c.BreakerOpenMS = 0 },
			"max_limit":                 func(c *config.Config) { c.MaxLimit = 0 },
			"default_limit":             func(c *config.Config) { c.DefaultLimit = 101 },
			"surprise_limit":            func(c *config.Config) { c.SurpriseLimit = 0 },
			"max_round":                 func(c *config.Config) { c.MaxRound = 0 },
			"log_format":                func(c *config.Config) { c.LogFormat = "xml" },
			"surprise_ownership_cutoff": func(c *config.Config) { c.SurpriseOwnershipCutoff = 0 },
			"surprise_form_cutoff":      func(c *config.Config) { c.SurpriseFormCutoff = -1 },
			"metrics_refresh_ms":        func(c *config.Config) { c.MetricsRefreshMS = 0 },
		}

		for want, mutate := range cases {
			cfg := config.New()
			mutate(cfg)
			err := cfg.Validate()

			convey.So(err, convey.ShouldNotBeNil)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, want)
		}
	})
}
