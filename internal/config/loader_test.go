package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/agonhq/agon/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestConfig_Load(t *testing.T) {
	Convey("Given no config file and no env overrides", t, func() {
		t.Setenv("AGON_CONFIG", "")

		cfg, err := config.Load(context.Background())

		Convey("Then defaults should load cleanly", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldNotBeEmpty)
		})
	})

	Convey("Given env overrides", t, func() {
		t.Setenv("AGON_CONFIG", "")
		t.Setenv("AGON_ADDR", ":7001")
		t.Setenv("AGON_MAX_PAGE_LIMIT", "250")
		t.Setenv("AGON_LOG_LEVEL", "debug")

		cfg, err := config.Load(context.Background())

		Convey("Then env values should take precedence over defaults", func() {
			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7001")
			So(cfg.MaxPageLimit, ShouldEqual, 250)
			So(cfg.LogLevel, ShouldEqual, "debug")
		})
	})

	Convey("Given an invalid override", t, func() {
		t.Setenv("AGON_CONFIG", "")
		t.Setenv("AGON_DEFAULT_PAGE_LIMIT", "0")

		_, err := config.Load(context.Background())

		Convey("Then loading should fail with ErrInvalidConfig", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given a missing config file path", t, func() {
		t.Setenv("AGON_CONFIG", "/nonexistent/agon.yaml")

		_, err := config.Load(context.Background())

		Convey("Then loading should fail with ErrLoadConfig", func() {
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})
	})
}
