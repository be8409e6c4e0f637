package logger_test

import (
	"context"
	"testing"

	"github.com/agonhq/agon/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger_Init(t *testing.T) {
	Convey("Given an uninitialized logger package", t, func() {
		Convey("When Init is called", func() {
			err := logger.Init()

			Convey("Then it should succeed", func() {
				So(err, ShouldBeNil)
			})

			Convey("And Get should return a usable logger", func() {
				l := logger.Get()
				So(l, ShouldNotBeNil)
				// Must not panic.
				l.Info(context.Background(), "hello", logger.String("k", "v"))
			})
		})
	})
}

func TestLogger_Named(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When creating a named logger", func() {
			l := logger.Named("pipeline")

			Convey("Then it should be distinct and usable", func() {
				So(l, ShouldNotBeNil)
				l.Debug(context.Background(), "named entry", logger.Int("n", 1))
			})
		})
	})
}

func TestLogger_SetLevelString(t *testing.T) {
	Convey("Given an initialized logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When setting known levels", func() {
			for _, lvl := range []string{"debug", "info", "warn", "warning", "error", ""} {
				So(logger.SetLevelString(lvl), ShouldBeNil)
			}
		})

		Convey("When setting an unknown level", func() {
			err := logger.SetLevelString("loud")

			Convey("Then it should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}
