package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/nao1215/mintrelay/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestValidate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("Then it is valid without an API key", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("When the request timeout is zero", func() {
			cfg.RequestTimeout = 0

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the port is out of range", func() {
			cfg.Port = "70000"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When port 0 is requested", func() {
			cfg.Port = "0"

			convey.Convey("Then an ephemeral port is accepted", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})

		convey.Convey("When the deploy URL uses an unsupported scheme", func() {
			cfg.DeployURL = "ftp://localhost:7890/deploy"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the gin mode is unknown", func() {
			cfg.GinMode = "production"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the timeout is customised", func() {
			cfg.RequestTimeout = 5 * time.Second

			convey.Convey("Then it stays valid", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
