package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/sodalab/behavio/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	Convey("Given no file and no environment", t, func() {
		cfg, err := config.Load(context.Background())
		So(err, ShouldBeNil)

		Convey("Then the defaults apply", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.GroupBy, ShouldEqual, "week")
			So(cfg.NightStart, ShouldEqual, "22:00")
			So(cfg.NightEnd, ShouldEqual, "07:00")
			So(cfg.Weekend, ShouldResemble, []int{6, 7})
			So(cfg.ConversationTimeoutS, ShouldEqual, 3600)
			So(cfg.PhysicalTimeoutS, ShouldEqual, 300)
			So(cfg.ParetoPercentage, ShouldEqual, 0.8)
			So(cfg.ExportDigits, ShouldEqual, 5)
		})
	})
}

func TestLoadEnvOverride(t *testing.T) {
	Convey("Given overriding environment variables", t, func() {
		t.Setenv("BEHAVIO_GROUPBY", "none")
		t.Setenv("BEHAVIO_NIGHT_START", "21:00")
		t.Setenv("BEHAVIO_LOG_LEVEL", "debug")

		cfg, err := config.Load(context.Background())
		So(err, ShouldBeNil)

		Convey("Then the environment wins over defaults", func() {
			So(cfg.GroupBy, ShouldEqual, "none")
			So(cfg.NightStart, ShouldEqual, "21:00")
			So(cfg.LogLevel, ShouldEqual, "debug")
		})
	})
}

func TestLoadFile(t *testing.T) {
	Convey("Given a YAML configuration file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "behavio.yaml")
		yaml := "groupby: none\nsplit_week: true\nconversation_timeout_s: 1800\n"
		So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
		t.Setenv("BEHAVIO_CONFIG", path)

		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)

			Convey("Then the file layers over the defaults", func() {
				So(cfg.GroupBy, ShouldEqual, "none")
				So(cfg.SplitWeek, ShouldBeTrue)
				So(cfg.ConversationTimeoutS, ShouldEqual, 1800)
				So(cfg.NightStart, ShouldEqual, "22:00")
			})
		})

		Convey("When the environment overrides the file", func() {
			t.Setenv("BEHAVIO_GROUPBY", "week")
			cfg, err := config.Load(context.Background())
			So(err, ShouldBeNil)
			So(cfg.GroupBy, ShouldEqual, "week")
		})
	})

	Convey("Given a missing file path", t, func() {
		t.Setenv("BEHAVIO_CONFIG", "/nonexistent/behavio.yaml")
		_, err := config.Load(context.Background())
		So(err, ShouldWrap, config.ErrLoadConfig)
	})
}

func TestValidation(t *testing.T) {
	Convey("Given invalid settings", t, func() {
		Convey("When groupby is unknown", func() {
			t.Setenv("BEHAVIO_GROUPBY", "month")
			_, err := config.Load(context.Background())
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})

		Convey("When the night window is malformed", func() {
			t.Setenv("BEHAVIO_NIGHT_START", "25:00")
			_, err := config.Load(context.Background())
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})

		Convey("When the pareto percentage is out of range", func() {
			t.Setenv("BEHAVIO_PARETO_PERCENTAGE", "1.5")
			_, err := config.Load(context.Background())
			So(err, ShouldWrap, config.ErrInvalidConfig)
		})
	})
}

func TestMappers(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.New()

		Convey("When mapping to indicator tuning", func() {
			ic := cfg.IndicatorConfig()
			So(ic.Timeout, ShouldEqual, time.Hour)
			So(ic.PhysicalTimeout, ShouldEqual, 5*time.Minute)
			So(ic.ParetoPercentage, ShouldEqual, 0.8)
		})

		Convey("When mapping to person options", func() {
			opts, err := cfg.UserOptions()
			So(err, ShouldBeNil)
			So(opts, ShouldHaveLength, 2)
		})
	})
}
