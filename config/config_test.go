package config

import (
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
	"github.com/videowall/videowall/filesystem"
	"github.com/videowall/videowall/key"
	"github.com/videowall/videowall/where"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Given no config file", t, func() {
		So(Setup(), ShouldBeNil)

		Convey("Every registered key has a value", func() {
			for name := range Default {
				So(viper.Get(name), ShouldNotBeNil)
			}
		})

		Convey("The wall thresholds have their documented defaults", func() {
			So(viper.GetInt(key.WallMaxVideosBeforeRecreate), ShouldEqual, 20)
			So(viper.GetInt(key.WallMaxConsecutiveFailures), ShouldEqual, 3)
			So(viper.GetInt(key.WallVideoLoadTimeout), ShouldEqual, 15000)
			So(viper.GetInt(key.WallWatchdogCheckInterval), ShouldEqual, 10000)
			So(viper.GetInt(key.WallStallThreshold), ShouldBeGreaterThan, viper.GetInt(key.WallWatchdogCheckInterval))
		})
	})

	Convey("The config file lives in the config directory", t, func() {
		So(filepath.Dir(Path()), ShouldEqual, where.Config())
		So(filepath.Ext(Path()), ShouldEqual, ".toml")
	})

	Convey("Given a config file", t, func() {
		lo.Must0(filesystem.API().WriteFile(Path(), []byte("[wall]\nmax_consecutive_failures = 5\n"), 0o644))
		defer func() {
			lo.Must0(filesystem.API().Remove(Path()))
			viper.Reset()
			lo.Must0(Setup())
		}()

		So(Setup(), ShouldBeNil)
		So(viper.GetInt(key.WallMaxConsecutiveFailures), ShouldEqual, 5)
		So(viper.GetInt(key.WallHistorySize), ShouldEqual, 50)
	})

	Convey("Environment names carry the application prefix", t, func() {
		So(EnvKeyReplacer.Replace("wall.max_consecutive_failures"), ShouldEqual, "wall_max_consecutive_failures")
		field := Default[key.WallVideoLoadTimeout]
		So(field.Env(), ShouldEqual, "VIDEOWALL_WALL_VIDEO_LOAD_TIMEOUT")
	})
}

func TestField(t *testing.T) {
	Convey("Fields describe themselves", t, func() {
		field := Default[key.WallResume]
		So(field.Section(), ShouldEqual, "wall")
		So(field.Type(), ShouldEqual, "bool")
		videos := Default[key.PlaylistVideos]
		So(videos.Type(), ShouldEqual, "[]string")
		So(field.Pretty(), ShouldContainSubstring, key.WallResume)
		So(field.Pretty(), ShouldContainSubstring, field.Env())
	})
}
