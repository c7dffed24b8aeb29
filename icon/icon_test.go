package icon

import (
	"testing"

	"github.com/carekiosk/kiosk/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func TestGet(t *testing.T) {
	Convey("Given a registered icon", t, func() {
		target := Captions

		Convey("It renders correctly for each variant", func() {
			for _, variant := range AvailableVariants() {
				Convey("variant="+variant, func() {
					viper.Set(key.IconsVariant, variant)
					result := Get(target)
					So(result, ShouldNotBeEmpty)
				})
			}
		})

		Convey("It falls back to plain for an unknown variant", func() {
			viper.Set(key.IconsVariant, "")
			result := Get(target)
			So(result, ShouldEqual, icons[target].plain)
		})

		Convey("An unregistered icon renders as nothing", func() {
			viper.Set(key.IconsVariant, plain)
			So(Get(Icon(-1)), ShouldBeEmpty)
		})
	})
}

func TestRegistry(t *testing.T) {
	Convey("Every player icon has a plain rendering", t, func() {
		viper.Set(key.IconsVariant, plain)
		for _, i := range []Icon{Play, Pause, Replay, Captions, Fullscreen, Progress, Success, Fail, Watched, Link} {
			So(Get(i), ShouldNotBeEmpty)
		}
	})
}
