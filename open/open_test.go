package open

import (
	"testing"

	"github.com/carekiosk/kiosk/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestPageURL(t *testing.T) {
	Convey("PageURL should point a browser at the backend", t, func() {
		So(PageURL("127.0.0.1:8765"), ShouldEqual, "http://127.0.0.1:8765/")
		So(PageURL(":8765"), ShouldEqual, "http://127.0.0.1:8765/")
		So(PageURL("0.0.0.0:9000"), ShouldEqual, "http://127.0.0.1:9000/")
		So(PageURL("kiosk.local:80"), ShouldEqual, "http://kiosk.local:80/")
	})
}

func TestCommand(t *testing.T) {
	Convey("Given the kiosk page URL", t, func() {
		url := "http://127.0.0.1:8765/?a=1&b=2"

		Convey("Linux uses xdg-open, or the app itself", func() {
			cmd, ok := command(constant.Linux, url)
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"xdg-open", url})

			cmd, ok = commandWith(constant.Linux, url, "chromium")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"chromium", url})
		})

		Convey("Windows escapes ampersands for start", func() {
			cmd, ok := commandWith(constant.Windows, url, "msedge")
			So(ok, ShouldBeTrue)
			So(cmd.Args[len(cmd.Args)-1], ShouldEqual, "http://127.0.0.1:8765/?a=1^&b=2")
		})

		Convey("Unknown platforms are refused", func() {
			_, ok := command("plan9", url)
			So(ok, ShouldBeFalse)
		})
	})
}
