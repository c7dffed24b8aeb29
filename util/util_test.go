package util

import (
	"testing"
	"time"

	"github.com/carekiosk/kiosk/filesystem"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "video", "videos"), ShouldEqual, "1 video")
		So(Quantify(2, "video", "videos"), ShouldEqual, "2 videos")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestClamp(t *testing.T) {
	Convey("Clamp", t, func() {
		So(Clamp(5, 0, 10), ShouldEqual, 5)
		So(Clamp(-1, 0, 10), ShouldEqual, 0)
		So(Clamp(11, 0, 10), ShouldEqual, 10)
		So(Clamp(3*time.Second, 0, 2*time.Second), ShouldEqual, 2*time.Second)
	})
}

func TestFormatClock(t *testing.T) {
	Convey("FormatClock", t, func() {
		So(FormatClock(0), ShouldEqual, "0:00")
		So(FormatClock(65*time.Second), ShouldEqual, "1:05")
		So(FormatClock(59*time.Minute+59*time.Second+900*time.Millisecond), ShouldEqual, "59:59")
		So(FormatClock(time.Hour+2*time.Minute+3*time.Second), ShouldEqual, "1:02:03")
		So(FormatClock(-time.Second), ShouldEqual, "0:00")
	})
}

func TestDelete(t *testing.T) {
	Convey("Given a directory with a file", t, func() {
		fs := filesystem.API()
		So(fs.MkdirAll("/tmp/kiosk-delete/sub", 0o755), ShouldBeNil)
		So(afero.WriteFile(fs, "/tmp/kiosk-delete/sub/a.txt", []byte("a"), 0o644), ShouldBeNil)

		Convey("Delete should remove a single file", func() {
			So(Delete("/tmp/kiosk-delete/sub/a.txt"), ShouldBeNil)
			exists, _ := afero.Exists(fs, "/tmp/kiosk-delete/sub/a.txt")
			So(exists, ShouldBeFalse)
		})

		Convey("Delete should remove the whole tree", func() {
			So(Delete("/tmp/kiosk-delete"), ShouldBeNil)
			exists, _ := afero.DirExists(fs, "/tmp/kiosk-delete")
			So(exists, ShouldBeFalse)
		})

		Convey("Delete should fail for missing paths", func() {
			So(Delete("/tmp/kiosk-missing"), ShouldNotBeNil)
		})
	})
}
