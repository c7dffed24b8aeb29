//go:build !windows

package player

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

// silentMPV writes an executable that starts but never opens its IPC socket.
func silentMPV(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "mpv")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexec sleep 30\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMPVClose(t *testing.T) {
	Convey("Given an mpv backend whose process never opens its socket", t, func() {
		m := NewMPV(silentMPV(t), 100*time.Millisecond)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		loaded := make(chan error, 1)
		go func() { loaded <- m.Load(ctx, "https://cdn.example.com/a/master.m3u8", "Clip") }()

		Convey("Close during Load should abort the spawn and reap the process", func() {
			time.Sleep(150 * time.Millisecond)
			closed := make(chan error, 1)
			go func() { closed <- m.Close() }()

			select {
			case err := <-loaded:
				So(errors.Is(err, ErrClosed), ShouldBeTrue)
			case <-time.After(2 * time.Second):
				So("Load kept waiting for the socket after Close", ShouldBeEmpty)
			}

			select {
			case err := <-closed:
				So(err, ShouldBeNil)
			case <-time.After(5 * time.Second):
				So("Close did not return", ShouldBeEmpty)
			}

			select {
			case <-m.Wait():
			case <-time.After(2 * time.Second):
				So("mpv process was left running", ShouldBeEmpty)
			}

			So(m.IsRunning(ctx), ShouldBeFalse)
			So(m.Play(ctx), ShouldEqual, ErrClosed)
		})
	})

	Convey("Closing an mpv backend that never loaded should be a no-op", t, func() {
		m := NewMPV("", time.Second)
		So(m.Close(), ShouldBeNil)
		So(m.Close(), ShouldBeNil)
		So(m.Load(context.Background(), "clip.mp4", "Clip"), ShouldEqual, ErrClosed)
	})
}
