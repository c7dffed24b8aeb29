package ratings

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/carekiosk/kiosk/key"
	"github.com/carekiosk/kiosk/network"
	"github.com/carekiosk/kiosk/progress"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

type request struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

type service struct {
	mu       sync.Mutex
	requests []request
	status   int
	list     string
}

func (s *service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	s.mu.Lock()
	s.requests = append(s.requests, request{r.Method, r.URL.Path, r.Header.Get("Authorization"), body})
	status, list := s.status, s.list
	s.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("nope"))
		return
	}
	if r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(list))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func TestClient(t *testing.T) {
	ctx := context.Background()
	network.Authenticate(func() (string, error) { return "secret", nil })

	Convey("Given a ratings service", t, func() {
		svc := &service{list: `[{"id":3,"video":7,"progress":60,"rating":4},{"id":5,"video":9,"saveForLater":true}]`}
		srv := httptest.NewServer(svc)
		defer srv.Close()

		client := New(srv.URL + "/")

		Convey("List should decode the records and send the bearer token", func() {
			records, err := client.List(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldHaveLength, 2)
			So(*records[0].Rating, ShouldEqual, 4)
			So(records[1].Progress, ShouldBeNil)
			So(*records[1].SaveForLater, ShouldBeTrue)

			So(svc.requests[0].path, ShouldEqual, "/ratings")
			So(svc.requests[0].auth, ShouldEqual, "Bearer secret")
		})

		Convey("Records should convert to progress records", func() {
			records, err := client.Records(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldResemble, []progress.Record{
				{ID: 3, Video: 7, Progress: 60},
				{ID: 5, Video: 9, Progress: 0},
			})
		})

		Convey("Create should post the video and progress", func() {
			So(client.Create(ctx, 7, 42), ShouldBeNil)
			r := svc.requests[0]
			So(r.method, ShouldEqual, http.MethodPost)
			So(r.path, ShouldEqual, "/ratings")
			So(r.body, ShouldResemble, map[string]any{"video": 7.0, "progress": 42.0})
		})

		Convey("Update should patch only the progress field", func() {
			So(client.Update(ctx, 3, 80), ShouldBeNil)
			r := svc.requests[0]
			So(r.method, ShouldEqual, http.MethodPatch)
			So(r.path, ShouldEqual, "/ratings/3")
			So(r.body, ShouldResemble, map[string]any{"progress": 80.0})
		})

		Convey("A rejected token should map to ErrUnauthorized", func() {
			svc.status = http.StatusUnauthorized
			_, err := client.List(ctx)
			So(errors.Is(err, ErrUnauthorized), ShouldBeTrue)
		})

		Convey("Server errors should carry the status", func() {
			svc.status = http.StatusBadGateway
			err := client.Create(ctx, 7, 1)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "502")
		})

		Convey("It should serve as the progress store of a tracker", func() {
			tracker := progress.NewTrackerWithThreshold(progress.DefaultThreshold)
			tracker.SetProgress(75)
			<-tracker.FlushAsync(client, 7)

			last := svc.requests[len(svc.requests)-1]
			So(last.method, ShouldEqual, http.MethodPatch)
			So(last.path, ShouldEqual, "/ratings/3")
			So(last.body, ShouldResemble, map[string]any{"progress": 75.0})
		})
	})

	Convey("Given a ratings service listing an entry without an id", t, func() {
		svc := &service{list: `[{"video":7,"progress":60},{"id":5,"video":9,"progress":10}]`}
		srv := httptest.NewServer(svc)
		defer srv.Close()

		client := New(srv.URL + "/")

		Convey("Records should leave the entry out", func() {
			records, err := client.Records(ctx)
			So(err, ShouldBeNil)
			So(records, ShouldResemble, []progress.Record{{ID: 5, Video: 9, Progress: 10}})
		})

		Convey("A flush for that video should create a new entry instead of patching id zero", func() {
			tracker := progress.NewTrackerWithThreshold(progress.DefaultThreshold)
			tracker.SetProgress(75)
			<-tracker.FlushAsync(client, 7)

			last := svc.requests[len(svc.requests)-1]
			So(last.method, ShouldEqual, http.MethodPost)
			So(last.path, ShouldEqual, "/ratings")
			So(last.body, ShouldResemble, map[string]any{"video": 7.0, "progress": 75.0})
		})
	})

	Convey("FromConfig should honor the enable switch", t, func() {
		viper.Set(key.RatingsEnable, false)
		viper.Set(key.RatingsEndpoint, "https://ratings.example.com")
		_, ok := FromConfig()
		So(ok, ShouldBeFalse)

		viper.Set(key.RatingsEnable, true)
		client, ok := FromConfig()
		So(ok, ShouldBeTrue)
		So(client.endpoint, ShouldEqual, "https://ratings.example.com")
	})
}
