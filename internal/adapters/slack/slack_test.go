package slack_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/triage/internal/adapters/slack"
	"github.com/okian/triage/internal/domain/escalation"
	. "github.com/smartystreets/goconvey/convey"
)

var (
	_ escalation.Notifier = (*slack.Webhook)(nil)
	_ escalation.Notifier = (*slack.LogOnly)(nil)
)

func TestWebhookPost(t *testing.T) {
	ctx := context.Background()

	Convey("Given a webhook that accepts messages", t, func() {
		var got map[string]any
		var contentType, custom string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			contentType = r.Header.Get("Content-Type")
			custom = r.Header.Get("X-Env")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		}))
		defer srv.Close()

		hook := slack.New(srv.URL, slack.WithHeaders(map[string]string{"X-Env": "test"}))

		Convey("When posting", func() {
			ok := hook.Post(ctx, ":bell: hello")

			Convey("Then it succeeds with a text payload", func() {
				So(ok, ShouldBeTrue)
				So(got["text"], ShouldEqual, ":bell: hello")
				So(contentType, ShouldEqual, "application/json")
				So(custom, ShouldEqual, "test")
			})
		})
	})

	Convey("Given a webhook that rejects messages", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("no_service"))
		}))
		defer srv.Close()

		So(slack.New(srv.URL).Post(ctx, "x"), ShouldBeFalse)
	})

	Convey("Given a webhook answering 204 No Content", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		So(slack.New(srv.URL).Post(ctx, "x"), ShouldBeTrue)
	})

	Convey("Given a rate-limited webhook", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		So(slack.New(srv.URL).Post(ctx, "x"), ShouldBeFalse)
	})

	Convey("Given an unreachable webhook", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		url := srv.URL
		srv.Close()

		So(slack.New(url).Post(ctx, "x"), ShouldBeFalse)
	})

	Convey("Given a webhook slower than the timeout", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer srv.Close()

		hook := slack.New(srv.URL, slack.WithTimeout(20*time.Millisecond))
		So(hook.Timeout(), ShouldEqual, 20*time.Millisecond)
		So(hook.Post(ctx, "x"), ShouldBeFalse)
	})

	Convey("Given a zero timeout", t, func() {
		So(slack.New("http://127.0.0.1", slack.WithTimeout(0)).Timeout(), ShouldEqual, time.Duration(0))
	})

	Convey("Given a log-only notifier", t, func() {
		So(slack.NewLogOnly(nil).Post(ctx, "x"), ShouldBeTrue)
	})
}
