package notify

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestPostCronNotification(t *testing.T) {
	log := zap.NewNop().Sugar()

	t.Run("posts message with auth token", func(t *testing.T) {
		var gotToken, gotMessage string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotToken = r.Header.Get("X-Auth-Token")
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decode body: %v", err)
			}
			gotMessage = body["message"]
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		m := NewMonitor(srv.URL, "secret", log)
		if !m.PostCronNotification("job done 3 scripts ban notification sent") {
			t.Fatal("PostCronNotification reported failure")
		}
		if gotToken != "secret" {
			t.Fatalf("auth token = %q", gotToken)
		}
		if gotMessage != "job done 3 scripts ban notification sent" {
			t.Fatalf("message = %q", gotMessage)
		}
	})

	t.Run("unconfigured monitor is a no-op", func(t *testing.T) {
		if NewMonitor("", "secret", log).PostCronNotification("x") {
			t.Fatal("missing url must report failure")
		}
		if NewMonitor("http://localhost:1", "", log).PostCronNotification("x") {
			t.Fatal("missing token must report failure")
		}
	})

	t.Run("non-200 reports failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusUnauthorized)
		}))
		defer srv.Close()

		if NewMonitor(srv.URL, "secret", log).PostCronNotification("x") {
			t.Fatal("rejected post must report failure")
		}
	})
}
