package email

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

type resendCapture struct {
	mu       sync.Mutex
	requests []map[string]any
	batches  [][]map[string]any
}

func newResendServer(t *testing.T, status int) (*ResendSender, *resendCapture) {
	t.Helper()
	c := &resendCapture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprint(w, `{"statusCode":422,"name":"validation_error","message":"bad from"}`)
			return
		}
		switch r.URL.Path {
		case "/emails":
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			c.requests = append(c.requests, body)
			fmt.Fprintf(w, `{"id":"msg-%d"}`, len(c.requests))
		case "/emails/batch":
			var body []map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			c.batches = append(c.batches, body)
			w.Write([]byte(`{"data":[`))
			for i := range body {
				if i > 0 {
					w.Write([]byte(","))
				}
				fmt.Fprintf(w, `{"id":"b%d-%d"}`, len(c.batches), i)
			}
			w.Write([]byte(`]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	s := NewResendSender("re_test", "Clubs <clubs@example.edu>")
	base, _ := url.Parse(srv.URL + "/")
	s.client.BaseURL = base
	return s, c
}

func TestResendSender_Send(t *testing.T) {
	s, c := newResendServer(t, http.StatusOK)

	res, err := s.Send(context.Background(), SendRequest{
		To:      []string{"ana@example.com"},
		Subject: "Tournament on Saturday",
		HTML:    "<p>See you there</p>",
		ReplyTo: "owner@example.com",
		Tags:    map[string]string{"club": "c1", "announcement": "n1"},
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if res.MessageID != "msg-1" {
		t.Errorf("MessageID = %q", res.MessageID)
	}
	if len(c.requests) != 1 {
		t.Fatalf("requests = %d", len(c.requests))
	}
	body := c.requests[0]
	if body["from"] != "Clubs <clubs@example.edu>" {
		t.Errorf("from = %v, want sender default", body["from"])
	}
	tags, _ := body["tags"].([]any)
	if len(tags) != 2 {
		t.Fatalf("tags = %v", body["tags"])
	}
	if first, _ := tags[0].(map[string]any); first["name"] != "announcement" {
		t.Errorf("tags not sorted by name: %v", tags)
	}
}

func TestResendSender_SendError(t *testing.T) {
	s, _ := newResendServer(t, http.StatusUnprocessableEntity)
	if _, err := s.Send(context.Background(), SendRequest{To: []string{"a@example.com"}, Subject: "x"}); err == nil {
		t.Error("expected error from provider")
	}
}

func TestResendSender_SendBatchChunks(t *testing.T) {
	s, c := newResendServer(t, http.StatusOK)

	reqs := make([]SendRequest, 150)
	for i := range reqs {
		reqs[i] = SendRequest{To: []string{fmt.Sprintf("m%d@example.com", i)}, Subject: "News", HTML: "<p>hi</p>"}
	}
	results, err := s.SendBatch(context.Background(), reqs)
	if err != nil {
		t.Fatalf("SendBatch: %v", err)
	}
	if len(results) != 150 {
		t.Errorf("results = %d, want 150", len(results))
	}
	if len(c.batches) != 2 || len(c.batches[0]) != 100 || len(c.batches[1]) != 50 {
		t.Errorf("batch sizes wrong: %d batches", len(c.batches))
	}
}

func TestNoopSender(t *testing.T) {
	s := NewNoopSender()
	var sender Sender = s
	res, err := sender.SendBatch(context.Background(), []SendRequest{{To: []string{"a@example.com"}}, {To: []string{"b@example.com"}}})
	if err != nil || len(res) != 2 || res[0].MessageID == res[1].MessageID {
		t.Errorf("SendBatch = %+v, %v", res, err)
	}
	if _, err := sender.Send(context.Background(), SendRequest{To: []string{"c@example.com"}}); err != nil {
		t.Errorf("Send: %v", err)
	}
	if s.Sent() != 3 {
		t.Errorf("Sent = %d, want 3", s.Sent())
	}
}

func TestResendSender_EmptyBatch(t *testing.T) {
	s, c := newResendServer(t, http.StatusOK)
	res, err := s.SendBatch(context.Background(), nil)
	if err != nil || len(res) != 0 || len(c.batches) != 0 {
		t.Errorf("SendBatch(nil) = %v, %v with %d calls", res, err, len(c.batches))
	}
}
