package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		if err != nil {
			t.Fatalf("ParseKind(%q) failed: %v", k, err)
		}
		if got != k {
			t.Fatalf("ParseKind(%q) = %q", k, got)
		}
	}

	if _, err := ParseKind("lunch_reminder"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestMultiJoinsErrors(t *testing.T) {
	var calls int
	ok := DispatcherFunc(func(context.Context, Notification) error {
		calls++
		return nil
	})
	boom := errors.New("boom")
	failing := DispatcherFunc(func(context.Context, Notification) error {
		calls++
		return boom
	})

	m := Multi{failing, nil, ok}
	err := m.Send(context.Background(), Notification{Kind: KindWater})
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error to wrap boom, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected both dispatchers to be called, got %d calls", calls)
	}

	if err := (Multi{ok}).Send(context.Background(), Notification{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEndpointSenderPostsPayload(t *testing.T) {
	var got endpointRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"success":true,"data":{"id":"abc"}}`))
	}))
	defer srv.Close()

	s := NewEndpointSender(srv.URL, time.Second)
	err := s.Send(context.Background(), Notification{
		Kind:      KindMorning,
		Recipient: Recipient{Email: "ann@example.com", Name: "Ann"},
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if got.Type != KindMorning || got.Email != "ann@example.com" || got.Name != "Ann" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestEndpointSenderFailures(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"Failed to send email"}`, "Failed to send email"},
		{"not successful", http.StatusOK, `{"success":false}`, "status 200"},
		{"garbage", http.StatusBadGateway, `<html>`, "failed to parse"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				w.Write([]byte(c.body))
			}))
			defer srv.Close()

			err := NewEndpointSender(srv.URL, time.Second).Send(context.Background(), Notification{Kind: KindWater})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), c.want) {
				t.Fatalf("expected error containing %q, got %v", c.want, err)
			}
		})
	}
}
