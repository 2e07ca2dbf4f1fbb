package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotPath = r.URL.Path
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewNotifier("TOKEN", "42").WithAPIBase(srv.URL + "/")
	if err := n.PublishDigest(context.Background(), "new archive lines"); err != nil {
		t.Fatalf("PublishDigest returned error: %v", err)
	}
	if gotPath != "/botTOKEN/sendMessage" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotChat != "42" || gotText != "new archive lines" {
		t.Fatalf("unexpected form: chat=%s text=%s", gotChat, gotText)
	}
}

func TestPublishDigestErrors(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "").PublishDigest(context.Background(), "x"); err == nil {
		t.Fatal("expected misconfiguration error")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	n := NewNotifier("T", "1").WithAPIBase(srv.URL)
	if err := n.PublishDigest(context.Background(), "x"); err == nil {
		t.Fatal("expected status error")
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("é", maxMessageLen+10)
	out := truncate(long, maxMessageLen)
	if utf8.RuneCountInString(out) != maxMessageLen {
		t.Fatalf("expected %d runes, got %d", maxMessageLen, utf8.RuneCountInString(out))
	}
	if truncate("short", maxMessageLen) != "short" {
		t.Fatal("short text must pass through")
	}
}
