package notifier

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"SignalDesk/internal/model"
)

func TestSendText(t *testing.T) {
	var got struct {
		path, ctype, chatID, text, mode string
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.path = r.URL.Path
		got.ctype = r.Header.Get("Content-Type")
		r.ParseForm()
		got.chatID = r.PostForm.Get("chat_id")
		got.text = r.PostForm.Get("text")
		got.mode = r.PostForm.Get("parse_mode")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	n := NewTelegramNotifier(srv.URL, "TOKEN", "42", "")
	if err := n.SendText(context.Background(), "*hi*"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.path != "/botTOKEN/sendMessage" {
		t.Errorf("path: %s", got.path)
	}
	if !strings.HasPrefix(got.ctype, "application/x-www-form-urlencoded") {
		t.Errorf("content type: %s", got.ctype)
	}
	if got.chatID != "42" || got.text != "*hi*" || got.mode != "Markdown" {
		t.Errorf("form: %+v", got)
	}
}

func TestSendFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	os.WriteFile(path, []byte("Date,Close\n2024-01-01,1\n"), 0o644)

	var chatID, filename, content string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendDocument" {
			t.Errorf("path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("multipart: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		chatID = r.FormValue("chat_id")
		f, hdr, err := r.FormFile("document")
		if err != nil {
			t.Errorf("document part: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer f.Close()
		filename = hdr.Filename
		b, _ := io.ReadAll(f)
		content = string(b)
	}))
	defer srv.Close()

	n := NewTelegramNotifier(srv.URL, "TOKEN", "42", "")
	if err := n.SendFile(context.Background(), path); err != nil {
		t.Fatalf("send: %v", err)
	}
	if chatID != "42" || filename != "data.csv" || !strings.Contains(content, "2024-01-01") {
		t.Errorf("got chat=%q file=%q content=%q", chatID, filename, content)
	}

	if err := n.SendFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSend_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"bad request", http.StatusBadRequest},
		{"unauthorized", http.StatusUnauthorized},
		{"server error", http.StatusInternalServerError},
		{"created is not ok", http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()
			n := NewTelegramNotifier(srv.URL, "T", "1", "")
			if err := n.SendText(context.Background(), "x"); err == nil {
				t.Error("expected error")
			}
		})
	}

	// closed server: transport error
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	n := NewTelegramNotifier(srv.URL, "T", "1", "")
	n.Client.Timeout = time.Second
	if err := n.SendText(context.Background(), "x"); err == nil {
		t.Error("expected transport error")
	}

	empty := NewTelegramNotifier(srv.URL, "", "", "")
	if err := empty.SendText(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestFormatSignalAlert(t *testing.T) {
	price := 61.456
	tests := []struct {
		name   string
		symbol string
		signal model.Signal
		price  *float64
		want   string
	}{
		{"buy with price", "TATAGOLD.NS", model.SignalBuy, &price, "*TATAGOLD.NS* - Signal: *📈 BUY*\n💰 Live Price: ₹61.46"},
		{"sell without price", "TATAGOLD.NS", model.SignalSell, nil, "*TATAGOLD.NS* - Signal: *📉 SELL*"},
		{"markdown in symbol", "BRK_B*[`", model.SignalBuy, nil, "*BRK\\_B\\*\\[\\`* - Signal: *📈 BUY*"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSignalAlert(tt.symbol, tt.signal, tt.price); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatRunSummary(t *testing.T) {
	res := &model.RunResult{
		Symbol:   "X",
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		Predict:  &model.Prediction{Signal: model.SignalBuy, Class: 1, Probability: 0.734, TrainRows: 20},
		Warnings: []string{"Could not fetch live price: boom"},
	}
	got := FormatRunSummary(res)
	for _, want := range []string{"*X* - Signal: *📈 BUY*", "P(up): 73.4%", "Trained on 20 rows", "boom"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Live Price") {
		t.Error("absent live price must be omitted")
	}
}
