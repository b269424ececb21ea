package gist

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	ledger "github.com/belisario-afk/cakepop-ledger"
)

// fakeGitHub serves the gist endpoints from memory.
type fakeGitHub struct {
	mu      sync.Mutex
	gists   map[string]string // id -> ledger file content
	calls   []string
	lastReq *http.Request
	fail    int // status to answer with, 0 for success
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, r.Method+" "+r.URL.Path)
	f.lastReq = r
	if f.fail != 0 {
		http.Error(w, `{"message":"Bad credentials"}`, f.fail)
		return
	}
	if f.gists == nil {
		f.gists = make(map[string]string)
	}

	var body struct {
		Public bool `json:"public"`
		Files  map[string]struct {
			Content string `json:"content"`
		} `json:"files"`
	}
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/gists":
		id := "g1"
		f.gists[id] = body.Files[Filename].Content
		json.NewEncoder(w).Encode(map[string]any{"id": id, "public": body.Public})
	case r.Method == http.MethodPatch && strings.HasPrefix(r.URL.Path, "/gists/"):
		id := strings.TrimPrefix(r.URL.Path, "/gists/")
		f.gists[id] = body.Files[Filename].Content
		json.NewEncoder(w).Encode(map[string]any{"id": id})
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/gists/"):
		id := strings.TrimPrefix(r.URL.Path, "/gists/")
		content, ok := f.gists[id]
		if !ok {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		files := map[string]any{}
		if content != "" {
			files[Filename] = map[string]any{"filename": Filename, "content": content}
		}
		json.NewEncoder(w).Encode(map[string]any{"id": id, "files": files})
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeGitHub) header(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastReq.Header.Get(key)
}

func (f *fakeGitHub) content(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gists[id]
}

func newTestSyncer(t *testing.T, gh *fakeGitHub) (*Syncer, *ledger.MemoryKV, *ledger.Store) {
	t.Helper()
	srv := httptest.NewServer(gh)
	t.Cleanup(srv.Close)

	kv := &ledger.MemoryKV{}
	store := ledger.NewStore(kv, nil)
	store.Logger = log.New(io.Discard, "", 0)
	s := NewSyncer(&Client{HTTP: srv.Client(), BaseURL: srv.URL}, kv, store)
	s.Logger = log.New(io.Discard, "", 0)
	s.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return s, kv, store
}

func TestBackup_CreateThenUpdate(t *testing.T) {
	gh := &fakeGitHub{}
	s, kv, store := newTestSyncer(t, gh)
	if err := SaveConfig(kv, Config{Token: "tok"}); err != nil {
		t.Fatal(err)
	}

	res, err := s.Backup(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !res.Created || res.GistID != "g1" {
		t.Errorf("first Backup() = %+v, want a created gist g1", res)
	}
	if got := gh.header("Authorization"); got != "token tok" {
		t.Errorf("Authorization = %q", got)
	}
	if got := gh.header("Accept"); got != "application/vnd.github+json" {
		t.Errorf("Accept = %q", got)
	}
	cfg := LoadConfig(kv)
	if cfg.GistID != "g1" || cfg.LastBackup != 1700000000000 {
		t.Errorf("config after backup = %+v", cfg)
	}

	if err := store.AddExpense(ledger.Expense{ID: "e1", Category: "rent", Amount: ledger.M(10)}); err != nil {
		t.Fatal(err)
	}
	res, err = s.Backup(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Created {
		t.Errorf("second Backup() created a new gist")
	}
	if !strings.Contains(gh.content("g1"), `"e1"`) {
		t.Errorf("gist content not updated: %s", gh.content("g1"))
	}
	want := []string{"POST /gists", "PATCH /gists/g1"}
	if strings.Join(gh.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", gh.calls, want)
	}
}

func TestBackup_NoToken(t *testing.T) {
	s, _, _ := newTestSyncer(t, &fakeGitHub{})
	if _, err := s.Backup(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Errorf("Backup() error = %v, want ErrNoToken", err)
	}
}

func TestBackup_APIError(t *testing.T) {
	s, kv, _ := newTestSyncer(t, &fakeGitHub{fail: http.StatusUnauthorized})
	if err := SaveConfig(kv, Config{Token: "bad", GistID: "g1"}); err != nil {
		t.Fatal(err)
	}
	_, err := s.Backup(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("Backup() error = %v, want a 401 APIError", err)
	}
	if !strings.HasPrefix(err.Error(), "GitHub API error 401: ") {
		t.Errorf("error message = %q", err.Error())
	}
	if LoadConfig(kv).LastBackup != 0 {
		t.Error("failed backup was stamped")
	}
}

func TestRestore(t *testing.T) {
	gh := &fakeGitHub{}
	src, kv, srcStore := newTestSyncer(t, gh)
	if err := SaveConfig(kv, Config{Token: "tok"}); err != nil {
		t.Fatal(err)
	}
	if err := srcStore.AddSale(ledger.Sale{ID: "s1", ProductID: "p-sample1", Quantity: ledger.Q(3), UnitPrice: ledger.M(2.5)}); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Backup(context.Background()); err != nil {
		t.Fatal(err)
	}

	// Another device, same gist.
	dst, dstKV, dstStore := newTestSyncer(t, gh)
	if err := SaveConfig(dstKV, Config{Token: "tok", GistID: "g1"}); err != nil {
		t.Fatal(err)
	}
	if err := dst.Restore(context.Background()); err != nil {
		t.Fatal(err)
	}
	d, err := dstStore.Document()
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Sales) != 1 || d.Sales[0].ID != "s1" {
		t.Errorf("restored sales = %+v, want s1", d.Sales)
	}
}

func TestRestore_Errors(t *testing.T) {
	gh := &fakeGitHub{gists: map[string]string{"empty": ""}}
	s, kv, _ := newTestSyncer(t, gh)

	if err := s.Restore(context.Background()); !errors.Is(err, ErrNoGist) {
		t.Errorf("Restore() without config error = %v, want ErrNoGist", err)
	}

	if err := SaveConfig(kv, Config{Token: "tok", GistID: "empty"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Restore(context.Background()); !errors.Is(err, ErrFileMissing) {
		t.Errorf("Restore() error = %v, want ErrFileMissing", err)
	}
}

func TestLoadConfig_Unreadable(t *testing.T) {
	kv := &ledger.MemoryKV{}
	if err := kv.Set(ConfigKey, []byte("{")); err != nil {
		t.Fatal(err)
	}
	if cfg := LoadConfig(kv); cfg != (Config{}) {
		t.Errorf("LoadConfig() = %+v, want empty", cfg)
	}
}

func TestAuto(t *testing.T) {
	gh := &fakeGitHub{}
	s, kv, _ := newTestSyncer(t, gh)
	s.unit = time.Millisecond

	// Disabled: returns at once.
	if err := s.Auto(context.Background()); err != nil {
		t.Errorf("Auto() disabled error = %v", err)
	}

	if err := SaveConfig(kv, Config{Token: "tok", Interval: 5}); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if err := s.Auto(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Auto() error = %v, want deadline exceeded", err)
	}
	gh.mu.Lock()
	defer gh.mu.Unlock()
	if len(gh.calls) < 2 || gh.calls[0] != "POST /gists" || gh.calls[1] != "PATCH /gists/g1" {
		t.Errorf("calls = %v, want a create then updates", gh.calls)
	}
}
