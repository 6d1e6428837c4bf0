package external

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"solarviz.app/internal/core/series"
	"solarviz.app/internal/ports"
)

type logEntry struct {
	level   string
	message string
	fields  map[string]interface{}
}

// testLogger captures log entries; sources log from goroutines so it locks
type testLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *testLogger) Debug(msg string, fields ...ports.Field) {
	l.addEntry("DEBUG", msg, fields...)
}

func (l *testLogger) Info(msg string, fields ...ports.Field) {
	l.addEntry("INFO", msg, fields...)
}

func (l *testLogger) Warn(msg string, fields ...ports.Field) {
	l.addEntry("WARN", msg, fields...)
}

func (l *testLogger) Error(msg string, fields ...ports.Field) {
	l.addEntry("ERROR", msg, fields...)
}

func (l *testLogger) addEntry(level, message string, fields ...ports.Field) {
	fieldMap := make(map[string]interface{})
	for _, field := range fields {
		fieldMap[field.Key] = field.Value
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{
		level:   level,
		message: message,
		fields:  fieldMap,
	})
}

func (l *testLogger) snapshot() []logEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]logEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *testLogger) find(message string) (logEntry, bool) {
	for _, entry := range l.snapshot() {
		if entry.message == message {
			return entry, true
		}
	}
	return logEntry{}, false
}

// recordingServer is an httptest backend that counts requests per path
type recordingServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []*http.Request
}

func newRecordingServer(t *testing.T, handler http.HandlerFunc) *recordingServer {
	t.Helper()
	rs := &recordingServer{}
	rs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		rs.requests = append(rs.requests, r.Clone(context.Background()))
		rs.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(rs.Close)
	return rs
}

func (rs *recordingServer) requestCount() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return len(rs.requests)
}

func (rs *recordingServer) snapshotRequests() []*http.Request {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	out := make([]*http.Request, len(rs.requests))
	copy(out, rs.requests)
	return out
}

func (rs *recordingServer) paths() []string {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	paths := make([]string, 0, len(rs.requests))
	for _, r := range rs.requests {
		paths = append(paths, r.URL.Path)
	}
	return paths
}

func newTestClient(name string, logger ports.Logger) *BackendClient {
	return NewBackendClient(BackendClientParams{
		Name:           name,
		Timeout:        5 * time.Second,
		MaxFailures:    3,
		BreakerTimeout: time.Minute,
		Logger:         logger,
	})
}

// stubSource is a hand-rolled DataSource that counts calls and can block
// until released
type stubSource struct {
	calls   atomic.Int32
	changes atomic.Int32
	release chan struct{}

	mu    sync.Mutex
	fail  map[string]error
	keys  []string
	delay time.Duration
}

func newStubSource() *stubSource {
	return &stubSource{fail: make(map[string]error)}
}

func (s *stubSource) OnTimeChanged(ctx context.Context, instant series.PlaybackInstant) {
	s.changes.Add(1)
}

func (s *stubSource) Get(ctx context.Context, timestamp time.Time) (*series.Shape, error) {
	s.calls.Add(1)
	key := series.CanonicalKey(timestamp)

	s.mu.Lock()
	s.keys = append(s.keys, key)
	err := s.fail[key]
	release := s.release
	delay := s.delay
	s.mu.Unlock()

	if release != nil {
		<-release
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	return series.NewShape(timestamp, "stub", "https://stub/"+key), nil
}

func (s *stubSource) setFailure(ts time.Time, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, series.CanonicalKey(ts))
		return
	}
	s.fail[series.CanonicalKey(ts)] = err
}

func (s *stubSource) requestedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}
