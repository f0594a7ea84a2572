package richdex

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/richdex/internal/db"
)

// fakeStore is an in-memory db.Store so SDK tests exercise the real
// wiring without a live substrate.
type fakeStore struct {
	mu       sync.Mutex
	kv       map[string]string
	sets     map[string]map[string]bool
	zsets    map[string]map[string]float64
	counters map[string]int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		kv:       make(map[string]string),
		sets:     make(map[string]map[string]bool),
		zsets:    make(map[string]map[string]float64),
		counters: make(map[string]int64),
	}
}

func (f *fakeStore) Ping(context.Context) error { return nil }

func (f *fakeStore) WaitForReady(context.Context, time.Duration) error { return nil }

func (f *fakeStore) Close() {}

func (f *fakeStore) MSet(_ context.Context, pairs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := 0; i+1 < len(pairs); i += 2 {
		f.kv[pairs[i]] = pairs[i+1]
	}
	return nil
}

func (f *fakeStore) MGet(_ context.Context, keys []string) ([]*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*string, len(keys))
	for i, k := range keys {
		if v, ok := f.kv[k]; ok {
			s := v
			out[i] = &s
		}
	}
	return out, nil
}

func (f *fakeStore) Del(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.kv, k)
	}
	return nil
}

func (f *fakeStore) IncrBy(_ context.Context, key string, n int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[key] += n
	return f.counters[key], nil
}

func (f *fakeStore) SAdd(_ context.Context, key string, members []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sets[key] == nil {
		f.sets[key] = make(map[string]bool)
	}
	for _, m := range members {
		f.sets[key][m] = true
	}
	return nil
}

func (f *fakeStore) SRem(_ context.Context, key string, members []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range members {
		delete(f.sets[key], m)
	}
	return nil
}

func (f *fakeStore) SMembers(_ context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeStore) ZAdd(_ context.Context, key string, entries []db.ScoreMember) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.zsets[key] == nil {
		f.zsets[key] = make(map[string]float64)
	}
	for _, e := range entries {
		f.zsets[key][e.Member] = e.Score
	}
	return nil
}

func (f *fakeStore) ZRem(_ context.Context, key string, members []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range members {
		delete(f.zsets[key], m)
	}
	return nil
}

func (f *fakeStore) ZRangeByScore(_ context.Context, key string, min, max float64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, m := range f.sorted(key) {
		if score := f.zsets[key][m]; score >= min && score <= max {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) ZRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := f.sorted(key)
	if len(all) == 0 {
		return nil, nil
	}
	end := stop
	if end < 0 {
		end = int64(len(all)) + end
	}
	if start < 0 || start > end || start >= int64(len(all)) {
		return nil, nil
	}
	if end >= int64(len(all)) {
		end = int64(len(all)) - 1
	}
	return all[start : end+1], nil
}

func (f *fakeStore) sorted(key string) []string {
	out := make([]string, 0, len(f.zsets[key]))
	for m := range f.zsets[key] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := f.zsets[key][out[i]], f.zsets[key][out[j]]
		if si != sj {
			return si < sj
		}
		ni, erri := strconv.ParseFloat(out[i], 64)
		nj, errj := strconv.ParseFloat(out[j], 64)
		if erri == nil && errj == nil {
			return ni < nj
		}
		return out[i] < out[j]
	})
	return out
}

// newTestClient wires a Client over the fake substrate.
func newTestClient(t *testing.T, collections ...Option) *Client {
	t.Helper()

	cfg := &clientConfig{}
	for _, o := range collections {
		o.apply(cfg)
	}
	client, err := wireClient(newFakeStore(), cfg)
	if err != nil {
		t.Fatalf("wire client: %v", err)
	}
	return client
}
