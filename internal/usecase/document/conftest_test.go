package document

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/kailas-cloud/richdex/internal/chunk"
	"github.com/kailas-cloud/richdex/internal/db"
	"github.com/kailas-cloud/richdex/internal/domain/collection"
	counterrepo "github.com/kailas-cloud/richdex/internal/repository/counter"
	filterrepo "github.com/kailas-cloud/richdex/internal/repository/filterview"
	indexrepo "github.com/kailas-cloud/richdex/internal/repository/index"
	recordrepo "github.com/kailas-cloud/richdex/internal/repository/record"
)

// fakeDB is an in-memory substrate covering every structure the
// repositories use, so service tests run against the real repository
// stack. Command counters let tests assert batching behavior.
type fakeDB struct {
	mu       sync.Mutex
	kv       map[string]string
	sets     map[string]map[string]bool
	zsets    map[string]map[string]float64
	counters map[string]int64

	msetCalls int
	mgetCalls int
	delCalls  int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		kv:       make(map[string]string),
		sets:     make(map[string]map[string]bool),
		zsets:    make(map[string]map[string]float64),
		counters: make(map[string]int64),
	}
}

func (f *fakeDB) MSet(_ context.Context, pairs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msetCalls++
	for i := 0; i+1 < len(pairs); i += 2 {
		f.kv[pairs[i]] = pairs[i+1]
	}
	return nil
}

func (f *fakeDB) MGet(_ context.Context, keys []string) ([]*string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mgetCalls++
	out := make([]*string, len(keys))
	for i, k := range keys {
		if v, ok := f.kv[k]; ok {
			s := v
			out[i] = &s
		}
	}
	return out, nil
}

func (f *fakeDB) Del(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delCalls++
	for _, k := range keys {
		delete(f.kv, k)
	}
	return nil
}

func (f *fakeDB) IncrBy(_ context.Context, key string, n int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters[key] += n
	return f.counters[key], nil
}

func (f *fakeDB) SAdd(_ context.Context, key string, members []string) error {
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

func (f *fakeDB) SRem(_ context.Context, key string, members []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range members {
		delete(f.sets[key], m)
	}
	return nil
}

func (f *fakeDB) SMembers(_ context.Context, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeDB) ZAdd(_ context.Context, key string, entries []db.ScoreMember) error {
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

func (f *fakeDB) ZRem(_ context.Context, key string, members []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range members {
		delete(f.zsets[key], m)
	}
	return nil
}

func (f *fakeDB) ZRangeByScore(_ context.Context, key string, min, max float64) ([]string, error) {
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

func (f *fakeDB) ZRange(_ context.Context, key string, start, stop int64) ([]string, error) {
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

// sorted returns members ascending by score, ties broken by the member
// string to keep tests deterministic. Callers hold the lock.
func (f *fakeDB) sorted(key string) []string {
	out := make([]string, 0, len(f.zsets[key]))
	for m := range f.zsets[key] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := f.zsets[key][out[i]], f.zsets[key][out[j]]
		if si != sj {
			return si < sj
		}
		// Numeric members (auto ids) compare by value when possible.
		ni, erri := strconv.ParseFloat(out[i], 64)
		nj, errj := strconv.ParseFloat(out[j], 64)
		if erri == nil && errj == nil {
			return ni < nj
		}
		return out[i] < out[j]
	})
	return out
}

// newTestService wires a Service over the real repository stack and the
// in-memory substrate.
func newTestService(t testing.TB, decl collection.Declaration, chunkSize int) (*Service, *fakeDB) {
	t.Helper()
	fake := newFakeDB()
	c := chunk.New(chunkSize)
	svc := New(decl,
		recordrepo.New(fake, decl, c),
		indexrepo.New(fake, decl, c),
		filterrepo.New(fake, decl, c),
		counterrepo.New(fake, decl.Name()),
	)
	return svc, fake
}
