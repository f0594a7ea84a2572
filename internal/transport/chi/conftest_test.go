package chi

import (
	"context"
	"sort"
	"strconv"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/richdex/internal/chunk"
	"github.com/kailas-cloud/richdex/internal/db"
	"github.com/kailas-cloud/richdex/internal/domain/collection"
	"github.com/kailas-cloud/richdex/internal/domain/collection/field"
	"github.com/kailas-cloud/richdex/internal/domain/filter"
	"github.com/kailas-cloud/richdex/internal/domain/record"
	counterrepo "github.com/kailas-cloud/richdex/internal/repository/counter"
	filterrepo "github.com/kailas-cloud/richdex/internal/repository/filterview"
	indexrepo "github.com/kailas-cloud/richdex/internal/repository/index"
	recordrepo "github.com/kailas-cloud/richdex/internal/repository/record"
	documentuc "github.com/kailas-cloud/richdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/richdex/internal/usecase/health"
)

// fakeDB is an in-memory substrate for end-to-end handler tests.
type fakeDB struct {
	kv       map[string]string
	sets     map[string]map[string]bool
	zsets    map[string]map[string]float64
	counters map[string]int64

	pingErr error
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		kv:       make(map[string]string),
		sets:     make(map[string]map[string]bool),
		zsets:    make(map[string]map[string]float64),
		counters: make(map[string]int64),
	}
}

func (f *fakeDB) Ping(_ context.Context) error { return f.pingErr }

func (f *fakeDB) MSet(_ context.Context, pairs []string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		f.kv[pairs[i]] = pairs[i+1]
	}
	return nil
}

func (f *fakeDB) MGet(_ context.Context, keys []string) ([]*string, error) {
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
	for _, k := range keys {
		delete(f.kv, k)
	}
	return nil
}

func (f *fakeDB) IncrBy(_ context.Context, key string, n int64) (int64, error) {
	f.counters[key] += n
	return f.counters[key], nil
}

func (f *fakeDB) SAdd(_ context.Context, key string, members []string) error {
	if f.sets[key] == nil {
		f.sets[key] = make(map[string]bool)
	}
	for _, m := range members {
		f.sets[key][m] = true
	}
	return nil
}

func (f *fakeDB) SRem(_ context.Context, key string, members []string) error {
	for _, m := range members {
		delete(f.sets[key], m)
	}
	return nil
}

func (f *fakeDB) SMembers(_ context.Context, key string) ([]string, error) {
	out := make([]string, 0, len(f.sets[key]))
	for m := range f.sets[key] {
		out = append(out, m)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeDB) ZAdd(_ context.Context, key string, entries []db.ScoreMember) error {
	if f.zsets[key] == nil {
		f.zsets[key] = make(map[string]float64)
	}
	for _, e := range entries {
		f.zsets[key][e.Member] = e.Score
	}
	return nil
}

func (f *fakeDB) ZRem(_ context.Context, key string, members []string) error {
	for _, m := range members {
		delete(f.zsets[key], m)
	}
	return nil
}

func (f *fakeDB) ZRangeByScore(_ context.Context, key string, min, max float64) ([]string, error) {
	var out []string
	for _, m := range f.sorted(key) {
		if score := f.zsets[key][m]; score >= min && score <= max {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeDB) ZRange(_ context.Context, key string, start, stop int64) ([]string, error) {
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
		ni, erri := strconv.ParseFloat(out[i], 64)
		nj, errj := strconv.ParseFloat(out[j], 64)
		if erri == nil && errj == nil {
			return ni < nj
		}
		return out[i] < out[j]
	})
	return out
}

func testDeclarations(t *testing.T) []collection.Declaration {
	t.Helper()

	species, err := field.New("species", record.KindText, true)
	if err != nil {
		t.Fatal(err)
	}
	weight, err := field.New("weight", record.KindNumeric, true)
	if err != nil {
		t.Fatal(err)
	}
	seen, err := field.New("seen", record.KindTime, true)
	if err != nil {
		t.Fatal(err)
	}
	heavy, err := filter.NewOrdered("heavy", filter.Func(func(r record.Record) bool {
		v, ok := r.Get("weight")
		return ok && v.Number() >= 5
	}), "weight")
	if err != nil {
		t.Fatal(err)
	}
	creatures, err := collection.New("creatures",
		[]field.Field{species, weight, seen}, []filter.Definition{heavy}, false)
	if err != nil {
		t.Fatal(err)
	}

	value, err := field.New("value", record.KindNumeric, true)
	if err != nil {
		t.Fatal(err)
	}
	events, err := collection.New("events", []field.Field{value}, nil, true)
	if err != nil {
		t.Fatal(err)
	}

	return []collection.Declaration{creatures, events}
}

// newTestServer wires the full handler stack over an in-memory substrate.
func newTestServer(t *testing.T) (*Server, *fakeDB) {
	t.Helper()

	fake := newFakeDB()
	c := chunk.New(0)

	documents := make(map[string]*documentuc.Service)
	for _, decl := range testDeclarations(t) {
		documents[decl.Name()] = documentuc.New(decl,
			recordrepo.New(fake, decl, c),
			indexrepo.New(fake, decl, c),
			filterrepo.New(fake, decl, c),
			counterrepo.New(fake, decl.Name()),
		)
	}

	return NewServer(documents, healthuc.New(fake), zap.NewNop()), fake
}
