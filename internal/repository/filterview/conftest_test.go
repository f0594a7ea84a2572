package filterview

import (
	"context"
	"sort"

	"github.com/kailas-cloud/richdex/internal/db"
)

// mockStore keeps live set and sorted-set state and records mutating
// call shapes for chunking assertions.
type mockStore struct {
	sets  map[string]map[string]bool
	zsets map[string]map[string]float64

	saddSizes []int
	zaddSizes []int

	saddErr error
	zremErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		sets:  make(map[string]map[string]bool),
		zsets: make(map[string]map[string]float64),
	}
}

func (m *mockStore) SAdd(_ context.Context, key string, members []string) error {
	if m.saddErr != nil {
		return m.saddErr
	}
	m.saddSizes = append(m.saddSizes, len(members))
	if m.sets[key] == nil {
		m.sets[key] = make(map[string]bool)
	}
	for _, mem := range members {
		m.sets[key][mem] = true
	}
	return nil
}

func (m *mockStore) SRem(_ context.Context, key string, members []string) error {
	for _, mem := range members {
		delete(m.sets[key], mem)
	}
	return nil
}

func (m *mockStore) SMembers(_ context.Context, key string) ([]string, error) {
	out := make([]string, 0, len(m.sets[key]))
	for mem := range m.sets[key] {
		out = append(out, mem)
	}
	sort.Strings(out)
	return out, nil
}

func (m *mockStore) ZAdd(_ context.Context, key string, entries []db.ScoreMember) error {
	m.zaddSizes = append(m.zaddSizes, len(entries))
	if m.zsets[key] == nil {
		m.zsets[key] = make(map[string]float64)
	}
	for _, e := range entries {
		m.zsets[key][e.Member] = e.Score
	}
	return nil
}

func (m *mockStore) ZRem(_ context.Context, key string, members []string) error {
	if m.zremErr != nil {
		return m.zremErr
	}
	for _, mem := range members {
		delete(m.zsets[key], mem)
	}
	return nil
}

func (m *mockStore) ZRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	all := m.sortedMembers(key)
	if start == 0 && stop == -1 {
		return all, nil
	}
	if start < 0 || start >= int64(len(all)) {
		return nil, nil
	}
	end := stop
	if end < 0 || end >= int64(len(all)) {
		end = int64(len(all)) - 1
	}
	return all[start : end+1], nil
}

func (m *mockStore) ZRangeByScore(_ context.Context, key string, min, max float64) ([]string, error) {
	var out []string
	for _, mem := range m.sortedMembers(key) {
		if score := m.zsets[key][mem]; score >= min && score <= max {
			out = append(out, mem)
		}
	}
	return out, nil
}

func (m *mockStore) sortedMembers(key string) []string {
	out := make([]string, 0, len(m.zsets[key]))
	for mem := range m.zsets[key] {
		out = append(out, mem)
	}
	sort.Slice(out, func(i, j int) bool {
		si, sj := m.zsets[key][out[i]], m.zsets[key][out[j]]
		if si != sj {
			return si < sj
		}
		return out[i] < out[j]
	})
	return out
}
