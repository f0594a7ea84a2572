package index

import (
	"context"
	"sort"

	"github.com/kailas-cloud/richdex/internal/db"
)

type setCall struct {
	key     string
	members []string
}

type zaddCall struct {
	key     string
	entries []db.ScoreMember
}

// mockStore keeps a live picture of the index structures and records
// every mutating call, so tests can assert both state and chunking.
type mockStore struct {
	sets  map[string]map[string]bool
	zsets map[string]map[string]float64

	saddCalls []setCall
	sremCalls []setCall
	zaddCalls []zaddCall
	zremCalls []setCall

	saddErr  error
	zaddErr  error
	rangeErr error
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
	m.saddCalls = append(m.saddCalls, setCall{key: key, members: members})
	if m.sets[key] == nil {
		m.sets[key] = make(map[string]bool)
	}
	for _, mem := range members {
		m.sets[key][mem] = true
	}
	return nil
}

func (m *mockStore) SRem(_ context.Context, key string, members []string) error {
	m.sremCalls = append(m.sremCalls, setCall{key: key, members: members})
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
	if m.zaddErr != nil {
		return m.zaddErr
	}
	m.zaddCalls = append(m.zaddCalls, zaddCall{key: key, entries: entries})
	if m.zsets[key] == nil {
		m.zsets[key] = make(map[string]float64)
	}
	for _, e := range entries {
		m.zsets[key][e.Member] = e.Score
	}
	return nil
}

func (m *mockStore) ZRem(_ context.Context, key string, members []string) error {
	m.zremCalls = append(m.zremCalls, setCall{key: key, members: members})
	for _, mem := range members {
		delete(m.zsets[key], mem)
	}
	return nil
}

func (m *mockStore) ZRangeByScore(_ context.Context, key string, min, max float64) ([]string, error) {
	if m.rangeErr != nil {
		return nil, m.rangeErr
	}
	type entry struct {
		member string
		score  float64
	}
	var hits []entry
	for mem, score := range m.zsets[key] {
		if score >= min && score <= max {
			hits = append(hits, entry{member: mem, score: score})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score < hits[j].score
		}
		return hits[i].member < hits[j].member
	})
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.member)
	}
	return out, nil
}
