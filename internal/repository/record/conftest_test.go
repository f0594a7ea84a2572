package record

import "context"

// mockStore implements the consumer interface for tests.
type mockStore struct {
	data map[string]string

	msetCalls [][]string
	mgetCalls [][]string
	delCalls  [][]string

	msetErr error
	mgetErr error
	delErr  error
}

func newMockStore() *mockStore {
	return &mockStore{data: make(map[string]string)}
}

func (m *mockStore) MSet(_ context.Context, pairs []string) error {
	if m.msetErr != nil {
		return m.msetErr
	}
	cp := make([]string, len(pairs))
	copy(cp, pairs)
	m.msetCalls = append(m.msetCalls, cp)
	for i := 0; i+1 < len(pairs); i += 2 {
		m.data[pairs[i]] = pairs[i+1]
	}
	return nil
}

func (m *mockStore) MGet(_ context.Context, keys []string) ([]*string, error) {
	if m.mgetErr != nil {
		return nil, m.mgetErr
	}
	cp := make([]string, len(keys))
	copy(cp, keys)
	m.mgetCalls = append(m.mgetCalls, cp)

	out := make([]*string, len(keys))
	for i, k := range keys {
		if v, ok := m.data[k]; ok {
			vv := v
			out[i] = &vv
		}
	}
	return out, nil
}

func (m *mockStore) Del(_ context.Context, keys []string) error {
	if m.delErr != nil {
		return m.delErr
	}
	cp := make([]string, len(keys))
	copy(cp, keys)
	m.delCalls = append(m.delCalls, cp)
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
