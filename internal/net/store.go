package net

import "sort"

// SessionStore tracks live sessions for the game loop. Game loop only.
type SessionStore struct {
	byID map[uint64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{byID: make(map[uint64]*Session)}
}

func (st *SessionStore) Add(s *Session)         { st.byID[s.ID] = s }
func (st *SessionStore) Remove(id uint64)       { delete(st.byID, id) }
func (st *SessionStore) Get(id uint64) *Session { return st.byID[id] }
func (st *SessionStore) Count() int             { return len(st.byID) }

// Sorted returns the sessions in connection order, so per-tick processing
// is deterministic.
func (st *SessionStore) Sorted() []*Session {
	out := make([]*Session, 0, len(st.byID))
	for _, s := range st.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
