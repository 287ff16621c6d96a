package patient

import "sync"

// Store is the patient registry. All writes replace whole records under a
// single lock so readers never observe a half-applied update.
type Store interface {
	List() []Patient
	Get(id string) (Patient, error)
	Prepend(p Patient) error
	Update(id string, fn func(p *Patient) error) (Patient, error)
	UpdateWithPeers(id string, fn func(p *Patient, peers []Patient) error) (Patient, error)
	UpdateAt(choose func(n int) int, fn func(p *Patient) bool) (Patient, bool)
	Len() int
}

// MemoryStore keeps the registry in process, most recent first.
type MemoryStore struct {
	mu       sync.RWMutex
	patients []Patient
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(seed []Patient) *MemoryStore {
	s := &MemoryStore{patients: make([]Patient, 0, len(seed))}
	for _, p := range seed {
		s.patients = append(s.patients, p.Clone())
	}
	return s
}

func (s *MemoryStore) List() []Patient {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Patient, len(s.patients))
	for i, p := range s.patients {
		out[i] = p.Clone()
	}
	return out
}

func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patients)
}

func (s *MemoryStore) Get(id string) (Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexOf(id)
	if i < 0 {
		return Patient{}, ErrPatientNotFound
	}
	return s.patients[i].Clone(), nil
}

func (s *MemoryStore) Prepend(p Patient) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(p.ID) >= 0 {
		return ErrDuplicateID
	}
	s.patients = append([]Patient{p.Clone()}, s.patients...)
	return nil
}

// Update applies fn to a copy of the record and stores it only when fn
// returns nil.
func (s *MemoryStore) Update(id string, fn func(p *Patient) error) (Patient, error) {
	return s.UpdateWithPeers(id, func(p *Patient, _ []Patient) error { return fn(p) })
}

// UpdateWithPeers is Update with a snapshot of every record, used for
// checks like bed occupancy that span the registry.
func (s *MemoryStore) UpdateWithPeers(id string, fn func(p *Patient, peers []Patient) error) (Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return Patient{}, ErrPatientNotFound
	}
	next := s.patients[i].Clone()
	if err := fn(&next, s.patients); err != nil {
		return Patient{}, err
	}
	s.patients[i] = next
	return next.Clone(), nil
}

// UpdateAt picks a record by index and applies fn. The record is stored
// only when fn reports a change.
func (s *MemoryStore) UpdateAt(choose func(n int) int, fn func(p *Patient) bool) (Patient, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.patients) == 0 {
		return Patient{}, false
	}
	i := choose(len(s.patients))
	if i < 0 || i >= len(s.patients) {
		return Patient{}, false
	}
	next := s.patients[i].Clone()
	if !fn(&next) {
		return next, false
	}
	s.patients[i] = next
	return next.Clone(), true
}

func (s *MemoryStore) indexOf(id string) int {
	for i, p := range s.patients {
		if p.ID == id {
			return i
		}
	}
	return -1
}
