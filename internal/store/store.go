// Package store is the domain store: every locally kept collection of the
// institute (students, professors, courses, inscriptions, becas, cash
// movements and personnel) held in memory and written back as one JSON
// snapshot to a storage.Backend after each change.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/instituto-admin-api/pkg/storage"
)

// DefaultKey is the storage key holding the snapshot.
const DefaultKey = "instituto-store"

// Collection names as they appear in the snapshot.
const (
	CollectionStudents     = "students"
	CollectionProfessors   = "professors"
	CollectionCourses      = "courses"
	CollectionInscriptions = "inscriptions"
	CollectionBecas        = "becas"
	CollectionMovements    = "cajaMovimientos"
	CollectionPersonal     = "personal"
)

var (
	// ErrInvalidRecord wraps validation failures of a record.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrPersist wraps failures writing the snapshot.
	ErrPersist = errors.New("persist store snapshot")
)

// Snapshot is the serialized form of the whole store.
type Snapshot struct {
	Students        []Student      `json:"students"`
	Professors      []Professor    `json:"professors"`
	Courses         []Course       `json:"courses"`
	Inscriptions    []Inscription  `json:"inscriptions"`
	Becas           []Beca         `json:"becas"`
	CajaMovimientos []CashMovement `json:"cajaMovimientos"`
	Personal        []Staff        `json:"personal"`
	// Sequences is the highest id ever handed out per collection, so ids
	// are not reused after the newest record is removed.
	Sequences map[string]int `json:"sequences,omitempty"`
}

// Defaults returns an empty snapshot.
func Defaults() Snapshot {
	return Snapshot{
		Students:        []Student{},
		Professors:      []Professor{},
		Courses:         []Course{},
		Inscriptions:    []Inscription{},
		Becas:           []Beca{},
		CajaMovimientos: []CashMovement{},
		Personal:        []Staff{},
		Sequences:       map[string]int{},
	}
}

// Options tune Open.
type Options struct {
	Key       string
	Validator *validator.Validate
	Logger    *zap.Logger
	Clock     func() time.Time
}

// Store holds the collections. All methods are safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	data     Snapshot
	backend  storage.Backend
	key      string
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time

	Students     *Collection[Student]
	Professors   *Collection[Professor]
	Courses      *Collection[Course]
	Inscriptions *Collection[Inscription]
	Becas        *Collection[Beca]
	Movements    *Collection[CashMovement]
	Personal     *Collection[Staff]
}

// Open loads the snapshot stored under opts.Key and merges it over the
// defaults. Collections missing from an older snapshot start empty.
func Open(ctx context.Context, backend storage.Backend, opts Options) (*Store, error) {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Validator == nil {
		opts.Validator = validator.New()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Store{
		data:     Defaults(),
		backend:  backend,
		key:      opts.Key,
		validate: opts.Validator,
		logger:   opts.Logger,
		now:      opts.Clock,
	}
	s.bindCollections()

	raw, err := backend.Get(ctx, opts.Key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.logger.Info("store snapshot not found, starting empty", zap.String("key", opts.Key))
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("load store snapshot: %w", err)
	}

	loaded, err := decodeSnapshot(raw)
	if err != nil {
		return nil, err
	}
	s.data = loaded
	s.logger.Info("store snapshot loaded",
		zap.String("key", opts.Key),
		zap.Int("students", len(loaded.Students)),
		zap.Int("inscriptions", len(loaded.Inscriptions)),
		zap.Int("movements", len(loaded.CajaMovimientos)),
	)
	return s, nil
}

func decodeSnapshot(raw []byte) (Snapshot, error) {
	snap := Defaults()
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode store snapshot: %w", err)
	}
	if snap.Students == nil {
		snap.Students = []Student{}
	}
	if snap.Professors == nil {
		snap.Professors = []Professor{}
	}
	if snap.Courses == nil {
		snap.Courses = []Course{}
	}
	if snap.Inscriptions == nil {
		snap.Inscriptions = []Inscription{}
	}
	if snap.Becas == nil {
		snap.Becas = []Beca{}
	}
	if snap.CajaMovimientos == nil {
		snap.CajaMovimientos = []CashMovement{}
	}
	if snap.Personal == nil {
		snap.Personal = []Staff{}
	}
	if snap.Sequences == nil {
		snap.Sequences = map[string]int{}
	}
	return snap, nil
}

func (s *Store) bindCollections() {
	s.Students = &Collection[Student]{
		store: s, name: CollectionStudents,
		items: func(d *Snapshot) *[]Student { return &d.Students },
		id:    func(v *Student) *int { return &v.ID },
		prepare: func(v *Student, _ time.Time) {
			if v.Estado == "" {
				v.Estado = StudentActive
			}
		},
	}
	s.Professors = &Collection[Professor]{
		store: s, name: CollectionProfessors,
		items: func(d *Snapshot) *[]Professor { return &d.Professors },
		id:    func(v *Professor) *int { return &v.ID },
		prepare: func(v *Professor, _ time.Time) {
			if v.Materias == nil {
				v.Materias = []string{}
			}
			if v.Horarios == nil {
				v.Horarios = []Schedule{}
			}
		},
	}
	s.Courses = &Collection[Course]{
		store: s, name: CollectionCourses,
		items: func(d *Snapshot) *[]Course { return &d.Courses },
		id:    func(v *Course) *int { return &v.ID },
		prepare: func(v *Course, _ time.Time) {
			if v.Profesores == nil {
				v.Profesores = []int{}
			}
			if v.TiposCertificado == nil {
				v.TiposCertificado = []string{}
			}
			if v.CostosCertificado == nil {
				v.CostosCertificado = map[string]float64{}
			}
			if v.Horarios == nil {
				v.Horarios = []Schedule{}
			}
		},
	}
	s.Inscriptions = &Collection[Inscription]{
		store: s, name: CollectionInscriptions,
		items: func(d *Snapshot) *[]Inscription { return &d.Inscriptions },
		id:    func(v *Inscription) *int { return &v.ID },
		prepare: func(v *Inscription, now time.Time) {
			if v.FechaInscripcion.IsZero() {
				v.FechaInscripcion = now
			}
			if v.Installments == nil {
				v.Installments = []Installment{}
			}
		},
	}
	s.Becas = &Collection[Beca]{
		store: s, name: CollectionBecas,
		items: func(d *Snapshot) *[]Beca { return &d.Becas },
		id:    func(v *Beca) *int { return &v.ID },
	}
	s.Movements = &Collection[CashMovement]{
		store: s, name: CollectionMovements,
		items: func(d *Snapshot) *[]CashMovement { return &d.CajaMovimientos },
		id:    func(v *CashMovement) *int { return &v.ID },
		prepare: func(v *CashMovement, now time.Time) {
			if v.FechaHora.IsZero() {
				v.FechaHora = now
			}
		},
	}
	s.Personal = &Collection[Staff]{
		store: s, name: CollectionPersonal,
		items: func(d *Snapshot) *[]Staff { return &d.Personal },
		id:    func(v *Staff) *int { return &v.ID },
	}
}

// Snapshot returns a deep copy of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.data)
}

// Reset replaces every collection with the defaults and persists them.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.data
	s.data = Defaults()
	if err := s.persistLocked(ctx); err != nil {
		s.data = prev
		return err
	}
	s.logger.Info("store reset", zap.String("key", s.key))
	return nil
}

// persistLocked serializes the whole snapshot. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersist, err)
	}
	if err := s.backend.Set(ctx, s.key, raw); err != nil {
		s.logger.Error("store persist failed", zap.String("key", s.key), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

func (s *Store) validateRecord(v interface{}) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// clone deep-copies v through JSON so callers never alias stored slices
// or maps.
func clone[T any](v T) T {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("store: clone marshal: %v", err))
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("store: clone unmarshal: %v", err))
	}
	return out
}
