// Package memory implementa los repositorios del núcleo sobre un estado en memoria.
// Cada transacción trabaja sobre una copia del estado y solo la publica si fn no falla;
// las transacciones se serializan con un único mutex, equivalente a los bloqueos de fila de PostgreSQL.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/hospital-api/internal/application/clinical"
	"github.com/jhoicas/hospital-api/internal/application/pharmacy"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

var (
	_ pharmacy.TxRunner = (*Store)(nil)
	_ clinical.TxRunner = (*Store)(nil)
)

type state struct {
	drugs      map[string]entity.Drug
	txs        map[string]entity.DrugTransaction
	movements  []entity.StockMovement
	patients   map[string]entity.Patient
	encounters map[string]entity.HandledPatient
	alerts     []entity.Alert
	mrSeq      int
}

func newState() state {
	return state{
		drugs:      map[string]entity.Drug{},
		txs:        map[string]entity.DrugTransaction{},
		patients:   map[string]entity.Patient{},
		encounters: map[string]entity.HandledPatient{},
	}
}

func (s state) clone() state {
	out := state{
		drugs:      make(map[string]entity.Drug, len(s.drugs)),
		txs:        make(map[string]entity.DrugTransaction, len(s.txs)),
		movements:  append([]entity.StockMovement(nil), s.movements...),
		patients:   make(map[string]entity.Patient, len(s.patients)),
		encounters: make(map[string]entity.HandledPatient, len(s.encounters)),
		alerts:     append([]entity.Alert(nil), s.alerts...),
		mrSeq:      s.mrSeq,
	}
	for k, v := range s.drugs {
		out.drugs[k] = v
	}
	for k, v := range s.txs {
		out.txs[k] = cloneTransaction(v)
	}
	for k, v := range s.patients {
		out.patients[k] = v
	}
	for k, v := range s.encounters {
		out.encounters[k] = v
	}
	return out
}

func cloneTransaction(t entity.DrugTransaction) entity.DrugTransaction {
	t.Items = append([]entity.DrugTransactionItem(nil), t.Items...)
	return t
}

// Store estado compartido y punto de entrada de las transacciones.
type Store struct {
	mu    sync.RWMutex
	state state
	nowFn func() time.Time
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{state: newState(), nowFn: time.Now}
}

// run ejecuta fn sobre una copia del estado y la publica solo si no hay error (todo o nada).
func (s *Store) run(fn func(st *state) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.state.clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Store) view(fn func(st *state) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&s.state)
}

// RunPharmacy implementa pharmacy.TxRunner.
func (s *Store) RunPharmacy(ctx context.Context, fn func(
	drugRepo repository.DrugRepository,
	txRepo repository.DrugTransactionRepository,
	movRepo repository.StockMovementRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.run(func(st *state) error {
		b := binding{store: s, st: st}
		return fn(&DrugRepo{b}, &DrugTransactionRepo{b}, &StockMovementRepo{b})
	})
}

// RunClinical implementa clinical.TxRunner.
func (s *Store) RunClinical(ctx context.Context, fn func(
	patientRepo repository.PatientRepository,
	encounterRepo repository.HandledPatientRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.run(func(st *state) error {
		b := binding{store: s, st: st}
		return fn(&PatientRepo{b}, &HandledPatientRepo{b})
	})
}

// Drugs repositorio fuera de transacción.
func (s *Store) Drugs() *DrugRepo { return &DrugRepo{binding{store: s}} }

// Transactions repositorio fuera de transacción.
func (s *Store) Transactions() *DrugTransactionRepo { return &DrugTransactionRepo{binding{store: s}} }

// Movements repositorio fuera de transacción.
func (s *Store) Movements() *StockMovementRepo { return &StockMovementRepo{binding{store: s}} }

// Patients repositorio fuera de transacción.
func (s *Store) Patients() *PatientRepo { return &PatientRepo{binding{store: s}} }

// Encounters repositorio fuera de transacción.
func (s *Store) Encounters() *HandledPatientRepo { return &HandledPatientRepo{binding{store: s}} }

// Alerts repositorio fuera de transacción.
func (s *Store) Alerts() *AlertRepo { return &AlertRepo{binding{store: s}} }

// binding ata un repositorio al estado de una transacción abierta (st != nil) o al store.
type binding struct {
	store *Store
	st    *state
}

func (b binding) read(fn func(st *state) error) error {
	if b.st != nil {
		return fn(b.st)
	}
	return b.store.view(fn)
}

func (b binding) write(fn func(st *state) error) error {
	if b.st != nil {
		return fn(b.st)
	}
	return b.store.run(fn)
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}

func sortByTimeDesc[T any](list []T, key func(T) time.Time) {
	sort.SliceStable(list, func(i, j int) bool {
		return key(list[i]).After(key(list[j]))
	})
}
