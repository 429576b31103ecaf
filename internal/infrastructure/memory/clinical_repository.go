package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

var (
	_ repository.PatientRepository        = (*PatientRepo)(nil)
	_ repository.HandledPatientRepository = (*HandledPatientRepo)(nil)
	_ repository.AlertRepository          = (*AlertRepo)(nil)
)

// PatientRepo pacientes en memoria.
type PatientRepo struct{ b binding }

func (r *PatientRepo) Create(_ context.Context, p *entity.Patient) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.patients[p.ID]; ok {
			return domain.ErrDuplicate
		}
		if p.MRNumber == "" {
			st.mrSeq++
			p.MRNumber = fmt.Sprintf("RM-%06d", st.mrSeq)
		}
		for _, other := range st.patients {
			if other.MRNumber == p.MRNumber {
				return domain.ErrDuplicate
			}
		}
		st.patients[p.ID] = *p
		return nil
	})
}

func (r *PatientRepo) GetByID(_ context.Context, id string) (*entity.Patient, error) {
	var out *entity.Patient
	err := r.b.read(func(st *state) error {
		if p, ok := st.patients[id]; ok {
			out = &p
		}
		return nil
	})
	return out, err
}

func (r *PatientRepo) Update(_ context.Context, p *entity.Patient) error {
	return r.b.write(func(st *state) error {
		cur, ok := st.patients[p.ID]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Name = p.Name
		cur.NIK = p.NIK
		cur.BirthDate = p.BirthDate
		cur.Gender = p.Gender
		cur.Address = p.Address
		cur.Phone = p.Phone
		cur.BloodType = p.BloodType
		cur.UpdatedAt = p.UpdatedAt
		st.patients[p.ID] = cur
		return nil
	})
}

func (r *PatientRepo) UpdateStatus(_ context.Context, id, status string, lastVisit *time.Time) error {
	return r.b.write(func(st *state) error {
		cur, ok := st.patients[id]
		if !ok {
			return domain.ErrNotFound
		}
		cur.Status = status
		if lastVisit != nil {
			v := *lastVisit
			cur.LastVisit = &v
		}
		cur.UpdatedAt = r.b.store.nowFn()
		st.patients[id] = cur
		return nil
	})
}

func (r *PatientRepo) List(_ context.Context, search string, limit, offset int) ([]*entity.Patient, int, error) {
	var (
		out   []*entity.Patient
		total int
	)
	err := r.b.read(func(st *state) error {
		needle := strings.ToLower(search)
		all := make([]entity.Patient, 0, len(st.patients))
		for _, p := range st.patients {
			if needle == "" ||
				strings.Contains(strings.ToLower(p.Name), needle) ||
				strings.Contains(strings.ToLower(p.MRNumber), needle) ||
				strings.Contains(p.NIK, needle) {
				all = append(all, p)
			}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].MRNumber < all[j].MRNumber })
		total = len(all)
		for _, p := range page(all, limit, offset) {
			p := p
			out = append(out, &p)
		}
		return nil
	})
	return out, total, err
}

// HandledPatientRepo encuentros en memoria.
type HandledPatientRepo struct{ b binding }

func (r *HandledPatientRepo) Create(_ context.Context, enc *entity.HandledPatient) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.encounters[enc.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := st.patients[enc.PatientID]; !ok {
			return domain.ErrNotFound
		}
		st.encounters[enc.ID] = *enc
		return nil
	})
}

func (r *HandledPatientRepo) GetByID(_ context.Context, id string) (*entity.HandledPatient, error) {
	var out *entity.HandledPatient
	err := r.b.read(func(st *state) error {
		if e, ok := st.encounters[id]; ok {
			out = &e
		}
		return nil
	})
	return out, err
}

func (r *HandledPatientRepo) Update(_ context.Context, enc *entity.HandledPatient) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.encounters[enc.ID]; !ok {
			return domain.ErrNotFound
		}
		st.encounters[enc.ID] = *enc
		return nil
	})
}

func (r *HandledPatientRepo) Delete(_ context.Context, id string) error {
	return r.b.write(func(st *state) error {
		if _, ok := st.encounters[id]; !ok {
			return domain.ErrNotFound
		}
		delete(st.encounters, id)
		return nil
	})
}

func (r *HandledPatientRepo) LatestByPatient(_ context.Context, patientID, excludeID string) (*entity.HandledPatient, error) {
	var out *entity.HandledPatient
	err := r.b.read(func(st *state) error {
		for _, e := range st.encounters {
			if e.PatientID != patientID || e.ID == excludeID {
				continue
			}
			if out == nil || newerEncounter(e, *out) {
				e := e
				out = &e
			}
		}
		return nil
	})
	return out, err
}

func (r *HandledPatientRepo) ListByPatient(_ context.Context, patientID string, limit, offset int) ([]*entity.HandledPatient, error) {
	var out []*entity.HandledPatient
	err := r.b.read(func(st *state) error {
		var all []entity.HandledPatient
		for _, e := range st.encounters {
			if e.PatientID == patientID {
				all = append(all, e)
			}
		}
		sort.SliceStable(all, func(i, j int) bool { return newerEncounter(all[i], all[j]) })
		for _, e := range page(all, limit, offset) {
			e := e
			out = append(out, &e)
		}
		return nil
	})
	return out, err
}

// newerEncounter ordena por handled_date y, a igualdad, por created_at (mismo criterio que el SQL).
func newerEncounter(a, b entity.HandledPatient) bool {
	if !a.HandledDate.Equal(b.HandledDate) {
		return a.HandledDate.After(b.HandledDate)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

// AlertRepo alertas en memoria.
type AlertRepo struct{ b binding }

func (r *AlertRepo) CreateIfAbsent(_ context.Context, a *entity.Alert, messagePrefix string) (bool, error) {
	created := false
	err := r.b.write(func(st *state) error {
		for _, other := range st.alerts {
			if !other.IsRead &&
				other.PatientID == a.PatientID &&
				other.Category == a.Category &&
				other.TargetRole == a.TargetRole &&
				strings.HasPrefix(other.Message, messagePrefix) {
				return nil
			}
		}
		st.alerts = append(st.alerts, *a)
		created = true
		return nil
	})
	return created, err
}

func (r *AlertRepo) ListUnreadByRole(_ context.Context, targetRole string, limit, offset int) ([]*entity.Alert, error) {
	var out []*entity.Alert
	err := r.b.read(func(st *state) error {
		var all []entity.Alert
		for _, a := range st.alerts {
			if !a.IsRead && (targetRole == "" || a.TargetRole == targetRole) {
				all = append(all, a)
			}
		}
		sortByTimeDesc(all, func(a entity.Alert) time.Time { return a.CreatedAt })
		for _, a := range page(all, limit, offset) {
			a := a
			out = append(out, &a)
		}
		return nil
	})
	return out, err
}

func (r *AlertRepo) MarkRead(_ context.Context, id string) error {
	return r.b.write(func(st *state) error {
		for i := range st.alerts {
			if st.alerts[i].ID == id {
				st.alerts[i].IsRead = true
				return nil
			}
		}
		return domain.ErrNotFound
	})
}
