package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/hospital-api/internal/application/dto"
	"github.com/jhoicas/hospital-api/internal/domain"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
	"github.com/jhoicas/hospital-api/internal/domain/repository"
)

// PatientUseCase registro de pacientes. El status no se edita aquí: lo deriva la máquina de estados de encuentros.
type PatientUseCase struct {
	repo repository.PatientRepository
}

// NewPatientUseCase construye el caso de uso.
func NewPatientUseCase(repo repository.PatientRepository) *PatientUseCase {
	return &PatientUseCase{repo: repo}
}

// Create registra un paciente con número de rekam medis secuencial y status AKTIF.
func (uc *PatientUseCase) Create(ctx context.Context, in dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.Invalid("name", "es requerido")
	}
	if err := validateGender(in.Gender); err != nil {
		return nil, err
	}
	now := time.Now()
	p := &entity.Patient{
		ID:        uuid.New().String(),
		Name:      name,
		NIK:       strings.TrimSpace(in.NIK),
		BirthDate: in.BirthDate,
		Gender:    in.Gender,
		Address:   in.Address,
		Phone:     in.Phone,
		BloodType: in.BloodType,
		Status:    entity.PatientStatusAktif,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return toPatientResponse(p), nil
}

// GetByID obtiene un paciente.
func (uc *PatientUseCase) GetByID(ctx context.Context, id string) (*dto.PatientResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toPatientResponse(p), nil
}

// Update modifica datos demográficos.
func (uc *PatientUseCase) Update(ctx context.Context, id string, in dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	p, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "es requerido")
		}
		p.Name = name
	}
	if in.NIK != nil {
		p.NIK = strings.TrimSpace(*in.NIK)
	}
	if in.BirthDate != nil {
		p.BirthDate = in.BirthDate
	}
	if in.Gender != nil {
		if err := validateGender(*in.Gender); err != nil {
			return nil, err
		}
		p.Gender = *in.Gender
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.Phone != nil {
		p.Phone = *in.Phone
	}
	if in.BloodType != nil {
		p.BloodType = *in.BloodType
	}
	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return toPatientResponse(p), nil
}

// List busca pacientes por nombre, NIK o número de rekam medis.
func (uc *PatientUseCase) List(ctx context.Context, search string, limit, offset int) (*dto.PatientListResponse, error) {
	list, total, err := uc.repo.List(ctx, strings.TrimSpace(search), limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PatientResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPatientResponse(p))
	}
	return &dto.PatientListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset, Total: total},
	}, nil
}

func validateGender(g string) error {
	switch g {
	case "", "L", "P":
		return nil
	}
	return domain.Invalid("gender", "debe ser L o P")
}

func toPatientResponse(p *entity.Patient) *dto.PatientResponse {
	return &dto.PatientResponse{
		ID:        p.ID,
		MRNumber:  p.MRNumber,
		Name:      p.Name,
		NIK:       p.NIK,
		BirthDate: p.BirthDate,
		Gender:    p.Gender,
		Address:   p.Address,
		Phone:     p.Phone,
		BloodType: p.BloodType,
		Status:    p.Status,
		LastVisit: p.LastVisit,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
