package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/hospital-api/internal/application/clinical"
	"github.com/jhoicas/hospital-api/internal/application/pharmacy"
	"github.com/jhoicas/hospital-api/internal/application/usecase"
	"github.com/jhoicas/hospital-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	PatientUC     *usecase.PatientUseCase
	DrugUC        *usecase.DrugUseCase
	TransactionUC *pharmacy.TransactionUseCase
	EncounterUC   *clinical.EncounterUseCase
	AlertUC       *clinical.AlertUseCase
	JWTSecret     string
}

// Router registra las rutas de la API. Todas requieren Bearer Token; admin pasa cualquier RequireRole.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Patients
	patientHandler := NewPatientHandler(deps.PatientUC)
	encounterHandler := NewEncounterHandler(deps.EncounterUC)
	patients := api.Group("/patients")
	registry := RequireRole(entity.RoleResepsionis, entity.RoleDokter, entity.RolePerawat)
	patients.Get("/", patientHandler.List)
	patients.Get("/:id", patientHandler.GetByID)
	patients.Get("/:id/encounters", encounterHandler.ListByPatient)
	patients.Post("/", registry, patientHandler.Create)
	patients.Put("/:id", registry, patientHandler.Update)

	// Encounters
	encounters := api.Group("/encounters")
	clinicalStaff := RequireRole(entity.RoleDokter, entity.RolePerawat)
	encounters.Get("/:id", encounterHandler.GetByID)
	encounters.Post("/", clinicalStaff, encounterHandler.Create)
	encounters.Put("/:id", clinicalStaff, encounterHandler.Update)
	encounters.Delete("/:id", clinicalStaff, encounterHandler.Delete)

	// Drugs (catálogo + ledger)
	drugHandler := NewDrugHandler(deps.DrugUC)
	drugs := api.Group("/drugs")
	drugs.Get("/", drugHandler.List)
	drugs.Get("/:id", drugHandler.GetByID)
	drugs.Get("/:id/movements", RequireRole(entity.RoleApoteker), drugHandler.Movements)
	drugs.Post("/", RequireRole(entity.RoleApoteker), drugHandler.Create)
	drugs.Put("/:id", RequireRole(entity.RoleApoteker), drugHandler.Update)
	drugs.Delete("/:id", RequireRole(entity.RoleApoteker), drugHandler.Delete)

	// Drug transactions
	txHandler := NewDrugTransactionHandler(deps.TransactionUC)
	txs := api.Group("/drug-transactions")
	readers := RequireRole(entity.RoleDokter, entity.RoleApoteker, entity.RolePerawat)
	pharmacist := RequireRole(entity.RoleApoteker)
	txs.Get("/", readers, txHandler.List)
	txs.Get("/:id", readers, txHandler.GetByID)
	txs.Post("/", RequireRole(entity.RoleDokter, entity.RoleApoteker), txHandler.Create)
	txs.Post("/:id/complete", pharmacist, txHandler.Complete)
	txs.Post("/:id/cancel", pharmacist, txHandler.Cancel)
	txs.Put("/:id/items", pharmacist, txHandler.EditItems)

	// Alerts
	alertHandler := NewAlertHandler(deps.AlertUC)
	alerts := api.Group("/alerts")
	alerts.Get("/", alertHandler.List)
	alerts.Post("/:id/read", alertHandler.MarkRead)
}
