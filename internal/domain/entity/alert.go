package entity

import "time"

// Categorías de alertas generadas por el núcleo clínico.
const (
	AlertCategoryLab       = "LAB"
	AlertCategoryEmergency = "EMERGENCY"
)

// Alert notificación interna dirigida a un rol del personal.
type Alert struct {
	ID         string
	Type       string // info, warning, critical
	Message    string
	PatientID  string
	Category   string
	Priority   string
	TargetRole string
	IsRead     bool
	CreatedAt  time.Time
}
