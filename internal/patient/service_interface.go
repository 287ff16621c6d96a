package patient

import "context"

// ServiceInterface defines the contract for patient business logic operations
type ServiceInterface interface {
	List(filter ListFilter) []Patient
	Get(id string) (Patient, error)
	Stats() Stats
	Register(ctx context.Context, req RegisterRequest) (Patient, error)
	MarkSeen(ctx context.Context, id, actor string) (Patient, error)
	Admit(ctx context.Context, id string, req AdmissionRequest, actor string) (Patient, error)
	DischargeDraft(id string) (DischargeForm, error)
	Discharge(ctx context.Context, id string, form DischargeForm, actor string) (Patient, error)
	AddNote(ctx context.Context, id, note string) (Patient, error)
	SetSeverity(ctx context.Context, id string, sev Severity, actor string) (Patient, error)
	Assessment(id string) (Assessment, error)
	Wards() []Ward
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
