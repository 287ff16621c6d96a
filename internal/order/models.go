package order

import "time"

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

type Priority string

const (
	PriorityUrgent  Priority = "Urgent"
	PriorityRoutine Priority = "Routine"
)

// Order is a lab or imaging request placed from the consultant view.
type Order struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patientId"`
	PatientName string    `json:"patientName"`
	DoctorName  string    `json:"doctorName"`
	Items       []string  `json:"items"`
	Status      Status    `json:"status"`
	Priority    Priority  `json:"priority"`
	Timestamp   time.Time `json:"timestamp"`
}

// PlaceOrderRequest is the consultant's order form.
type PlaceOrderRequest struct {
	PatientID string   `json:"patientId"`
	Items     []string `json:"items"`
}

// Catalog lists what can be ordered.
type Catalog struct {
	Labs    []string `json:"labs"`
	Imaging []string `json:"imaging"`
}

var DefaultCatalog = Catalog{
	Labs:    []string{"Complete Blood Count (CBC)", "Basic Metabolic Panel", "Liver Function Test", "Lipid Panel", "Urinalysis", "Troponin I"},
	Imaging: []string{"Chest X-Ray", "CT Head", "MRI Brain", "Ultrasound Abdomen", "ECG 12-Lead"},
}
