package operations

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

type InvoiceStatus string

const (
	InvoicePaid    InvoiceStatus = "Paid"
	InvoicePending InvoiceStatus = "Pending"
	InvoiceOverdue InvoiceStatus = "Overdue"
)

type Invoice struct {
	ID      string        `json:"id"`
	Name    string        `json:"name"`
	Service string        `json:"service"`
	Date    string        `json:"date"`
	Amount  string        `json:"amount"`
	Status  InvoiceStatus `json:"status"`
}

// InvoiceForm is the create-invoice form. Amount is as typed; Date is
// YYYY-MM-DD.
type InvoiceForm struct {
	Name    string `json:"name"`
	Service string `json:"service"`
	Amount  string `json:"amount"`
	Date    string `json:"date"`
	Notes   string `json:"notes"`
}

// Draft is a half-filled invoice form parked for later.
type Draft struct {
	ID string `json:"id"`
	InvoiceForm
	SavedAt time.Time `json:"savedAt"`
}

type ClaimStatus string

const (
	ClaimPending  ClaimStatus = "Pending"
	ClaimVerified ClaimStatus = "Verified"
)

type Claim struct {
	ID      string      `json:"id"`
	Patient string      `json:"patient"`
	Policy  string      `json:"policy"`
	Amount  string      `json:"amount"`
	Status  ClaimStatus `json:"status"`
	Note    string      `json:"note"`
}

const autoVerifiedNote = "AI Verified: Policy covers 100% of claimed amount."

func seedInvoices() []Invoice {
	return []Invoice{
		{ID: "#INV-2024-001", Name: "Rajesh Kumar", Service: "ER Consultation", Date: "Oct 24, 2024", Amount: "450.00", Status: InvoicePaid},
		{ID: "#INV-2024-002", Name: "Anjali Sharma", Service: "MRI Scan (Brain)", Date: "Oct 24, 2024", Amount: "1,200.00", Status: InvoicePending},
		{ID: "#INV-2024-003", Name: "Priya Patel", Service: "Blood Panel", Date: "Oct 23, 2024", Amount: "120.00", Status: InvoicePaid},
		{ID: "#INV-2024-004", Name: "Arjun Singh", Service: "X-Ray (Wrist)", Date: "Oct 23, 2024", Amount: "210.00", Status: InvoiceOverdue},
	}
}

func seedClaims() []Claim {
	return []Claim{
		{ID: "CLM-001", Patient: "Rajesh Kumar", Policy: "HDFC-Health-123", Amount: "₹12,000", Status: ClaimPending, Note: "Waiting for approval"},
		{ID: "CLM-002", Patient: "Anjali Sharma", Policy: "Star-Health-456", Amount: "₹25,500", Status: ClaimPending, Note: "Document review"},
		{ID: "CLM-003", Patient: "Priya Patel", Policy: "ICICI-Lombard-789", Amount: "₹5,000", Status: ClaimVerified, Note: "AI Verified: Matches Policy terms"},
	}
}

// Invoices returns invoices newest first.
func (s *Service) Invoices() []Invoice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Invoice{}, s.invoices...)
}

// CreateInvoice validates the form and files a pending invoice at the top of
// the list.
func (s *Service) CreateInvoice(form InvoiceForm) (Invoice, error) {
	name := strings.TrimSpace(form.Name)
	if name == "" {
		return Invoice{}, ErrMissingName
	}
	service := strings.TrimSpace(form.Service)
	if service == "" {
		return Invoice{}, ErrMissingService
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(form.Amount), ",", ""), 64)
	if err != nil || amount <= 0 {
		return Invoice{}, ErrInvalidAmount
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(form.Date))
	if err != nil {
		return Invoice{}, ErrInvalidBillDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	inv := Invoice{
		ID:      fmt.Sprintf("#INV-%d-%03d", date.Year(), s.nextInv),
		Name:    name,
		Service: service,
		Date:    date.Format("Jan 2, 2006"),
		Amount:  strconv.FormatFloat(amount, 'f', 2, 64),
		Status:  InvoicePending,
	}
	s.nextInv++
	s.invoices = append([]Invoice{inv}, s.invoices...)

	s.log.WithFields(logrus.Fields{"invoice_id": inv.ID, "amount": inv.Amount}).Info("Invoice created")
	return inv, nil
}

// Drafts returns parked invoice forms, oldest first.
func (s *Service) Drafts() []Draft {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Draft{}, s.drafts...)
}

// SaveDraft parks a form. Only the patient name is required.
func (s *Service) SaveDraft(form InvoiceForm) (Draft, error) {
	if strings.TrimSpace(form.Name) == "" {
		return Draft{}, ErrMissingName
	}
	d := Draft{ID: uuid.NewString(), InvoiceForm: form, SavedAt: s.now()}

	s.mu.Lock()
	s.drafts = append(s.drafts, d)
	s.mu.Unlock()
	return d, nil
}

// ResumeDraft removes a draft and hands its form back for editing.
func (s *Service) ResumeDraft(id string) (InvoiceForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, idx, ok := lo.FindIndexOf(s.drafts, func(d Draft) bool { return d.ID == id })
	if !ok {
		return InvoiceForm{}, ErrDraftNotFound
	}
	s.drafts = append(s.drafts[:idx], s.drafts[idx+1:]...)
	return d.InvoiceForm, nil
}

func (s *Service) Claims() []Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Claim{}, s.claims...)
}

// AutoVerifyClaims marks every pending claim verified and returns how many
// changed.
func (s *Service) AutoVerifyClaims() ([]Claim, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	verified := 0
	for i, c := range s.claims {
		if c.Status != ClaimPending {
			continue
		}
		s.claims[i].Status = ClaimVerified
		s.claims[i].Note = autoVerifiedNote
		verified++
	}
	s.log.WithField("verified", verified).Info("Insurance claims auto-processed")
	return append([]Claim{}, s.claims...), verified
}
