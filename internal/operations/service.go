// Package operations holds the back-office records behind the pharmacy,
// billing, staff and cleaning views. None of them touch the patient registry.
package operations

import (
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrItemNotFound    = errors.New("inventory item not found")
	ErrAlreadyStocked  = errors.New("item is already in stock")
	ErrDraftNotFound   = errors.New("draft not found")
	ErrTaskNotFound    = errors.New("cleaning task not found")
	ErrUnknownFilter   = errors.New("unknown staff filter")
	ErrInvalidAmount   = errors.New("amount must be a positive number")
	ErrMissingName     = errors.New("patient name is required")
	ErrMissingService  = errors.New("service is required")
	ErrInvalidBillDate = errors.New("date must be YYYY-MM-DD")
)

type Service struct {
	mu        sync.RWMutex
	inventory []InventoryItem
	invoices  []Invoice
	drafts    []Draft
	claims    []Claim
	staff     []StaffMember
	tasks     []CleaningTask
	nextInv   int
	now       func() time.Time
	log       logrus.FieldLogger
}

func NewService(log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		inventory: seedInventory(),
		invoices:  seedInvoices(),
		claims:    seedClaims(),
		staff:     seedStaff(),
		tasks:     seedTasks(),
		nextInv:   5,
		now:       time.Now,
		log:       log,
	}
}

func (s *Service) SetClock(now func() time.Time) { s.now = now }
