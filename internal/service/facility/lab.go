package facility

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
	"github.com/labloom/marketplace-api/pkg/validator"
)

// Report status progression for lab uploads.
const (
	reportStatusNormal    = "Normal Results"
	reportStatusPending   = "Pending Validation"
	reportStatusValidated = "Validated"
)

// CatalogItem joins a lab's catalog entry with the global test it prices.
type CatalogItem struct {
	Entry model.CatalogEntry `json:"entry"`
	Test  *model.Test        `json:"test,omitempty"`
}

type CatalogEntryRequest struct {
	TestID          uuid.UUID `json:"test_id" binding:"required"`
	Price           int64     `json:"price" binding:"required"`
	TurnaroundHours int       `json:"turnaround_hours,omitempty"`
	Available       *bool     `json:"available,omitempty"`
}

// Catalog lists the lab's offered tests with their global definitions.
func (s *Service) Catalog(ctx context.Context, staff *model.Account) ([]CatalogItem, error) {
	lab, err := s.labForStaff(ctx, staff)
	if err != nil {
		return nil, err
	}

	items := make([]CatalogItem, 0, len(lab.Catalog))
	for _, entry := range lab.Catalog {
		item := CatalogItem{Entry: entry}
		if test, err := s.tests.Get(ctx, entry.TestID); err == nil {
			item.Test = test
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		in, jn := "", ""
		if items[i].Test != nil {
			in = strings.ToLower(items[i].Test.Name)
		}
		if items[j].Test != nil {
			jn = strings.ToLower(items[j].Test.Name)
		}
		return in < jn
	})
	return items, nil
}

// AddCatalogEntry offers a test at this lab. A test can appear once per lab.
func (s *Service) AddCatalogEntry(ctx context.Context, staff *model.Account, req *CatalogEntryRequest) (*model.CatalogEntry, error) {
	lab, err := s.labForStaff(ctx, staff)
	if err != nil {
		return nil, err
	}

	if _, err := s.tests.Get(ctx, req.TestID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("test")
		}
		return nil, apperrors.Storage(err)
	}
	for _, entry := range lab.Catalog {
		if entry.TestID == req.TestID {
			return nil, apperrors.Conflict("test already in catalog")
		}
	}

	entry := model.CatalogEntry{
		ID:              uuid.New(),
		TestID:          req.TestID,
		Price:           req.Price,
		TurnaroundHours: req.TurnaroundHours,
		Available:       true,
	}
	if req.Available != nil {
		entry.Available = *req.Available
	}

	lab.Catalog = append(lab.Catalog, entry)
	if err := s.labs.Update(ctx, lab); err != nil {
		return nil, apperrors.Storage(err)
	}
	return &entry, nil
}

// UpdateCatalogEntry changes price, turnaround, or availability in place.
func (s *Service) UpdateCatalogEntry(ctx context.Context, staff *model.Account, entryID uuid.UUID, req *CatalogEntryRequest) (*model.CatalogEntry, error) {
	lab, err := s.labForStaff(ctx, staff)
	if err != nil {
		return nil, err
	}

	for i := range lab.Catalog {
		if lab.Catalog[i].ID != entryID {
			continue
		}
		if req.Price > 0 {
			lab.Catalog[i].Price = req.Price
		}
		if req.TurnaroundHours > 0 {
			lab.Catalog[i].TurnaroundHours = req.TurnaroundHours
		}
		if req.Available != nil {
			lab.Catalog[i].Available = *req.Available
		}
		if err := s.labs.Update(ctx, lab); err != nil {
			return nil, apperrors.Storage(err)
		}
		return &lab.Catalog[i], nil
	}
	return nil, apperrors.NotFound("catalog entry")
}

func (s *Service) RemoveCatalogEntry(ctx context.Context, staff *model.Account, entryID uuid.UUID) error {
	lab, err := s.labForStaff(ctx, staff)
	if err != nil {
		return err
	}

	for i := range lab.Catalog {
		if lab.Catalog[i].ID == entryID {
			lab.Catalog = append(lab.Catalog[:i], lab.Catalog[i+1:]...)
			if err := s.labs.Update(ctx, lab); err != nil {
				return apperrors.Storage(err)
			}
			return nil
		}
	}
	return apperrors.NotFound("catalog entry")
}

type LabSettingsRequest struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Address        *string `json:"address,omitempty"`
	City           *string `json:"city,omitempty"`
	HomeCollection *bool   `json:"home_collection,omitempty"`
}

func (s *Service) LabSettings(ctx context.Context, staff *model.Account) (*model.Lab, error) {
	return s.labForStaff(ctx, staff)
}

// UpdateLabSettings applies the provided fields; nil means leave unchanged.
func (s *Service) UpdateLabSettings(ctx context.Context, staff *model.Account, req *LabSettingsRequest) (*model.Lab, error) {
	lab, err := s.labForStaff(ctx, staff)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != "" {
		lab.Name = *req.Name
	}
	if req.Email != nil {
		lab.Email = req.Email
	}
	if req.Address != nil {
		lab.Address = req.Address
	}
	if req.City != nil {
		lab.City = req.City
	}
	if req.HomeCollection != nil {
		lab.HomeCollection = *req.HomeCollection
	}

	if err := s.labs.Update(ctx, lab); err != nil {
		return nil, apperrors.Storage(err)
	}
	return lab, nil
}

type AddStaffRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone" binding:"required"`
}

// LabStaff lists the accounts linked to the caller's lab.
func (s *Service) LabStaff(ctx context.Context, staff *model.Account) ([]*model.Account, error) {
	lab, err := s.labForStaff(ctx, staff)
	if err != nil {
		return nil, err
	}

	filter := &model.AccountFilter{Role: model.RoleLab}
	filter.PageSize = 100
	accounts, _, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	var out []*model.Account
	for _, a := range accounts {
		if a.EntityID != nil && *a.EntityID == lab.ID {
			out = append(out, a)
		}
	}
	return out, nil
}

// AddLabStaff creates a pre-approved lab account linked to the caller's lab.
// Staff added this way inherit the facility's approval and log in by OTP.
func (s *Service) AddLabStaff(ctx context.Context, staff *model.Account, req *AddStaffRequest) (*model.Account, error) {
	lab, err := s.labForStaff(ctx, staff)
	if err != nil {
		return nil, err
	}

	if !validator.ValidPhone(req.Phone) {
		return nil, apperrors.InvalidRequest("invalid phone number")
	}
	if _, err := s.accounts.GetByPhone(ctx, req.Phone); err == nil {
		return nil, apperrors.Conflict("phone already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Storage(err)
	}

	kind := model.EntityKindLab
	account := &model.Account{
		Name:       req.Name,
		Phone:      req.Phone,
		Role:       model.RoleLab,
		Approved:   true,
		Active:     true,
		EntityKind: &kind,
		EntityID:   &lab.ID,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, apperrors.Storage(err)
	}
	return account, nil
}

// UploadReport attaches a processed result file to a completed test booking.
// Reports uploaded by the owning lab are trusted as final.
func (s *Service) UploadReport(ctx context.Context, staff *model.Account, bookingID uuid.UUID, filename string, r io.Reader) (*model.Booking, error) {
	return s.attachReport(ctx, staff, bookingID, filename, r, reportStatusNormal)
}

// UploadLegacyReport ingests a result file that still needs validation by
// the lab before the patient sees a final status.
func (s *Service) UploadLegacyReport(ctx context.Context, staff *model.Account, bookingID uuid.UUID, filename string, r io.Reader) (*model.Booking, error) {
	return s.attachReport(ctx, staff, bookingID, filename, r, reportStatusPending)
}

func (s *Service) attachReport(ctx context.Context, staff *model.Account, bookingID uuid.UUID, filename string, r io.Reader, status string) (*model.Booking, error) {
	lab, err := s.labForStaff(ctx, staff)
	if err != nil {
		return nil, err
	}
	booking, err := s.labBooking(ctx, lab, bookingID)
	if err != nil {
		return nil, err
	}

	url, err := s.storage.Save("reports", filename, r)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	resultDate := s.now()
	booking.LabReport = model.LabReport{
		URL:        url,
		Status:     status,
		ResultDate: &resultDate,
	}
	booking.Status = model.BookingStatusCompleted
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.Storage(err)
	}

	if s.notifications != nil {
		_, _ = s.notifications.Notify(ctx, booking.UserID, model.NotificationBooking,
			"Lab report ready", "Your test report has been uploaded")
	}
	return booking, nil
}

// ValidateReport marks a pending report as validated and closes the booking.
func (s *Service) ValidateReport(ctx context.Context, staff *model.Account, bookingID uuid.UUID) (*model.Booking, error) {
	lab, err := s.labForStaff(ctx, staff)
	if err != nil {
		return nil, err
	}
	booking, err := s.labBooking(ctx, lab, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.LabReport.IsZero() {
		return nil, apperrors.InvalidRequest("booking has no report to validate")
	}

	booking.LabReport.Status = reportStatusValidated
	booking.Status = model.BookingStatusCompleted
	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, apperrors.Storage(err)
	}

	if s.notifications != nil {
		_, _ = s.notifications.Notify(ctx, booking.UserID, model.NotificationBooking,
			"Lab report validated", "Your test report has been validated")
	}
	return booking, nil
}

// ReportURL returns the stored report location for the booking's patient or
// the owning lab.
func (s *Service) ReportURL(ctx context.Context, caller *model.Account, bookingID uuid.UUID) (string, error) {
	booking, err := s.bookings.Get(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return "", apperrors.NotFound("booking")
	}
	if err != nil {
		return "", apperrors.Storage(err)
	}

	allowed := booking.UserID == caller.ID
	if !allowed {
		if kind, id, ok := caller.EntityRef(); ok && kind == model.EntityKindLab &&
			booking.LabID != nil && *booking.LabID == id {
			allowed = true
		}
	}
	if !allowed {
		return "", apperrors.Forbidden("no access to this report")
	}
	if booking.LabReport.URL == "" {
		return "", apperrors.NotFound("report")
	}
	return booking.LabReport.URL, nil
}
