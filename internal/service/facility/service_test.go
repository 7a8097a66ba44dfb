package facility

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	"github.com/labloom/marketplace-api/internal/service/notification"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
)

type fakeLabRepo struct {
	labs map[uuid.UUID]*model.Lab
}

func newFakeLabRepo() *fakeLabRepo {
	return &fakeLabRepo{labs: make(map[uuid.UUID]*model.Lab)}
}

func (r *fakeLabRepo) Create(_ context.Context, lab *model.Lab) error {
	if lab.ID == uuid.Nil {
		lab.ID = uuid.New()
	}
	copied := *lab
	r.labs[lab.ID] = &copied
	return nil
}

func (r *fakeLabRepo) Get(_ context.Context, id uuid.UUID) (*model.Lab, error) {
	lab, ok := r.labs[id]
	if !ok {
		return nil, fmt.Errorf("lab: %w", repository.ErrNotFound)
	}
	copied := *lab
	return &copied, nil
}

func (r *fakeLabRepo) Update(_ context.Context, lab *model.Lab) error {
	copied := *lab
	r.labs[lab.ID] = &copied
	return nil
}

func (r *fakeLabRepo) List(_ context.Context, filter *model.LabFilter) ([]*model.Lab, int, error) {
	var out []*model.Lab
	for _, lab := range r.labs {
		if lab.Status != model.VerificationApproved {
			continue
		}
		if filter.City != "" && (lab.City == nil || !strings.EqualFold(*lab.City, filter.City)) {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(lab.Name), strings.ToLower(filter.Search)) {
			continue
		}
		copied := *lab
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeLabRepo) ListByStatus(_ context.Context, status model.VerificationStatus) ([]*model.Lab, error) {
	var out []*model.Lab
	for _, lab := range r.labs {
		if lab.Status == status {
			copied := *lab
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeHospitalRepo struct {
	hospitals map[uuid.UUID]*model.Hospital
}

func newFakeHospitalRepo() *fakeHospitalRepo {
	return &fakeHospitalRepo{hospitals: make(map[uuid.UUID]*model.Hospital)}
}

func (r *fakeHospitalRepo) Create(_ context.Context, h *model.Hospital) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	copied := *h
	r.hospitals[h.ID] = &copied
	return nil
}

func (r *fakeHospitalRepo) Get(_ context.Context, id uuid.UUID) (*model.Hospital, error) {
	h, ok := r.hospitals[id]
	if !ok {
		return nil, fmt.Errorf("hospital: %w", repository.ErrNotFound)
	}
	copied := *h
	return &copied, nil
}

func (r *fakeHospitalRepo) Update(_ context.Context, h *model.Hospital) error {
	copied := *h
	r.hospitals[h.ID] = &copied
	return nil
}

func (r *fakeHospitalRepo) ListByStatus(_ context.Context, status model.VerificationStatus) ([]*model.Hospital, error) {
	var out []*model.Hospital
	for _, h := range r.hospitals {
		if h.Status == status {
			copied := *h
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeHospitalRepo) ListPopular(_ context.Context, limit int) ([]*model.Hospital, error) {
	var out []*model.Hospital
	for _, h := range r.hospitals {
		if h.Status == model.VerificationApproved {
			copied := *h
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeHospitalRepo) FindByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Hospital, error) {
	var out []*model.Hospital
	for _, h := range r.hospitals {
		if _, ok := h.Roster.Find(doctorID); ok {
			copied := *h
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeAccountRepo struct {
	accounts map[uuid.UUID]*model.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: make(map[uuid.UUID]*model.Account)}
}

func (r *fakeAccountRepo) Create(_ context.Context, a *model.Account) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	copied := *a
	r.accounts[a.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) Get(_ context.Context, id uuid.UUID) (*model.Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("account: %w", repository.ErrNotFound)
	}
	copied := *a
	return &copied, nil
}

func (r *fakeAccountRepo) GetByPhone(_ context.Context, phone string) (*model.Account, error) {
	for _, a := range r.accounts {
		if a.Phone == phone {
			copied := *a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("account: %w", repository.ErrNotFound)
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, email string) (*model.Account, error) {
	for _, a := range r.accounts {
		if a.Email != nil && *a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("account: %w", repository.ErrNotFound)
}

func (r *fakeAccountRepo) Update(_ context.Context, a *model.Account) error {
	copied := *a
	r.accounts[a.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) List(_ context.Context, filter *model.AccountFilter) ([]*model.Account, int, error) {
	var out []*model.Account
	for _, a := range r.accounts {
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeAccountRepo) ListDoctors(_ context.Context, specialization, search string) ([]*model.Account, error) {
	var out []*model.Account
	for _, a := range r.accounts {
		if a.Role != model.RoleDoctor {
			continue
		}
		if specialization != "" && !strings.EqualFold(a.DoctorProfile.Specialization, specialization) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(search)) {
			continue
		}
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeAccountRepo) CountByRole(_ context.Context) (map[model.Role]int, error) {
	return nil, nil
}

func (r *fakeAccountRepo) DeleteByPhoneExcept(_ context.Context, _ string, _ model.Role) error {
	return nil
}

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*model.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*model.Booking)}
}

func (r *fakeBookingRepo) Create(_ context.Context, b *model.Booking) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) Get(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return nil, fmt.Errorf("booking: %w", repository.ErrNotFound)
	}
	copied := *b
	return &copied, nil
}

func (r *fakeBookingRepo) Update(_ context.Context, b *model.Booking) error {
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) List(_ context.Context, _ *model.BookingFilter) ([]*model.Booking, int, error) {
	return nil, 0, nil
}

func (r *fakeBookingRepo) ListForDoctorDay(_ context.Context, doctorID uuid.UUID, dayStart, dayEnd time.Time) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.DoctorID == nil || *b.DoctorID != doctorID {
			continue
		}
		if b.Date.Before(dayStart) || !b.Date.Before(dayEnd) {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeBookingRepo) ListCompletedForDoctors(_ context.Context, doctorIDs []uuid.UUID, _, _ *time.Time) ([]*model.Booking, error) {
	ids := make(map[uuid.UUID]bool, len(doctorIDs))
	for _, id := range doctorIDs {
		ids[id] = true
	}
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.Type != model.BookingTypeDoctor || b.Status != model.BookingStatusCompleted {
			continue
		}
		if b.DoctorID == nil || !ids[*b.DoctorID] {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByType(_ context.Context) (map[model.BookingType]int, error) {
	return nil, nil
}

type fakeTestRepo struct {
	tests map[uuid.UUID]*model.Test
}

func newFakeTestRepo() *fakeTestRepo {
	return &fakeTestRepo{tests: make(map[uuid.UUID]*model.Test)}
}

func (r *fakeTestRepo) Create(_ context.Context, t *model.Test) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	copied := *t
	r.tests[t.ID] = &copied
	return nil
}

func (r *fakeTestRepo) Get(_ context.Context, id uuid.UUID) (*model.Test, error) {
	tt, ok := r.tests[id]
	if !ok {
		return nil, fmt.Errorf("test: %w", repository.ErrNotFound)
	}
	copied := *tt
	return &copied, nil
}

func (r *fakeTestRepo) Update(_ context.Context, t *model.Test) error {
	copied := *t
	r.tests[t.ID] = &copied
	return nil
}

func (r *fakeTestRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.tests, id)
	return nil
}

func (r *fakeTestRepo) List(_ context.Context) ([]*model.Test, error) {
	var out []*model.Test
	for _, t := range r.tests {
		copied := *t
		out = append(out, &copied)
	}
	return out, nil
}

type fakeStorage struct {
	saved []string
}

func (s *fakeStorage) Save(dir, filename string, r io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, r)
	url := "https://files.local/" + dir + "/" + filename
	s.saved = append(s.saved, url)
	return url, nil
}

func (s *fakeStorage) Remove(_ string) error { return nil }

type fakeNotificationRepo struct {
	stored []*model.Notification
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	copied := *n
	r.stored = append(r.stored, &copied)
	return nil
}

func (r *fakeNotificationRepo) ListByAccount(_ context.Context, _ uuid.UUID) ([]*model.Notification, error) {
	return nil, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, _ uuid.UUID) error { return nil }

type fixture struct {
	svc           *Service
	labs          *fakeLabRepo
	hospitals     *fakeHospitalRepo
	accounts      *fakeAccountRepo
	bookings      *fakeBookingRepo
	tests         *fakeTestRepo
	storage       *fakeStorage
	notifications *fakeNotificationRepo

	lab           *model.Lab
	hospital      *model.Hospital
	labStaff      *model.Account
	hospitalStaff *model.Account
	doctor        *model.Account
	patient       *model.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	labs := newFakeLabRepo()
	hospitals := newFakeHospitalRepo()
	accounts := newFakeAccountRepo()
	bookings := newFakeBookingRepo()
	tests := newFakeTestRepo()
	storage := &fakeStorage{}
	notifRepo := &fakeNotificationRepo{}

	ctx := context.Background()

	city := "Pune"
	lab := &model.Lab{Name: "Prism Diagnostics", RegistrationNumber: "LAB-100", Phone: "5550003333", City: &city, Status: model.VerificationApproved}
	require.NoError(t, labs.Create(ctx, lab))

	hospital := &model.Hospital{Name: "City Care", RegistrationNumber: "HOSP-100", Phone: "5550004444", Status: model.VerificationApproved, Rating: 4.5}
	require.NoError(t, hospitals.Create(ctx, hospital))

	labKind := model.EntityKindLab
	labStaff := &model.Account{Name: "Lab Front Desk", Phone: "5550005555", Role: model.RoleLab, Approved: true, Active: true, EntityKind: &labKind, EntityID: &lab.ID}
	require.NoError(t, accounts.Create(ctx, labStaff))

	hospitalKind := model.EntityKindHospital
	hospitalStaff := &model.Account{Name: "Hospital Admin", Phone: "5550006666", Role: model.RoleHospital, Approved: true, Active: true, EntityKind: &hospitalKind, EntityID: &hospital.ID}
	require.NoError(t, accounts.Create(ctx, hospitalStaff))

	doctor := &model.Account{Name: "Dr. Rao", Phone: "5550007777", Role: model.RoleDoctor, Approved: true, Active: true,
		DoctorProfile: model.DoctorProfile{Specialization: "Cardiology", VerificationStatus: model.VerificationApproved}}
	require.NoError(t, accounts.Create(ctx, doctor))

	patient := &model.Account{Name: "Asha", Phone: "5550008888", Role: model.RolePatient, Active: true}
	require.NoError(t, accounts.Create(ctx, patient))

	logger := zerolog.Nop()
	notifications := notification.NewService(notifRepo, nil, &logger, nil)

	svc := NewService(labs, hospitals, accounts, bookings, tests, storage, notifications)

	return &fixture{
		svc:           svc,
		labs:          labs,
		hospitals:     hospitals,
		accounts:      accounts,
		bookings:      bookings,
		tests:         tests,
		storage:       storage,
		notifications: notifRepo,
		lab:           lab,
		hospital:      hospital,
		labStaff:      labStaff,
		hospitalStaff: hospitalStaff,
		doctor:        doctor,
		patient:       patient,
	}
}

func (f *fixture) addTest(t *testing.T, name, category string) *model.Test {
	t.Helper()
	test := &model.Test{Name: name, Category: category, Price: 500}
	require.NoError(t, f.tests.Create(context.Background(), test))
	return test
}

func (f *fixture) addLabBooking(t *testing.T, testID uuid.UUID, status model.BookingStatus) *model.Booking {
	t.Helper()
	b := &model.Booking{
		UserID: f.patient.ID,
		TestID: &testID,
		LabID:  &f.lab.ID,
		Type:   model.BookingTypeTest,
		Date:   time.Now(),
		Status: status,
	}
	require.NoError(t, f.bookings.Create(context.Background(), b))
	return b
}

func TestAddCatalogEntry_RejectsDuplicateTest(t *testing.T) {
	f := newFixture(t)
	test := f.addTest(t, "CBC", "Blood")

	entry, err := f.svc.AddCatalogEntry(context.Background(), f.labStaff, &CatalogEntryRequest{TestID: test.ID, Price: 450})
	require.NoError(t, err)
	assert.True(t, entry.Available)
	assert.NotEqual(t, uuid.Nil, entry.ID)

	_, err = f.svc.AddCatalogEntry(context.Background(), f.labStaff, &CatalogEntryRequest{TestID: test.ID, Price: 500})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	items, err := f.svc.Catalog(context.Background(), f.labStaff)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(450), items[0].Entry.Price)
	require.NotNil(t, items[0].Test)
	assert.Equal(t, "CBC", items[0].Test.Name)
}

func TestAddCatalogEntry_UnknownTest(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddCatalogEntry(context.Background(), f.labStaff, &CatalogEntryRequest{TestID: uuid.New(), Price: 450})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestUpdateAndRemoveCatalogEntry(t *testing.T) {
	f := newFixture(t)
	test := f.addTest(t, "CBC", "Blood")

	entry, err := f.svc.AddCatalogEntry(context.Background(), f.labStaff, &CatalogEntryRequest{TestID: test.ID, Price: 450})
	require.NoError(t, err)

	off := false
	updated, err := f.svc.UpdateCatalogEntry(context.Background(), f.labStaff, entry.ID, &CatalogEntryRequest{Price: 600, Available: &off})
	require.NoError(t, err)
	assert.Equal(t, int64(600), updated.Price)
	assert.False(t, updated.Available)

	// Unavailable entries drop out of the public listing.
	public, err := f.svc.LabTests(context.Background(), f.lab.ID)
	require.NoError(t, err)
	assert.Empty(t, public)

	require.NoError(t, f.svc.RemoveCatalogEntry(context.Background(), f.labStaff, entry.ID))
	err = f.svc.RemoveCatalogEntry(context.Background(), f.labStaff, entry.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestLabOperations_RequireLabLink(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Catalog(context.Background(), f.patient)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	// Hospital staff are linked to a facility, just not a lab.
	_, err = f.svc.Catalog(context.Background(), f.hospitalStaff)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}

func TestAddLabStaff_PreApproved(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.AddLabStaff(context.Background(), f.labStaff, &AddStaffRequest{Name: "Tech", Phone: "5550009999"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleLab, created.Role)
	assert.True(t, created.Approved)
	require.NotNil(t, created.EntityID)
	assert.Equal(t, f.lab.ID, *created.EntityID)

	_, err = f.svc.AddLabStaff(context.Background(), f.labStaff, &AddStaffRequest{Name: "Again", Phone: "5550009999"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	staff, err := f.svc.LabStaff(context.Background(), f.labStaff)
	require.NoError(t, err)
	assert.Len(t, staff, 2)
}

func TestUploadReport_CompletesBookingAndNotifies(t *testing.T) {
	f := newFixture(t)
	test := f.addTest(t, "CBC", "Blood")
	booking := f.addLabBooking(t, test.ID, model.BookingStatusConfirmed)

	updated, err := f.svc.UploadReport(context.Background(), f.labStaff, booking.ID, "cbc.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusCompleted, updated.Status)
	assert.Equal(t, "Normal Results", updated.LabReport.Status)
	assert.Contains(t, updated.LabReport.URL, "reports/")
	require.NotNil(t, updated.LabReport.ResultDate)

	require.Len(t, f.notifications.stored, 1)
	assert.Equal(t, f.patient.ID, f.notifications.stored[0].AccountID)
}

func TestValidateReport_Flow(t *testing.T) {
	f := newFixture(t)
	test := f.addTest(t, "CBC", "Blood")
	booking := f.addLabBooking(t, test.ID, model.BookingStatusConfirmed)

	pending, err := f.svc.UploadLegacyReport(context.Background(), f.labStaff, booking.ID, "scan.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, "Pending Validation", pending.LabReport.Status)

	validated, err := f.svc.ValidateReport(context.Background(), f.labStaff, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "Validated", validated.LabReport.Status)
	assert.Equal(t, model.BookingStatusCompleted, validated.Status)
}

func TestValidateReport_WithoutUpload(t *testing.T) {
	f := newFixture(t)
	test := f.addTest(t, "CBC", "Blood")
	booking := f.addLabBooking(t, test.ID, model.BookingStatusConfirmed)

	_, err := f.svc.ValidateReport(context.Background(), f.labStaff, booking.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidRequest))
}

func TestReportURL_AccessControl(t *testing.T) {
	f := newFixture(t)
	test := f.addTest(t, "CBC", "Blood")
	booking := f.addLabBooking(t, test.ID, model.BookingStatusConfirmed)

	_, err := f.svc.UploadReport(context.Background(), f.labStaff, booking.ID, "cbc.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	url, err := f.svc.ReportURL(context.Background(), f.patient, booking.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	url, err = f.svc.ReportURL(context.Background(), f.labStaff, booking.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, url)

	stranger := &model.Account{Base: model.Base{ID: uuid.New()}, Role: model.RolePatient}
	_, err = f.svc.ReportURL(context.Background(), stranger, booking.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))
}

func TestAddToRoster_MirrorsAffiliation(t *testing.T) {
	f := newFixture(t)

	entry, err := f.svc.AddToRoster(context.Background(), f.hospitalStaff, &RosterRequest{DoctorID: f.doctor.ID, Department: "Cardiology"})
	require.NoError(t, err)
	assert.True(t, entry.Active)
	assert.Equal(t, "Dr. Rao", entry.Name)

	doctor, err := f.accounts.Get(context.Background(), f.doctor.ID)
	require.NoError(t, err)
	require.Len(t, doctor.DoctorProfile.Affiliations, 1)
	assert.Equal(t, f.hospital.ID, doctor.DoctorProfile.Affiliations[0].HospitalID)
	assert.Equal(t, "City Care", doctor.DoctorProfile.Affiliations[0].HospitalName)

	_, err = f.svc.AddToRoster(context.Background(), f.hospitalStaff, &RosterRequest{DoctorID: f.doctor.ID})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))
}

func TestAddToRoster_RejectsNonDoctor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddToRoster(context.Background(), f.hospitalStaff, &RosterRequest{DoctorID: f.patient.ID})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidRequest))
}

func TestRemoveFromRoster_ClearsAffiliation(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddToRoster(context.Background(), f.hospitalStaff, &RosterRequest{DoctorID: f.doctor.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveFromRoster(context.Background(), f.hospitalStaff, f.doctor.ID))

	roster, err := f.svc.Roster(context.Background(), f.hospitalStaff)
	require.NoError(t, err)
	assert.Empty(t, roster)

	doctor, err := f.accounts.Get(context.Background(), f.doctor.ID)
	require.NoError(t, err)
	assert.Empty(t, doctor.DoctorProfile.Affiliations)
}

func TestAssignSlots(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddToRoster(context.Background(), f.hospitalStaff, &RosterRequest{DoctorID: f.doctor.ID})
	require.NoError(t, err)

	err = f.svc.AssignSlots(context.Background(), f.hospitalStaff, &SlotAssignmentRequest{
		DoctorID: f.doctor.ID,
		Date:     "2024-07-01",
		Times:    []string{"17:00", "17:30"},
	})
	require.NoError(t, err)

	roster, err := f.svc.Roster(context.Background(), f.hospitalStaff)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	assert.Equal(t, []string{"17:00", "17:30"}, roster[0].Slots["2024-07-01"])

	err = f.svc.AssignSlots(context.Background(), f.hospitalStaff, &SlotAssignmentRequest{
		DoctorID: f.doctor.ID,
		Date:     "July 1st",
		Times:    []string{"17:00"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidRequest))
}

func TestDashboard_SumsRevenueWithFallback(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddToRoster(context.Background(), f.hospitalStaff, &RosterRequest{DoctorID: f.doctor.ID})
	require.NoError(t, err)

	structured := int64(600)
	require.NoError(t, f.bookings.Create(context.Background(), &model.Booking{
		UserID:   f.patient.ID,
		DoctorID: &f.doctor.ID,
		Type:     model.BookingTypeDoctor,
		Date:     time.Now().AddDate(0, 0, -3),
		Status:   model.BookingStatusCompleted,
		Amount:   600,
		Revenue:  model.Revenue{HospitalAmount: &structured},
	}))
	// Older record without a structured breakdown falls back to the amount.
	require.NoError(t, f.bookings.Create(context.Background(), &model.Booking{
		UserID:   f.patient.ID,
		DoctorID: &f.doctor.ID,
		Type:     model.BookingTypeDoctor,
		Date:     time.Now().AddDate(0, 0, -10),
		Status:   model.BookingStatusCompleted,
		Amount:   400,
	}))
	// Today's confirmed appointment.
	require.NoError(t, f.bookings.Create(context.Background(), &model.Booking{
		UserID:   f.patient.ID,
		DoctorID: &f.doctor.ID,
		Type:     model.BookingTypeDoctor,
		Date:     time.Now(),
		Status:   model.BookingStatusConfirmed,
	}))

	stats, err := f.svc.Dashboard(context.Background(), f.hospitalStaff)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.RosterSize)
	assert.Equal(t, int64(1000), stats.TotalRevenue)
	assert.Equal(t, 1, stats.TodayAppointments)
}

func TestDirectory_LabsAndDoctors(t *testing.T) {
	f := newFixture(t)

	pendingCity := "Pune"
	require.NoError(t, f.labs.Create(context.Background(), &model.Lab{
		Name: "Unverified Lab", RegistrationNumber: "LAB-200", Phone: "5550001212",
		City: &pendingCity, Status: model.VerificationPending,
	}))

	labs, total, err := f.svc.Labs(context.Background(), &model.LabFilter{City: "pune"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, labs, 1)
	assert.Equal(t, "Prism Diagnostics", labs[0].Name)

	doctors, err := f.svc.Doctors(context.Background(), "Cardiology", "")
	require.NoError(t, err)
	require.Len(t, doctors, 1)

	detail, err := f.svc.Doctor(context.Background(), f.doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rao", detail.Account.Name)

	_, err = f.svc.Doctor(context.Background(), f.patient.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))

	popular, err := f.svc.PopularHospitals(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "City Care", popular[0].Name)
}
