package booking

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labloom/marketplace-api/config"
	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
)

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
	if _, ok := r.bookings[b.ID]; !ok {
		return fmt.Errorf("booking: %w", repository.ErrNotFound)
	}
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *fakeBookingRepo) List(_ context.Context, filter *model.BookingFilter) ([]*model.Booking, int, error) {
	var out []*model.Booking
	for _, b := range r.bookings {
		if filter.UserID != nil && b.UserID != *filter.UserID {
			continue
		}
		if filter.DoctorID != nil && (b.DoctorID == nil || *b.DoctorID != *filter.DoctorID) {
			continue
		}
		if filter.LabID != nil && (b.LabID == nil || *b.LabID != *filter.LabID) {
			continue
		}
		if filter.Type != "" && b.Type != filter.Type {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, len(out), nil
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

func (r *fakeBookingRepo) ListCompletedForDoctors(_ context.Context, doctorIDs []uuid.UUID, from, to *time.Time) ([]*model.Booking, error) {
	ids := make(map[uuid.UUID]struct{})
	for _, id := range doctorIDs {
		ids[id] = struct{}{}
	}
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.Type != model.BookingTypeDoctor || b.Status != model.BookingStatusCompleted {
			continue
		}
		if b.DoctorID == nil {
			continue
		}
		if _, ok := ids[*b.DoctorID]; !ok {
			continue
		}
		if from != nil && b.Date.Before(*from) {
			continue
		}
		if to != nil && b.Date.After(*to) {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByType(_ context.Context) (map[model.BookingType]int, error) {
	counts := make(map[model.BookingType]int)
	for _, b := range r.bookings {
		counts[b.Type]++
	}
	return counts, nil
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
	if _, ok := r.accounts[a.ID]; !ok {
		return fmt.Errorf("account: %w", repository.ErrNotFound)
	}
	copied := *a
	r.accounts[a.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) List(_ context.Context, _ *model.AccountFilter) ([]*model.Account, int, error) {
	var out []*model.Account
	for _, a := range r.accounts {
		copied := *a
		out = append(out, &copied)
	}
	return out, len(out), nil
}

func (r *fakeAccountRepo) ListDoctors(_ context.Context, _, _ string) ([]*model.Account, error) {
	var out []*model.Account
	for _, a := range r.accounts {
		if a.Role == model.RoleDoctor {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) CountByRole(_ context.Context) (map[model.Role]int, error) {
	counts := make(map[model.Role]int)
	for _, a := range r.accounts {
		counts[a.Role]++
	}
	return counts, nil
}

func (r *fakeAccountRepo) DeleteByPhoneExcept(_ context.Context, phone string, keep model.Role) error {
	for id, a := range r.accounts {
		if a.Phone == phone && a.Role != keep {
			delete(r.accounts, id)
		}
	}
	return nil
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
	r.tests[t.ID] = t
	return nil
}

func (r *fakeTestRepo) Get(_ context.Context, id uuid.UUID) (*model.Test, error) {
	t, ok := r.tests[id]
	if !ok {
		return nil, fmt.Errorf("test: %w", repository.ErrNotFound)
	}
	return t, nil
}

func (r *fakeTestRepo) Update(_ context.Context, t *model.Test) error { return nil }
func (r *fakeTestRepo) Delete(_ context.Context, _ uuid.UUID) error   { return nil }
func (r *fakeTestRepo) List(_ context.Context) ([]*model.Test, error) {
	var out []*model.Test
	for _, t := range r.tests {
		out = append(out, t)
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
	r.hospitals[h.ID] = h
	return nil
}

func (r *fakeHospitalRepo) Get(_ context.Context, id uuid.UUID) (*model.Hospital, error) {
	h, ok := r.hospitals[id]
	if !ok {
		return nil, fmt.Errorf("hospital: %w", repository.ErrNotFound)
	}
	return h, nil
}

func (r *fakeHospitalRepo) Update(_ context.Context, h *model.Hospital) error {
	r.hospitals[h.ID] = h
	return nil
}

func (r *fakeHospitalRepo) ListByStatus(_ context.Context, status model.VerificationStatus) ([]*model.Hospital, error) {
	var out []*model.Hospital
	for _, h := range r.hospitals {
		if h.Status == status {
			out = append(out, h)
		}
	}
	return out, nil
}

func (r *fakeHospitalRepo) ListPopular(_ context.Context, _ int) ([]*model.Hospital, error) {
	return nil, nil
}

func (r *fakeHospitalRepo) FindByDoctor(_ context.Context, doctorID uuid.UUID) ([]*model.Hospital, error) {
	var out []*model.Hospital
	for _, h := range r.hospitals {
		if _, ok := h.Roster.Find(doctorID); ok {
			out = append(out, h)
		}
	}
	return out, nil
}

func testConfig() config.BookingConfig {
	return config.BookingConfig{
		PlatformFee:  50,
		SlotStart:    "09:00",
		SlotEnd:      "16:30",
		SlotInterval: 30 * time.Minute,
	}
}

type fixture struct {
	svc       *Service
	bookings  *fakeBookingRepo
	accounts  *fakeAccountRepo
	tests     *fakeTestRepo
	hospitals *fakeHospitalRepo
	patient   *model.Account
	doctor    *model.Account
	test      *model.Test
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	bookings := newFakeBookingRepo()
	accounts := newFakeAccountRepo()
	tests := newFakeTestRepo()
	hospitals := newFakeHospitalRepo()

	patient := &model.Account{Name: "Asha", Phone: "9000000001", Role: model.RolePatient}
	require.NoError(t, accounts.Create(context.Background(), patient))

	doctor := &model.Account{
		Name:  "Dr. Rao",
		Phone: "9000000002",
		Role:  model.RoleDoctor,
		DoctorProfile: model.DoctorProfile{
			Specialization:     "Cardiology",
			VerificationStatus: model.VerificationApproved,
		},
	}
	require.NoError(t, accounts.Create(context.Background(), doctor))

	test := &model.Test{Name: "CBC", Category: "Blood", Price: 300}
	require.NoError(t, tests.Create(context.Background(), test))

	return &fixture{
		svc:       NewService(bookings, accounts, tests, hospitals, testConfig(), nil),
		bookings:  bookings,
		accounts:  accounts,
		tests:     tests,
		hospitals: hospitals,
		patient:   patient,
		doctor:    doctor,
		test:      test,
	}
}

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func str(s string) *string { return &s }

func mode(m model.AppointmentMode) *model.AppointmentMode { return &m }

func TestCreateBooking_TestRevenueSplit(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name      string
		amount    int64
		wantLab   int64
		wantAdmin int64
	}{
		{"amount above fee", 500, 450, 50},
		{"amount equal to fee", 50, 0, 50},
		{"amount below fee", 30, 0, 50},
		{"zero amount", 0, 0, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			booking, err := f.svc.CreateBooking(context.Background(), f.patient.ID, &model.CreateBookingRequest{
				Type:   model.BookingTypeTest,
				Date:   date(2024, 6, 10),
				TestID: &f.test.ID,
				Amount: tc.amount,
			})
			require.NoError(t, err)

			assert.Equal(t, int64(50), booking.PlatformFee)
			require.NotNil(t, booking.Revenue.LabAmount)
			require.NotNil(t, booking.Revenue.AdminAmount)
			assert.Equal(t, tc.wantLab, *booking.Revenue.LabAmount)
			assert.Equal(t, tc.wantAdmin, *booking.Revenue.AdminAmount)
			assert.Nil(t, booking.Revenue.HospitalAmount)
			if tc.amount >= 50 {
				assert.Equal(t, tc.amount, *booking.Revenue.LabAmount+*booking.Revenue.AdminAmount)
			}
			assert.Equal(t, model.BookingStatusPending, booking.Status)
		})
	}
}

func TestCreateBooking_DoctorRevenue(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreateBooking(context.Background(), f.patient.ID, &model.CreateBookingRequest{
		Type:     model.BookingTypeDoctor,
		Date:     date(2024, 6, 10),
		Time:     str("10:00"),
		DoctorID: &f.doctor.ID,
		Mode:     mode(model.ModeInPerson),
		Amount:   800,
	})
	require.NoError(t, err)

	require.NotNil(t, booking.Revenue.HospitalAmount)
	assert.Equal(t, int64(800), *booking.Revenue.HospitalAmount)
	assert.Nil(t, booking.Revenue.LabAmount)
	assert.Zero(t, booking.PlatformFee)
}

func TestCreateBooking_Validation(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name string
		req  *model.CreateBookingRequest
	}{
		{
			"doctor booking without time",
			&model.CreateBookingRequest{
				Type:     model.BookingTypeDoctor,
				Date:     date(2024, 6, 10),
				DoctorID: &f.doctor.ID,
				Mode:     mode(model.ModeInPerson),
			},
		},
		{
			"doctor booking without mode",
			&model.CreateBookingRequest{
				Type:     model.BookingTypeDoctor,
				Date:     date(2024, 6, 10),
				Time:     str("10:00"),
				DoctorID: &f.doctor.ID,
			},
		},
		{
			"test booking without test id",
			&model.CreateBookingRequest{
				Type: model.BookingTypeTest,
				Date: date(2024, 6, 10),
			},
		},
		{
			"default type without test id",
			&model.CreateBookingRequest{
				Date: date(2024, 6, 10),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := len(f.bookings.bookings)
			_, err := f.svc.CreateBooking(context.Background(), f.patient.ID, tc.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidRequest))
			assert.Len(t, f.bookings.bookings, before, "booking must not be persisted")
		})
	}
}

func TestCreateBooking_RoundTrip(t *testing.T) {
	f := newFixture(t)

	created, err := f.svc.CreateBooking(context.Background(), f.patient.ID, &model.CreateBookingRequest{
		Type:   model.BookingTypeTest,
		Date:   date(2024, 6, 10),
		TestID: &f.test.ID,
		Amount: 500,
	})
	require.NoError(t, err)

	fetched, err := f.svc.GetBooking(context.Background(), created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.Type, fetched.Type)
	assert.Equal(t, created.Status, fetched.Status)
	assert.Equal(t, created.Revenue, fetched.Revenue)
	assert.Equal(t, created.Amount, fetched.Amount)
}

func TestSlots_SixteenSlotGridWithOneBooked(t *testing.T) {
	f := newFixture(t)

	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	booked := day.Add(10 * time.Hour)
	_, err := f.svc.CreateBooking(context.Background(), f.patient.ID, &model.CreateBookingRequest{
		Type:     model.BookingTypeDoctor,
		Date:     &booked,
		Time:     str("10:00"),
		DoctorID: &f.doctor.ID,
		Mode:     mode(model.ModeInPerson),
	})
	require.NoError(t, err)

	slots, err := f.svc.Slots(context.Background(), f.doctor.ID, day)
	require.NoError(t, err)

	require.Len(t, slots, 16)
	assert.Equal(t, "09:00", slots[0].Time)
	assert.Equal(t, "16:30", slots[15].Time)
	for _, slot := range slots {
		if slot.Time == "10:00" {
			assert.False(t, slot.IsAvailable)
		} else {
			assert.True(t, slot.IsAvailable, "slot %s should be free", slot.Time)
		}
	}
}

func TestSlots_CancelledBookingsIgnored(t *testing.T) {
	f := newFixture(t)

	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	booked := day.Add(10 * time.Hour)
	booking, err := f.svc.CreateBooking(context.Background(), f.patient.ID, &model.CreateBookingRequest{
		Type:     model.BookingTypeDoctor,
		Date:     &booked,
		Time:     str("10:00"),
		DoctorID: &f.doctor.ID,
		Mode:     mode(model.ModeInPerson),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), f.doctor, booking.ID, &model.UpdateStatusRequest{
		Status: model.BookingStatusCancelled,
	})
	require.NoError(t, err)

	slots, err := f.svc.Slots(context.Background(), f.doctor.ID, day)
	require.NoError(t, err)

	for _, slot := range slots {
		assert.True(t, slot.IsAvailable)
	}
}

func TestSlots_TimeFallbackFromDate(t *testing.T) {
	f := newFixture(t)

	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	booked := day.Add(11*time.Hour + 30*time.Minute)
	b := &model.Booking{
		UserID:   f.patient.ID,
		DoctorID: &f.doctor.ID,
		Type:     model.BookingTypeDoctor,
		Date:     booked,
		Status:   model.BookingStatusConfirmed,
	}
	require.NoError(t, f.bookings.Create(context.Background(), b))

	slots, err := f.svc.Slots(context.Background(), f.doctor.ID, day)
	require.NoError(t, err)

	for _, slot := range slots {
		if slot.Time == "11:30" {
			assert.False(t, slot.IsAvailable)
		} else {
			assert.True(t, slot.IsAvailable)
		}
	}
}

func TestSlots_HospitalAssignedMergedIn(t *testing.T) {
	f := newFixture(t)

	day := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	hospital := &model.Hospital{
		Name:   "City Care",
		Status: model.VerificationApproved,
		Roster: model.AssociatedDoctors{{
			DoctorID: f.doctor.ID,
			Name:     f.doctor.Name,
			Active:   true,
			Slots:    map[string][]string{"2024-06-10": {"17:00", "09:00"}},
		}},
	}
	require.NoError(t, f.hospitals.Create(context.Background(), hospital))

	slots, err := f.svc.Slots(context.Background(), f.doctor.ID, day)
	require.NoError(t, err)

	// 16 defaults plus the one assigned time not already on the grid.
	require.Len(t, slots, 17)
	assert.Equal(t, "17:00", slots[16].Time)
}

func TestCompleteVisit_Idempotent(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreateBooking(context.Background(), f.patient.ID, &model.CreateBookingRequest{
		Type:     model.BookingTypeDoctor,
		Date:     date(2024, 6, 10),
		Time:     str("10:00"),
		DoctorID: &f.doctor.ID,
		Mode:     mode(model.ModeInPerson),
	})
	require.NoError(t, err)

	summary := model.VisitSummary{
		Diagnosis: "Hypertension",
		Symptoms:  []string{"headache"},
	}

	first, err := f.svc.CompleteVisit(context.Background(), f.doctor, booking.ID, summary)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, first.Status)
	assert.Equal(t, summary, first.VisitSummary)

	second, err := f.svc.CompleteVisit(context.Background(), f.doctor, booking.ID, summary)
	require.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.VisitSummary, second.VisitSummary)
}

func TestCompleteVisit_ReplacesWholesale(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreateBooking(context.Background(), f.patient.ID, &model.CreateBookingRequest{
		Type:     model.BookingTypeDoctor,
		Date:     date(2024, 6, 10),
		Time:     str("10:00"),
		DoctorID: &f.doctor.ID,
		Mode:     mode(model.ModeInPerson),
	})
	require.NoError(t, err)

	_, err = f.svc.CompleteVisit(context.Background(), f.doctor, booking.ID, model.VisitSummary{
		Diagnosis: "Hypertension",
		Symptoms:  []string{"headache", "dizziness"},
	})
	require.NoError(t, err)

	updated, err := f.svc.CompleteVisit(context.Background(), f.doctor, booking.ID, model.VisitSummary{
		Diagnosis: "Migraine",
	})
	require.NoError(t, err)

	assert.Equal(t, "Migraine", updated.VisitSummary.Diagnosis)
	assert.Empty(t, updated.VisitSummary.Symptoms, "old fields must not survive the replace")
}

func TestUpdateStatus_DoctorOwnership(t *testing.T) {
	f := newFixture(t)

	other := &model.Account{Name: "Dr. Sen", Phone: "9000000003", Role: model.RoleDoctor}
	require.NoError(t, f.accounts.Create(context.Background(), other))

	booking, err := f.svc.CreateBooking(context.Background(), f.patient.ID, &model.CreateBookingRequest{
		Type:     model.BookingTypeDoctor,
		Date:     date(2024, 6, 10),
		Time:     str("10:00"),
		DoctorID: &f.doctor.ID,
		Mode:     mode(model.ModeInPerson),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), other, booking.ID, &model.UpdateStatusRequest{
		Status: model.BookingStatusConfirmed,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrForbidden))

	updated, err := f.svc.UpdateStatus(context.Background(), f.doctor, booking.ID, &model.UpdateStatusRequest{
		Status: model.BookingStatusConfirmed,
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, updated.Status)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.CreateBooking(context.Background(), f.patient.ID, &model.CreateBookingRequest{
		Type:   model.BookingTypeTest,
		Date:   date(2024, 6, 10),
		TestID: &f.test.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), f.patient, booking.ID, &model.UpdateStatusRequest{
		Status: "archived",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidRequest))
}

func TestHospitalFinance_FallbackToAmount(t *testing.T) {
	f := newFixture(t)

	hospital := &model.Hospital{
		Name: "City Care",
		Roster: model.AssociatedDoctors{{
			DoctorID: f.doctor.ID,
			Name:     f.doctor.Name,
			Active:   true,
		}},
	}
	require.NoError(t, f.hospitals.Create(context.Background(), hospital))

	structured, err := f.svc.CreateBooking(context.Background(), f.patient.ID, &model.CreateBookingRequest{
		Type:     model.BookingTypeDoctor,
		Date:     date(2024, 6, 10),
		Time:     str("10:00"),
		DoctorID: &f.doctor.ID,
		Mode:     mode(model.ModeInPerson),
		Amount:   600,
	})
	require.NoError(t, err)
	_, err = f.svc.CompleteVisit(context.Background(), f.doctor, structured.ID, model.VisitSummary{Diagnosis: "ok"})
	require.NoError(t, err)

	// Legacy row without a revenue breakdown.
	legacy := &model.Booking{
		UserID:   f.patient.ID,
		DoctorID: &f.doctor.ID,
		Type:     model.BookingTypeDoctor,
		Date:     *date(2024, 6, 11),
		Status:   model.BookingStatusCompleted,
		Amount:   400,
	}
	require.NoError(t, f.bookings.Create(context.Background(), legacy))

	report, err := f.svc.HospitalFinance(context.Background(), hospital, nil, nil)
	require.NoError(t, err)

	require.Len(t, report, 1)
	assert.Equal(t, int64(1000), report[0].Total)
	assert.Equal(t, 2, report[0].Bookings)
}

func TestCreateOfflineBooking_ProvisionsPatient(t *testing.T) {
	f := newFixture(t)

	labID := uuid.New()
	kind := model.EntityKindLab
	staff := &model.Account{
		Name:       "Lab Desk",
		Phone:      "9000000010",
		Role:       model.RoleLab,
		Approved:   true,
		EntityKind: &kind,
		EntityID:   &labID,
	}
	require.NoError(t, f.accounts.Create(context.Background(), staff))

	booking, err := f.svc.CreateOfflineBooking(context.Background(), staff, &model.OfflineBookingRequest{
		Phone:  "9111111111",
		Name:   "Walk In",
		TestID: &f.test.ID,
		Date:   date(2024, 6, 12),
		Amount: 200,
	})
	require.NoError(t, err)

	patient, err := f.accounts.GetByPhone(context.Background(), "9111111111")
	require.NoError(t, err)
	assert.Equal(t, model.RolePatient, patient.Role)
	assert.Equal(t, patient.ID, booking.UserID)
	require.NotNil(t, booking.LabID)
	assert.Equal(t, labID, *booking.LabID)
	require.NotNil(t, booking.Revenue.LabAmount)
	assert.Equal(t, int64(150), *booking.Revenue.LabAmount)
}
