package review

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labloom/marketplace-api/internal/model"
	"github.com/labloom/marketplace-api/internal/repository"
	apperrors "github.com/labloom/marketplace-api/pkg/errors"
)

type fakeReviewRepo struct {
	reviews []*model.Review
}

func (r *fakeReviewRepo) Create(_ context.Context, review *model.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	review.CreatedAt = time.Now()
	copied := *review
	r.reviews = append(r.reviews, &copied)
	return nil
}

func (r *fakeReviewRepo) ListByTarget(_ context.Context, kind model.ReviewTarget, targetID uuid.UUID) ([]*model.Review, error) {
	var out []*model.Review
	for _, review := range r.reviews {
		if review.TargetKind == kind && review.TargetID == targetID {
			copied := *review
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeReviewRepo) Aggregate(_ context.Context, kind model.ReviewTarget, targetID uuid.UUID) (float64, int, error) {
	var sum, count int
	for _, review := range r.reviews {
		if review.TargetKind == kind && review.TargetID == targetID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
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

func (r *fakeAccountRepo) GetByPhone(_ context.Context, _ string) (*model.Account, error) {
	return nil, fmt.Errorf("account: %w", repository.ErrNotFound)
}

func (r *fakeAccountRepo) GetByEmail(_ context.Context, _ string) (*model.Account, error) {
	return nil, fmt.Errorf("account: %w", repository.ErrNotFound)
}

func (r *fakeAccountRepo) Update(_ context.Context, a *model.Account) error {
	copied := *a
	r.accounts[a.ID] = &copied
	return nil
}

func (r *fakeAccountRepo) List(_ context.Context, _ *model.AccountFilter) ([]*model.Account, int, error) {
	return nil, 0, nil
}

func (r *fakeAccountRepo) ListDoctors(_ context.Context, _, _ string) ([]*model.Account, error) {
	return nil, nil
}

func (r *fakeAccountRepo) CountByRole(_ context.Context) (map[model.Role]int, error) {
	return nil, nil
}

func (r *fakeAccountRepo) DeleteByPhoneExcept(_ context.Context, _ string, _ model.Role) error {
	return nil
}

type fakeLabRepo struct {
	labs map[uuid.UUID]*model.Lab
}

func newFakeLabRepo() *fakeLabRepo { return &fakeLabRepo{labs: make(map[uuid.UUID]*model.Lab)} }

func (r *fakeLabRepo) Create(_ context.Context, l *model.Lab) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	copied := *l
	r.labs[l.ID] = &copied
	return nil
}

func (r *fakeLabRepo) Get(_ context.Context, id uuid.UUID) (*model.Lab, error) {
	l, ok := r.labs[id]
	if !ok {
		return nil, fmt.Errorf("lab: %w", repository.ErrNotFound)
	}
	copied := *l
	return &copied, nil
}

func (r *fakeLabRepo) Update(_ context.Context, l *model.Lab) error {
	copied := *l
	r.labs[l.ID] = &copied
	return nil
}

func (r *fakeLabRepo) List(_ context.Context, _ *model.LabFilter) ([]*model.Lab, int, error) {
	return nil, 0, nil
}

func (r *fakeLabRepo) ListByStatus(_ context.Context, _ model.VerificationStatus) ([]*model.Lab, error) {
	return nil, nil
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

func (r *fakeHospitalRepo) ListByStatus(_ context.Context, _ model.VerificationStatus) ([]*model.Hospital, error) {
	return nil, nil
}

func (r *fakeHospitalRepo) ListPopular(_ context.Context, _ int) ([]*model.Hospital, error) {
	return nil, nil
}

func (r *fakeHospitalRepo) FindByDoctor(_ context.Context, _ uuid.UUID) ([]*model.Hospital, error) {
	return nil, nil
}

type fixture struct {
	svc       *Service
	reviews   *fakeReviewRepo
	accounts  *fakeAccountRepo
	labs      *fakeLabRepo
	hospitals *fakeHospitalRepo
	author    *model.Account
	doctor    *model.Account
	lab       *model.Lab
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	reviews := &fakeReviewRepo{}
	accounts := newFakeAccountRepo()
	labs := newFakeLabRepo()
	hospitals := newFakeHospitalRepo()

	ctx := context.Background()

	author := &model.Account{Name: "Asha", Phone: "1", Role: model.RolePatient}
	require.NoError(t, accounts.Create(ctx, author))

	doctor := &model.Account{Name: "Dr. Rao", Phone: "2", Role: model.RoleDoctor}
	require.NoError(t, accounts.Create(ctx, doctor))

	lab := &model.Lab{Name: "Prism Diagnostics", RegistrationNumber: "LAB-1", Phone: "3", Status: model.VerificationApproved}
	require.NoError(t, labs.Create(ctx, lab))

	return &fixture{
		svc:       NewService(reviews, accounts, labs, hospitals),
		reviews:   reviews,
		accounts:  accounts,
		labs:      labs,
		hospitals: hospitals,
		author:    author,
		doctor:    doctor,
		lab:       lab,
	}
}

func TestCreate_RecomputesDoctorRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.author, &CreateReviewRequest{
		TargetKind: model.ReviewTargetDoctor,
		TargetID:   f.doctor.ID,
		Rating:     5,
		Comment:    "excellent",
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, f.author, &CreateReviewRequest{
		TargetKind: model.ReviewTargetDoctor,
		TargetID:   f.doctor.ID,
		Rating:     4,
	})
	require.NoError(t, err)

	doctor, err := f.accounts.Get(ctx, f.doctor.ID)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, doctor.DoctorProfile.Rating, 0.001)
	assert.Equal(t, 2, doctor.DoctorProfile.ReviewsCount)
}

func TestCreate_RecomputesLabRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.author, &CreateReviewRequest{
		TargetKind: model.ReviewTargetLab,
		TargetID:   f.lab.ID,
		Rating:     3,
	})
	require.NoError(t, err)

	lab, err := f.labs.Get(ctx, f.lab.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, lab.Rating, 0.001)
	assert.Equal(t, 1, lab.ReviewsCount)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  *CreateReviewRequest
		code apperrors.ErrorCode
	}{
		{"rating too low", &CreateReviewRequest{TargetKind: model.ReviewTargetDoctor, TargetID: f.doctor.ID, Rating: 0}, apperrors.ErrInvalidRequest},
		{"rating too high", &CreateReviewRequest{TargetKind: model.ReviewTargetDoctor, TargetID: f.doctor.ID, Rating: 6}, apperrors.ErrInvalidRequest},
		{"unknown kind", &CreateReviewRequest{TargetKind: "clinic", TargetID: f.doctor.ID, Rating: 4}, apperrors.ErrInvalidRequest},
		{"missing target", &CreateReviewRequest{TargetKind: model.ReviewTargetLab, TargetID: uuid.New(), Rating: 4}, apperrors.ErrNotFound},
		{"doctor target is not a doctor", &CreateReviewRequest{TargetKind: model.ReviewTargetDoctor, TargetID: f.author.ID, Rating: 4}, apperrors.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, f.author, tc.req)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, tc.code))
			assert.Empty(t, f.reviews.reviews, "nothing persisted on validation failure")
		})
	}
}

func TestListForTarget_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, rating := range []int{5, 3} {
		_, err := f.svc.Create(ctx, f.author, &CreateReviewRequest{
			TargetKind: model.ReviewTargetDoctor,
			TargetID:   f.doctor.ID,
			Rating:     rating,
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	reviews, err := f.svc.ListForTarget(ctx, model.ReviewTargetDoctor, f.doctor.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, 3, reviews[0].Rating, "latest review first")
}
