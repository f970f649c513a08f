package usecase_test

import (
	"testing"

	"go-jobboard-backend/internal/domain"
	"go-jobboard-backend/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanyCreate(t *testing.T) {
	f := newFixture(t)

	c, err := f.companies.Create(as(f.loneEmployerP), &domain.Company{Name: "  Initech  ", IsVerified: true})
	require.NoError(t, err)
	assert.Equal(t, "Initech", c.Name)
	assert.False(t, c.IsVerified)
	assert.Equal(t, []string{"lonely"}, c.Owners)

	u, err := f.store.Users().GetByID(as(nil), "lonely")
	require.NoError(t, err)
	require.NotNil(t, u.CompanyID)
	assert.Equal(t, c.ID, *u.CompanyID)

	_, err = f.companies.Create(as(f.employerP), &domain.Company{Name: "Second"})
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))

	_, err = f.companies.Create(as(f.seekerP), &domain.Company{Name: "Nope"})
	assert.Equal(t, apperror.KindForbidden, kindOf(err))
}

func TestCompanyCreateWithStalePrincipal(t *testing.T) {
	f := newFixture(t)
	// both requests authenticated before either company existed
	stale := *f.loneEmployerP

	first, err := f.companies.Create(as(&stale), &domain.Company{Name: "Initech"})
	require.NoError(t, err)
	_, err = f.companies.Create(as(&stale), &domain.Company{Name: "Initrode"})
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))

	u, err := f.store.Users().GetByID(as(nil), "lonely")
	require.NoError(t, err)
	require.NotNil(t, u.CompanyID)
	assert.Equal(t, first.ID, *u.CompanyID)

	page, err := f.companies.List(as(nil), domain.CompanyFilter{Search: "Initrode"})
	require.NoError(t, err)
	assert.Zero(t, page.TotalCount)
}

func TestCompanyOwners(t *testing.T) {
	f := newFixture(t)
	owner := as(f.employerP)

	_, err := f.companies.RemoveOwner(owner, f.company.ID, "emp-a")
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))
	assert.Equal(t, "last_owner", reasonOf(err))

	_, err = f.companies.AddOwner(owner, f.company.ID, "seeker")
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))

	_, err = f.companies.AddOwner(owner, f.company.ID, "emp-b")
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))

	_, err = f.companies.AddOwner(as(f.employer2P), f.company.ID, "lonely")
	assert.Equal(t, apperror.KindForbidden, kindOf(err))

	c, err := f.companies.AddOwner(owner, f.company.ID, "lonely")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"emp-a", "lonely"}, c.Owners)

	c, err = f.companies.RemoveOwner(owner, f.company.ID, "emp-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"lonely"}, c.Owners)

	u, err := f.store.Users().GetByID(as(nil), "emp-a")
	require.NoError(t, err)
	assert.Nil(t, u.CompanyID)

	_, err = f.companies.RemoveOwner(as(f.loneEmployerP), f.company.ID, "emp-a")
	assert.Equal(t, apperror.KindNotFound, kindOf(err))

	_, err = f.companies.RemoveOwner(as(f.employer2P), f.company.ID, "lonely")
	assert.Equal(t, apperror.KindForbidden, kindOf(err))
}

func TestCompanyReview(t *testing.T) {
	f := newFixture(t)
	c, err := f.companies.Create(as(f.loneEmployerP), &domain.Company{Name: "Initech"})
	require.NoError(t, err)

	_, err = f.companies.Review(as(f.employerP), c.ID, domain.CompanyActionVerify)
	assert.Equal(t, apperror.KindForbidden, kindOf(err))

	rejected, err := f.companies.Review(as(f.adminP), c.ID, domain.CompanyActionReject)
	require.NoError(t, err)
	assert.False(t, rejected.IsVerified)

	verified, err := f.companies.Review(as(f.adminP), c.ID, domain.CompanyActionVerify)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	_, err = f.companies.Review(as(f.adminP), c.ID, domain.CompanyActionReject)
	assert.Equal(t, apperror.KindInvalidState, kindOf(err))

	_, err = f.companies.Review(as(f.adminP), c.ID, domain.CompanyAction("suspend"))
	assert.Equal(t, apperror.KindValidation, kindOf(err))
}

func TestCompanyGetAndList(t *testing.T) {
	f := newFixture(t)
	f.activeJob(t, "Go Developer")
	f.activeJob(t, "SRE")
	f.pendingJob(t, "Pending role")

	detail, err := f.companies.Get(as(nil), f.company.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Jobs, 2)

	_, err = f.companies.Get(as(nil), 4242)
	assert.Equal(t, apperror.KindNotFound, kindOf(err))

	page, err := f.companies.List(as(nil), domain.CompanyFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount)
	counts := map[int64]int64{}
	for _, c := range page.Items {
		counts[c.ID] = c.ActiveJobCount
	}
	assert.EqualValues(t, 2, counts[f.company.ID])
	assert.EqualValues(t, 0, counts[f.company2.ID])

	search, err := f.companies.List(as(nil), domain.CompanyFilter{Search: "glob"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, search.TotalCount)

	verified := false
	unverified, err := f.admin.ListCompanies(as(f.adminP), domain.CompanyFilter{Verified: &verified})
	require.NoError(t, err)
	assert.Zero(t, unverified.TotalCount)

	name := "Acme Corp"
	updated, err := f.companies.Update(as(f.employerP), f.company.ID, domain.CompanyUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	_, err = f.companies.Update(as(f.employer2P), f.company.ID, domain.CompanyUpdate{Name: &name})
	assert.Equal(t, apperror.KindForbidden, kindOf(err))
}
