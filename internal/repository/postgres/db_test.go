package postgres

import (
	"testing"

	"go-jobboard-backend/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestJobWhereSharesArgsBetweenClauses(t *testing.T) {
	companyID := int64(7)
	w := jobWhere(domain.JobFilter{
		Search:    "go_lang",
		Location:  "berlin",
		CompanyID: &companyID,
		Statuses:  []domain.JobStatus{domain.JobStatusActive},
	})

	assert.Equal(t,
		" WHERE j.status = ANY($1) AND j.company_id = $2 AND j.location ILIKE $3"+
			" AND (j.title ILIKE $4 OR j.description ILIKE $4"+
			" OR EXISTS (SELECT 1 FROM unnest(j.skills) AS s(skill) WHERE s.skill ILIKE $4))",
		w.String())
	assert.Len(t, w.values, 4)
	assert.Equal(t, `%go\_lang%`, w.values[3])
}

func TestEmptyWhere(t *testing.T) {
	assert.Empty(t, jobWhere(domain.JobFilter{}).String())
	assert.Empty(t, companyWhere(domain.CompanyFilter{}).String())
}

func TestSetListAlwaysTouchesUpdatedAt(t *testing.T) {
	a := &args{}
	s := newSetList(a)
	s.set("name", "Acme")
	assert.Equal(t, "name = $1, updated_at = NOW()", s.String())
	assert.Equal(t, "$2", a.add(int64(1)))
}

func TestApplicationWhereByCompany(t *testing.T) {
	companyID := int64(3)
	w := applicationWhere(domain.ApplicationFilter{
		CompanyID: &companyID,
		Statuses:  []domain.ApplicationStatus{domain.ApplicationStatusPending, domain.ApplicationStatusReviewing},
	})
	assert.Equal(t, " WHERE j.company_id = $1 AND a.status = ANY($2)", w.String())
}

func TestToStrings(t *testing.T) {
	assert.Equal(t, []string{"pending", "active"}, toStrings([]domain.JobStatus{domain.JobStatusPending, domain.JobStatusActive}))
}
