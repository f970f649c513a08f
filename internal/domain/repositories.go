package domain

// Repositories is the persistence gateway: one repository per aggregate,
// all backed by the same store.
type Repositories struct {
	Users         UserRepository
	Companies     CompanyRepository
	Jobs          JobRepository
	Applications  ApplicationRepository
	SavedJobs     SavedJobRepository
	JobAlerts     JobAlertRepository
	PaymentEvents PaymentEventRepository
	Stats         StatsRepository
}
