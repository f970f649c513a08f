package domain

// applicationRank orders the non-terminal pipeline; moves must go forward.
var applicationRank = map[ApplicationStatus]int{
	ApplicationStatusPending:     0,
	ApplicationStatusReviewing:   1,
	ApplicationStatusShortlisted: 2,
	ApplicationStatusRejected:    3,
	ApplicationStatusAccepted:    3,
}

func (s ApplicationStatus) Valid() bool {
	_, ok := applicationRank[s]
	return ok
}

// Terminal statuses never change again.
func (s ApplicationStatus) Terminal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// CanTransitionApplication reports whether an employer may move an
// application from one status to another. Reapplying the same status is not a
// transition and returns false; callers treat it as a no-op.
func CanTransitionApplication(from, to ApplicationStatus) bool {
	if !from.Valid() || !to.Valid() || from.Terminal() || from == to {
		return false
	}
	return applicationRank[to] > applicationRank[from]
}

// WithdrawableStatuses are the statuses an applicant may still withdraw or edit from.
var WithdrawableStatuses = []ApplicationStatus{ApplicationStatusPending, ApplicationStatusReviewing}

func CanWithdraw(s ApplicationStatus) bool {
	return s == ApplicationStatusPending || s == ApplicationStatusReviewing
}
