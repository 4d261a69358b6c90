package tender

type ProjectStatus uint8

const (
	ProjectStatusCreated ProjectStatus = iota
	ProjectStatusPendingApproval
	ProjectStatusInProgress
	ProjectStatusCompleted
)

func (s ProjectStatus) String() string {
	switch s {
	case ProjectStatusCreated:
		return "created"
	case ProjectStatusPendingApproval:
		return "pending approval"
	case ProjectStatusInProgress:
		return "in progress"
	case ProjectStatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

type TenderStatus uint8

const (
	TenderStatusSubmitted TenderStatus = iota
	TenderStatusApproved
	TenderStatusRejected
	TenderStatusInProgress
	TenderStatusCompleted
)

func (s TenderStatus) String() string {
	switch s {
	case TenderStatusSubmitted:
		return "submitted"
	case TenderStatusApproved:
		return "approved"
	case TenderStatusRejected:
		return "rejected"
	case TenderStatusInProgress:
		return "in progress"
	case TenderStatusCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

type MilestoneStatus uint8

const (
	MilestoneStatusPending MilestoneStatus = iota
	MilestoneStatusSubmitted
	MilestoneStatusUnderReview
	MilestoneStatusVerified
	MilestoneStatusRejected
	MilestoneStatusReleased
)

func (s MilestoneStatus) String() string {
	switch s {
	case MilestoneStatusPending:
		return "pending"
	case MilestoneStatusSubmitted:
		return "submitted"
	case MilestoneStatusUnderReview:
		return "under review"
	case MilestoneStatusVerified:
		return "verified"
	case MilestoneStatusRejected:
		return "rejected"
	case MilestoneStatusReleased:
		return "released"
	default:
		return "unknown"
	}
}

// TaskCount is the default number of milestone task slices per project, one
// per 20% of the budget.
const TaskCount = 5
