package models

type UserStatus string
type UserRole string
type RequestStatus string
type ApplicationStatus string
type FeedbackStatus string
type FeedbackMode string
type RoasterLevel string

const (
	UserStatusPending   UserStatus = "pending"
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	UserRoleCreator UserRole = "creator"
	UserRoleRoaster UserRole = "roaster"
	UserRoleAdmin   UserRole = "admin"

	RequestStatusOpen        RequestStatus = "open"
	RequestStatusCollecting  RequestStatus = "collecting_applications"
	RequestStatusInProgress  RequestStatus = "in_progress"
	RequestStatusCompleted   RequestStatus = "completed"
	RequestStatusCancelled   RequestStatus = "cancelled"

	ApplicationStatusPending      ApplicationStatus = "pending"
	ApplicationStatusAccepted     ApplicationStatus = "accepted"
	ApplicationStatusAutoSelected ApplicationStatus = "auto_selected"
	ApplicationStatusRejected     ApplicationStatus = "rejected"
	ApplicationStatusWithdrawn    ApplicationStatus = "withdrawn"

	FeedbackStatusDraft     FeedbackStatus = "draft"
	FeedbackStatusPending   FeedbackStatus = "pending"
	FeedbackStatusCompleted FeedbackStatus = "completed"

	FeedbackModeFree       FeedbackMode = "free"
	FeedbackModeTargeted   FeedbackMode = "targeted"
	FeedbackModeStructured FeedbackMode = "structured"

	RoasterLevelRookie   RoasterLevel = "rookie"
	RoasterLevelVerified RoasterLevel = "verified"
	RoasterLevelExpert   RoasterLevel = "expert"
	RoasterLevelMaster   RoasterLevel = "master"
)

// IsTerminal сообщает, является ли статус заявки окончательным.
// Терминальный статус менять нельзя.
func (s ApplicationStatus) IsTerminal() bool {
	switch s {
	case ApplicationStatusAccepted, ApplicationStatusAutoSelected,
		ApplicationStatusRejected, ApplicationStatusWithdrawn:
		return true
	}
	return false
}

// IsSelected сообщает, занимает ли заявка слот запроса.
func (s ApplicationStatus) IsSelected() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusAutoSelected
}

// AcceptsApplications сообщает, принимает ли запрос новые заявки.
func (s RequestStatus) AcceptsApplications() bool {
	return s == RequestStatusOpen || s == RequestStatusCollecting
}

// RoasterLevelForCount - монотонная функция уровня от числа завершенных роастов.
func RoasterLevelForCount(completed int64) RoasterLevel {
	switch {
	case completed >= 50:
		return RoasterLevelMaster
	case completed >= 20:
		return RoasterLevelExpert
	case completed >= 5:
		return RoasterLevelVerified
	default:
		return RoasterLevelRookie
	}
}

// LevelTier возвращает порядковый номер уровня для скоринга (0-3).
func LevelTier(level RoasterLevel) int {
	switch level {
	case RoasterLevelMaster:
		return 3
	case RoasterLevelExpert:
		return 2
	case RoasterLevelVerified:
		return 1
	default:
		return 0
	}
}

// Experience levels declared by roasters on their profile.
const (
	ExperienceJunior = "junior"
	ExperienceMiddle = "middle"
	ExperienceSenior = "senior"
)

// ExperienceTier возвращает порядковый номер опыта для скоринга (0-2).
func ExperienceTier(level string) int {
	switch level {
	case ExperienceSenior:
		return 2
	case ExperienceMiddle:
		return 1
	default:
		return 0
	}
}
