package models

type UserStatus string
type UserRole string
type RegistrationMethod string
type Gender string
type RelationshipGoal string
type PostStatus string
type TransactionType string
type TransactionStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	RegistrationEmail  RegistrationMethod = "email"
	RegistrationGoogle RegistrationMethod = "google"

	GenderMale   Gender = "M"
	GenderFemale Gender = "F"

	GoalSerious    RelationshipGoal = "serious"
	GoalMarriage   RelationshipGoal = "marriage"
	GoalFriendship RelationshipGoal = "friendship"
	GoalDating     RelationshipGoal = "dating"

	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"

	TransactionPremium  TransactionType = "premium_subscription"
	TransactionDownload TransactionType = "one_time_download"

	TransactionPending  TransactionStatus = "pending"
	TransactionApproved TransactionStatus = "approved"
	TransactionDeclined TransactionStatus = "declined"
	TransactionCanceled TransactionStatus = "canceled"
)

// Opposite возвращает противоположный пол (для подбора анкет)
func (g Gender) Opposite() Gender {
	if g == GenderFemale {
		return GenderMale
	}
	return GenderFemale
}

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

func (r RelationshipGoal) Valid() bool {
	switch r {
	case GoalSerious, GoalMarriage, GoalFriendship, GoalDating:
		return true
	}
	return false
}

func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

func (t TransactionType) Valid() bool {
	return t == TransactionPremium || t == TransactionDownload
}

// Final - статус, который шлюз уже не поменяет
func (s TransactionStatus) Final() bool {
	return s == TransactionApproved || s == TransactionDeclined || s == TransactionCanceled
}
