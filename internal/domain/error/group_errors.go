package error

import "errors"

// Group domain errors.
var (
	// ErrGroupNotFound is returned when a group is not found in the system.
	ErrGroupNotFound = errors.New("group not found")

	// ErrGroupNameTooLong is returned when the group name exceeds the maximum length.
	ErrGroupNameTooLong = errors.New("group name too long")

	// ErrDescriptionTooLong is returned when the group description exceeds the maximum length.
	ErrDescriptionTooLong = errors.New("group description too long")

	// ErrGroupNameRequired is returned when the group name is empty.
	ErrGroupNameRequired = errors.New("group name is required")

	// ErrMemberNotFound is returned when a member is not found in the group.
	ErrMemberNotFound = errors.New("member not found")

	// ErrInviteCodeNotFound is returned when no group matches an invite code.
	ErrInviteCodeNotFound = errors.New("invite code not found")

	// ErrInvalidInviteCode is returned when an invite code is malformed.
	ErrInvalidInviteCode = errors.New("invalid invite code")

	// ErrUserAlreadyMember is returned when a user is already a member of the group.
	ErrUserAlreadyMember = errors.New("user is already a member of this group")

	// ErrNotGroupAdmin is returned when a non-admin tries to perform admin actions.
	ErrNotGroupAdmin = errors.New("only group admins can perform this action")

	// ErrNotGroupMember is returned when a user is not a member of the group.
	ErrNotGroupMember = errors.New("user is not a member of this group")

	// ErrInvalidMemberRole is returned when an invalid member role is provided.
	ErrInvalidMemberRole = errors.New("invalid member role")

	// ErrInvalidGroupStatus is returned when an unknown group status is provided.
	ErrInvalidGroupStatus = errors.New("invalid group status")

	// ErrInvalidCurrency is returned when the currency is not a three letter code.
	ErrInvalidCurrency = errors.New("invalid currency")

	// ErrCannotRemoveOwner is returned when the group owner is the target of a removal.
	ErrCannotRemoveOwner = errors.New("the group owner cannot be removed")

	// ErrOwnerCannotLeave is returned when the owner tries to leave their own group.
	ErrOwnerCannotLeave = errors.New("the group owner cannot leave the group")

	// ErrCannotRemoveSelf is returned when an admin tries to remove themselves.
	ErrCannotRemoveSelf = errors.New("use leave to exit the group")

	// ErrCannotDemoteOwner is returned when someone tries to change the owner's role.
	ErrCannotDemoteOwner = errors.New("the group owner must remain an admin")

	// ErrMemberHasBalance is returned when a member with funds tries to leave.
	ErrMemberHasBalance = errors.New("member still holds a contribution balance")

	// ErrGroupNotActive is returned when a suspended or archived group is mutated.
	ErrGroupNotActive = errors.New("group is not active")

	// ErrInviteCodeExhausted is returned when no free invite code could be generated.
	ErrInviteCodeExhausted = errors.New("could not allocate a unique invite code")

	// ErrNotPlatformOperator is returned when a non operator performs a platform action.
	ErrNotPlatformOperator = errors.New("only platform operators can perform this action")
)

// GroupErrorCode defines error codes for group errors.
// Format: GRP-XXYYYY where XX is category and YYYY is specific error.
type GroupErrorCode string

const (
	// Resource not found errors (01XXXX)
	ErrCodeGroupNotFound      GroupErrorCode = "GRP-010001"
	ErrCodeMemberNotFound     GroupErrorCode = "GRP-010002"
	ErrCodeInviteCodeNotFound GroupErrorCode = "GRP-010003"

	// Validation errors (02XXXX)
	ErrCodeGroupNameTooLong   GroupErrorCode = "GRP-020001"
	ErrCodeGroupNameRequired  GroupErrorCode = "GRP-020002"
	ErrCodeInvalidMemberRole  GroupErrorCode = "GRP-020003"
	ErrCodeInvalidInviteCode  GroupErrorCode = "GRP-020004"
	ErrCodeMissingGroupFields GroupErrorCode = "GRP-020005"
	ErrCodeInvalidGroupStatus GroupErrorCode = "GRP-020006"
	ErrCodeInvalidCurrency    GroupErrorCode = "GRP-020007"
	ErrCodeInvalidGroupID     GroupErrorCode = "GRP-020008"
	ErrCodeDescriptionTooLong GroupErrorCode = "GRP-020009"

	// Precondition errors (03XXXX)
	ErrCodeUserAlreadyMember GroupErrorCode = "GRP-030001"
	ErrCodeCannotRemoveOwner GroupErrorCode = "GRP-030002"
	ErrCodeOwnerCannotLeave  GroupErrorCode = "GRP-030003"
	ErrCodeCannotRemoveSelf  GroupErrorCode = "GRP-030004"
	ErrCodeCannotDemoteOwner GroupErrorCode = "GRP-030005"
	ErrCodeMemberHasBalance  GroupErrorCode = "GRP-030006"
	ErrCodeGroupNotActive    GroupErrorCode = "GRP-030007"

	// Authorization errors (04XXXX)
	ErrCodeNotGroupAdmin       GroupErrorCode = "GRP-040001"
	ErrCodeNotGroupMember      GroupErrorCode = "GRP-040002"
	ErrCodeNotPlatformOperator GroupErrorCode = "GRP-040003"

	// Availability errors (05XXXX)
	ErrCodeInviteCodeExhausted GroupErrorCode = "GRP-050001"
)

// GroupError represents a group error with code and message.
type GroupError struct {
	Code    GroupErrorCode
	Message string
	Err     error
}

// Error implements the error interface.
func (e *GroupError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *GroupError) Unwrap() error {
	return e.Err
}

// Kind returns the taxonomy kind encoded in the error code.
func (e *GroupError) Kind() Kind {
	return kindFromCode(string(e.Code))
}

// ErrorCode returns the error code as a string.
func (e *GroupError) ErrorCode() string {
	return string(e.Code)
}

// PublicMessage returns the message safe to show to API callers.
func (e *GroupError) PublicMessage() string {
	return e.Message
}

// NewGroupError creates a new GroupError with the given code and message.
func NewGroupError(code GroupErrorCode, message string, err error) *GroupError {
	return &GroupError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}
