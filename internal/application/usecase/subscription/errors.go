// Package subscription implements the paid subscription gate: activation requests,
// operator review, the free tier and expiry correction.
package subscription

import (
	"github.com/savings-circle/backend/internal/domain/entity"
	domainerror "github.com/savings-circle/backend/internal/domain/error"
)

func invalidTransition(from entity.SubscriptionStatus, action string) error {
	return domainerror.NewSubscriptionError(
		domainerror.ErrCodeInvalidSubscriptionTransition,
		"cannot "+action+" while subscription is "+string(from),
		domainerror.ErrInvalidSubscriptionTransition,
	)
}

func feeRequestNotFound() error {
	return domainerror.NewSubscriptionError(
		domainerror.ErrCodeFeeRequestNotFound,
		"fee request not found",
		domainerror.ErrFeeRequestNotFound,
	)
}
