package shared

import (
	"fmt"
	"time"
)

// DomainError is the base error type for all domain errors
type DomainError struct {
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func NewDomainError(message string) *DomainError {
	return &DomainError{Message: message}
}

// Validation error

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Campaign lifecycle errors

type CampaignError struct {
	*DomainError
	CampaignID string
}

func NewCampaignError(message, campaignID string) *CampaignError {
	return &CampaignError{
		DomainError: &DomainError{Message: message},
		CampaignID:  campaignID,
	}
}

// CampaignStateError signals an illegal lifecycle transition, e.g.
// activating an archived plan.
type CampaignStateError struct {
	*CampaignError
	From string
	To   string
}

func NewCampaignStateError(campaignID, from, to string) *CampaignStateError {
	return &CampaignStateError{
		CampaignError: NewCampaignError(
			fmt.Sprintf("campaign %s cannot transition from %s to %s", campaignID, from, to),
			campaignID,
		),
		From: from,
		To:   to,
	}
}

// CampaignNotFoundError is returned when a campaign ID resolves to nothing.
type CampaignNotFoundError struct {
	*CampaignError
}

func NewCampaignNotFoundError(campaignID string) *CampaignNotFoundError {
	return &CampaignNotFoundError{
		CampaignError: NewCampaignError(fmt.Sprintf("campaign not found: %s", campaignID), campaignID),
	}
}

// Lock errors

// LockTimeoutError signals that an advisory lock could not be acquired
// within the configured wait. Callers treat this as "abandon and let the
// next trigger retry", never as a reason to mutate without the lock.
type LockTimeoutError struct {
	*DomainError
	Key  string
	Wait time.Duration
}

func NewLockTimeoutError(key string, wait time.Duration) *LockTimeoutError {
	return &LockTimeoutError{
		DomainError: &DomainError{Message: fmt.Sprintf("lock %q not acquired within %s", key, wait)},
		Key:         key,
		Wait:        wait,
	}
}

// Nation errors

type NationNotFoundError struct {
	*DomainError
	NationID int
}

func NewNationNotFoundError(nationID int) *NationNotFoundError {
	return &NationNotFoundError{
		DomainError: &DomainError{Message: fmt.Sprintf("nation not found: %d", nationID)},
		NationID:    nationID,
	}
}
