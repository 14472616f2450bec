// ABOUTME: Closed enumerations for lead status, payment status and opportunity stage
// ABOUTME: Unknown values are rejected by the Parse functions at the store boundary
package models

import (
	"errors"
	"fmt"
)

var ErrInvalidEnum = errors.New("invalid enum value")

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
	LeadLost      LeadStatus = "lost"
)

// LeadStatuses lists every lead status in lifecycle order.
var LeadStatuses = []LeadStatus{LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadLost}

func ParseLeadStatus(s string) (LeadStatus, error) {
	for _, v := range LeadStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: lead status %q", ErrInvalidEnum, s)
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

var PaymentStatuses = []PaymentStatus{PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, v := range PaymentStatuses {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: payment status %q", ErrInvalidEnum, s)
}

type Stage string

const (
	StageNew        Stage = "new"
	StageQuoted     Stage = "quoted"
	StageScheduled  Stage = "scheduled"
	StageInProgress Stage = "in-progress"
	StageCompleted  Stage = "completed"
	StageCancelled  Stage = "cancelled"
)

// Stages lists every opportunity stage in pipeline order.
var Stages = []Stage{StageNew, StageQuoted, StageScheduled, StageInProgress, StageCompleted, StageCancelled}

func ParseStage(s string) (Stage, error) {
	for _, v := range Stages {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: opportunity stage %q", ErrInvalidEnum, s)
}
