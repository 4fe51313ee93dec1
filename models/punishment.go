package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// PunishmentType is the kind of sanction attached to a proved charge.
type PunishmentType string

// Punishment types.
const (
	PunishmentPrivilege       PunishmentType = "PRIVILEGE"
	PunishmentEarnings        PunishmentType = "EARNINGS"
	PunishmentConfinement     PunishmentType = "CONFINEMENT"
	PunishmentRemovalActivity PunishmentType = "REMOVAL_ACTIVITY"
	PunishmentExclusionWork   PunishmentType = "EXCLUSION_WORK"
	PunishmentExtraWork       PunishmentType = "EXTRA_WORK"
	PunishmentRemovalWing     PunishmentType = "REMOVAL_WING"
	PunishmentAdditionalDays  PunishmentType = "ADDITIONAL_DAYS"
	PunishmentProspectiveDays PunishmentType = "PROSPECTIVE_DAYS"
	PunishmentCaution         PunishmentType = "CAUTION"
	PunishmentDamagesOwed     PunishmentType = "DAMAGES_OWED"
	PunishmentPayback         PunishmentType = "PAYBACK"
)

// PrivilegeType narrows a PRIVILEGE punishment.
type PrivilegeType string

// Privilege types.
const (
	PrivilegeCanteen     PrivilegeType = "CANTEEN"
	PrivilegeFacilities  PrivilegeType = "FACILITIES"
	PrivilegeMoney       PrivilegeType = "MONEY"
	PrivilegeTV          PrivilegeType = "TV"
	PrivilegeAssociation PrivilegeType = "ASSOCIATION"
	PrivilegeGym         PrivilegeType = "GYM"
	PrivilegeOther       PrivilegeType = "OTHER"
)

// PunishmentSchedule describes one span of a punishment. A schedule is either active
// (startDate set, suspendedUntil empty) or suspended (suspendedUntil set, startDate
// empty), never both. A punishment keeps its schedule history; the latest entry is the
// current one.
type PunishmentSchedule struct {
	ID             string              `json:"id" bson:"id"`
	Days           int                 `json:"days" bson:"days"`
	StartDate      *primitive.DateTime `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate        *primitive.DateTime `json:"endDate,omitempty" bson:"endDate,omitempty"`
	SuspendedUntil *primitive.DateTime `json:"suspendedUntil,omitempty" bson:"suspendedUntil,omitempty"`
	CreatedAt      primitive.DateTime  `json:"createdAt" bson:"createdAt"`
}

// IsSuspended reports whether this schedule entry represents a suspension
func (s PunishmentSchedule) IsSuspended() bool {
	return s.SuspendedUntil != nil && s.StartDate == nil
}

// IsActive reports whether this schedule entry represents an active span
func (s PunishmentSchedule) IsActive() bool {
	return s.StartDate != nil && s.SuspendedUntil == nil
}

// RehabilitativeActivity conditions a suspended punishment on completing an activity.
// Punishments carrying one are not eligible for blanket activation.
type RehabilitativeActivity struct {
	ID            string              `json:"id" bson:"id"`
	Details       string              `json:"details,omitempty" bson:"details,omitempty"`
	Monitor       string              `json:"monitor,omitempty" bson:"monitor,omitempty"`
	EndDate       *primitive.DateTime `json:"endDate,omitempty" bson:"endDate,omitempty"`
	TotalSessions *int                `json:"totalSessions,omitempty" bson:"totalSessions,omitempty"`
}

// Punishment is one sanction attached to a charge-proved case.
//
// ActivatedFromChargeNumber marks a punishment that was suspended on another charge and
// invoked here; ActivatedByChargeNumber is the reciprocal back-reference on the origin.
type Punishment struct {
	ID                        string                   `json:"id" bson:"id"`
	Type                      PunishmentType           `json:"type" bson:"type"`
	PrivilegeType             PrivilegeType            `json:"privilegeType,omitempty" bson:"privilegeType,omitempty"`
	OtherPrivilege            string                   `json:"otherPrivilege,omitempty" bson:"otherPrivilege,omitempty"`
	StoppagePercentage        *int                     `json:"stoppagePercentage,omitempty" bson:"stoppagePercentage,omitempty"`
	Amount                    *float64                 `json:"amount,omitempty" bson:"amount,omitempty"`
	ActivatedFromChargeNumber string                   `json:"activatedFromChargeNumber,omitempty" bson:"activatedFromChargeNumber,omitempty"`
	ActivatedByChargeNumber   string                   `json:"activatedByChargeNumber,omitempty" bson:"activatedByChargeNumber,omitempty"`
	ConsecutiveToChargeNumber string                   `json:"consecutiveToChargeNumber,omitempty" bson:"consecutiveToChargeNumber,omitempty"`
	Schedules                 []PunishmentSchedule     `json:"schedules" bson:"schedules"`
	RehabilitativeActivities  []RehabilitativeActivity `json:"rehabilitativeActivities,omitempty" bson:"rehabilitativeActivities,omitempty"`
}

// LatestSchedule returns the current schedule entry, or nil when none exist
func (p *Punishment) LatestSchedule() *PunishmentSchedule {
	if len(p.Schedules) == 0 {
		return nil
	}
	return &p.Schedules[len(p.Schedules)-1]
}

// IsSuspended reports whether the punishment is currently suspended
func (p *Punishment) IsSuspended() bool {
	latest := p.LatestSchedule()
	return latest != nil && latest.IsSuspended()
}

// PunishmentComment is free-text commentary on a charge's punishments
type PunishmentComment struct {
	ID        string             `json:"id" bson:"id"`
	Comment   string             `json:"comment" bson:"comment"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	CreatedBy string             `json:"createdBy" bson:"createdBy"`
}
