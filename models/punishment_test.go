package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/justicelabs/adjudications-api/models"
)

func datePtr(t time.Time) *primitive.DateTime {
	d := primitive.NewDateTimeFromTime(t)
	return &d
}

func TestPunishmentSchedule_States(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	suspended := models.PunishmentSchedule{Days: 10, SuspendedUntil: datePtr(day)}
	assert.True(t, suspended.IsSuspended())
	assert.False(t, suspended.IsActive())

	active := models.PunishmentSchedule{Days: 10, StartDate: datePtr(day), EndDate: datePtr(day.AddDate(0, 0, 10))}
	assert.True(t, active.IsActive())
	assert.False(t, active.IsSuspended())

	empty := models.PunishmentSchedule{Days: 10}
	assert.False(t, empty.IsActive())
	assert.False(t, empty.IsSuspended())
}

func TestPunishment_LatestSchedule(t *testing.T) {
	p := models.Punishment{Type: models.PunishmentConfinement}
	assert.Nil(t, p.LatestSchedule())

	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	p.Schedules = []models.PunishmentSchedule{
		{ID: "first", Days: 5, SuspendedUntil: datePtr(day)},
		{ID: "second", Days: 5, StartDate: datePtr(day), EndDate: datePtr(day.AddDate(0, 0, 5))},
	}
	latest := p.LatestSchedule()
	assert.Equal(t, "second", latest.ID)
}

func TestPunishment_IsSuspended(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	p := models.Punishment{
		Type:      models.PunishmentConfinement,
		Schedules: []models.PunishmentSchedule{{Days: 5, SuspendedUntil: datePtr(day)}},
	}
	assert.True(t, p.IsSuspended())

	// activation appends an active row; the suspended history stays but the latest wins
	p.Schedules = append(p.Schedules, models.PunishmentSchedule{
		Days:      5,
		StartDate: datePtr(day),
		EndDate:   datePtr(day.AddDate(0, 0, 5)),
	})
	assert.False(t, p.IsSuspended())

	assert.False(t, (&models.Punishment{}).IsSuspended())
}
