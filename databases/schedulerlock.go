package databases

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const schedulerLockName = "schedulerLocks"

// SchedulerLockDatabase provides a mongo-backed distributed lock so that background
// jobs run on exactly one instance at a time
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, jobName, instanceID string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with
// the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

func (c *schedulerLockDatabase) TryAcquireLock(ctx context.Context, jobName, instanceID string, ttl time.Duration) (bool, error) {
	now := time.Now()
	filter := bson.M{
		"_id": jobName,
		"$or": []bson.M{
			{"expiresAt": bson.M{"$lt": primitive.NewDateTimeFromTime(now)}},
			{"holder": instanceID},
		},
	}
	update := bson.M{
		"$set": bson.M{
			"holder":    instanceID,
			"expiresAt": primitive.NewDateTimeFromTime(now.Add(ttl)),
		},
	}
	upsert := true
	modified, err := c.db.Collection(schedulerLockName).UpdateOne(ctx, filter, update, &options.UpdateOptions{Upsert: &upsert})
	if err != nil {
		// a duplicate key error means another instance holds an unexpired lock
		return false, nil
	}
	return modified >= 0, nil
}

func (c *schedulerLockDatabase) ReleaseLock(ctx context.Context, jobName, instanceID string) error {
	_, err := c.db.Collection(schedulerLockName).DeleteMany(ctx, bson.M{"_id": jobName, "holder": instanceID})
	return err
}
