package databases

// go generate: mockery --name StaffDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/justicelabs/adjudications-api/models"
)

const staffName = "staff"

// StaffDatabase contains the methods to use with the staff collection
type StaffDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Staff, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Staff, error)
}

type staffDatabase struct {
	db DatabaseHelper
}

// NewStaffDatabase initializes a new instance of staff database with the provided db
// connection
func NewStaffDatabase(db DatabaseHelper) StaffDatabase {
	return &staffDatabase{
		db: db,
	}
}

func (c *staffDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.Staff, error) {
	staff := &models.Staff{}
	err := c.db.Collection(staffName).FindOne(ctx, filter, opts...).Decode(&staff)
	if err != nil {
		return nil, err
	}
	return staff, nil
}

func (c *staffDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Staff, error) {
	var staff []models.Staff
	curr, err := c.db.Collection(staffName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &staff)
	if err != nil {
		return nil, err
	}
	return staff, nil
}
