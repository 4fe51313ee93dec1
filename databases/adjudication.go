package databases

// go generate: mockery --name AdjudicationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/justicelabs/adjudications-api/models"
)

const adjudicationName = "adjudications"

// AdjudicationDatabase contains the methods to use with the adjudications collection.
// The aggregate is always saved whole via ReplaceOne; removal of nested rows is
// expressed by omitting them from the replaced document.
type AdjudicationDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ReportedAdjudication, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ReportedAdjudication, error)
	InsertOne(context.Context, interface{}, ...*options.InsertOneOptions) (InsertOneResultHelper, error)
	ReplaceOne(context.Context, interface{}, interface{}, ...*options.ReplaceOptions) error
	UpdateMany(context.Context, interface{}, interface{}, ...*options.UpdateOptions) (int64, error)
	DeleteMany(context.Context, interface{}, ...*options.DeleteOptions) (int64, error)
	CountDocuments(context.Context, interface{}, ...*options.CountOptions) (int64, error)
}

type adjudicationDatabase struct {
	db DatabaseHelper
}

// NewAdjudicationDatabase initializes a new instance of adjudication database with the
// provided db connection
func NewAdjudicationDatabase(db DatabaseHelper) AdjudicationDatabase {
	return &adjudicationDatabase{
		db: db,
	}
}

func (c *adjudicationDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.ReportedAdjudication, error) {
	adjudication := &models.ReportedAdjudication{}
	err := c.db.Collection(adjudicationName).FindOne(ctx, filter, opts...).Decode(&adjudication)
	if err != nil {
		return nil, err
	}
	return adjudication, nil
}

func (c *adjudicationDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ReportedAdjudication, error) {
	var adjudications []models.ReportedAdjudication
	curr, err := c.db.Collection(adjudicationName).Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer curr.Close(ctx)
	err = curr.All(ctx, &adjudications)
	if err != nil {
		return nil, err
	}
	return adjudications, nil
}

func (c *adjudicationDatabase) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return c.db.Collection(adjudicationName).InsertOne(ctx, document, opts...)
}

func (c *adjudicationDatabase) ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) error {
	return c.db.Collection(adjudicationName).ReplaceOne(ctx, filter, replacement, opts...)
}

func (c *adjudicationDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (int64, error) {
	return c.db.Collection(adjudicationName).UpdateMany(ctx, filter, update, opts...)
}

func (c *adjudicationDatabase) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (int64, error) {
	return c.db.Collection(adjudicationName).DeleteMany(ctx, filter, opts...)
}

func (c *adjudicationDatabase) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	return c.db.Collection(adjudicationName).CountDocuments(ctx, filter, opts...)
}
