package services

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/justicelabs/adjudications-api/databases"
	"github.com/justicelabs/adjudications-api/models"
)

// TransferService reacts to prisoner movement events from the prison estate. When a
// prisoner transfers, their in-flight cases follow them: the receiving prison becomes
// the override agency so the cases appear in that prison's worklists.
type TransferService struct {
	DB databases.AdjudicationDatabase
}

// ProcessTransferEvent points the prisoner's transferable cases at the receiving
// agency. Events missing either field are malformed upstream noise and are ignored.
func (s *TransferService) ProcessTransferEvent(ctx context.Context, prisonerNumber, agencyID string) error {
	if prisonerNumber == "" || agencyID == "" {
		return nil
	}

	filter := bson.M{
		"adjudication.prisonerNumber": prisonerNumber,
		"adjudication.status":         bson.M{"$in": models.TransferableStatuses},
	}
	update := bson.M{"$set": bson.M{"adjudication.overrideAgencyId": agencyID}}
	modified, err := s.DB.UpdateMany(ctx, filter, update)
	if err != nil {
		return err
	}
	if modified > 0 {
		zap.S().Infof("transferred %d cases for %s to %s", modified, prisonerNumber, agencyID)
	}
	return nil
}

// PrisonerMergeService reacts to prisoner record merges: every case held under the
// removed prisoner number is re-keyed to the surviving one
type PrisonerMergeService struct {
	DB databases.AdjudicationDatabase
}

// Merge re-keys all cases from the removed prisoner number to the surviving one
func (s *PrisonerMergeService) Merge(ctx context.Context, removedNumber, survivingNumber string) error {
	if removedNumber == "" || survivingNumber == "" {
		return nil
	}

	filter := bson.M{"adjudication.prisonerNumber": removedNumber}
	update := bson.M{"$set": bson.M{"adjudication.prisonerNumber": survivingNumber}}
	modified, err := s.DB.UpdateMany(ctx, filter, update)
	if err != nil {
		return err
	}
	zap.S().Infof("merged %d cases from %s into %s", modified, removedNumber, survivingNumber)
	return nil
}
