package databases

// go generate: mockery --name DonationDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/linesmerrill/relief-api/models"
)

const donationName = "donations"

// DonationDatabase contains the methods to use with the donation database
type DonationDatabase interface {
	InsertOne(ctx context.Context, donation models.Donation) (primitive.ObjectID, error)
}

type donationDatabase struct {
	db DatabaseHelper
}

// NewDonationDatabase initializes a new instance of donation database with the provided db connection
func NewDonationDatabase(db DatabaseHelper) DonationDatabase {
	return &donationDatabase{
		db: db,
	}
}

func (d *donationDatabase) InsertOne(ctx context.Context, donation models.Donation) (primitive.ObjectID, error) {
	if donation.ID.IsZero() {
		donation.ID = primitive.NewObjectID()
	}
	_, err := d.db.Collection(donationName).InsertOne(ctx, donation)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return donation.ID, nil
}
