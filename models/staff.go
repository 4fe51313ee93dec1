package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Staff holds the structure for the staff collection in mongo
type Staff struct {
	ID      string       `json:"_id" bson:"_id"`
	Details StaffDetails `json:"staff" bson:"staff"`
	Version int32        `json:"__v" bson:"__v"`
}

// StaffDetails holds the inner staff structure as defined in the staff collection
type StaffDetails struct {
	Username  string             `json:"username" bson:"username"`
	Email     string             `json:"email" bson:"email"`
	Password  string             `json:"password" bson:"password"`
	AgencyID  string             `json:"agencyId" bson:"agencyId"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
