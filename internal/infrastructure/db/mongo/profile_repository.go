package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
)

const collectionProfiles = "profiles"

type ProfileRepository struct {
	col *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{col: db.Collection(collectionProfiles)}
}

type mongoProfile struct {
	UserID       string `bson:"_id"`
	FullName     string `bson:"full_name"`
	BusinessName string `bson:"business_name,omitempty"`
	Phone        string `bson:"phone,omitempty"`
	Address      string `bson:"address,omitempty"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

// FindByUserID returns nil when no profile exists yet; absence is not an error.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProfile
	if err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	return &domain.Profile{
		ID:           mp.UserID,
		FullName:     mp.FullName,
		BusinessName: mp.BusinessName,
		Phone:        mp.Phone,
		Address:      mp.Address,
		CreatedAt:    unixToTime(mp.CreatedAt),
		UpdatedAt:    unixToTime(mp.UpdatedAt),
	}, nil
}

// Upsert applies the non-nil patch fields, creating the profile on first write.
func (r *ProfileRepository) Upsert(ctx context.Context, userID string, patch domain.ProfilePatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC().Unix()
	set := bson.M{"updated_at": now}
	if patch.FullName != nil {
		set["full_name"] = *patch.FullName
	}
	if patch.BusinessName != nil {
		set["business_name"] = *patch.BusinessName
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Address != nil {
		set["address"] = *patch.Address
	}

	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": userID}, update, options.Update().SetUpsert(true))
	return err
}
