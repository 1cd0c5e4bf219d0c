package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/saccodesk/backoffice/internal/core/domain"
	"github.com/saccodesk/backoffice/internal/core/ports"
)

// draftRetention keeps expired drafts around for a day before mongo reaps them.
const draftRetention = 24 * time.Hour

type DraftRepository struct {
	col *mongo.Collection
}

var _ ports.DraftRepository = (*DraftRepository)(nil)

func NewDraftRepository(db *mongo.Database) *DraftRepository {
	return &DraftRepository{col: db.Collection(collectionDrafts)}
}

func (r *DraftRepository) Create(ctx context.Context, d *domain.Draft) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, d)
	return err
}

func (r *DraftRepository) FindByID(ctx context.Context, id string) (*domain.Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d domain.Draft
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, err
	}
	return &d, nil
}

// Claim flips pending to confirming in a single findAndModify, so only one
// confirm request can win.
func (r *DraftRepository) Claim(ctx context.Context, id string) (*domain.Draft, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": domain.DraftPending}
	update := bson.M{"$set": bson.M{"status": domain.DraftConfirming}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d domain.Draft
	err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&d)
	if err == nil {
		return &d, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	if _, err := r.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, domain.ErrDraftAlreadyConfirmed
}

func (r *DraftRepository) Release(ctx context.Context, id, message string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"_id": id, "status": domain.DraftConfirming}
	update := bson.M{"$set": bson.M{"status": domain.DraftPending, "message": message}}

	_, err := r.col.UpdateOne(ctx, filter, update)
	return err
}

func (r *DraftRepository) Complete(ctx context.Context, id string, status domain.DraftStatus, message string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"status": status, "message": message}
	if status == domain.DraftConfirmed {
		set["confirmed_at"] = time.Now().UTC()
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrDraftNotFound
	}
	return nil
}

// EnsureIndexes creates necessary indexes on the drafts collection.
func (r *DraftRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(draftRetention.Seconds())),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
