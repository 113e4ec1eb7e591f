package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/modelhub/inventory-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoModelRepo implements ModelRepository on the "models" collection.
type MongoModelRepo struct {
	col *mongo.Collection
}

func NewMongoModelRepo(db *mongo.Database) *MongoModelRepo {
	return &MongoModelRepo{col: db.Collection(ModelsCollection)}
}

func (r *MongoModelRepo) List(ctx context.Context) ([]models.Model, error) {
	return findModels(ctx, r.col, bson.M{}, options.Find())
}

func (r *MongoModelRepo) ListRecent(ctx context.Context, limit int64) ([]models.Model, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(limit)
	return findModels(ctx, r.col, bson.M{}, opts)
}

func findModels(ctx context.Context, col *mongo.Collection, filter bson.M, opts *options.FindOptions) ([]models.Model, error) {
	cur, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find models: %w", err)
	}
	out := []models.Model{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}
	return out, nil
}

func (r *MongoModelRepo) Get(ctx context.Context, id primitive.ObjectID) (*models.Model, error) {
	var m models.Model
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&m); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

func (r *MongoModelRepo) Create(ctx context.Context, m *models.Model) (primitive.ObjectID, error) {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, m)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	m.ID = id
	return id, nil
}

func (r *MongoModelRepo) IncrementPurchased(ctx context.Context, id primitive.ObjectID) (models.UpdateResult, error) {
	return updateOne(ctx, r.col, id, bson.M{"$inc": bson.M{"purchased": 1}})
}

func (r *MongoModelRepo) UpdateFields(ctx context.Context, id primitive.ObjectID, f models.ModelFields) (models.UpdateResult, error) {
	set := bson.M{
		"name":        f.Name,
		"framework":   f.Framework,
		"useCase":     f.UseCase,
		"dataset":     f.Dataset,
		"description": f.Description,
		"image":       f.Image,
	}
	return updateOne(ctx, r.col, id, bson.M{"$set": set})
}

func updateOne(ctx context.Context, col *mongo.Collection, id primitive.ObjectID, update bson.M) (models.UpdateResult, error) {
	res, err := col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return models.UpdateResult{}, err
	}
	return models.UpdateResult{Acknowledged: true, MatchedCount: res.MatchedCount, ModifiedCount: res.ModifiedCount}, nil
}

func (r *MongoModelRepo) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// MongoPurchaseRepo implements PurchaseRepository on the "purchased" collection.
type MongoPurchaseRepo struct {
	col *mongo.Collection
}

func NewMongoPurchaseRepo(db *mongo.Database) *MongoPurchaseRepo {
	return &MongoPurchaseRepo{col: db.Collection(PurchasedCollection)}
}

func (r *MongoPurchaseRepo) List(ctx context.Context) ([]models.Purchase, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("find purchases: %w", err)
	}
	out := []models.Purchase{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}
	return out, nil
}

func (r *MongoPurchaseRepo) Get(ctx context.Context, modelID primitive.ObjectID, purchasedBy string) (*models.Purchase, error) {
	var p models.Purchase
	filter := bson.M{"modelId": modelID, "purchasedBy": purchasedBy}
	if err := r.col.FindOne(ctx, filter).Decode(&p); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *MongoPurchaseRepo) Create(ctx context.Context, p *models.Purchase) (primitive.ObjectID, error) {
	if p.PurchasedAt.IsZero() {
		p.PurchasedAt = time.Now().UTC()
	}
	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	p.ID = id
	return id, nil
}

// ListWithModels joins every purchase with its model in one aggregation.
// $unwind drops purchases whose model no longer exists.
func (r *MongoPurchaseRepo) ListWithModels(ctx context.Context) ([]models.PurchaseWithModel, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: ModelsCollection},
			{Key: "localField", Value: "modelId"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "model"},
		}}},
		{{Key: "$unwind", Value: "$model"}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate purchases: %w", err)
	}
	out := []models.PurchaseWithModel{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode joined purchases: %w", err)
	}
	return out, nil
}

func (r *MongoPurchaseRepo) DeleteByModel(ctx context.Context, modelID primitive.ObjectID) (int64, error) {
	res, err := r.col.DeleteMany(ctx, bson.M{"modelId": modelID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// MongoTransactor runs multi-document transactions on a client session.
type MongoTransactor struct {
	client *mongo.Client
}

func NewMongoTransactor(client *mongo.Client) *MongoTransactor {
	return &MongoTransactor{client: client}
}

// WithTransaction starts a session and a transaction, runs fn with the session
// context and commits or aborts exactly once. The driver's retrying helper is
// not used: a failed attempt aborts and the error is returned as is. The
// session is ended on every path, panics included.
func (t *MongoTransactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(context.Background())

	if err := sess.StartTransaction(); err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = sess.AbortTransaction(context.Background())
			panic(r)
		}
	}()

	sc := mongo.NewSessionContext(ctx, sess)
	if err := fn(sc); err != nil {
		// abort with a fresh context so a cancelled ctx still releases server-side state
		if abortErr := sess.AbortTransaction(context.Background()); abortErr != nil {
			return fmt.Errorf("abort failed: %w (original error: %v)", abortErr, err)
		}
		return err
	}

	if err := sess.CommitTransaction(sc); err != nil {
		return commitError(err)
	}
	return nil
}

// commitError wraps a failed commit, marking it with ErrCommitResultUnknown
// when the server may have applied the transaction anyway.
func commitError(err error) error {
	var le mongo.LabeledError
	if errors.As(err, &le) && le.HasErrorLabel(unknownCommitResultLabel) {
		return fmt.Errorf("commit transaction: %w: %w", ErrCommitResultUnknown, err)
	}
	return fmt.Errorf("commit transaction: %w", err)
}
