package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

const collectionSales = "sales"

type SaleRepository struct {
	col *mongo.Collection
}

func NewSaleRepository(db *mongo.Database) *SaleRepository {
	return &SaleRepository{col: db.Collection(collectionSales)}
}

type mongoSale struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	OwnerID    string             `bson:"user_id"`
	ProductID  string             `bson:"product_id"`
	Quantity   int                `bson:"quantity"`
	UnitPrice  float64            `bson:"unit_price"`
	Total      float64            `bson:"total"`
	Note       string             `bson:"note,omitempty"`
	OccurredAt time.Time          `bson:"occurred_at"`
}

func (r *SaleRepository) Create(ctx context.Context, s *domain.Sale) (*domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoSale{
		OwnerID:    s.OwnerID,
		ProductID:  s.ProductID,
		Quantity:   s.Quantity,
		UnitPrice:  s.UnitPrice,
		Total:      s.Total,
		Note:       s.Note,
		OccurredAt: s.OccurredAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, err
	}

	created := *s
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *SaleRepository) List(ctx context.Context, filter ports.ListSalesFilter) ([]domain.Sale, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"user_id": filter.OwnerID}
	occurred := bson.M{}
	if !filter.DateFrom.IsZero() {
		occurred["$gte"] = filter.DateFrom
	}
	if !filter.DateTo.IsZero() {
		occurred["$lte"] = filter.DateTo
	}
	if len(occurred) > 0 {
		query["occurred_at"] = occurred
	}

	opts := options.Find().SetSort(bson.D{{Key: "occurred_at", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var sales []domain.Sale
	for cur.Next(ctx) {
		var ms mongoSale
		if err := cur.Decode(&ms); err != nil {
			return nil, err
		}
		sales = append(sales, domain.Sale{
			ID:         ms.ID.Hex(),
			OwnerID:    ms.OwnerID,
			ProductID:  ms.ProductID,
			Quantity:   ms.Quantity,
			UnitPrice:  ms.UnitPrice,
			Total:      ms.Total,
			Note:       ms.Note,
			OccurredAt: ms.OccurredAt.UTC(),
		})
	}
	return sales, cur.Err()
}

func (r *SaleRepository) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return r.col.CountDocuments(ctx, bson.M{"user_id": ownerID})
}
