// Package mongocart stores each cart as one MongoDB document keyed by user_id.
package mongocart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/OrmirUlaj/gaming-marketplace/internal/apperr"
	"github.com/OrmirUlaj/gaming-marketplace/internal/models"
)

const Collection = "cart"

type cartDocument struct {
	ID        string         `bson:"_id"`
	UserID    string         `bson:"user_id"`
	Items     []itemDocument `bson:"items"`
	CreatedAt time.Time      `bson:"created_at"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

type itemDocument struct {
	ProductID string `bson:"product_id"`
	Quantity  int    `bson:"quantity"`
}

type Repo struct {
	collection *mongo.Collection
}

func New(db *mongo.Database) *Repo {
	return &Repo{collection: db.Collection(Collection)}
}

func Connect(ctx context.Context, uri, database string) (*mongo.Database, error) {
	clientOpts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(100)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client.Database(database), nil
}

func (r *Repo) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user_id"),
	})
	if err != nil {
		return fmt.Errorf("create cart indexes: %w", err)
	}
	return nil
}

func (r *Repo) GetCart(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var doc cartDocument
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.ErrNotFound
		}
		return nil, apperr.Storage(fmt.Errorf("find cart: %w", err))
	}
	return doc.toModel()
}

// UpsertItem replaces the quantity of an existing line in place, or pushes a
// new line, creating the document on first use.
func (r *Repo) UpsertItem(ctx context.Context, userID uuid.UUID, item models.CartItem) (*models.Cart, error) {
	uid, pid := userID.String(), item.ProductID.String()

	for attempt := 0; attempt < 2; attempt++ {
		now := time.Now().UTC()
		res, err := r.collection.UpdateOne(ctx,
			bson.M{"user_id": uid},
			bson.M{"$set": bson.M{
				"items.$[elem].quantity": item.Quantity,
				"updated_at":             now,
			}},
			options.Update().SetArrayFilters(options.ArrayFilters{
				Filters: []any{bson.M{"elem.product_id": pid}},
			}),
		)
		if err != nil {
			return nil, apperr.Storage(fmt.Errorf("update cart item: %w", err))
		}
		if res.MatchedCount > 0 {
			cart, err := r.GetCart(ctx, userID)
			if err != nil {
				return nil, err
			}
			if _, ok := cart.Quantity(item.ProductID); ok {
				return cart, nil
			}
		}

		_, err = r.collection.UpdateOne(ctx,
			bson.M{"user_id": uid, "items.product_id": bson.M{"$ne": pid}},
			bson.M{
				"$push":        bson.M{"items": itemDocument{ProductID: pid, Quantity: item.Quantity}},
				"$set":         bson.M{"updated_at": now},
				"$setOnInsert": bson.M{"_id": uuid.NewString(), "created_at": now},
			},
			options.Update().SetUpsert(true),
		)
		if mongo.IsDuplicateKeyError(err) {
			continue
		}
		if err != nil {
			return nil, apperr.Storage(fmt.Errorf("push cart item: %w", err))
		}
		return r.GetCart(ctx, userID)
	}
	return r.GetCart(ctx, userID)
}

func (r *Repo) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*models.Cart, error) {
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID.String()},
		bson.M{
			"$pull": bson.M{"items": bson.M{"product_id": productID.String()}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("remove cart item: %w", err))
	}
	if res.MatchedCount == 0 {
		return nil, apperr.ErrNotFound
	}
	return r.GetCart(ctx, userID)
}

func (r *Repo) ReplaceItems(ctx context.Context, userID uuid.UUID, items []models.CartItem) (*models.Cart, error) {
	docs := make([]itemDocument, 0, len(items))
	for _, it := range items {
		docs = append(docs, itemDocument{ProductID: it.ProductID.String(), Quantity: it.Quantity})
	}
	now := time.Now().UTC()
	_, err := r.collection.UpdateOne(ctx,
		bson.M{"user_id": userID.String()},
		bson.M{
			"$set":         bson.M{"items": docs, "updated_at": now},
			"$setOnInsert": bson.M{"_id": uuid.NewString(), "created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("replace cart: %w", err))
	}
	return r.GetCart(ctx, userID)
}

func (r *Repo) DeleteCart(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"user_id": userID.String()}); err != nil {
		return apperr.Storage(fmt.Errorf("delete cart: %w", err))
	}
	return nil
}

func (d cartDocument) toModel() (*models.Cart, error) {
	userID, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, apperr.Storage(fmt.Errorf("cart %s: bad user_id: %w", d.ID, err))
	}
	cartID, _ := uuid.Parse(d.ID)

	cart := &models.Cart{
		ID:        cartID,
		UserID:    userID,
		Items:     make([]models.CartItem, 0, len(d.Items)),
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
	for _, it := range d.Items {
		pid, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, apperr.Storage(fmt.Errorf("cart %s: bad product_id: %w", d.ID, err))
		}
		cart.Items = append(cart.Items, models.CartItem{CartID: cartID, ProductID: pid, Quantity: it.Quantity})
	}
	return cart, nil
}
