// repositories/mongo_store.go
package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/blogchain/mindly_backend/models"
)

// MongoStore is the production LedgerStore backed by MongoDB.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore creates a LedgerStore over the given database.
func NewMongoStore(client *mongo.Client, dbName string) *MongoStore {
	return &MongoStore{
		client: client,
		db:     client.Database(dbName),
	}
}

func (s *MongoStore) users() *mongo.Collection       { return s.db.Collection("users") }
func (s *MongoStore) posts() *mongo.Collection       { return s.db.Collection("posts") }
func (s *MongoStore) withdrawals() *mongo.Collection { return s.db.Collection("withdrawals") }
func (s *MongoStore) settings() *mongo.Collection    { return s.db.Collection("settings") }
func (s *MongoStore) earnings() *mongo.Collection    { return s.db.Collection("earning_transactions") }

func (s *MongoStore) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users().FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *MongoStore) GetPost(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	var post models.Post
	err := s.posts().FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *MongoStore) ApplyQualifyingView(ctx context.Context, postID, authorID primitive.ObjectID, amount float64) error {
	session, err := s.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	// View counter, balance credit and audit row commit together. A
	// credit without its audit document would undercount every total
	// derived from earning_transactions; WithTransaction retries
	// transient conflicts internally.
	callback := func(sc mongo.SessionContext) (interface{}, error) {
		// The status filter keeps a racing unpublish from counting the
		// view.
		result, err := s.posts().UpdateOne(sc,
			bson.M{"_id": postID, "status": models.PostStatusPublished},
			bson.M{"$inc": bson.M{"views": 1}},
		)
		if err != nil {
			return nil, err
		}
		if result.MatchedCount == 0 {
			return nil, ErrNotFound
		}

		if amount <= 0 {
			return nil, nil
		}

		if _, err := s.users().UpdateOne(sc,
			bson.M{"_id": authorID},
			bson.M{"$inc": bson.M{"virtualEarnings": amount}, "$set": bson.M{"updatedAt": time.Now()}},
		); err != nil {
			return nil, err
		}

		tx := models.EarningTransaction{
			ID:        primitive.NewObjectID(),
			UserID:    authorID,
			PostID:    postID,
			Amount:    amount,
			Type:      "view_credit",
			CreatedAt: time.Now(),
		}
		if _, err := s.earnings().InsertOne(sc, tx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	_, err = session.WithTransaction(ctx, callback)
	return err
}

func (s *MongoStore) GetSettings(ctx context.Context) (*models.EarningsSettings, error) {
	var settings models.EarningsSettings
	err := s.settings().FindOne(ctx, bson.M{"_id": models.SettingsDocumentID}).Decode(&settings)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &settings, nil
}

func (s *MongoStore) UpdateSettings(ctx context.Context, req models.SettingsUpdateRequest) (*models.EarningsSettings, error) {
	set := bson.M{"updatedAt": time.Now()}
	if req.BaseEarningPerView != nil {
		set["baseEarningPerView"] = *req.BaseEarningPerView
	}
	if req.MinimumWithdrawalAmount != nil {
		set["minimumWithdrawalAmount"] = *req.MinimumWithdrawalAmount
	}
	if req.MinimumViewDuration != nil {
		set["minimumViewDuration"] = *req.MinimumViewDuration
	}

	// Fill absent fields from defaults on first write so a partial
	// update never creates a half-empty singleton.
	defaults := models.DefaultEarningsSettings()
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"baseEarningPerView":      defaults.BaseEarningPerView,
			"minimumWithdrawalAmount": defaults.MinimumWithdrawalAmount,
			"minimumViewDuration":     defaults.MinimumViewDuration,
		},
	}
	// $set and $setOnInsert cannot share keys
	insertDefaults := update["$setOnInsert"].(bson.M)
	for key := range set {
		delete(insertDefaults, key)
	}

	var settings models.EarningsSettings
	err := s.settings().FindOneAndUpdate(ctx, bson.M{"_id": models.SettingsDocumentID}, update, opts).Decode(&settings)
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (s *MongoStore) CreateWithdrawal(ctx context.Context, userID primitive.ObjectID, amount float64, details models.PaymentDetails) (*models.WithdrawalRequest, error) {
	session, err := s.client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)

	callback := func(sc mongo.SessionContext) (interface{}, error) {
		// Re-read the balance inside the transaction; the caller's view
		// of it may be stale.
		var user models.User
		if err := s.users().FindOne(sc, bson.M{"_id": userID}).Decode(&user); err != nil {
			if err == mongo.ErrNoDocuments {
				return nil, ErrNotFound
			}
			return nil, err
		}
		if amount > user.VirtualEarnings {
			return nil, ErrInsufficientBalance
		}

		result, err := s.users().UpdateOne(sc,
			bson.M{"_id": userID, "virtualEarnings": bson.M{"$gte": amount}},
			bson.M{"$inc": bson.M{"virtualEarnings": -amount}, "$set": bson.M{"updatedAt": time.Now()}},
		)
		if err != nil {
			return nil, err
		}
		if result.ModifiedCount == 0 {
			return nil, ErrInsufficientBalance
		}

		request := models.WithdrawalRequest{
			ID:             primitive.NewObjectID(),
			UserID:         userID,
			Amount:         amount,
			Status:         models.WithdrawalStatusPending,
			PaymentDetails: details,
			RequestedAt:    time.Now(),
		}
		if _, err := s.withdrawals().InsertOne(sc, request); err != nil {
			return nil, err
		}
		return &request, nil
	}

	result, err := session.WithTransaction(ctx, callback)
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) || errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if isTransientTxError(err) {
			return nil, ErrTransientConflict
		}
		return nil, err
	}
	return result.(*models.WithdrawalRequest), nil
}

// isTransientTxError reports whether the driver flagged the error as
// retryable.
func isTransientTxError(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorLabel("TransientTransactionError") ||
			cmdErr.HasErrorLabel("UnknownTransactionCommitResult")
	}
	return false
}

func (s *MongoStore) GetWithdrawal(ctx context.Context, id primitive.ObjectID) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	err := s.withdrawals().FindOne(ctx, bson.M{"_id": id}).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (s *MongoStore) UpdateWithdrawalStatus(ctx context.Context, id primitive.ObjectID, status string, adminID primitive.ObjectID, note string) (*models.WithdrawalRequest, error) {
	set := bson.M{
		"status":  status,
		"adminId": adminID,
	}
	if note != "" {
		set["adminNote"] = note
	}
	if models.TerminalWithdrawalStatus(status) {
		set["processedAt"] = time.Now()
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var request models.WithdrawalRequest
	err := s.withdrawals().FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&request)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (s *MongoStore) ListWithdrawalsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.WithdrawalRequest, error) {
	return s.listWithdrawals(ctx, bson.M{"userId": userID})
}

func (s *MongoStore) ListWithdrawalsByStatus(ctx context.Context, status string) ([]models.WithdrawalRequest, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return s.listWithdrawals(ctx, filter)
}

func (s *MongoStore) listWithdrawals(ctx context.Context, filter bson.M) ([]models.WithdrawalRequest, error) {
	cursor, err := s.withdrawals().Find(ctx, filter,
		&options.FindOptions{Sort: bson.M{"requestedAt": -1}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var requests []models.WithdrawalRequest
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (s *MongoStore) ListEarningsByUser(ctx context.Context, userID primitive.ObjectID) ([]models.EarningTransaction, error) {
	cursor, err := s.earnings().Find(ctx, bson.M{"userId": userID},
		&options.FindOptions{Sort: bson.M{"createdAt": -1}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var transactions []models.EarningTransaction
	if err := cursor.All(ctx, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}
