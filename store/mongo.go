// Package store
// File: store/mongo.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/go-cmp/cmp"
	"go-drop-registry/logger"
	"go-drop-registry/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore is the MongoDB backed store.
type MongoStore struct {
	Client      *mongo.Client
	Database    *mongo.Database
	Collections struct {
		Status        *mongo.Collection
		Registrations *mongo.Collection
	}
	// PollInterval is used when the deployment has no change streams
	// (standalone servers).
	PollInterval time.Duration
}

var _ Interface = (*MongoStore)(nil)

// statusDocument is the stored shape of the status singleton.
type statusDocument struct {
	ID                 string `bson:"_id"`
	models.AdminStatus `bson:",inline"`
}

// NewMongoStore connects to uri and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, uri, dbName string, poll time.Duration) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return NewMongoStoreFromClient(client, dbName, poll), nil
}

// NewMongoStoreFromClient wraps an existing client.
func NewMongoStoreFromClient(client *mongo.Client, dbName string, poll time.Duration) *MongoStore {
	db := client.Database(dbName)
	s := &MongoStore{Client: client, Database: db, PollInterval: poll}
	s.Collections.Status = db.Collection(StatusCollection)
	s.Collections.Registrations = db.Collection(RegistrationCollection)
	return s
}

// EnsureIndexes creates the index backing the slot/day queries.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.Collections.Registrations.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "timeSlot", Value: 1}, {Key: "date", Value: 1}, {Key: "createdAt", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create registrations index: %w", err)
	}
	return nil
}

// ---------------- status ----------------

func (s *MongoStore) GetStatus(ctx context.Context) (models.AdminStatus, bool, error) {
	var doc statusDocument
	err := s.Collections.Status.FindOne(ctx, bson.M{"_id": models.StatusDocumentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.AdminStatus{}, false, nil
	}
	if err != nil {
		return models.AdminStatus{}, false, fmt.Errorf("get status: %w", err)
	}
	return doc.AdminStatus.WithDefaults(), true, nil
}

// EnsureStatus upserts with $setOnInsert so concurrent callers never
// overwrite an existing record.
func (s *MongoStore) EnsureStatus(ctx context.Context, defaults models.AdminStatus) (models.AdminStatus, error) {
	d := defaults.WithDefaults()
	update := bson.M{"$setOnInsert": bson.M{
		"isRegistrationOpen":    d.IsRegistrationOpen,
		"day":                   d.Day,
		"slotLimits":            d.SlotLimits,
		"activeSlots":           d.ActiveSlots,
		"nextRegistrationStart": d.NextRegistrationStart,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc statusDocument
	err := s.Collections.Status.FindOneAndUpdate(ctx, bson.M{"_id": models.StatusDocumentID}, update, opts).Decode(&doc)
	if err != nil {
		return models.AdminStatus{}, fmt.Errorf("ensure status: %w", err)
	}
	return doc.AdminStatus.WithDefaults(), nil
}

func (s *MongoStore) UpdateStatus(ctx context.Context, u StatusUpdate) error {
	if u.IsEmpty() {
		return nil
	}
	_, err := s.Collections.Status.UpdateOne(ctx,
		bson.M{"_id": models.StatusDocumentID},
		bson.M{"$set": statusSet(u)},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// statusSet turns an update into a $set document. Map entries become dotted
// paths so one slot never clobbers the others.
func statusSet(u StatusUpdate) bson.M {
	set := bson.M{}
	if u.IsRegistrationOpen != nil {
		set["isRegistrationOpen"] = *u.IsRegistrationOpen
	}
	if u.Day != nil {
		set["day"] = *u.Day
	}
	for slot, n := range u.SlotLimits {
		set["slotLimits."+slot] = n
	}
	for slot, on := range u.ActiveSlots {
		set["activeSlots."+slot] = on
	}
	if u.ClearNextRegistrationStart {
		set["nextRegistrationStart"] = nil
	}
	if u.NextRegistrationStart != nil {
		set["nextRegistrationStart"] = u.NextRegistrationStart.UTC()
	}
	return set
}

// ---------------- registrations ----------------

func (s *MongoStore) ListRegistrations(ctx context.Context, f RegistrationFilter) ([]models.Registration, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := s.Collections.Registrations.Find(ctx, registrationQuery(f), opts)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer cursor.Close(ctx)

	regs := make([]models.Registration, 0)
	if err := cursor.All(ctx, &regs); err != nil {
		return nil, fmt.Errorf("decode registrations: %w", err)
	}
	return regs, nil
}

func registrationQuery(f RegistrationFilter) bson.M {
	q := bson.M{}
	if f.TimeSlot != "" {
		q["timeSlot"] = f.TimeSlot
	}
	if f.Date != "" {
		q["date"] = f.Date
	}
	return q
}

func (s *MongoStore) CreateRegistration(ctx context.Context, r models.Registration) error {
	if _, err := s.Collections.Registrations.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

func (s *MongoStore) DeleteAllRegistrations(ctx context.Context) (int64, error) {
	res, err := s.Collections.Registrations.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("delete registrations: %w", err)
	}
	return res.DeletedCount, nil
}

// ---------------- subscriptions ----------------

func (s *MongoStore) WatchStatus(ctx context.Context, fn StatusHandler) (*Subscription, error) {
	sub, subCtx := newSubscription(ctx)

	var last *models.AdminStatus
	lastExists := false
	deliver := func() error {
		st, exists, err := s.GetStatus(subCtx)
		if err != nil {
			return err
		}
		if last != nil && exists == lastExists && cmp.Equal(*last, st) {
			return nil
		}
		last, lastExists = &st, exists
		fn(st, exists)
		return nil
	}
	if err := deliver(); err != nil {
		sub.Cancel()
		sub.finish()
		return nil, err
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: models.StatusDocumentID}}}}}
	go s.follow(subCtx, sub, s.Collections.Status, pipeline, deliver, "WatchStatus")
	return sub, nil
}

func (s *MongoStore) WatchRegistrations(ctx context.Context, f RegistrationFilter, fn RegistrationsHandler) (*Subscription, error) {
	sub, subCtx := newSubscription(ctx)

	var last []models.Registration
	delivered := false
	deliver := func() error {
		regs, err := s.ListRegistrations(subCtx, f)
		if err != nil {
			return err
		}
		if delivered && cmp.Equal(last, regs) {
			return nil
		}
		last, delivered = regs, true
		fn(regs)
		return nil
	}
	if err := deliver(); err != nil {
		sub.Cancel()
		sub.finish()
		return nil, err
	}

	// deletes carry no document fields, so every change triggers a re-query
	go s.follow(subCtx, sub, s.Collections.Registrations, mongo.Pipeline{}, deliver, "WatchRegistrations")
	return sub, nil
}

// follow re-delivers on every change stream event and falls back to polling
// when the deployment cannot open a stream.
func (s *MongoStore) follow(ctx context.Context, sub *Subscription, coll *mongo.Collection, pipeline mongo.Pipeline, deliver func() error, name string) {
	defer sub.finish()

	stream, err := coll.Watch(ctx, pipeline)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Warn.Printf("%s: change stream unavailable, polling every %v: %v", name, s.pollInterval(), err)
		s.poll(ctx, deliver, name)
		return
	}
	defer stream.Close(context.Background())

	for stream.Next(ctx) {
		if err := deliver(); err != nil && ctx.Err() == nil {
			logger.Error.Printf("%s: refresh failed: %v", name, err)
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		logger.Warn.Printf("%s: change stream closed, polling: %v", name, err)
		s.poll(ctx, deliver, name)
	}
}

func (s *MongoStore) poll(ctx context.Context, deliver func() error, name string) {
	ticker := time.NewTicker(s.pollInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := deliver(); err != nil && ctx.Err() == nil {
				logger.Error.Printf("%s: poll failed: %v", name, err)
			}
		}
	}
}

func (s *MongoStore) pollInterval() time.Duration {
	if s.PollInterval > 0 {
		return s.PollInterval
	}
	return 2 * time.Second
}

// ---------------- lifecycle ----------------

func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.Client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnect mongo: %w", err)
	}
	return nil
}
