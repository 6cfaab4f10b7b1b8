// Package store
// File: store/firestore.go
package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go-drop-registry/logger"
	"go-drop-registry/models"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the Cloud Firestore backed store.
type FirestoreStore struct {
	Client        *firestore.Client
	StatusDoc     *firestore.DocumentRef
	Registrations *firestore.CollectionRef
}

var _ Interface = (*FirestoreStore)(nil)

// NewFirestoreStore opens a client for projectID. credentialsFile may be empty
// to use application default credentials (or the emulator).
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile string) (*FirestoreStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to firestore: %w", err)
	}
	return NewFirestoreStoreFromClient(client), nil
}

// NewFirestoreStoreFromClient wraps an existing client.
func NewFirestoreStoreFromClient(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		Client:        client,
		StatusDoc:     client.Collection(StatusCollection).Doc(models.StatusDocumentID),
		Registrations: client.Collection(RegistrationCollection),
	}
}

// ---------------- status ----------------

func (s *FirestoreStore) GetStatus(ctx context.Context) (models.AdminStatus, bool, error) {
	snap, err := s.StatusDoc.Get(ctx)
	if status.Code(err) == codes.NotFound {
		return models.AdminStatus{}, false, nil
	}
	if err != nil {
		return models.AdminStatus{}, false, fmt.Errorf("get status: %w", err)
	}
	return decodeStatus(snap)
}

func decodeStatus(snap *firestore.DocumentSnapshot) (models.AdminStatus, bool, error) {
	if snap == nil || !snap.Exists() {
		return models.AdminStatus{}, false, nil
	}
	var st models.AdminStatus
	if err := snap.DataTo(&st); err != nil {
		return models.AdminStatus{}, false, fmt.Errorf("decode status: %w", err)
	}
	return st.WithDefaults(), true, nil
}

// EnsureStatus relies on Create failing when the document exists, which makes
// the create-if-absent atomic.
func (s *FirestoreStore) EnsureStatus(ctx context.Context, defaults models.AdminStatus) (models.AdminStatus, error) {
	_, err := s.StatusDoc.Create(ctx, defaults.WithDefaults())
	switch {
	case err == nil:
		logger.Info.Printf("EnsureStatus: created status for day %s", defaults.Day)
	case status.Code(err) == codes.AlreadyExists:
	default:
		return models.AdminStatus{}, fmt.Errorf("ensure status: %w", err)
	}

	st, _, err := s.GetStatus(ctx)
	return st, err
}

func (s *FirestoreStore) UpdateStatus(ctx context.Context, u StatusUpdate) error {
	updates := firestoreUpdates(u)
	if len(updates) == 0 {
		return nil
	}
	if _, err := s.StatusDoc.Update(ctx, updates); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// firestoreUpdates uses FieldPath for map entries because slot names contain
// spaces, which plain dotted paths reject.
func firestoreUpdates(u StatusUpdate) []firestore.Update {
	var updates []firestore.Update
	if u.IsRegistrationOpen != nil {
		updates = append(updates, firestore.Update{Path: "isRegistrationOpen", Value: *u.IsRegistrationOpen})
	}
	if u.Day != nil {
		updates = append(updates, firestore.Update{Path: "day", Value: *u.Day})
	}
	for slot, n := range u.SlotLimits {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{"slotLimits", slot}, Value: n})
	}
	for slot, on := range u.ActiveSlots {
		updates = append(updates, firestore.Update{FieldPath: firestore.FieldPath{"activeSlots", slot}, Value: on})
	}
	switch {
	case u.NextRegistrationStart != nil:
		updates = append(updates, firestore.Update{Path: "nextRegistrationStart", Value: u.NextRegistrationStart.UTC()})
	case u.ClearNextRegistrationStart:
		updates = append(updates, firestore.Update{Path: "nextRegistrationStart", Value: nil})
	}
	return updates
}

// ---------------- registrations ----------------

func (s *FirestoreStore) query(f RegistrationFilter) firestore.Query {
	q := s.Registrations.Query
	if f.TimeSlot != "" {
		q = q.Where("timeSlot", "==", f.TimeSlot)
	}
	if f.Date != "" {
		q = q.Where("date", "==", f.Date)
	}
	return q
}

// ListRegistrations sorts client side so equality filters need no composite index.
func (s *FirestoreStore) ListRegistrations(ctx context.Context, f RegistrationFilter) ([]models.Registration, error) {
	iter := s.query(f).Documents(ctx)
	defer iter.Stop()

	regs := make([]models.Registration, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list registrations: %w", err)
		}
		r, err := decodeRegistration(doc)
		if err != nil {
			return nil, err
		}
		regs = append(regs, r)
	}
	sortByCreated(regs)
	return regs, nil
}

func decodeRegistration(doc *firestore.DocumentSnapshot) (models.Registration, error) {
	var r models.Registration
	if err := doc.DataTo(&r); err != nil {
		return models.Registration{}, fmt.Errorf("decode registration %s: %w", doc.Ref.ID, err)
	}
	r.ID = doc.Ref.ID
	return r, nil
}

func (s *FirestoreStore) CreateRegistration(ctx context.Context, r models.Registration) error {
	if _, err := s.Registrations.Doc(r.ID).Create(ctx, r); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	return nil
}

// DeleteAllRegistrations batches deletes through a BulkWriter. It is not
// atomic: a failure can leave some documents behind.
func (s *FirestoreStore) DeleteAllRegistrations(ctx context.Context) (int64, error) {
	refs, err := s.Registrations.DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("list registrations for delete: %w", err)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := s.Client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("queue delete %s: %w", ref.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	var deleted int64
	var firstErr error
	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	if firstErr != nil {
		return deleted, fmt.Errorf("delete registrations: %w", firstErr)
	}
	return deleted, nil
}

// ---------------- subscriptions ----------------

func (s *FirestoreStore) WatchStatus(ctx context.Context, fn StatusHandler) (*Subscription, error) {
	sub, subCtx := newSubscription(ctx)
	it := s.StatusDoc.Snapshots(subCtx)

	go func() {
		defer sub.finish()
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if subCtx.Err() == nil && status.Code(err) != codes.Canceled {
					logger.Error.Printf("WatchStatus: snapshot listener stopped: %v", err)
				}
				return
			}
			st, exists, err := decodeStatus(snap)
			if err != nil {
				logger.Error.Printf("WatchStatus: %v", err)
				continue
			}
			fn(st, exists)
		}
	}()
	return sub, nil
}

func (s *FirestoreStore) WatchRegistrations(ctx context.Context, f RegistrationFilter, fn RegistrationsHandler) (*Subscription, error) {
	sub, subCtx := newSubscription(ctx)
	it := s.query(f).Snapshots(subCtx)

	go func() {
		defer sub.finish()
		defer it.Stop()
		for {
			snap, err := it.Next()
			if err != nil {
				if subCtx.Err() == nil && status.Code(err) != codes.Canceled {
					logger.Error.Printf("WatchRegistrations: snapshot listener stopped: %v", err)
				}
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error.Printf("WatchRegistrations: read snapshot: %v", err)
				continue
			}
			regs := make([]models.Registration, 0, len(docs))
			for _, doc := range docs {
				r, err := decodeRegistration(doc)
				if err != nil {
					logger.Error.Printf("WatchRegistrations: %v", err)
					continue
				}
				regs = append(regs, r)
			}
			sortByCreated(regs)
			fn(regs)
		}
	}()
	return sub, nil
}

// ---------------- lifecycle ----------------

func (s *FirestoreStore) Close(ctx context.Context) error {
	if err := s.Client.Close(); err != nil {
		return fmt.Errorf("close firestore: %w", err)
	}
	return nil
}
