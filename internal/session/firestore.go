package session

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/codex-web/auth-front/internal/log"
)

// Ensure FirestoreStore implements Store
var _ Store = (*FirestoreStore)(nil)

// FirestoreStore persists session state in Google Cloud Firestore, one
// document per key. Reads must succeed for auth to work, so read errors are
// returned as-is; the not-found status maps to ErrNotFound.
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

// sessionDoc is the stored document shape.
type sessionDoc struct {
	Value     string    `firestore:"value"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

// NewFirestoreStore connects to Firestore in the given project. The
// collection defaults to "client_sessions" when empty.
func NewFirestoreStore(ctx context.Context, projectID, collection string, opts ...option.ClientOption) (*FirestoreStore, error) {
	if collection == "" {
		collection = "client_sessions"
	}

	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	log.LogInfoWithFields("session", "Firestore session store ready", map[string]any{
		"project":    projectID,
		"collection": collection,
	})

	return &FirestoreStore{client: client, collection: collection}, nil
}

func (s *FirestoreStore) Get(ctx context.Context, key string) (string, error) {
	snap, err := s.client.Collection(s.collection).Doc(key).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("firestore get: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return "", fmt.Errorf("decoding session document: %w", err)
	}
	return doc.Value, nil
}

func (s *FirestoreStore) Set(ctx context.Context, key, value string) error {
	_, err := s.client.Collection(s.collection).Doc(key).Set(ctx, sessionDoc{
		Value:     value,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("firestore set: %w", err)
	}
	return nil
}

func (s *FirestoreStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.Collection(s.collection).Doc(key).Delete(ctx)
	if err != nil {
		return fmt.Errorf("firestore delete: %w", err)
	}
	return nil
}

// Close releases the underlying Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}
