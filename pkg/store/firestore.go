package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreConfig holds configuration for the Firestore-backed client.
type FirestoreConfig struct {
	ProjectID string
}

// FirestoreClient adapts a Firestore project to the Client interface:
// top-level collections are containers and documents are keys. A scoped
// ContainerRef maps to the "<name>__<scope>" collection.
//
// Firestore reports failures honestly, so this client never produces the
// throttle sentinel; it exists for deployments and integration tests that
// read from a Firestore mirror of the primary store.
type FirestoreClient struct {
	client *firestore.Client
	logger zerolog.Logger
}

// NewFirestoreClient creates a new FirestoreClient around an existing
// Firestore connection. The client's lifecycle is managed externally.
func NewFirestoreClient(
	cfg *FirestoreConfig,
	client *firestore.Client,
	logger zerolog.Logger,
) (*FirestoreClient, error) {
	if client == nil {
		return nil, fmt.Errorf("firestore client cannot be nil")
	}

	logger.Info().Str("project_id", cfg.ProjectID).Msg("FirestoreClient initialized.")

	return &FirestoreClient{
		client: client,
		logger: logger.With().Str("component", "FirestoreClient").Logger(),
	}, nil
}

// ListContainers returns the IDs of all top-level collections.
func (c *FirestoreClient) ListContainers(ctx context.Context) ([]string, error) {
	var names []string
	it := c.client.Collections(ctx)
	for {
		col, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			c.logger.Error().Err(err).Msg("Failed to list Firestore collections.")
			return nil, fmt.Errorf("firestore list collections: %w: %w", ErrStoreUnavailable, err)
		}
		names = append(names, col.ID)
	}
	return names, nil
}

// ListKeys lists document IDs in the container's collection, ordered by
// document ID. pageHint, when set, resumes the listing after that ID.
func (c *FirestoreClient) ListKeys(ctx context.Context, ref ContainerRef, pageHint string, limit int) (KeyListing, error) {
	query := c.client.Collection(c.collectionFor(ref)).
		Query.OrderBy(firestore.DocumentID, firestore.Asc)
	if pageHint != "" {
		query = query.StartAfter(pageHint)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var listing KeyListing
	it := query.Documents(ctx)
	defer it.Stop()
	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			c.logger.Error().Err(err).Str("container", ref.String()).Msg("Failed to list Firestore documents.")
			return KeyListing{}, fmt.Errorf("firestore list keys for %s: %w: %w", ref, ErrStoreUnavailable, err)
		}
		listing.Keys = append(listing.Keys, KeyDescriptor{
			Name:         doc.Ref.ID,
			Size:         approximateSize(doc.Data()),
			LastModified: doc.UpdateTime.Format(time.RFC3339),
		})
	}

	c.logger.Debug().Str("container", ref.String()).Int("keys", len(listing.Keys)).Msg("Listed Firestore documents.")
	return listing, nil
}

// GetValue fetches a single document. A missing document is not an error;
// it yields a ValueRecord with a nil Value.
func (c *FirestoreClient) GetValue(ctx context.Context, ref ContainerRef, key string) (ValueRecord, error) {
	docSnap, err := c.client.Collection(c.collectionFor(ref)).Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			c.logger.Debug().Str("container", ref.String()).Str("key", key).Msg("Document not found in Firestore.")
			return ValueRecord{Key: key, Provenance: ProvenanceReal, Source: "firestore"}, nil
		}
		c.logger.Error().Err(err).Str("container", ref.String()).Str("key", key).Msg("Failed to get document from Firestore.")
		return ValueRecord{}, fmt.Errorf("firestore get for %s/%s: %w: %w", ref, key, ErrStoreUnavailable, err)
	}

	data := docSnap.Data()
	return ValueRecord{
		Key:        key,
		Value:      data,
		Type:       TypeTag(data),
		Size:       approximateSize(data),
		Provenance: ProvenanceReal,
		Source:     "firestore",
	}, nil
}

// collectionFor maps a ContainerRef to a Firestore collection ID. Scopes
// are folded into the collection name because Firestore collection paths
// cannot nest without an intervening document.
func (c *FirestoreClient) collectionFor(ref ContainerRef) string {
	if ref.Scope == "" {
		return ref.Name
	}
	return ref.Name + "__" + ref.Scope
}

// TypeTag returns a presentation-friendly tag for a value's shape.
func TypeTag(value any) string {
	switch value.(type) {
	case nil:
		return ""
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, float64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "table"
	default:
		return fmt.Sprintf("%T", value)
	}
}

// approximateSize is a best-effort byte estimate for listing metadata.
func approximateSize(value any) int64 {
	data, err := json.Marshal(value)
	if err != nil {
		return 0
	}
	return int64(len(data))
}
