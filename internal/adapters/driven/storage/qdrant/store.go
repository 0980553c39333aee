// Package qdrant provides a Qdrant-backed vector store for deployments
// where the index outgrows the embedded SQLite store.
package qdrant

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultHost       = "localhost"
	DefaultPort       = 6334
	DefaultCollection = "notera_notes"

	// scrollPageSize bounds each metadata scroll request.
	scrollPageSize = 256
)

// Payload keys used for note fields.
const (
	payloadNoteID      = "note_id"
	payloadTitle       = "title"
	payloadPlaintext   = "plaintext"
	payloadFolder      = "folder"
	payloadCreatedAt   = "created_at"
	payloadModifiedAt  = "modified_at"
	payloadContentHash = "content_hash"
	payloadSyncedAt    = "synced_at"
)

// Config holds connection settings for a Qdrant store.
type Config struct {
	Host       string
	Port       int
	Collection string

	// Dimensions sizes the collection's vectors when it is first created.
	Dimensions int
}

// Store is a Qdrant-backed vector store.
type Store struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	collection  string
}

// NewStore connects to Qdrant and ensures the notes collection exists.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}

	s := &Store{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		collection:  cfg.Collection,
	}

	if err := s.ensureCollection(ctx, cfg.Dimensions); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// ensureCollection creates the collection if it does not exist yet.
func (s *Store) ensureCollection(ctx context.Context, dimensions int) error {
	list, err := s.collections.List(ctx, &pb.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("qdrant list collections: %w", err)
	}
	for _, c := range list.GetCollections() {
		if c.GetName() == s.collection {
			return nil
		}
	}

	if dimensions <= 0 {
		return fmt.Errorf("%w: vector dimensions required to create collection %s",
			domain.ErrInvalidInput, s.collection)
	}

	_, err = s.collections.Create(ctx, &pb.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: &pb.VectorsConfig{
			Config: &pb.VectorsConfig_Params{
				Params: &pb.VectorParams{
					Size:     uint64(dimensions),
					Distance: pb.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant create collection: %w", err)
	}
	return nil
}

// pointID derives a stable Qdrant point UUID from a note ID. Note IDs are
// Core Data URIs, not UUIDs, so they live in the payload instead.
func pointID(noteID string) *pb.PointId {
	derived := uuid.NewSHA1(uuid.NameSpaceURL, []byte(noteID)).String()
	return &pb.PointId{PointIdOptions: &pb.PointId_Uuid{Uuid: derived}}
}

// Upsert inserts or replaces the point for a note.
func (s *Store) Upsert(ctx context.Context, record domain.IndexedRecord) error {
	if record.ID == "" {
		return fmt.Errorf("%w: record has no id", domain.ErrInvalidInput)
	}

	payload := map[string]*pb.Value{
		payloadNoteID:      stringValue(record.ID),
		payloadTitle:       stringValue(record.Title),
		payloadPlaintext:   stringValue(record.Plaintext),
		payloadFolder:      stringValue(record.Folder),
		payloadCreatedAt:   stringValue(record.CreatedAt.Format(time.RFC3339Nano)),
		payloadModifiedAt:  stringValue(record.ModifiedAt.Format(time.RFC3339Nano)),
		payloadContentHash: stringValue(record.ContentHash),
		payloadSyncedAt:    stringValue(record.SyncedAt.Format(time.RFC3339Nano)),
	}

	_, err := s.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: s.collection,
		Points: []*pb.PointStruct{{
			Id:      pointID(record.ID),
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: record.Embedding}}},
			Payload: payload,
		}},
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

// Delete removes a note's point.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: s.collection,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Points{
				Points: &pb.PointsIdsList{Ids: []*pb.PointId{pointID(id)}},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("qdrant delete: %w", err)
	}
	return nil
}

// Search returns the top k points by cosine similarity, normalised to [0,1].
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	resp, err := s.points.Search(ctx, &pb.SearchPoints{
		CollectionName: s.collection,
		Vector:         query,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(resp.GetResult()))
	for _, pt := range resp.GetResult() {
		record := recordFromPayload(pt.GetPayload())

		// Qdrant reports raw cosine in [-1,1]; shift into [0,1].
		sim := (float64(pt.GetScore()) + 1) / 2

		hits = append(hits, driven.VectorHit{
			Record:     record,
			Similarity: sim,
		})
	}
	return hits, nil
}

// Metadata scrolls the collection and returns every note's content hash.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	meta := make(map[string]string)

	err := s.scroll(ctx, func(pt *pb.RetrievedPoint) {
		payload := pt.GetPayload()
		noteID := payload[payloadNoteID].GetStringValue()
		if noteID != "" {
			meta[noteID] = payload[payloadContentHash].GetStringValue()
		}
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// Stats aggregates index-level counters from the collection payloads.
func (s *Store) Stats(ctx context.Context) (*driven.IndexStats, error) {
	stats := &driven.IndexStats{Folders: make(map[string]int)}

	err := s.scroll(ctx, func(pt *pb.RetrievedPoint) {
		payload := pt.GetPayload()
		stats.TotalNotes++
		stats.Folders[payload[payloadFolder].GetStringValue()]++

		if t, err := time.Parse(time.RFC3339Nano, payload[payloadSyncedAt].GetStringValue()); err == nil {
			if t.After(stats.LastSync) {
				stats.LastSync = t
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Close closes the gRPC connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// scroll pages through every point in the collection, calling fn per point.
func (s *Store) scroll(ctx context.Context, fn func(*pb.RetrievedPoint)) error {
	limit := uint32(scrollPageSize)
	var offset *pb.PointId

	for {
		resp, err := s.points.Scroll(ctx, &pb.ScrollPoints{
			CollectionName: s.collection,
			Limit:          &limit,
			Offset:         offset,
			WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
		})
		if err != nil {
			return fmt.Errorf("qdrant scroll: %w", err)
		}

		for _, pt := range resp.GetResult() {
			fn(pt)
		}

		offset = resp.GetNextPageOffset()
		if offset == nil {
			return nil
		}
	}
}

func recordFromPayload(payload map[string]*pb.Value) domain.IndexedRecord {
	record := domain.IndexedRecord{
		SourceNote: domain.SourceNote{
			ID:          payload[payloadNoteID].GetStringValue(),
			Title:       payload[payloadTitle].GetStringValue(),
			Plaintext:   payload[payloadPlaintext].GetStringValue(),
			Folder:      payload[payloadFolder].GetStringValue(),
			ContentHash: payload[payloadContentHash].GetStringValue(),
		},
	}

	if t, err := time.Parse(time.RFC3339Nano, payload[payloadCreatedAt].GetStringValue()); err == nil {
		record.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, payload[payloadModifiedAt].GetStringValue()); err == nil {
		record.ModifiedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, payload[payloadSyncedAt].GetStringValue()); err == nil {
		record.SyncedAt = t
	}
	return record
}

func stringValue(s string) *pb.Value {
	return &pb.Value{Kind: &pb.Value_StringValue{StringValue: s}}
}
