// Package gateway wraps every ordinary mutation against the remote store.
// Online writes go straight through; anything else lands in the offline
// queue. Callers never see a connectivity error from Write — the returned
// Outcome tells them whether the mutation committed remotely or was queued
// locally, and only a local durability failure is a hard error.
package gateway

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MILO-debug/POS/internal/model"
	"github.com/MILO-debug/POS/internal/offline"
)

// Disposition of a gateway write.
const (
	Committed = "committed" // applied to the remote store
	Queued    = "queued"    // durably stored locally, awaiting replay
)

// Outcome reports how a write was made durable. DocID is always populated,
// including for queued adds (ids are client-assigned so queued documents keep
// stable identities).
type Outcome struct {
	Disposition string `json:"disposition"`
	DocID       string `json:"docId"`
}

// DocumentStore is the write surface of the remote store.
type DocumentStore interface {
	Insert(ctx context.Context, collection, docID string, doc interface{}) error
	Update(ctx context.Context, collection, docID string, fields interface{}) error
	Delete(ctx context.Context, collection, docID string) error
}

// Codec serializes payloads for queue storage and replay.
type Codec interface {
	Marshal(v interface{}) ([]byte, error)
	Unmarshal(data []byte) (interface{}, error)
}

// Probe reports remote reachability.
type Probe interface {
	Online(ctx context.Context) bool
	MarkOffline()
}

type Gateway struct {
	store DocumentStore
	codec Codec
	queue *offline.Queue
	probe Probe
}

func New(store DocumentStore, codec Codec, queue *offline.Queue, probe Probe) *Gateway {
	return &Gateway{store: store, codec: codec, queue: queue, probe: probe}
}

// Write applies one mutation. Validation must happen before this call; from
// here on the mutation will be made durable one way or the other.
func (g *Gateway) Write(ctx context.Context, action, collection string, payload interface{}, docID string) (Outcome, error) {
	if action == model.WriteAdd && docID == "" {
		docID = uuid.NewString()
	}

	if !g.probe.Online(ctx) {
		return g.enqueue(ctx, action, collection, payload, docID)
	}

	if err := g.apply(ctx, action, collection, payload, docID); err != nil {
		log.Warn().Err(err).
			Str("action", action).
			Str("collection", collection).
			Str("doc_id", docID).
			Msg("gateway: remote write failed, queueing")
		g.probe.MarkOffline()
		return g.enqueue(ctx, action, collection, payload, docID)
	}
	return Outcome{Disposition: Committed, DocID: docID}, nil
}

func (g *Gateway) apply(ctx context.Context, action, collection string, payload interface{}, docID string) error {
	switch action {
	case model.WriteAdd:
		return g.store.Insert(ctx, collection, docID, payload)
	case model.WriteUpdate:
		return g.store.Update(ctx, collection, docID, payload)
	case model.WriteDelete:
		return g.store.Delete(ctx, collection, docID)
	default:
		return fmt.Errorf("gateway: unknown write action %q", action)
	}
}

func (g *Gateway) enqueue(ctx context.Context, action, collection string, payload interface{}, docID string) (Outcome, error) {
	var data []byte
	if payload != nil {
		var err error
		data, err = g.codec.Marshal(payload)
		if err != nil {
			return Outcome{}, fmt.Errorf("gateway: encode payload: %w", err)
		}
	}
	w := &model.PendingWrite{Action: action, Collection: collection, DocID: docID, Payload: data}
	if err := g.queue.Enqueue(ctx, w); err != nil {
		// Local durability failure is the one condition callers must see.
		return Outcome{}, err
	}
	log.Info().
		Int64("queue_id", w.ID).
		Str("action", action).
		Str("collection", collection).
		Str("doc_id", docID).
		Msg("gateway: write queued")
	return Outcome{Disposition: Queued, DocID: docID}, nil
}

// Drain replays queued writes in enqueue order. Successful entries are
// removed; failed entries stay queued and the drain moves on — partial
// progress is safe because each entry is an independent mutation. Delivery is
// at-least-once: a write that succeeded remotely but appeared to fail will be
// applied again.
func (g *Gateway) Drain(ctx context.Context) (applied, remaining int) {
	pending, err := g.queue.Pending(ctx)
	if err != nil {
		log.Error().Err(err).Msg("gateway: drain failed to read queue")
		return 0, 0
	}
	if len(pending) == 0 {
		return 0, 0
	}

	log.Info().Int("count", len(pending)).Msg("gateway: draining offline queue")
	for _, w := range pending {
		if err := g.replay(ctx, w); err != nil {
			log.Warn().Err(err).
				Int64("queue_id", w.ID).
				Str("collection", w.Collection).
				Msg("gateway: replay failed, entry kept")
			remaining++
			continue
		}
		if err := g.queue.Remove(ctx, w.ID); err != nil {
			log.Error().Err(err).Int64("queue_id", w.ID).Msg("gateway: failed to remove replayed entry")
			remaining++
			continue
		}
		applied++
	}
	log.Info().Int("applied", applied).Int("remaining", remaining).Msg("gateway: drain finished")
	return applied, remaining
}

func (g *Gateway) replay(ctx context.Context, w model.PendingWrite) error {
	var payload interface{}
	if len(w.Payload) > 0 {
		var err error
		payload, err = g.codec.Unmarshal(w.Payload)
		if err != nil {
			return fmt.Errorf("decode queued payload: %w", err)
		}
	}
	return g.apply(ctx, w.Action, w.Collection, payload, w.DocID)
}

// PendingCount exposes queue depth for health and status endpoints.
func (g *Gateway) PendingCount(ctx context.Context) (int, error) {
	return g.queue.Depth(ctx)
}
