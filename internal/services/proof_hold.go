package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rifas-storefront/internal/models"
)

// DefaultProofHoldTTL bounds how long a proof waits for a checkout retry
const DefaultProofHoldTTL = 30 * time.Minute

const proofHoldPrefix = "proof-hold:"

// ProofHold keeps an accepted payment proof between checkout attempts, so a
// retry after a failed submission does not need the file again. Entries are
// addressed by an opaque token and expire after ttl.
type ProofHold struct {
	cache Cache
	ttl   time.Duration
	newID func() string
}

type heldProof struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// NewProofHold creates a proof hold on cache
func NewProofHold(cache Cache, ttl time.Duration) *ProofHold {
	if ttl <= 0 {
		ttl = DefaultProofHoldTTL
	}
	return &ProofHold{
		cache: cache,
		ttl:   ttl,
		newID: func() string { return uuid.New().String() },
	}
}

// Put stores proof and returns the token to fetch it with
func (h *ProofHold) Put(ctx context.Context, proof *models.PaymentProof) (string, error) {
	if proof == nil || len(proof.Data) == 0 {
		return "", fmt.Errorf("no payment proof to hold")
	}

	encoded, err := json.Marshal(heldProof{
		Filename:    proof.Filename,
		ContentType: proof.ContentType,
		Data:        proof.Data,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode payment proof: %w", err)
	}

	token := h.newID()
	if err := h.cache.Set(ctx, proofHoldPrefix+token, encoded, h.ttl); err != nil {
		return "", fmt.Errorf("failed to hold payment proof: %w", err)
	}
	return token, nil
}

// Get returns the held proof, or nil when the token is unknown or expired
func (h *ProofHold) Get(ctx context.Context, token string) (*models.PaymentProof, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, nil
	}

	encoded, ok, err := h.cache.Get(ctx, proofHoldPrefix+token)
	if err != nil {
		return nil, fmt.Errorf("failed to load held payment proof: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var held heldProof
	if err := json.Unmarshal(encoded, &held); err != nil {
		return nil, fmt.Errorf("failed to decode held payment proof: %w", err)
	}
	if len(held.Data) == 0 {
		return nil, nil
	}

	return &models.PaymentProof{
		Filename:    held.Filename,
		ContentType: held.ContentType,
		Data:        held.Data,
	}, nil
}

// Drop forgets a held proof
func (h *ProofHold) Drop(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return h.cache.Delete(ctx, proofHoldPrefix+token)
}
