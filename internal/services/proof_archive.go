package services

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rifas-storefront/internal/models"
)

// ProofArchive keeps a copy of each payment proof that reached the raffle API
type ProofArchive struct {
	storage StorageService
	logger  zerolog.Logger
	newID   func() string
}

// NewProofArchive creates an archive writing to storage
func NewProofArchive(storage StorageService, logger zerolog.Logger) *ProofArchive {
	return &ProofArchive{
		storage: storage,
		logger:  logger.With().Str("component", "proof_archive").Logger(),
		newID:   func() string { return uuid.New().String() },
	}
}

// Archive stores proof under proofs/{raffleID}/{uuid}{ext} and returns its URL
func (a *ProofArchive) Archive(ctx context.Context, raffleID string, proof *models.PaymentProof) (string, error) {
	if proof == nil || len(proof.Data) == 0 {
		return "", fmt.Errorf("no payment proof to archive")
	}

	key := a.key(raffleID, proof)
	url, err := a.storage.Upload(ctx, key, bytes.NewReader(proof.Data), contentTypeOf(proof), proof.Size())
	if err != nil {
		return "", fmt.Errorf("failed to archive payment proof: %w", err)
	}

	a.logger.Info().Str("raffle_id", raffleID).Str("key", key).Int64("size", proof.Size()).Msg("payment proof archived")
	return url, nil
}

// ArchiveAsync archives in the background; failures are only logged
func (a *ProofArchive) ArchiveAsync(ctx context.Context, raffleID string, proof *models.PaymentProof) {
	go func() {
		if _, err := a.Archive(context.WithoutCancel(ctx), raffleID, proof); err != nil {
			a.logger.Error().Err(err).Str("raffle_id", raffleID).Msg("payment proof archive failed")
		}
	}()
}

func (a *ProofArchive) key(raffleID string, proof *models.PaymentProof) string {
	raffle := sanitizeSegment(raffleID)
	if raffle == "" {
		raffle = "unknown"
	}
	return path.Join("proofs", raffle, a.newID()+extensionOf(proof))
}

func extensionOf(proof *models.PaymentProof) string {
	if ext := sanitizeSegment(strings.TrimPrefix(filepath.Ext(proof.Filename), ".")); ext != "" && len(ext) <= 4 {
		return "." + strings.ToLower(ext)
	}
	if exts, err := mime.ExtensionsByType(proof.ContentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ""
}

func contentTypeOf(proof *models.PaymentProof) string {
	if proof.ContentType != "" {
		return proof.ContentType
	}
	return "application/octet-stream"
}

// sanitizeSegment keeps letters, digits, dash and underscore
func sanitizeSegment(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, s)
}
