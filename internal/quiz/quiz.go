// Package quiz draws flashcards from a user's dictionary.
package quiz

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m3rciful/vocabot/core/logger"
	"github.com/m3rciful/vocabot/internal/entry"
)

// Store is the part of the record store the quiz needs.
type Store interface {
	Random(ctx context.Context, owner int64) (entry.Entry, error)
	Get(ctx context.Context, owner, id int64) (entry.Entry, error)
	DeleteByID(ctx context.Context, owner, id int64) (int64, error)
}

// Card is one flashcard. The translation is only shown once Revealed.
type Card struct {
	Entry    entry.Entry
	Revealed bool
}

// Service implements the quiz transitions.
type Service struct {
	store Store
}

// NewService wraps store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Next draws a random hidden card. ok is false when the dictionary is empty.
func (s *Service) Next(ctx context.Context, owner int64) (Card, bool, error) {
	e, err := s.store.Random(ctx, owner)
	if errors.Is(err, entry.ErrNotFound) {
		return Card{}, false, nil
	}
	if err != nil {
		return Card{}, false, err
	}
	return Card{Entry: e}, true, nil
}

// Show reveals card id. It returns entry.ErrNotFound when the entry is gone.
func (s *Service) Show(ctx context.Context, owner, id int64) (Card, error) {
	e, err := s.store.Get(ctx, owner, id)
	if err != nil {
		return Card{}, err
	}
	return Card{Entry: e, Revealed: true}, nil
}

// DeleteResult reports what Delete did.
type DeleteResult struct {
	// Deleted is false when the entry was already gone.
	Deleted bool
	Next    Card
	// HasNext is false when the dictionary is now empty.
	HasNext bool
}

// Delete removes entry id and always draws the next card, whether or not a row was removed.
func (s *Service) Delete(ctx context.Context, owner, id int64) (DeleteResult, error) {
	n, err := s.store.DeleteByID(ctx, owner, id)
	if err != nil {
		return DeleteResult{}, err
	}
	logger.LogEvent(ctx, logger.SVCQuiz, slog.LevelInfo, "card.delete",
		slog.Int64("entry_id", id),
		slog.Bool("deleted", n > 0),
	)

	next, ok, err := s.Next(ctx, owner)
	if err != nil {
		return DeleteResult{Deleted: n > 0}, err
	}
	return DeleteResult{Deleted: n > 0, Next: next, HasNext: ok}, nil
}
