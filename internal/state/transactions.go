package state

import (
	"context"
	"errors"
	"fmt"

	"monevo/internal/api"
	"monevo/internal/core"
	"monevo/internal/log"
)

// LoadTransactions fetches the transaction collection and replaces the
// local cache, with the same catch-and-flag failure semantics as
// LoadGoals. A transaction load failure never blocks goal rendering and
// vice versa: each collection carries its own flag.
func (s *Synchronizer) LoadTransactions(ctx context.Context, filter api.TransactionFilter) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.txLoading = true
	s.txErr = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.txLoading = false
		s.mu.Unlock()
	}()

	txs, err := s.backend.ListTransactions(ctx, filter)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if err != nil {
		if !errors.Is(err, api.ErrSessionExpired) {
			s.txErr = err.Error()
		}
		s.logger.WarnContext(ctx, "transaction load failed",
			log.FieldOperation, log.OpLoad, log.FieldError, err)
		return
	}
	s.transactions = txs
	s.logger.DebugContext(ctx, "transactions loaded",
		log.FieldOperation, log.OpLoad, log.FieldCount, len(txs))
}

// AddTransaction creates a transaction on the server and prepends the
// server-echoed entity on success. Failures leave the collection
// untouched and are returned to the caller.
func (s *Synchronizer) AddTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	user, err := s.requireUser()
	if err != nil {
		return core.Transaction{}, err
	}
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.backend.CreateTransaction(ctx, user.ID, draft)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return created, nil
	}
	// Newest first, matching the backend's listing order.
	s.transactions = append([]core.Transaction{created}, s.transactions...)
	s.logger.InfoContext(ctx, "transaction created",
		log.FieldOperation, log.OpCreate, log.FieldTxID, created.ID)
	return created, nil
}

// DeleteTransaction removes the transaction on the server before
// dropping it locally, single-flighted per id like DeleteGoal.
func (s *Synchronizer) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.requireUser(); err != nil {
		return err
	}

	_, err, _ := s.deletes.Do("tx:"+id, func() (any, error) {
		if err := s.backend.DeleteTransaction(ctx, id); err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed {
			return nil, nil
		}
		kept := s.transactions[:0]
		for _, tx := range s.transactions {
			if tx.ID != id {
				kept = append(kept, tx)
			}
		}
		s.transactions = kept
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.logger.InfoContext(ctx, "transaction deleted",
		log.FieldOperation, log.OpDelete, log.FieldTxID, id)
	return nil
}
