package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/repository"
)

// VisitService owns the visit-scheduling flow: a client books a stand or
// unit visit on a listing, the builder answers it, and either side is
// notified of the other's move.
type VisitService struct {
	txr      TxRunner
	listings ListingStore
	visits   VisitStore
	notifier Notifier
	now      func() time.Time
}

// NewVisitService wires a VisitService. notifier may be nil.
func NewVisitService(txr TxRunner, listings ListingStore, visits VisitStore, notifier Notifier) *VisitService {
	return &VisitService{
		txr:      txr,
		listings: listings,
		visits:   visits,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// VisitRequest is the client's booking input.
type VisitRequest struct {
	ListingID  uint64
	VisitAt    time.Time
	StandVisit bool
	UnitNumber string
	Notes      string
}

// RequestVisit books a visit for a client. The visit date must be in the
// future, and a unit visit must name the unit. The owning builder is
// notified of the new request.
func (s *VisitService) RequestVisit(ctx context.Context, clientID uint64, req VisitRequest) (*model.Visit, error) {
	if req.ListingID == 0 || req.VisitAt.IsZero() {
		return nil, fmt.Errorf("listing id and visit date are required: %w", ErrValidation)
	}
	if !req.VisitAt.After(s.now()) {
		return nil, fmt.Errorf("visit date must be in the future: %w", ErrValidation)
	}
	unitNumber := strings.TrimSpace(req.UnitNumber)
	if !req.StandVisit && unitNumber == "" {
		return nil, fmt.Errorf("unit number is required for a unit visit: %w", ErrValidation)
	}

	var (
		visit   model.Visit
		listing *repository.ListingInfo
	)
	err := s.txr.RunTx(ctx, func(tx *sql.Tx) error {
		var err error
		listing, err = s.listings.GetInfoTx(ctx, tx, req.ListingID)
		if errors.Is(err, repository.ErrListingNotFound) {
			return fmt.Errorf("listing %d: %w", req.ListingID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		visit = model.Visit{
			ClientID:   clientID,
			ListingID:  req.ListingID,
			VisitAt:    req.VisitAt,
			StandVisit: req.StandVisit,
			Notes:      req.Notes,
			Status:     model.VisitRequested,
		}
		if !req.StandVisit {
			visit.UnitNumber = &unitNumber
		}
		return s.visits.CreateTx(ctx, tx, &visit)
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		link := visitLink(visit.ID)
		s.notifier.Notify(ctx, listing.BuilderUserID, "Nova visita solicitada",
			fmt.Sprintf("Um cliente solicitou uma visita ao empreendimento %s em %s.",
				listing.Name, visit.VisitAt.Format("02/01/2006 15:04")),
			"visit", &link)
	}
	return &visit, nil
}

// SetStatus is the builder's answer to a visit request: confirm, cancel or
// mark done. Only the builder owning the listing may call it, and a
// terminal visit stays put. The booking client is notified.
func (s *VisitService) SetStatus(ctx context.Context, builderUserID, visitID uint64, status model.VisitStatus) (*model.Visit, error) {
	if !status.BuilderSettable() {
		return nil, fmt.Errorf("invalid visit status %q: %w", status, ErrValidation)
	}
	var (
		visit   *model.Visit
		listing *repository.ListingInfo
	)
	err := s.txr.RunTx(ctx, func(tx *sql.Tx) error {
		v, err := s.visits.GetForUpdateTx(ctx, tx, visitID)
		if errors.Is(err, repository.ErrVisitNotFound) {
			return fmt.Errorf("visit %d: %w", visitID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		listing, err = s.listings.GetInfoTx(ctx, tx, v.ListingID)
		if err != nil {
			return err
		}
		if listing.BuilderUserID != builderUserID {
			return fmt.Errorf("visit is not on the caller's listings: %w", ErrForbidden)
		}
		if v.Status.Terminal() {
			return fmt.Errorf("visit already %s: %w", v.Status, ErrConflict)
		}
		if err := s.visits.UpdateStatusTx(ctx, tx, v.ID, status); err != nil {
			return err
		}
		v.Status = status
		visit = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		word := visitStatusWord(status)
		link := visitLink(visit.ID)
		s.notifier.Notify(ctx, visit.ClientID, "Agendamento "+word,
			fmt.Sprintf("Seu agendamento para %s foi %s.", listing.Name, word),
			"visit", &link)
	}
	return visit, nil
}

// Cancel withdraws a visit request by its booking client. Only a REQUESTED
// visit may be withdrawn; once the builder confirmed, cancellation goes
// through the builder. The builder is notified.
func (s *VisitService) Cancel(ctx context.Context, clientID, visitID uint64) (*model.Visit, error) {
	var (
		visit   *model.Visit
		listing *repository.ListingInfo
	)
	err := s.txr.RunTx(ctx, func(tx *sql.Tx) error {
		v, err := s.visits.GetForUpdateTx(ctx, tx, visitID)
		if errors.Is(err, repository.ErrVisitNotFound) {
			return fmt.Errorf("visit %d: %w", visitID, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if v.ClientID != clientID {
			return fmt.Errorf("visit does not belong to caller: %w", ErrForbidden)
		}
		if v.Status != model.VisitRequested {
			return fmt.Errorf("cannot withdraw a visit already %s: %w", v.Status, ErrConflict)
		}
		listing, err = s.listings.GetInfoTx(ctx, tx, v.ListingID)
		if err != nil {
			return err
		}
		if err := s.visits.UpdateStatusTx(ctx, tx, v.ID, model.VisitCancelled); err != nil {
			return err
		}
		v.Status = model.VisitCancelled
		visit = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		link := visitLink(visit.ID)
		s.notifier.Notify(ctx, listing.BuilderUserID, "Visita cancelada",
			fmt.Sprintf("O cliente cancelou a visita ao empreendimento %s marcada para %s.",
				listing.Name, visit.VisitAt.Format("02/01/2006 15:04")),
			"visit", &link)
	}
	return visit, nil
}

// visitStatusWord renders a visit status as the Portuguese word the
// notification texts use.
func visitStatusWord(status model.VisitStatus) string {
	switch status {
	case model.VisitConfirmed:
		return "confirmado"
	case model.VisitCancelled:
		return "cancelado"
	case model.VisitCompleted:
		return "realizado"
	}
	return strings.ToLower(string(status))
}

func visitLink(visitID uint64) string {
	return fmt.Sprintf("/visits/%d", visitID)
}
