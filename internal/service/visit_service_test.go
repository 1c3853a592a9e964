package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/repository"
)

func newVisitService(m *memStore, n Notifier) *VisitService {
	svc := NewVisitService(fakeTxRunner{}, listingStore{m}, visitStore{m}, n)
	svc.now = func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestRequestVisitBooksAndNotifiesBuilder(t *testing.T) {
	m := newMemStore()
	m.listings[1] = &repository.ListingInfo{ID: 1, Name: "Residencial Aurora", BuilderUserID: 99}
	n := &recordingNotifier{}

	v, err := newVisitService(m, n).RequestVisit(context.Background(), 5, VisitRequest{
		ListingID:  1,
		VisitAt:    time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC),
		StandVisit: true,
		Notes:      "prefiro fim de tarde",
	})
	if err != nil {
		t.Fatalf("RequestVisit: %v", err)
	}
	if v.Status != model.VisitRequested {
		t.Errorf("visit status = %s, want REQUESTED", v.Status)
	}
	if v.UnitNumber != nil {
		t.Errorf("stand visit must not carry a unit number, got %q", *v.UnitNumber)
	}
	if got := m.visits[v.ID]; got == nil || got.Notes != "prefiro fim de tarde" {
		t.Errorf("visit row not persisted: %+v", got)
	}
	if got := n.titlesFor(99); len(got) != 1 {
		t.Errorf("builder notifications = %v, want one request notice", got)
	}
}

func TestRequestVisitRequiresUnitNumberForUnitVisit(t *testing.T) {
	m := newMemStore()
	m.listings[1] = &repository.ListingInfo{ID: 1, Name: "Residencial Aurora", BuilderUserID: 99}
	svc := newVisitService(m, nil)

	_, err := svc.RequestVisit(context.Background(), 5, VisitRequest{
		ListingID: 1,
		VisitAt:   time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	v, err := svc.RequestVisit(context.Background(), 5, VisitRequest{
		ListingID:  1,
		VisitAt:    time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC),
		UnitNumber: "204",
	})
	if err != nil {
		t.Fatalf("RequestVisit with unit number: %v", err)
	}
	if v.UnitNumber == nil || *v.UnitNumber != "204" {
		t.Errorf("unit number not stored on unit visit")
	}
}

func TestRequestVisitRejectsPastDate(t *testing.T) {
	m := newMemStore()
	m.listings[1] = &repository.ListingInfo{ID: 1, Name: "Residencial Aurora", BuilderUserID: 99}

	_, err := newVisitService(m, nil).RequestVisit(context.Background(), 5, VisitRequest{
		ListingID:  1,
		VisitAt:    time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC),
		StandVisit: true,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(m.visits) != 0 {
		t.Errorf("no visit row must be created for a past date")
	}
}

func TestRequestVisitUnknownListing(t *testing.T) {
	m := newMemStore()
	_, err := newVisitService(m, nil).RequestVisit(context.Background(), 5, VisitRequest{
		ListingID:  404,
		VisitAt:    time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC),
		StandVisit: true,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSetStatusConfirmsAndNotifiesClient(t *testing.T) {
	m := newMemStore()
	id := seedVisit(m, 5, 1, 99, model.VisitRequested)
	n := &recordingNotifier{}

	v, err := newVisitService(m, n).SetStatus(context.Background(), 99, id, model.VisitConfirmed)
	if err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if v.Status != model.VisitConfirmed {
		t.Errorf("visit status = %s, want CONFIRMED", v.Status)
	}
	if m.visits[id].Status != model.VisitConfirmed {
		t.Errorf("visit row not updated")
	}
	got := n.titlesFor(5)
	if len(got) != 1 || got[0] != "Agendamento confirmado" {
		t.Errorf("client notifications = %v, want one confirmation notice", got)
	}
}

func TestSetStatusRejectsForeignBuilder(t *testing.T) {
	m := newMemStore()
	id := seedVisit(m, 5, 1, 99, model.VisitRequested)

	_, err := newVisitService(m, nil).SetStatus(context.Background(), 77, id, model.VisitConfirmed)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if m.visits[id].Status != model.VisitRequested {
		t.Errorf("visit must stay REQUESTED after a forbidden update")
	}
}

func TestSetStatusRejectsUnknownTarget(t *testing.T) {
	m := newMemStore()
	id := seedVisit(m, 5, 1, 99, model.VisitRequested)

	for _, status := range []model.VisitStatus{model.VisitRequested, "Agendado"} {
		if _, err := newVisitService(m, nil).SetStatus(context.Background(), 99, id, status); !errors.Is(err, ErrValidation) {
			t.Errorf("status %q: err = %v, want ErrValidation", status, err)
		}
	}
}

func TestSetStatusRejectsTerminalVisit(t *testing.T) {
	m := newMemStore()
	id := seedVisit(m, 5, 1, 99, model.VisitCancelled)

	_, err := newVisitService(m, nil).SetStatus(context.Background(), 99, id, model.VisitCompleted)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}

func TestCancelVisitWithdrawsRequest(t *testing.T) {
	m := newMemStore()
	id := seedVisit(m, 5, 1, 99, model.VisitRequested)
	n := &recordingNotifier{}

	v, err := newVisitService(m, n).Cancel(context.Background(), 5, id)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if v.Status != model.VisitCancelled {
		t.Errorf("visit status = %s, want CANCELLED", v.Status)
	}
	if len(n.titlesFor(99)) != 1 {
		t.Errorf("builder should be told about the withdrawal")
	}
}

func TestCancelVisitOnlyWhileRequested(t *testing.T) {
	m := newMemStore()
	id := seedVisit(m, 5, 1, 99, model.VisitConfirmed)

	_, err := newVisitService(m, nil).Cancel(context.Background(), 5, id)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if m.visits[id].Status != model.VisitConfirmed {
		t.Errorf("confirmed visit must not be withdrawn by the client")
	}
}

func TestCancelVisitRejectsForeignClient(t *testing.T) {
	m := newMemStore()
	id := seedVisit(m, 5, 1, 99, model.VisitRequested)

	_, err := newVisitService(m, nil).Cancel(context.Background(), 6, id)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}
