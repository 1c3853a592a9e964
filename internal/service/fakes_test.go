package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/imovelhub/unit-sales/internal/gateway"
	"github.com/imovelhub/unit-sales/internal/model"
	"github.com/imovelhub/unit-sales/internal/repository"
)

// The fakes below back the workflow tests with plain maps. RunTx hands the
// closure a nil *sql.Tx; none of the fake stores touch it.

type fakeTxRunner struct{}

func (fakeTxRunner) RunTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

// memStore implements every store interface over in-memory maps. Contracts
// are keyed by purchase id because that is the only lookup the workflows
// use.
type memStore struct {
	units     map[uint64]*model.Unit
	owners    map[uint64]uint64 // unitID -> builder user id
	purchases map[uint64]*model.Purchase
	contracts map[uint64]*model.Contract // purchaseID -> contract
	payments  map[uint64]*model.Payment
	users     map[uint64]*model.User
	listings  map[uint64]*repository.ListingInfo
	visits    map[uint64]*model.Visit

	nextPurchaseID uint64
	nextContractID uint64
	nextPaymentID  uint64
	nextVisitID    uint64
}

func newMemStore() *memStore {
	return &memStore{
		units:     make(map[uint64]*model.Unit),
		owners:    make(map[uint64]uint64),
		purchases: make(map[uint64]*model.Purchase),
		contracts: make(map[uint64]*model.Contract),
		payments:  make(map[uint64]*model.Payment),
		users:     make(map[uint64]*model.User),
		listings:  make(map[uint64]*repository.ListingInfo),
		visits:    make(map[uint64]*model.Visit),
	}
}

func (m *memStore) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Unit, error) {
	u, ok := m.units[id]
	if !ok {
		return nil, repository.ErrUnitNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, status model.UnitStatus) error {
	u, ok := m.units[id]
	if !ok {
		return repository.ErrUnitNotFound
	}
	u.Status = status
	return nil
}

func (m *memStore) BuilderUserIDForUnitTx(_ context.Context, _ *sql.Tx, unitID uint64) (uint64, error) {
	owner, ok := m.owners[unitID]
	if !ok {
		return 0, repository.ErrBuilderNotFound
	}
	return owner, nil
}

// purchaseStore wraps memStore so PurchaseStore's UpdateStatusTx does not
// collide with UnitStore's on the same receiver.
type purchaseStore struct{ m *memStore }

func (s purchaseStore) CreateTx(_ context.Context, _ *sql.Tx, p *model.Purchase) error {
	s.m.nextPurchaseID++
	p.ID = s.m.nextPurchaseID
	cp := *p
	s.m.purchases[p.ID] = &cp
	return nil
}

func (s purchaseStore) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Purchase, error) {
	p, ok := s.m.purchases[id]
	if !ok {
		return nil, repository.ErrPurchaseNotFound
	}
	cp := *p
	return &cp, nil
}

func (s purchaseStore) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, status model.PurchaseStatus) error {
	p, ok := s.m.purchases[id]
	if !ok {
		return repository.ErrPurchaseNotFound
	}
	p.Status = status
	return nil
}

func (s purchaseStore) OpenPurchaseExistsTx(_ context.Context, _ *sql.Tx, unitID uint64) (bool, error) {
	for _, p := range s.m.purchases {
		if p.UnitID == unitID && !p.Status.Terminal() {
			return true, nil
		}
	}
	return false, nil
}

type contractStore struct{ m *memStore }

func (s contractStore) CreateTx(_ context.Context, _ *sql.Tx, ct *model.Contract) error {
	s.m.nextContractID++
	ct.ID = s.m.nextContractID
	cp := *ct
	s.m.contracts[ct.PurchaseID] = &cp
	return nil
}

func (s contractStore) GetByPurchaseForUpdateTx(_ context.Context, _ *sql.Tx, purchaseID uint64) (*model.Contract, error) {
	ct, ok := s.m.contracts[purchaseID]
	if !ok {
		return nil, repository.ErrContractNotFound
	}
	cp := *ct
	return &cp, nil
}

func (s contractStore) FindByProviderRefForUpdateTx(_ context.Context, _ *sql.Tx, ref string) (*model.Contract, error) {
	for _, ct := range s.m.contracts {
		if ct.ExternalSignID != nil && *ct.ExternalSignID == ref {
			cp := *ct
			return &cp, nil
		}
	}
	return nil, repository.ErrContractNotFound
}

func (s contractStore) UpdateTx(_ context.Context, _ *sql.Tx, ct *model.Contract) error {
	if _, ok := s.m.contracts[ct.PurchaseID]; !ok {
		return repository.ErrContractNotFound
	}
	cp := *ct
	s.m.contracts[ct.PurchaseID] = &cp
	return nil
}

type paymentStore struct{ m *memStore }

func (s paymentStore) CreateTx(_ context.Context, _ *sql.Tx, p *model.Payment) error {
	s.m.nextPaymentID++
	p.ID = s.m.nextPaymentID
	cp := *p
	s.m.payments[p.ID] = &cp
	return nil
}

func (s paymentStore) SetGatewayTransactionIDTx(_ context.Context, _ *sql.Tx, paymentID uint64, gatewayTxID string) error {
	p, ok := s.m.payments[paymentID]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	p.GatewayTransactionID = &gatewayTxID
	return nil
}

func (s paymentStore) GetByGatewayTxIDForUpdateTx(_ context.Context, _ *sql.Tx, gatewayTxID string) (*model.Payment, error) {
	for _, p := range s.m.payments {
		if p.GatewayTransactionID != nil && *p.GatewayTransactionID == gatewayTxID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrPaymentNotFound
}

func (s paymentStore) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, status model.PaymentStatus, paidAt *time.Time) error {
	p, ok := s.m.payments[id]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	p.Status = status
	p.PaidAt = paidAt
	return nil
}

type listingStore struct{ m *memStore }

func (s listingStore) GetInfoTx(_ context.Context, _ *sql.Tx, id uint64) (*repository.ListingInfo, error) {
	info, ok := s.m.listings[id]
	if !ok {
		return nil, repository.ErrListingNotFound
	}
	cp := *info
	return &cp, nil
}

type visitStore struct{ m *memStore }

func (s visitStore) CreateTx(_ context.Context, _ *sql.Tx, v *model.Visit) error {
	s.m.nextVisitID++
	v.ID = s.m.nextVisitID
	cp := *v
	s.m.visits[v.ID] = &cp
	return nil
}

func (s visitStore) GetForUpdateTx(_ context.Context, _ *sql.Tx, id uint64) (*model.Visit, error) {
	v, ok := s.m.visits[id]
	if !ok {
		return nil, repository.ErrVisitNotFound
	}
	cp := *v
	return &cp, nil
}

func (s visitStore) UpdateStatusTx(_ context.Context, _ *sql.Tx, id uint64, status model.VisitStatus) error {
	v, ok := s.m.visits[id]
	if !ok {
		return repository.ErrVisitNotFound
	}
	v.Status = status
	return nil
}

type userStore struct{ m *memStore }

func (s userStore) GetByIDTx(_ context.Context, _ *sql.Tx, id uint64) (*model.User, error) {
	u, ok := s.m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// notice is one captured Notify call.
type notice struct {
	userID uint64
	title  string
	kind   string
}

type recordingNotifier struct {
	notices []notice
}

func (n *recordingNotifier) Notify(_ context.Context, userID uint64, title, _, kind string, _ *string) {
	n.notices = append(n.notices, notice{userID: userID, title: title, kind: kind})
}

func (n *recordingNotifier) titlesFor(userID uint64) []string {
	var out []string
	for _, nc := range n.notices {
		if nc.userID == userID {
			out = append(out, nc.title)
		}
	}
	return out
}

// fakeGateway acknowledges every charge with a fixed transaction id, or
// fails when told to.
type fakeGateway struct {
	txID string
	fail bool
}

func (g fakeGateway) CreateCharge(_ context.Context, req gateway.ChargeRequest) (gateway.Charge, error) {
	if g.fail {
		return gateway.Charge{}, errors.New("gateway timeout")
	}
	return gateway.Charge{
		TransactionID: g.txID,
		Status:        "pending",
		Instructions:  gateway.PaymentInstructions{},
	}, nil
}

// seedVisit installs a listing owned by ownerID and a visit on it,
// returning the visit id.
func seedVisit(m *memStore, clientID, listingID, ownerID uint64, status model.VisitStatus) uint64 {
	m.listings[listingID] = &repository.ListingInfo{ID: listingID, Name: "Residencial Aurora", BuilderUserID: ownerID}
	m.nextVisitID++
	id := m.nextVisitID
	m.visits[id] = &model.Visit{
		ID:         id,
		ClientID:   clientID,
		ListingID:  listingID,
		VisitAt:    time.Date(2026, 10, 12, 14, 0, 0, 0, time.UTC),
		StandVisit: true,
		Status:     status,
	}
	return id
}

// seedPurchase installs a reserved unit with an open purchase and its
// contract, returning the purchase id. The builder user id is ownerID.
func seedPurchase(m *memStore, clientID, unitID, ownerID uint64, status model.PurchaseStatus) uint64 {
	m.units[unitID] = &model.Unit{ID: unitID, ListingID: 1, Status: model.UnitReserved, PriceCents: 50_000_000}
	m.owners[unitID] = ownerID
	m.nextPurchaseID++
	id := m.nextPurchaseID
	m.purchases[id] = &model.Purchase{ID: id, ClientID: clientID, UnitID: unitID, Status: status}
	m.nextContractID++
	m.contracts[id] = &model.Contract{ID: m.nextContractID, PurchaseID: id}
	return id
}
