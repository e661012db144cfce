package service

import (
	"context"
	"errors"

	"github.com/dkorovin/tagproof/internal/errs"
	"github.com/dkorovin/tagproof/internal/ledger"
	"github.com/dkorovin/tagproof/internal/model"
)

// fakeLedger implements ledger.Client with canned responses and call counters.
type fakeLedger struct {
	history    []model.OwnershipRecord
	historyErr error

	nodeData    map[string]string
	nodeDataErr error

	isOwner   bool
	ownerErr  error
	ownsCalls int

	transferMsg   string
	transferErr   error
	transferCalls int

	registerMsg   string
	registerErr   error
	registerCalls int
	registerData  map[string]string

	processMsg   string
	processErr   error
	processCalls int

	balance float64
	assets  []string
}

var _ ledger.Client = (*fakeLedger)(nil)

func (f *fakeLedger) Health(context.Context) (string, error) { return "healthy", nil }

func (f *fakeLedger) ProcessTag(_ context.Context, scan ledger.TagScan) (string, error) {
	f.processCalls++
	return f.processMsg, f.processErr
}

func (f *fakeLedger) RegisterAsset(_ context.Context, assetID, userID string, data map[string]string) (string, error) {
	f.registerCalls++
	f.registerData = data
	return f.registerMsg, f.registerErr
}

func (f *fakeLedger) TransferAsset(_ context.Context, assetID, fromUserID, toUserID string) (string, error) {
	// Mirrors the real client's precondition.
	owns, err := f.VerifyOwnership(context.Background(), assetID, fromUserID)
	if err != nil {
		return "", err
	}
	if !owns {
		return "", errs.ErrNotOwner
	}
	f.transferCalls++
	return f.transferMsg, f.transferErr
}

func (f *fakeLedger) VerifyOwnership(context.Context, string, string) (bool, error) {
	f.ownsCalls++
	return f.isOwner, f.ownerErr
}

func (f *fakeLedger) AssetHistory(context.Context, string) ([]model.OwnershipRecord, error) {
	return append([]model.OwnershipRecord(nil), f.history...), f.historyErr
}

func (f *fakeLedger) AssetNodeData(context.Context, string) (map[string]string, error) {
	return f.nodeData, f.nodeDataErr
}

func (f *fakeLedger) UserBalance(context.Context, string) (float64, error) { return f.balance, nil }
func (f *fakeLedger) UserAssets(context.Context, string) ([]string, error) { return f.assets, nil }
func (f *fakeLedger) Stats(context.Context) (ledger.Stats, error)          { return ledger.Stats{}, nil }
func (f *fakeLedger) VerifyIntegrity(context.Context) (bool, error)        { return true, nil }

// fakeCache is an in-memory repository.AssetCache.
type fakeCache struct {
	assets map[string]model.Asset

	createErr error
	updateErr error
	syncErr   error
	getErr    error

	syncCalls   int
	updateCalls int
}

func newFakeCache(assets ...model.Asset) *fakeCache {
	c := &fakeCache{assets: make(map[string]model.Asset)}
	for _, a := range assets {
		c.assets[a.ID] = a
	}
	return c
}

func (c *fakeCache) Get(_ context.Context, id string) (*model.Asset, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	a, ok := c.assets[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := a
	return &cp, nil
}

func (c *fakeCache) Create(_ context.Context, a *model.Asset) error {
	if c.createErr != nil {
		return c.createErr
	}
	if _, ok := c.assets[a.ID]; ok {
		return errs.ErrAlreadyExists
	}
	c.assets[a.ID] = *a
	return nil
}

func (c *fakeCache) Update(_ context.Context, a *model.Asset) error {
	c.updateCalls++
	if c.updateErr != nil {
		return c.updateErr
	}
	if _, ok := c.assets[a.ID]; !ok {
		return errs.ErrNotFound
	}
	c.assets[a.ID] = *a
	return nil
}

func (c *fakeCache) ForceSync(_ context.Context, a *model.Asset) error {
	c.syncCalls++
	if c.syncErr != nil {
		return c.syncErr
	}
	c.assets[a.ID] = *a
	return nil
}

// fakeProfiles is an in-memory repository.ProfileDirectory.
type fakeProfiles struct {
	names     map[string]string
	lookupErr error
}

func (p *fakeProfiles) DisplayName(_ context.Context, userID string) (string, error) {
	if p.lookupErr != nil {
		return "", p.lookupErr
	}
	name, ok := p.names[userID]
	if !ok {
		return "", errs.ErrNotFound
	}
	return name, nil
}

func (p *fakeProfiles) Upsert(_ context.Context, userID, displayName string) error {
	if p.names == nil {
		p.names = make(map[string]string)
	}
	p.names[userID] = displayName
	return nil
}

var errBoom = errors.New("boom")
