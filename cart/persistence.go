package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Storage holds the serialized cart. Load returns an error wrapping
// ErrNotStored when nothing has been saved yet.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// ErrNotStored is what storages wrap when no cart has been saved.
var ErrNotStored = errors.New("no stored cart")

// Persister reads and writes the cart through a Storage. It never fails the
// caller: reads degrade to the empty cart, writes are best effort.
type Persister struct {
	storage Storage
	logger  *zap.Logger
}

func NewPersister(storage Storage, logger *zap.Logger) *Persister {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Persister{storage: storage, logger: logger}
}

// Load restores the saved cart, or the empty cart if there is none or it
// cannot be decoded. Aggregates are recomputed from the stored lines.
func (p *Persister) Load(ctx context.Context) State {
	data, err := p.storage.Load(ctx)
	if err != nil {
		if errors.Is(err, ErrNotStored) {
			p.logger.Debug("no saved cart, starting empty")
		} else {
			p.logger.Warn("failed to read saved cart", zap.Error(err))
		}
		return Empty()
	}

	s, err := decodeState(data)
	if err != nil {
		p.logger.Warn("discarding unreadable saved cart", zap.Error(err))
		return Empty()
	}
	return s
}

// Save writes s. The error is already logged when returned; callers only
// use it for reporting and must not undo the transition.
func (p *Persister) Save(ctx context.Context, s State) error {
	data, err := json.Marshal(s)
	if err == nil {
		err = p.storage.Save(ctx, data)
	}
	if err != nil {
		p.logger.Error("failed to save cart", zap.Error(err), zap.Int("items", len(s.Items)))
	}
	return err
}

func decodeState(data []byte) (State, error) {
	var stored State
	if err := json.Unmarshal(data, &stored); err != nil {
		return State{}, err
	}

	seen := make(map[Key]struct{}, len(stored.Items))
	for i, item := range stored.Items {
		if item.Quantity < 1 {
			return State{}, fmt.Errorf("product %d has quantity %d", item.ProductID, item.Quantity)
		}
		if _, dup := seen[item.Key()]; dup {
			return State{}, fmt.Errorf("product %d appears twice", item.ProductID)
		}
		seen[item.Key()] = struct{}{}
		stored.Items[i].TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
	}
	return withItems(stored.Items), nil
}
