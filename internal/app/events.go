package app

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talkincode/farmstock/internal/domain"
	"github.com/talkincode/farmstock/internal/inventory"
	"github.com/talkincode/farmstock/internal/metrics"
	"go.uber.org/zap"
)

// TopicInventory carries inventory.Event values for every committed mutation
const TopicInventory = "inventory:mutation"

// busPublisher adapts the event bus to inventory.Publisher.
// Delivery is synchronous, in the publishing goroutine.
type busPublisher struct {
	bus EventBus.Bus
}

func (p *busPublisher) Publish(_ context.Context, ev inventory.Event) {
	p.bus.Publish(TopicInventory, ev)
}

func (a *Application) subscribeInventoryEvents() error {
	for _, fn := range []func(inventory.Event){
		a.logInventoryEvent,
		a.recordOperation,
		countInventoryEvent,
	} {
		if err := a.bus.Subscribe(TopicInventory, fn); err != nil {
			return errors.Wrap(err, "subscribe inventory events")
		}
	}
	return nil
}

func (a *Application) logInventoryEvent(ev inventory.Event) {
	zap.L().Info(ev.Message(),
		zap.String("namespace", "inventory"),
		zap.String("action", ev.Action),
		zap.String("entity", ev.Entity),
		zap.Int64("id", ev.ID),
		zap.String("operator", ev.Operator))
}

// recordOperation appends the mutation to the operation log
func (a *Application) recordOperation(ev inventory.Event) {
	entry := domain.SysOprLog{
		ID:        a.NextID(),
		OprName:   ev.Operator,
		OprIp:     ev.IP,
		OptAction: ev.Entity + "_" + ev.Action,
		OptDesc:   ev.Message(),
		OptTime:   time.Now(),
	}
	if err := a.gormDB.Create(&entry).Error; err != nil {
		zap.L().Error("failed to write operation log",
			zap.String("namespace", "inventory"),
			zap.String("action", entry.OptAction),
			zap.Error(err))
	}
}

func countInventoryEvent(ev inventory.Event) {
	metrics.InventoryMutations.WithLabelValues(ev.Entity, ev.Action).Inc()
}
