package service

import (
	"context"

	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

// changes publishes change events on behalf of one process. A nil publisher
// turns every call into a no-op.
type changes struct {
	publisher ChangePublisher
	source    string
}

func (c changes) emit(ctx context.Context, entity domain.Entity, op domain.ChangeOp, id string, record any) {
	if c.publisher == nil {
		return
	}
	ev, err := domain.NewChangeEvent(entity, op, id, record)
	if err != nil {
		log.WithError(err).WithField("entity", entity).Error("failed to encode change event")
		return
	}
	ev.Source = c.source
	if err := c.publisher.Publish(ctx, ev); err != nil {
		log.WithError(err).WithFields(log.Fields{"entity": entity, "id": id}).Warn("failed to publish change event")
	}
}
