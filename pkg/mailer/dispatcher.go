package mailer

import (
	"context"

	"github.com/gymbro/gymbro-api/pkg/helpers"
)

// Dispatcher hands an email job off for asynchronous delivery. Callers treat
// it as fire-and-forget: a dispatch failure never fails the enclosing
// request.
type Dispatcher interface {
	Send(ctx context.Context, job EmailJob) error
}

// QueueDispatcher publishes jobs to the RabbitMQ email queue consumed by the
// email worker.
type QueueDispatcher struct {
	pub *helpers.RabbitPublisher
}

func NewQueueDispatcher(pub *helpers.RabbitPublisher) *QueueDispatcher {
	return &QueueDispatcher{pub: pub}
}

func (d *QueueDispatcher) Send(ctx context.Context, job EmailJob) error {
	return d.pub.PublishJSON(ctx, job)
}
