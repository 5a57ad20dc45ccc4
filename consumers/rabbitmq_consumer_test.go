package consumers

import (
	"encoding/json"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"rental-api/publishers"
)

type countingInvalidator struct {
	calls int
}

func (i *countingInvalidator) InvalidateSearchCache() {
	i.calls++
}

func newTestConsumer(t *testing.T) (*RabbitMQConsumer, *countingInvalidator) {
	invalidator := &countingInvalidator{}
	return &RabbitMQConsumer{
		invalidator: invalidator,
		logger:      zaptest.NewLogger(t),
	}, invalidator
}

func propertyEvent(t *testing.T, action, propertyID string) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(publishers.PropertyMessage{Action: action, PropertyID: propertyID})
	require.NoError(t, err)
	return amqp.Delivery{Body: body}
}

func TestProcessMessage_InvalidatesOnEveryMutationEvent(t *testing.T) {
	consumer, invalidator := newTestConsumer(t)

	// cada instancia recibe su propia copia de cada evento vía el exchange
	// fanout y tiene que rotar su caché ante todas las acciones de mutación
	for _, action := range []string{"create", "update", "delete"} {
		consumer.processMessage(propertyEvent(t, action, "prop-1"))
	}

	assert.Equal(t, 3, invalidator.calls)
}

func TestProcessMessage_DropsBadEvents(t *testing.T) {
	consumer, invalidator := newTestConsumer(t)

	consumer.processMessage(amqp.Delivery{Body: []byte("not json")})
	consumer.processMessage(propertyEvent(t, "create", ""))
	consumer.processMessage(propertyEvent(t, "reindex", "prop-1"))

	assert.Zero(t, invalidator.calls)
}
