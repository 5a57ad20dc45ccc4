package consumers

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
	"go.uber.org/zap"

	"rental-api/publishers"
)

// CacheInvalidator es lo que el consumer necesita del servicio de
// propiedades: descartar los resultados de búsqueda cacheados.
type CacheInvalidator interface {
	InvalidateSearchCache()
}

// RabbitMQConsumer consume los eventos de propiedades publicados por las
// demás instancias y rota el caché local de búsqueda ante cada uno. Cada
// instancia bindea su propia queue exclusiva al exchange fanout, de modo
// que todas reciben todos los eventos y la invalidación converge entre
// procesos.
type RabbitMQConsumer struct {
	connection  *amqp.Connection
	channel     *amqp.Channel
	queueName   string
	invalidator CacheInvalidator
	logger      *zap.Logger
}

// NewRabbitMQConsumer conecta con RabbitMQ, declara el exchange y bindea
// una queue exclusiva (nombrada por el server, auto-delete) para esta
// instancia.
func NewRabbitMQConsumer(rabbitURL, exchangeName string, invalidator CacheInvalidator, logger *zap.Logger) (*RabbitMQConsumer, error) {
	conn, err := amqp.Dial(rabbitURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	err = ch.ExchangeDeclare(
		exchangeName, // name
		"fanout",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	// queue exclusiva de esta instancia: muere con la conexión, no deja
	// mensajes huérfanos acumulándose para instancias caídas
	queue, err := ch.QueueDeclare(
		"",    // name (server-generated)
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(queue.Name, "", exchangeName, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	return &RabbitMQConsumer{
		connection:  conn,
		channel:     ch,
		queueName:   queue.Name,
		invalidator: invalidator,
		logger:      logger,
	}, nil
}

// Start arranca el consumo de mensajes en una goroutine.
func (c *RabbitMQConsumer) Start() error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			c.processMessage(msg)
		}
	}()

	return nil
}

func (c *RabbitMQConsumer) processMessage(msg amqp.Delivery) {
	var propertyMsg publishers.PropertyMessage
	if err := json.Unmarshal(msg.Body, &propertyMsg); err != nil {
		c.logger.Warn("dropping malformed property event", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	if propertyMsg.PropertyID == "" {
		c.logger.Warn("dropping property event without id", zap.String("action", propertyMsg.Action))
		msg.Nack(false, false)
		return
	}

	switch propertyMsg.Action {
	case "create", "update", "delete":
		c.invalidator.InvalidateSearchCache()
		c.logger.Debug("search cache invalidated by event",
			zap.String("action", propertyMsg.Action),
			zap.String("property_id", propertyMsg.PropertyID))
	default:
		c.logger.Warn("unknown property event action", zap.String("action", propertyMsg.Action))
		msg.Nack(false, false)
		return
	}

	if err := msg.Ack(false); err != nil {
		c.logger.Warn("failed to ack property event", zap.Error(err))
	}
}

// Close cierra channel y conexión.
func (c *RabbitMQConsumer) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.connection != nil {
		if err := c.connection.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ consumer: %v", errs)
	}
	return nil
}
