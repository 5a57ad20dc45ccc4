package publishers

import (
	"encoding/json"
	"fmt"

	"github.com/streadway/amqp"
)

// PropertyMessage es el evento que viaja por el exchange ante cada mutación
// de propiedad.
type PropertyMessage struct {
	Action     string `json:"action"` // "create", "update", "delete"
	PropertyID string `json:"property_id"`
}

// RabbitMQPublisher publica eventos de propiedades en un exchange fanout.
// Fanout y no una queue compartida: cada instancia tiene que recibir cada
// evento para invalidar su propio caché; una queue compartida repartiría
// cada mensaje a una sola instancia.
type RabbitMQPublisher struct {
	connection   *amqp.Connection
	channel      *amqp.Channel
	exchangeName string
}

// NewRabbitMQPublisher conecta con RabbitMQ y declara el exchange.
func NewRabbitMQPublisher(rabbitURL, exchangeName string) (*RabbitMQPublisher, error) {
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

	return &RabbitMQPublisher{
		connection:   conn,
		channel:      ch,
		exchangeName: exchangeName,
	}, nil
}

// PublishPropertyEvent publica un evento {action, property_id} en el exchange.
func (p *RabbitMQPublisher) PublishPropertyEvent(action, propertyID string) error {
	body, err := json.Marshal(PropertyMessage{Action: action, PropertyID: propertyID})
	if err != nil {
		return err
	}

	return p.channel.Publish(
		p.exchangeName, // exchange
		"",             // routing key (fanout la ignora)
		false,          // mandatory
		false,          // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

// Close cierra channel y conexión.
func (p *RabbitMQPublisher) Close() error {
	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.connection != nil {
		if err := p.connection.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing RabbitMQ publisher: %v", errs)
	}
	return nil
}
