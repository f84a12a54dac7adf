package event

import (
	"encoding/json"
	"time"

	"github.com/streadway/amqp"
)

// Routing keys for the questionnaire topic exchange.
const (
	SessionSaved     = "questionnaire.session.saved"
	SessionCompleted = "questionnaire.session.completed"
	ScoreUpdated     = "questionnaire.session.score_updated"
)

// Publisher emits session lifecycle events to a RabbitMQ topic exchange.
// The routing key doubles as the event type.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(amqpURL, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, channel: ch, exchange: exchange}, nil
}

func (p *Publisher) Publish(routingKey string, payload any) error {
	event := map[string]any{
		"type":      routingKey,
		"payload":   payload,
		"timestamp": time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.channel.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *Publisher) Close() {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
