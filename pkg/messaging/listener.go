package messaging

import (
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func DeclareBindAndConsume(ch *amqp.Channel, prefix string, topic ChangeTopic) (<-chan amqp.Delivery, error) {
	name := getName(prefix, topic)
	q, err := ch.QueueDeclare(
		"",    // name
		false, // durable
		false, // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return nil, err
	}
	err = ch.QueueBind(q.Name, name, name, false, nil)
	if err != nil {
		return nil, err
	}
	return ch.Consume(
		q.Name,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
}

// Acknowledger is the part of amqp.Delivery used to settle a message.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// HandleDeliveries runs filter for every message until msgs is closed. Failed
// messages are rejected without requeue so a bad payload can not loop.
func HandleDeliveries(msgs <-chan amqp.Delivery, filter func(amqp.Delivery) error) {
	for d := range msgs {
		settle(&d, d.Body, filter(d))
	}
}

func settle(ack Acknowledger, body []byte, err error) {
	if err != nil {
		zap.L().Warn("error processing message", zap.Error(err), zap.ByteString("body", body))
		if nackErr := ack.Nack(false, false); nackErr != nil {
			zap.L().Error("failed to reject message", zap.Error(nackErr))
		}
		return
	}
	if ackErr := ack.Ack(false); ackErr != nil {
		zap.L().Error("failed to ack message", zap.Error(ackErr))
	}
}

func ListenToTopic(ch *amqp.Channel, prefix string, topic ChangeTopic, filter func(amqp.Delivery) error) error {
	fc, err := DeclareBindAndConsume(ch, prefix, topic)
	if err != nil {
		return err
	}

	go func(msgs <-chan amqp.Delivery) {
		defer ch.Close()
		HandleDeliveries(msgs, filter)
	}(fc)
	return nil
}
