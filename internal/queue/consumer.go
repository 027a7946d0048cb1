package queue

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const contractLogPath = "logs/contracts.log"

// StartContractConsumer connects to RabbitMQ, declares the contract.signed
// and contract.expired queues (durable), and starts consuming messages.
// Each message is appended to logs/contracts.log in a single-line,
// human-friendly format. The function runs a reconnect loop with backoff
// and keeps running across broker restarts; processing errors are logged
// and the offending message rejected so the server continues operating.
func StartContractConsumer() {
	url := brokerURL()

	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Printf("contract-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		if err := consumeLoop(conn); err != nil {
			log.Printf("contract-consumer: consume loop ended: %v; reconnecting", err)
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	for _, name := range []string{signedQueueName, expiredQueueName} {
		if _, err := ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("queue declare %s: %w", name, err)
		}
	}

	signed, err := ch.Consume(signedQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", signedQueueName, err)
	}
	expired, err := ch.Consume(expiredQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", expiredQueueName, err)
	}

	for {
		select {
		case d, ok := <-signed:
			if !ok {
				return fmt.Errorf("signed delivery channel closed")
			}
			handleDelivery(d, formatSigned)
		case d, ok := <-expired:
			if !ok {
				return fmt.Errorf("expired delivery channel closed")
			}
			handleDelivery(d, formatExpired)
		}
	}
}

func handleDelivery(d amqp.Delivery, format func([]byte) (string, error)) {
	line, err := format(d.Body)
	if err != nil {
		log.Printf("contract-consumer: bad message: %v", err)
		_ = d.Reject(false)
		return
	}
	if err := appendLogLine(line); err != nil {
		log.Printf("contract-consumer: write log: %v", err)
		_ = d.Reject(true) // requeue: the disk may recover
		return
	}
	_ = d.Ack(false)
}

func formatSigned(body []byte) (string, error) {
	var ev ContractSignedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s SIGNED contract=%d client=%d software=%d price_grosz=%d paid_grosz=%d",
		ev.SignedAt, ev.ContractID, ev.ClientID, ev.SoftwareID, ev.PriceGrosz, ev.TotalPaidGrosz), nil
}

func formatExpired(body []byte) (string, error) {
	var ev ContractExpiredEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s EXPIRED contract=%d payments refunded",
		ev.ExpiredAt, ev.ContractID), nil
}

func appendLogLine(line string) error {
	if err := os.MkdirAll(filepath.Dir(contractLogPath), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(contractLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	_, err = fmt.Fprintln(f, line)
	return err
}
