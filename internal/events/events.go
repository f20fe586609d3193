// Package events wires the lifecycle signals that invalidate cached graphs.
// Entity merges, entity deletions, and document deletions arrive over
// RabbitMQ; each one maps to a cache invalidation for its project.
package events

import (
	"fmt"

	"github.com/carta-graph/carta/internal/util"
	"github.com/carta-graph/carta/pkg/logger"

	"github.com/rabbitmq/amqp091-go"
)

const (
	QueueEntityMerged    = "entity_merged_queue"
	QueueEntityDeleted   = "entity_deleted_queue"
	QueueDocumentDeleted = "document_deleted_queue"
)

// Queues lists every invalidation queue the worker consumes.
func Queues() []string {
	return []string{QueueEntityMerged, QueueEntityDeleted, QueueDocumentDeleted}
}

func Init() *amqp091.Connection {
	user := util.GetEnv("RABBITMQ_USER")
	pass := util.GetEnv("RABBITMQ_PASSWORD")
	host := util.GetEnv("RABBITMQ_HOST")
	port := util.GetEnv("RABBITMQ_PORT")

	connURL := fmt.Sprintf(
		"amqp://%s:%s@%s:%s/",
		user,
		pass,
		host,
		port,
	)

	conn, err := amqp091.Dial(connURL)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}

	return conn
}

func SetupQueues(ch *amqp091.Channel) error {
	for _, name := range Queues() {
		_, err := ch.QueueDeclare(
			name,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,   // args
		)
		if err != nil {
			logger.Fatal("QueueDeclare failed", "queue", name, "err", err)
		}

		dlqName := name + "_dlq"
		_, err = ch.QueueDeclare(
			dlqName,
			true,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			logger.Fatal("QueueDeclare failed", "queue", dlqName, "err", err)
		}

		retryName := name + "_retry"
		_, err = ch.QueueDeclare(
			retryName,
			true,
			false,
			false,
			false,
			amqp091.Table{
				"x-message-ttl":             int32(10000),
				"x-dead-letter-exchange":    "",
				"x-dead-letter-routing-key": name,
			},
		)
		if err != nil {
			logger.Fatal("QueueDeclare failed", "queue", retryName, "err", err)
		}
	}

	return nil
}
