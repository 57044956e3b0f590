package models

import "time"

// Data Transfer Objects

type TriggerCheckResponse struct {
	Message      string `json:"message"`
	AssignmentID string `json:"assignment_id"`
}

type HealthCheckResponse struct {
	Status        string    `json:"status"`
	Database      bool      `json:"database"`
	RabbitMQ      bool      `json:"rabbitmq"`
	ActiveWorkers int       `json:"active_workers"`
	QueueLength   int       `json:"queue_length"`
	Timestamp     time.Time `json:"timestamp"`
}
