package server

import (
	"encoding/json"

	"mock-data-forge/internal/generator"
	"mock-data-forge/internal/sinks"
)

// Request is the body accepted by every generation endpoint. Only the fields
// an endpoint's envelope schema names are used by it.
type Request struct {
	Schema *generator.Object `json:"schema"`
	Count  json.Number       `json:"count"`

	// generate-and-send
	TargetURL string            `json:"target_url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`

	// generate-and-insert
	DBURL     string `json:"db_url"`
	TableName string `json:"table_name"`

	// generate-and-push
	RedisURL string `json:"redis_url"`
	Key      string `json:"key"`

	// generate-and-index
	ESURL     string `json:"es_url"`
	IndexName string `json:"index_name"`

	// generate-and-publish
	AMQPURL string `json:"amqp_url"`
	Queue   string `json:"queue"`

	// generate-and-store
	MongoURL   string `json:"mongo_url"`
	Database   string `json:"database"`
	Collection string `json:"collection"`

	// generate-and-notify
	TopicARN string `json:"topic_arn"`
	Region   string `json:"region"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type SendResponse struct {
	Message      string   `json:"message"`
	Generated    int      `json:"generated"`
	SuccessCount int      `json:"success_count"`
	FailureCount int      `json:"failure_count"`
	Errors       []string `json:"errors"`
}

type InsertResponse struct {
	Message   string `json:"message"`
	Generated int    `json:"generated"`
	Inserted  int    `json:"inserted"`
}

type SinkResponse struct {
	Generated int `json:"generated"`
	*sinks.Report
}
