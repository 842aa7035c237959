package server

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "mock-data-forge/internal/common/errors"
	"mock-data-forge/internal/common/validation"
)

var nonEmptyString = map[string]interface{}{"type": "string", "minLength": 1}

// Request envelopes, one per endpoint. Every envelope requires a non-empty
// schema object and accepts an optional positive integer count.
var (
	generateEnvelope = envelope(nil)

	sendEnvelope = envelope(map[string]interface{}{
		"target_url": nonEmptyString,
		"method":     map[string]interface{}{"type": "string", "pattern": "^(?i)(post|put|patch)$"},
		"headers": map[string]interface{}{
			"type":                 "object",
			"additionalProperties": map[string]interface{}{"type": "string"},
		},
	}, "target_url")

	insertEnvelope = envelope(map[string]interface{}{
		"db_url":     nonEmptyString,
		"table_name": nonEmptyString,
	}, "db_url", "table_name")

	pushEnvelope = envelope(map[string]interface{}{
		"redis_url": nonEmptyString,
		"key":       nonEmptyString,
	}, "redis_url", "key")

	indexEnvelope = envelope(map[string]interface{}{
		"es_url":     nonEmptyString,
		"index_name": nonEmptyString,
	}, "es_url", "index_name")

	publishEnvelope = envelope(map[string]interface{}{
		"amqp_url": nonEmptyString,
		"queue":    nonEmptyString,
	}, "amqp_url", "queue")

	storeEnvelope = envelope(map[string]interface{}{
		"mongo_url":  nonEmptyString,
		"database":   nonEmptyString,
		"collection": nonEmptyString,
	}, "mongo_url", "database", "collection")

	notifyEnvelope = envelope(map[string]interface{}{
		"topic_arn": map[string]interface{}{"type": "string", "pattern": "^arn:aws[a-z-]*:sns:"},
		"region":    nonEmptyString,
	}, "topic_arn")
)

func envelope(extra map[string]interface{}, required ...string) *validation.Validator {
	properties := map[string]interface{}{
		"schema": map[string]interface{}{"type": "object", "minProperties": 1},
		"count":  map[string]interface{}{"type": "integer", "minimum": 1},
	}
	for k, v := range extra {
		properties[k] = v
	}

	doc := map[string]interface{}{
		"type":       "object",
		"required":   append([]string{"schema"}, required...),
		"properties": properties,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		panic(err)
	}
	return validation.MustCompile(string(data))
}

// envelopeError turns a failed validation into the error shown to the
// caller. Schema problems win over count problems, which win over the rest.
func envelopeError(result *validation.ValidationResult) *apperrors.StandardError {
	details := strings.Join(result.GetErrorMessages(), "; ")

	switch {
	case result.HasErrors("(root)") || result.HasErrors("schema"):
		return apperrors.NewInvalidSchemaError(details)
	case result.HasErrors("count"):
		return apperrors.NewInvalidCountError(details)
	}

	field := result.Errors[0].Field
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[:i]
	}
	return apperrors.NewInvalidRequestError(
		fmt.Sprintf("Missing or invalid '%s' in request body.", field), details)
}
