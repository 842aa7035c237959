package sinks

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	apperrors "mock-data-forge/internal/common/errors"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/generator"
)

// MongoSink stores records as documents, keeping field order.
type MongoSink struct {
	coll   *mongo.Collection
	logger logger.Logger
}

func NewMongoSink(coll *mongo.Collection, log logger.Logger) *MongoSink {
	return &MongoSink{
		coll: coll,
		logger: log.WithFields(map[string]interface{}{
			"sink":       NameMongo,
			"collection": coll.Name(),
		}),
	}
}

func (s *MongoSink) Name() string { return NameMongo }

// Deliver uses an unordered InsertMany so one rejected document does not stop
// the rest.
func (s *MongoSink) Deliver(ctx context.Context, records []*generator.Object) (*Report, error) {
	report := newReport(s.Name())
	if len(records) == 0 {
		return report, nil
	}

	docs := make([]interface{}, len(records))
	for i, rec := range records {
		docs[i] = toDocument(rec)
	}

	_, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err := tallyInsertMany(report, len(docs), err); err != nil {
		return nil, apperrors.NewSinkDeliveryFailedError(NameMongo, err)
	}

	s.logger.Info("records stored", map[string]interface{}{
		"delivered": report.Delivered,
		"failed":    report.Failed,
	})
	return report, nil
}

// tallyInsertMany fills report from an InsertMany result. Per-document write
// errors are tallied; any other error is returned.
func tallyInsertMany(report *Report, total int, err error) error {
	if err == nil {
		report.Delivered = total
		return nil
	}

	var bwe mongo.BulkWriteException
	if !errors.As(err, &bwe) || len(bwe.WriteErrors) == 0 {
		return err
	}
	for _, we := range bwe.WriteErrors {
		report.fail(we.Index, fmt.Errorf("code %d: %s", we.Code, we.Message))
	}
	report.Delivered = total - report.Failed
	return nil
}

func toDocument(obj *generator.Object) bson.D {
	doc := make(bson.D, 0, obj.Len())
	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		doc = append(doc, bson.E{Key: key, Value: toBSONValue(v)})
	}
	return doc
}

func toBSONValue(v interface{}) interface{} {
	switch t := v.(type) {
	case *generator.Object:
		return toDocument(t)
	case []interface{}:
		arr := make(bson.A, len(t))
		for i, item := range t {
			arr[i] = toBSONValue(item)
		}
		return arr
	default:
		return v
	}
}
