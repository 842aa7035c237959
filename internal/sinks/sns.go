package sinks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	awsclient "mock-data-forge/internal/common/aws"
	"mock-data-forge/internal/common/logger"
	"mock-data-forge/internal/generator"
)

const contentTypeAttribute = "content-type"

// SNSSink publishes each record as a JSON message on an SNS topic.
type SNSSink struct {
	client   awsclient.SNSPublisher
	topicARN string
	logger   logger.Logger
}

func NewSNSSink(client awsclient.SNSPublisher, topicARN string, log logger.Logger) *SNSSink {
	return &SNSSink{
		client:   client,
		topicARN: topicARN,
		logger:   log.WithFields(map[string]interface{}{"sink": NameSNS, "topicArn": topicARN}),
	}
}

func (s *SNSSink) Name() string { return NameSNS }

func (s *SNSSink) Deliver(ctx context.Context, records []*generator.Object) (*Report, error) {
	bodies, err := encodeRecords(records)
	if err != nil {
		return nil, err
	}

	report := newReport(s.Name())
	for i, body := range bodies {
		_, err := s.client.Publish(ctx, &sns.PublishInput{
			TopicArn: aws.String(s.topicARN),
			Message:  aws.String(string(body)),
			MessageAttributes: map[string]types.MessageAttributeValue{
				contentTypeAttribute: {
					DataType:    aws.String("String"),
					StringValue: aws.String("application/json"),
				},
			},
		})
		if err != nil {
			report.fail(i, err)
			continue
		}
		report.Delivered++
	}

	s.logger.Info("records published", map[string]interface{}{
		"delivered": report.Delivered,
		"failed":    report.Failed,
	})
	return report, nil
}
