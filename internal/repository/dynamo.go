package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/timmy/facetrail/internal/domain"
)

// DynamoAPI is the subset of the DynamoDB client used by the stores.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// NewDynamoClient creates a DynamoDB client. A non-empty endpoint targets a
// local or emulated table.
func NewDynamoClient(awsCfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// DynamoStore keeps VideoJobs and Appearances in one DynamoDB table keyed by
// PK/SK, with three secondary indexes over appearances.
type DynamoStore struct {
	client DynamoAPI
	table  string
}

// NewDynamoStore creates a new DynamoStore over table.
func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{client: client, table: table}
}

type itemKey struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
}

func videoKey(orgID, videoID string) (map[string]types.AttributeValue, error) {
	key, err := attributevalue.MarshalMap(itemKey{PK: domain.OrgPK(orgID), SK: domain.VideoSK(videoID)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key: %w", err)
	}
	return key, nil
}

// GetVideo retrieves a video job. Returns domain.ErrVideoNotFound when the
// item does not exist.
func (s *DynamoStore) GetVideo(ctx context.Context, orgID, videoID string) (*domain.VideoJob, error) {
	key, err := videoKey(orgID, videoID)
	if err != nil {
		return nil, err
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrVideoNotFound
	}

	var job domain.VideoJob
	if err := attributevalue.UnmarshalMap(out.Item, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal video: %w", err)
	}
	if job.OrgID == "" {
		job.OrgID = orgID
	}
	if job.VideoID == "" {
		job.VideoID = videoID
	}
	return &job, nil
}

// UpdateVideo applies update with a single UpdateItem call. DynamoDB creates
// the item when it does not exist.
func (s *DynamoStore) UpdateVideo(ctx context.Context, orgID, videoID string, update domain.VideoUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	key, err := videoKey(orgID, videoID)
	if err != nil {
		return err
	}

	expr, err := videoUpdateExpression(orgID, videoID, update, time.Now().UTC())
	if err != nil {
		return err
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       key,
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	return nil
}

// videoUpdateExpression translates a VideoUpdate into a SET expression. The
// identity attributes are always written so an item created by the update is
// complete.
func videoUpdateExpression(orgID, videoID string, u domain.VideoUpdate, now time.Time) (expression.Expression, error) {
	update := expression.Set(expression.Name("orgId"), expression.Value(orgID)).
		Set(expression.Name("videoId"), expression.Value(videoID)).
		Set(expression.Name("updatedAt"), expression.Value(now))

	set := func(name string, value interface{}) {
		update = update.Set(expression.Name(name), expression.Value(value))
	}
	if u.Status != nil {
		set("status", *u.Status)
	}
	if u.VideoKey != nil {
		set("videoKey", *u.VideoKey)
	}
	if u.DetectionJobID != nil {
		set("detectionJobId", *u.DetectionJobID)
	}
	if u.ThumbnailJobID != nil {
		set("thumbnailJobId", *u.ThumbnailJobID)
	}
	if u.ThumbnailStatus != nil {
		set("thumbnailStatus", *u.ThumbnailStatus)
	}
	if u.ThumbnailURL != nil {
		set("thumbnailUrl", *u.ThumbnailURL)
	}
	if u.ThumbnailMetadata != nil {
		set("thumbnailMetadata", *u.ThumbnailMetadata)
	}
	if u.ErrorMessage != nil {
		set("errorMessage", *u.ErrorMessage)
	}
	if u.ProcessingStartedAt != nil {
		set("processingStartedAt", *u.ProcessingStartedAt)
	}
	if u.ProcessingCompletedAt != nil {
		set("processingCompletedAt", *u.ProcessingCompletedAt)
	}

	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return expression.Expression{}, fmt.Errorf("failed to build update expression: %w", err)
	}
	return expr, nil
}

// PutAppearance writes an appearance item, replacing any item with the same key.
func (s *DynamoStore) PutAppearance(ctx context.Context, appearance *domain.Appearance) error {
	item, err := attributevalue.MarshalMap(appearance)
	if err != nil {
		return fmt.Errorf("failed to marshal appearance: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put appearance: %w", err)
	}
	return nil
}

// ListByVideo returns the appearances of one video in sort-key order.
func (s *DynamoStore) ListByVideo(ctx context.Context, orgID, videoID string) ([]domain.Appearance, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(domain.OrgPK(orgID))).
		And(expression.Key("SK").BeginsWith(domain.AppearanceKeyPrefix + videoID + "#"))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build key condition: %w", err)
	}

	var items []domain.Appearance
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.table),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query appearances: %w", err)
		}

		var page []domain.Appearance
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal appearances: %w", err)
		}
		items = append(items, page...)

		if len(out.LastEvaluatedKey) == 0 {
			return items, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
