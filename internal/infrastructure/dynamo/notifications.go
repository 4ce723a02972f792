package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/temple-booking/internal/domain"
	"golang.org/x/sync/errgroup"
)

// concurrent BatchWriteItem calls issued by BatchPut
const batchPutParallelism = 4

// NotificationRepo provides typed DynamoDB operations for the notifications table.
type NotificationRepo struct {
	client    API
	tableName string
}

func NewNotificationRepo(client API, tableName string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName}
}

func (r *NotificationRepo) Put(ctx context.Context, n *domain.Notification) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return persistErr("put notification", err)
	}
	return nil
}

// BatchPut writes notifications in BatchWriteItem chunks, several chunks at a time.
func (r *NotificationRepo) BatchPut(ctx context.Context, ns []domain.Notification) error {
	reqs := make([]types.WriteRequest, 0, len(ns))
	for i := range ns {
		item, err := attributevalue.MarshalMap(&ns[i])
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}
		reqs = append(reqs, putRequest(item))
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchPutParallelism)
	for _, batch := range chunk(reqs) {
		g.Go(func() error {
			return writeBatch(gctx, r.client, r.tableName, batch)
		})
	}
	if err := g.Wait(); err != nil {
		return persistErr("batch put notifications", err)
	}
	return nil
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldNotificationID, notificationID),
	})
	if err != nil {
		return nil, persistErr("get notification", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListByEmail queries the user_email-created_at GSI, newest first.
func (r *NotificationRepo) ListByEmail(ctx context.Context, email string) ([]domain.Notification, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexUserEmailCreatedAt),
		KeyConditionExpression:    aws.String("#e = :e"),
		ExpressionAttributeNames:  map[string]string{"#e": fieldUserEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":e": strVal(email)},
		ScanIndexForward:          aws.Bool(false),
	})
	notifications := []domain.Notification{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, persistErr("query notifications", err)
		}
		var items []domain.Notification
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		notifications = append(notifications, items...)
	}
	return notifications, nil
}

func (r *NotificationRepo) MarkAsRead(ctx context.Context, notificationID string) (*domain.Notification, error) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldRead: true})
	if err != nil {
		return nil, err
	}
	ue.Names["#id"] = fieldNotificationID
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldNotificationID, notificationID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, persistErr("mark notification read", err)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Attributes, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NotificationRepo) Delete(ctx context.Context, notificationID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldNotificationID, notificationID),
	})
	if err != nil {
		return persistErr("delete notification", err)
	}
	return nil
}

// DeleteByEmail removes every notification addressed to email and returns the count.
func (r *NotificationRepo) DeleteByEmail(ctx context.Context, email string) (int, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexUserEmailCreatedAt),
		KeyConditionExpression:    aws.String("#e = :e"),
		ProjectionExpression:      aws.String("#id"),
		ExpressionAttributeNames:  map[string]string{"#e": fieldUserEmail, "#id": fieldNotificationID},
		ExpressionAttributeValues: map[string]types.AttributeValue{":e": strVal(email)},
	})
	var reqs []types.WriteRequest
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, persistErr("query notification keys", err)
		}
		for _, item := range page.Items {
			reqs = append(reqs, deleteRequest(map[string]types.AttributeValue{fieldNotificationID: item[fieldNotificationID]}))
		}
	}
	for _, batch := range chunk(reqs) {
		if err := writeBatch(ctx, r.client, r.tableName, batch); err != nil {
			return 0, persistErr("delete notifications", err)
		}
	}
	return len(reqs), nil
}
