package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/temple-booking/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Put writes the user together with claim items for its username and email
// in one transaction, so two concurrent registrations cannot share either.
// A taken username, email or id is reported as domain.ErrConflict.
func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			r.putNew(item),
			r.putNew(claim(claimUsername+u.Username, u.UserID)),
			r.putNew(claim(claimEmail+u.Email, u.UserID)),
		},
	})
	if isTransactionConflict(err) {
		return fmt.Errorf("username or email already registered: %w", domain.ErrConflict)
	}
	if err != nil {
		return persistErr("put user", err)
	}
	return nil
}

func (r *UserRepo) putNew(item map[string]types.AttributeValue) types.TransactWriteItem {
	return types.TransactWriteItem{Put: &types.Put{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{"#id": fieldUserID},
	}}
}

// claim items carry no username or email attribute, so they stay out of the
// GSIs and out of ListEmails.
func claim(key, userID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		fieldUserID:    strVal(key),
		fieldClaimedBy: strVal(userID),
	}
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.queryGSI(ctx, indexUsername, fieldUsername, username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, indexEmail, fieldEmail, email)
}

// ListEmails returns the email of every registered user, projecting only
// the email attribute.
func (r *UserRepo) ListEmails(ctx context.Context) ([]string, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		ProjectionExpression:     aws.String("#e"),
		ExpressionAttributeNames: map[string]string{"#e": fieldEmail},
	})
	var emails []string
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, persistErr("scan user emails", err)
		}
		for _, item := range page.Items {
			if v, ok := item[fieldEmail].(*types.AttributeValueMemberS); ok && v.Value != "" {
				emails = append(emails, v.Value)
			}
		}
	}
	return emails, nil
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": strVal(value)},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, persistErr("query users", err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}
