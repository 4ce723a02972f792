package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/samber/lo"
	"github.com/temple-booking/internal/domain"
)

// BookingRepo provides typed DynamoDB operations for the bookings table.
// The partition key is the ticket identifier, so conditional puts give an
// atomic uniqueness check.
type BookingRepo struct {
	client    API
	tableName string
}

func NewBookingRepo(client API, tableName string) *BookingRepo {
	return &BookingRepo{client: client, tableName: tableName}
}

// Insert stores b only if no booking with the same ticket id exists.
// A collision is reported as domain.ErrConflict.
func (r *BookingRepo) Insert(ctx context.Context, b *domain.Booking) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal booking: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(r.tableName),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#t)"),
		ExpressionAttributeNames: map[string]string{"#t": fieldTicketID},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("ticket %s already allocated: %w", b.TicketID, domain.ErrConflict)
	}
	if err != nil {
		return persistErr("put booking", err)
	}
	return nil
}

func (r *BookingRepo) Get(ctx context.Context, ticketID string) (*domain.Booking, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldTicketID, ticketID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, persistErr("get booking", err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("booking %s: %w", ticketID, domain.ErrNotFound)
	}
	var b domain.Booking
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByEmail queries the email-index GSI.
func (r *BookingRepo) ListByEmail(ctx context.Context, email string) ([]domain.Booking, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexEmail),
		KeyConditionExpression:    aws.String("#e = :e"),
		ExpressionAttributeNames:  map[string]string{"#e": fieldEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":e": strVal(email)},
	})
	bookings := []domain.Booking{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, persistErr("query bookings by email", err)
		}
		var items []domain.Booking
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		bookings = append(bookings, items...)
	}
	return bookings, nil
}

// Search scans the table. Status and date predicates run server-side; the
// free-text predicate runs here because DynamoDB contains() is case-sensitive.
func (r *BookingRepo) Search(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	input := &dynamodb.ScanInput{TableName: aws.String(r.tableName)}
	if fe := filterExpr(f); fe != nil {
		input.FilterExpression = aws.String(fe.Expr)
		input.ExpressionAttributeNames = fe.Names
		input.ExpressionAttributeValues = fe.Values
	}
	p := dynamodb.NewScanPaginator(r.client, input)
	bookings := []domain.Booking{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, persistErr("scan bookings", err)
		}
		var items []domain.Booking
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		bookings = append(bookings, items...)
	}
	if f.Search == "" {
		return bookings, nil
	}
	needle := strings.ToLower(f.Search)
	return lo.Filter(bookings, func(b domain.Booking, _ int) bool {
		return matchesSearch(b, needle)
	}), nil
}

// Count returns the number of bookings matching the status and date
// predicates of f. f.Search is ignored.
func (r *BookingRepo) Count(ctx context.Context, f domain.BookingFilter) (int, error) {
	input := &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Select:    types.SelectCount,
	}
	if fe := filterExpr(f); fe != nil {
		input.FilterExpression = aws.String(fe.Expr)
		input.ExpressionAttributeNames = fe.Names
		input.ExpressionAttributeValues = fe.Values
	}
	p := dynamodb.NewScanPaginator(r.client, input)
	total := 0
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, persistErr("count bookings", err)
		}
		total += int(page.Count)
	}
	return total, nil
}

// TransitionStatus moves a booking from one status to another in a single
// conditional write. If the stored status is no longer from, the write is
// rejected with domain.ErrInvalidTransition.
func (r *BookingRepo) TransitionStatus(ctx context.Context, ticketID string, from, to domain.BookingStatus) (*domain.Booking, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldTicketID, ticketID),
		UpdateExpression:    aws.String("SET #s = :to, #u = :now"),
		ConditionExpression: aws.String("attribute_exists(#t) AND #s = :from"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStatus,
			"#u": fieldUpdatedAt,
			"#t": fieldTicketID,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":to":   strVal(string(to)),
			":from": strVal(string(from)),
			":now":  strVal(time.Now().UTC().Format(time.RFC3339Nano)),
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		if _, getErr := r.Get(ctx, ticketID); errors.Is(getErr, domain.ErrNotFound) {
			return nil, getErr
		}
		return nil, fmt.Errorf("booking %s is no longer %s: %w", ticketID, from, domain.ErrInvalidTransition)
	}
	if err != nil {
		return nil, persistErr("update booking status", err)
	}
	var b domain.Booking
	if err := attributevalue.UnmarshalMap(out.Attributes, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// Delete removes a booking, reporting domain.ErrNotFound when it is absent.
func (r *BookingRepo) Delete(ctx context.Context, ticketID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(fieldTicketID, ticketID),
		ConditionExpression:      aws.String("attribute_exists(#t)"),
		ExpressionAttributeNames: map[string]string{"#t": fieldTicketID},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("booking %s: %w", ticketID, domain.ErrNotFound)
	}
	if err != nil {
		return persistErr("delete booking", err)
	}
	return nil
}

// DeleteAll removes every booking and returns how many were deleted.
func (r *BookingRepo) DeleteAll(ctx context.Context) (int, error) {
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                aws.String(r.tableName),
		ProjectionExpression:     aws.String("#t"),
		ExpressionAttributeNames: map[string]string{"#t": fieldTicketID},
	})
	var reqs []types.WriteRequest
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, persistErr("scan booking keys", err)
		}
		for _, item := range page.Items {
			reqs = append(reqs, deleteRequest(map[string]types.AttributeValue{fieldTicketID: item[fieldTicketID]}))
		}
	}
	for _, batch := range chunk(reqs) {
		if err := writeBatch(ctx, r.client, r.tableName, batch); err != nil {
			return 0, persistErr("delete bookings", err)
		}
	}
	return len(reqs), nil
}

// filterExpr builds the server-side part of a booking filter, or nil when
// neither status nor date bounds are set.
func filterExpr(f domain.BookingFilter) *updateExpr {
	var clauses []string
	names := map[string]string{}
	values := map[string]types.AttributeValue{}
	if f.Status != "" {
		clauses = append(clauses, "#s = :s")
		names["#s"] = fieldStatus
		values[":s"] = strVal(string(f.Status))
	}
	switch {
	case f.StartDate != "" && f.EndDate != "":
		clauses = append(clauses, "#d BETWEEN :start AND :end")
		values[":start"] = strVal(f.StartDate)
		values[":end"] = strVal(f.EndDate)
	case f.StartDate != "":
		clauses = append(clauses, "#d >= :start")
		values[":start"] = strVal(f.StartDate)
	case f.EndDate != "":
		clauses = append(clauses, "#d <= :end")
		values[":end"] = strVal(f.EndDate)
	}
	if f.StartDate != "" || f.EndDate != "" {
		names["#d"] = fieldDate
	}
	if len(clauses) == 0 {
		return nil
	}
	return &updateExpr{Expr: strings.Join(clauses, " AND "), Names: names, Values: values}
}

func matchesSearch(b domain.Booking, needle string) bool {
	return strings.Contains(strings.ToLower(b.TicketID), needle) ||
		strings.Contains(strings.ToLower(b.Name), needle) ||
		strings.Contains(strings.ToLower(b.Mobile), needle)
}
