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
	"github.com/go-matchmaker/internal/domain"
)

const (
	attrUserID = "user_id"
	attrEmail  = "email"
	emailIndex = "email-index"

	// Email uniqueness is held by a guard item in the users table keyed by
	// this prefix. Guard items carry no email attribute, so they never show
	// up in the email index.
	emailGuardPrefix = "email#"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    API
	tableName string
}

func NewUserRepo(client API, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

// Create writes the user and its email guard in one transaction. Either
// item already existing cancels both writes.
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	guard := map[string]types.AttributeValue{
		attrUserID: &types.AttributeValueMemberS{Value: emailGuardPrefix + u.Email},
		"owner_id": &types.AttributeValueMemberS{Value: u.UserID},
	}
	notExists := aws.String("attribute_not_exists(#pk)")
	names := map[string]string{"#pk": attrUserID}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     item,
				ConditionExpression:      notExists,
				ExpressionAttributeNames: names,
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     guard,
				ConditionExpression:      notExists,
				ExpressionAttributeNames: names,
			}},
		},
	})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) && hasConditionFailure(tce) {
			return fmt.Errorf("email %s: %w", u.Email, domain.ErrConstraintViolation)
		}
		return err
	}
	return nil
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	if strings.HasPrefix(userID, emailGuardPrefix) {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(attrUserID, userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(emailIndex),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attrEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user with email %s: %w", email, domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update applies a partial update to an existing user. A missing user yields
// domain.ErrNotFound instead of creating a sparse item.
func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	if err := domain.CheckUpdate(updates); err != nil {
		return err
	}
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields[domain.FieldUpdatedAt] = time.Now().UTC()

	ue, err := buildUpdateExpr(fields)
	if err != nil {
		return err
	}
	ue.Names["#pk"] = attrUserID

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(attrUserID, userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func hasConditionFailure(tce *types.TransactionCanceledException) bool {
	for _, reason := range tce.CancellationReasons {
		if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			return true
		}
	}
	return false
}
