package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-matchmaker/internal/domain"
	"github.com/go-matchmaker/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mock ---

type mockAPI struct{ mock.Mock }

func (m *mockAPI) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.GetItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.QueryOutput)
	return out, args.Error(1)
}
func (m *mockAPI) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.UpdateItemOutput)
	return out, args.Error(1)
}
func (m *mockAPI) TransactWriteItems(ctx context.Context, in *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.TransactWriteItemsOutput)
	return out, args.Error(1)
}
func (m *mockAPI) CreateTable(ctx context.Context, in *dynamodb.CreateTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*dynamodb.CreateTableOutput)
	return out, args.Error(1)
}

func sampleUser() *domain.User {
	code := "012345"
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.User{
		UserID:      "01HZX0000000000000000000AA",
		Name:        "Ann",
		Age:         20,
		CollegeYear: "Junior",
		Email:       "ann@x.com",
		OTP:         &code,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// --- Create ---

func TestCreate_WritesUserAndEmailGuard(t *testing.T) {
	api := &mockAPI{}
	var captured *dynamodb.TransactWriteItemsInput
	api.On("TransactWriteItems", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*dynamodb.TransactWriteItemsInput) }).
		Return(&dynamodb.TransactWriteItemsOutput{}, nil)

	u := sampleUser()
	require.NoError(t, NewUserRepo(api, "users").Create(context.Background(), u))

	require.Len(t, captured.TransactItems, 2)
	userPut := captured.TransactItems[0].Put
	guardPut := captured.TransactItems[1].Put
	assert.Equal(t, "users", aws.ToString(userPut.TableName))
	assert.Equal(t, "attribute_not_exists(#pk)", aws.ToString(userPut.ConditionExpression))
	assert.Equal(t, &types.AttributeValueMemberS{Value: u.UserID}, userPut.Item["user_id"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "email#ann@x.com"}, guardPut.Item["user_id"])
	_, hasEmail := guardPut.Item["email"]
	assert.False(t, hasEmail, "guard must stay out of the email index")
	assert.Nil(t, userPut.Item["questionnaire"], "nil questionnaire is omitted")
}

func TestCreate_ConditionFailureIsConstraintViolation(t *testing.T) {
	api := &mockAPI{}
	api.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{
		CancellationReasons: []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		},
	})

	err := NewUserRepo(api, "users").Create(context.Background(), sampleUser())
	assert.True(t, errors.Is(err, domain.ErrConstraintViolation))
}

func TestCreate_OtherErrorPassesThrough(t *testing.T) {
	api := &mockAPI{}
	api.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	err := NewUserRepo(api, "users").Create(context.Background(), sampleUser())
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConstraintViolation))
}

// --- Get ---

func TestGet_Found(t *testing.T) {
	u := sampleUser()
	item, err := attributevalue.MarshalMap(u)
	require.NoError(t, err)

	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.MatchedBy(func(in *dynamodb.GetItemInput) bool {
		k, ok := in.Key["user_id"].(*types.AttributeValueMemberS)
		return ok && k.Value == u.UserID && aws.ToBool(in.ConsistentRead)
	})).Return(&dynamodb.GetItemOutput{Item: item}, nil)

	got, err := NewUserRepo(api, "users").Get(context.Background(), u.UserID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	require.NotNil(t, got.OTP)
	assert.Equal(t, "012345", *got.OTP)
	assert.True(t, u.CreatedAt.Equal(got.CreatedAt))
}

func TestGet_Missing(t *testing.T) {
	api := &mockAPI{}
	api.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

	_, err := NewUserRepo(api, "users").Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestGet_GuardKeyIsNotAUser(t *testing.T) {
	api := &mockAPI{}
	_, err := NewUserRepo(api, "users").Get(context.Background(), "email#ann@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	api.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
}

// --- GetByEmail ---

func TestGetByEmail_UsesIndex(t *testing.T) {
	u := sampleUser()
	item, err := attributevalue.MarshalMap(u)
	require.NoError(t, err)

	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.MatchedBy(func(in *dynamodb.QueryInput) bool {
		return aws.ToString(in.IndexName) == "email-index"
	})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil)

	got, err := NewUserRepo(api, "users").GetByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.UserID, got.UserID)
}

func TestGetByEmail_Missing(t *testing.T) {
	api := &mockAPI{}
	api.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil)

	_, err := NewUserRepo(api, "users").GetByEmail(context.Background(), "who@x.com")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- Update ---

func TestUpdate_ConditionalOnExistence(t *testing.T) {
	api := &mockAPI{}
	var captured *dynamodb.UpdateItemInput
	api.On("UpdateItem", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*dynamodb.UpdateItemInput) }).
		Return(&dynamodb.UpdateItemOutput{}, nil)

	updates := map[string]interface{}{domain.FieldVerified: true}
	require.NoError(t, NewUserRepo(api, "users").Update(context.Background(), "u1", updates))

	assert.Equal(t, "attribute_exists(#pk)", aws.ToString(captured.ConditionExpression))
	assert.Equal(t, "user_id", captured.ExpressionAttributeNames["#pk"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", aws.ToString(captured.UpdateExpression))
	assert.Equal(t, "updated_at", captured.ExpressionAttributeNames["#f0"])
	assert.Equal(t, "verified", captured.ExpressionAttributeNames["#f1"])
	assert.Len(t, updates, 1, "caller's map is not mutated")
}

func TestUpdate_RejectsIdentityFields(t *testing.T) {
	api := &mockAPI{}
	repo := NewUserRepo(api, "users")

	err := repo.Update(context.Background(), "u1", map[string]interface{}{"email": "other@x.com"})
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
	assert.ErrorContains(t, err, "not updatable")

	err = repo.Update(context.Background(), "u1", map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
	api.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
}

func TestUpdate_MissingUser(t *testing.T) {
	api := &mockAPI{}
	api.On("UpdateItem", mock.Anything, mock.Anything).Return(nil, &types.ConditionalCheckFailedException{})

	err := NewUserRepo(api, "users").Update(context.Background(), "gone", map[string]interface{}{domain.FieldOTP: "1"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- Bootstrap ---

func TestBootstrap_CreatesUsersTable(t *testing.T) {
	api := &mockAPI{}
	api.On("CreateTable", mock.Anything, mock.MatchedBy(func(in *dynamodb.CreateTableInput) bool {
		return aws.ToString(in.TableName) == "users" &&
			len(in.GlobalSecondaryIndexes) == 1 &&
			aws.ToString(in.GlobalSecondaryIndexes[0].IndexName) == "email-index"
	})).Return(&dynamodb.CreateTableOutput{}, nil)

	require.NoError(t, Bootstrap(context.Background(), api, "users", logger.Nop()))
	api.AssertExpectations(t)
}

func TestBootstrap_ExistingTableIsFine(t *testing.T) {
	api := &mockAPI{}
	api.On("CreateTable", mock.Anything, mock.Anything).Return(nil, &types.ResourceInUseException{})

	assert.NoError(t, Bootstrap(context.Background(), api, "users", logger.Nop()))
}

func TestBootstrap_OtherErrorsSurface(t *testing.T) {
	api := &mockAPI{}
	api.On("CreateTable", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

	assert.ErrorContains(t, Bootstrap(context.Background(), api, "users", logger.Nop()), "access denied")
}
