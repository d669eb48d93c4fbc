// ABOUTME: Tests for the DynamoDB store against a recording fake client.
// ABOUTME: Covers update expression building, item conversion and query paging.
package storage

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDynamo struct {
	getOut    *dynamodb.GetItemOutput
	updateIn  *dynamodb.UpdateItemInput
	updateOut *dynamodb.UpdateItemOutput
	putIn     *dynamodb.PutItemInput
	pages     []*dynamodb.QueryOutput
	queries   []*dynamodb.QueryInput
}

func (f *fakeDynamo) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	return f.getOut, nil
}

func (f *fakeDynamo) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putIn = in
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamo) UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updateIn = in
	return f.updateOut, nil
}

func (f *fakeDynamo) Query(ctx context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	copied := *in
	f.queries = append(f.queries, &copied)
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func sampleItem(date string, calories string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id":    &types.AttributeValueMemberS{Value: "u1"},
		"date":       &types.AttributeValueMemberS{Value: date},
		"updated_at": &types.AttributeValueMemberS{Value: "2024-01-01T00:00:00Z"},
		"exercises": &types.AttributeValueMemberL{Value: []types.AttributeValue{
			&types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
				"exercise_type":  &types.AttributeValueMemberS{Value: "run"},
				"calories_burnt": &types.AttributeValueMemberN{Value: calories},
			}},
		}},
		"total_calories_burnt": &types.AttributeValueMemberN{Value: calories},
	}
}

func TestDynamoFindNotFound(t *testing.T) {
	s := NewDynamoStore(&fakeDynamo{getOut: &dynamodb.GetItemOutput{}}, "test_")
	_, err := s.Find(context.Background(), Key{Kind: KindExercise, UserID: "u1", Date: "2024-01-01"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDynamoFindDecodesItem(t *testing.T) {
	s := NewDynamoStore(&fakeDynamo{getOut: &dynamodb.GetItemOutput{Item: sampleItem("2024-01-01", "360")}}, "")
	rec, err := s.Find(context.Background(), Key{Kind: KindExercise, UserID: "u1", Date: "2024-01-01"})
	require.NoError(t, err)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, 360.0, rec.Summary["total_calories_burnt"])
	assert.NotContains(t, rec.Summary, "updated_at")
	require.Len(t, rec.Lists["exercises"], 1)

	var e map[string]any
	require.NoError(t, json.Unmarshal(rec.Lists["exercises"][0], &e))
	assert.Equal(t, "run", e["exercise_type"])
	assert.Equal(t, 360.0, e["calories_burnt"])
}

func TestDynamoAppendBuildsSingleUpdate(t *testing.T) {
	fake := &fakeDynamo{updateOut: &dynamodb.UpdateItemOutput{Attributes: sampleItem("2024-01-01", "360")}}
	s := NewDynamoStore(fake, "test_")

	raw := json.RawMessage(`{"exercise_type":"run","calories_burnt":360}`)
	rec, err := s.Append(context.Background(),
		Key{Kind: KindExercise, UserID: "u1", Date: "2024-01-01"},
		testShape,
		push(raw),
		map[string]float64{"total_calories_burnt": 360, "total_duration": 30},
	)
	require.NoError(t, err)
	assert.Equal(t, 360.0, rec.Summary["total_calories_burnt"])
	assert.Contains(t, rec.Summary, "total_duration")

	in := fake.updateIn
	require.NotNil(t, in)
	assert.Equal(t, "test_exercise_diaries", aws.ToString(in.TableName))
	assert.Equal(t,
		"SET #l0 = list_append(if_not_exists(#l0, :empty), :p0), #u = :now ADD #s0 :d0, #s1 :d1",
		aws.ToString(in.UpdateExpression))
	assert.Equal(t, "exercises", in.ExpressionAttributeNames["#l0"])
	assert.Equal(t, "total_calories_burnt", in.ExpressionAttributeNames["#s0"])
	assert.Equal(t, "total_duration", in.ExpressionAttributeNames["#s1"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "360"}, in.ExpressionAttributeValues[":d0"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "30"}, in.ExpressionAttributeValues[":d1"])
	assert.Equal(t, types.ReturnValueAllNew, in.ReturnValues)

	pushed, ok := in.ExpressionAttributeValues[":p0"].(*types.AttributeValueMemberL)
	require.True(t, ok)
	assert.Len(t, pushed.Value, 1)
}

func TestDynamoAppendInitializesUntouchedLists(t *testing.T) {
	shape := Shape{Lists: []string{"breakfast", "lunch"}, Summary: []string{"total_calories"}}
	in, err := appendInput(aws.String("t"), Key{Kind: KindMeal, UserID: "u", Date: "2024-01-01"}, shape,
		map[string][]json.RawMessage{"lunch": {json.RawMessage(`{"food_name":"soup"}`)}},
		map[string]float64{"total_calories": 120.5})
	require.NoError(t, err)
	assert.Equal(t,
		"SET #l0 = if_not_exists(#l0, :empty), #l1 = list_append(if_not_exists(#l1, :empty), :p1), #u = :now ADD #s0 :d0",
		aws.ToString(in.UpdateExpression))
	assert.Equal(t, &types.AttributeValueMemberN{Value: "120.5"}, in.ExpressionAttributeValues[":d0"])
}

func TestDynamoReplacePutsWholeItem(t *testing.T) {
	fake := &fakeDynamo{}
	s := NewDynamoStore(fake, "")
	_, err := s.Replace(context.Background(), Key{Kind: KindWeight, UserID: "u1", Date: "2024-01-01"}, &Record{
		Lists: map[string][]json.RawMessage{"weights": {json.RawMessage(`{"weight_in_kg":80.5}`)}},
	})
	require.NoError(t, err)
	require.NotNil(t, fake.putIn)
	assert.Equal(t, "weight_diaries", aws.ToString(fake.putIn.TableName))

	rec, err := itemToRecord(fake.putIn.Item)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", rec.Date)
	assert.JSONEq(t, `{"weight_in_kg":80.5}`, string(rec.Lists["weights"][0]))
}

func TestDynamoFindRangePages(t *testing.T) {
	fake := &fakeDynamo{pages: []*dynamodb.QueryOutput{
		{
			Items:            []map[string]types.AttributeValue{sampleItem("2024-01-02", "10")},
			LastEvaluatedKey: map[string]types.AttributeValue{"date": &types.AttributeValueMemberS{Value: "2024-01-02"}},
		},
		{Items: []map[string]types.AttributeValue{sampleItem("2024-01-01", "5")}},
	}}
	s := NewDynamoStore(fake, "")

	recs, err := s.FindRange(context.Background(), KindExercise, "u1", "2024-01-01", "2024-01-07")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "2024-01-01", recs[0].Date)
	assert.Equal(t, "2024-01-02", recs[1].Date)

	require.Len(t, fake.queries, 2)
	assert.Nil(t, fake.queries[0].ExclusiveStartKey)
	assert.NotNil(t, fake.queries[1].ExclusiveStartKey)
	assert.Equal(t, "#uid = :u AND #d BETWEEN :s AND :e", aws.ToString(fake.queries[0].KeyConditionExpression))
}

func TestDynamoUnknownKind(t *testing.T) {
	s := NewDynamoStore(&fakeDynamo{}, "")
	_, err := s.FindRange(context.Background(), "sleep", "u1", MinDate, MaxDate)
	assert.Error(t, err)
}
