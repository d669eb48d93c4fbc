// ABOUTME: DynamoDB diary store, one table per kind keyed by user_id and date.
// ABOUTME: Append is a single UpdateItem carrying list_append and ADD clauses.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	attrUserID    = "user_id"
	attrDate      = "date"
	attrUpdatedAt = "updated_at"
)

// DynamoAPI is the subset of the DynamoDB client the store uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// DynamoStore stores diaries in DynamoDB. Lists are top-level L attributes
// and summary fields are top-level N attributes so ADD can update them.
type DynamoStore struct {
	client      DynamoAPI
	tablePrefix string
}

// NewDynamoStore wraps an existing DynamoDB client.
func NewDynamoStore(client DynamoAPI, tablePrefix string) *DynamoStore {
	return &DynamoStore{client: client, tablePrefix: tablePrefix}
}

// OpenDynamo builds a client from the default AWS configuration chain.
func OpenDynamo(ctx context.Context, tablePrefix string) (*DynamoStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewDynamoStore(dynamodb.NewFromConfig(cfg), tablePrefix), nil
}

func (s *DynamoStore) table(kind string) (*string, error) {
	if !IsKnownKind(kind) {
		return nil, fmt.Errorf("unknown diary kind %q", kind)
	}
	return aws.String(s.tablePrefix + tableName(kind)), nil
}

func itemKey(key Key) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrUserID: &types.AttributeValueMemberS{Value: key.UserID},
		attrDate:   &types.AttributeValueMemberS{Value: key.Date},
	}
}

// Find returns the document for key.
func (s *DynamoStore) Find(ctx context.Context, key Key) (*Record, error) {
	tbl, err := s.table(key.Kind)
	if err != nil {
		return nil, err
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      tbl,
		Key:            itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	return itemToRecord(out.Item)
}

// Append issues one UpdateItem that creates missing attributes, appends and adds.
func (s *DynamoStore) Append(ctx context.Context, key Key, shape Shape, pushes map[string][]json.RawMessage, deltas map[string]float64) (*Record, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	tbl, err := s.table(key.Kind)
	if err != nil {
		return nil, err
	}
	in, err := appendInput(tbl, key, shape, pushes, deltas)
	if err != nil {
		return nil, err
	}
	out, err := s.client.UpdateItem(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("append to %s: %w", key, err)
	}
	rec, err := itemToRecord(out.Attributes)
	if err != nil {
		return nil, err
	}
	rec.fill(shape)
	return rec, nil
}

// appendInput builds:
//
//	SET #l0 = list_append(if_not_exists(#l0, :empty), :p0), #l1 = if_not_exists(#l1, :empty), #u = :now
//	ADD #s0 :d0, #s1 :d1
func appendInput(tbl *string, key Key, shape Shape, pushes map[string][]json.RawMessage, deltas map[string]float64) (*dynamodb.UpdateItemInput, error) {
	names := map[string]string{"#u": attrUpdatedAt}
	values := map[string]types.AttributeValue{
		":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		":now":   &types.AttributeValueMemberS{Value: now()},
	}

	lists := unionSorted(shape.Lists, keysOf(pushes))
	sets := make([]string, 0, len(lists)+1)
	for i, list := range lists {
		n := "#l" + strconv.Itoa(i)
		names[n] = list
		entries, pushed := pushes[list]
		if !pushed || len(entries) == 0 {
			sets = append(sets, fmt.Sprintf("%s = if_not_exists(%s, :empty)", n, n))
			continue
		}
		av, err := rawListToAttr(entries)
		if err != nil {
			return nil, err
		}
		v := ":p" + strconv.Itoa(i)
		values[v] = av
		sets = append(sets, fmt.Sprintf("%s = list_append(if_not_exists(%s, :empty), %s)", n, n, v))
	}
	sets = append(sets, "#u = :now")
	expr := "SET " + strings.Join(sets, ", ")

	fields := unionSorted(shape.Summary, keysOf(deltas))
	if len(fields) > 0 {
		adds := make([]string, 0, len(fields))
		for i, field := range fields {
			n, v := "#s"+strconv.Itoa(i), ":d"+strconv.Itoa(i)
			names[n] = field
			values[v] = &types.AttributeValueMemberN{Value: formatNumber(deltas[field])}
			adds = append(adds, n+" "+v)
		}
		expr += " ADD " + strings.Join(adds, ", ")
	}

	return &dynamodb.UpdateItemInput{
		TableName:                 tbl,
		Key:                       itemKey(key),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	}, nil
}

// Replace writes the whole item.
func (s *DynamoStore) Replace(ctx context.Context, key Key, rec *Record) (*Record, error) {
	if err := key.validate(); err != nil {
		return nil, err
	}
	tbl, err := s.table(key.Kind)
	if err != nil {
		return nil, err
	}
	stored := &Record{UserID: key.UserID, Date: key.Date, Lists: rec.Lists, Summary: rec.Summary}
	item, err := recordToItem(stored)
	if err != nil {
		return nil, err
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: tbl, Item: item}); err != nil {
		return nil, fmt.Errorf("replace %s: %w", key, err)
	}
	return stored, nil
}

// FindRange queries the user's partition with a BETWEEN condition on date.
func (s *DynamoStore) FindRange(ctx context.Context, kind, userID, start, end string) ([]*Record, error) {
	tbl, err := s.table(kind)
	if err != nil {
		return nil, err
	}
	in := &dynamodb.QueryInput{
		TableName:              tbl,
		KeyConditionExpression: aws.String("#uid = :u AND #d BETWEEN :s AND :e"),
		ExpressionAttributeNames: map[string]string{
			"#uid": attrUserID,
			"#d":   attrDate,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
			":s": &types.AttributeValueMemberS{Value: start},
			":e": &types.AttributeValueMemberS{Value: end},
		},
		ScanIndexForward: aws.Bool(true),
		ConsistentRead:   aws.Bool(true),
	}

	var records []*Record
	for {
		out, err := s.client.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("query %s range: %w", kind, err)
		}
		for _, item := range out.Items {
			rec, err := itemToRecord(item)
			if err != nil {
				return nil, err
			}
			records = append(records, rec)
		}
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *DynamoStore) Close() error {
	return nil
}

func rawListToAttr(entries []json.RawMessage) (*types.AttributeValueMemberL, error) {
	out := make([]types.AttributeValue, 0, len(entries))
	for _, raw := range entries {
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decode entry: %w", err)
		}
		av, err := attributevalue.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal entry: %w", err)
		}
		out = append(out, av)
	}
	return &types.AttributeValueMemberL{Value: out}, nil
}

func recordToItem(rec *Record) (map[string]types.AttributeValue, error) {
	item := map[string]types.AttributeValue{
		attrUserID:    &types.AttributeValueMemberS{Value: rec.UserID},
		attrDate:      &types.AttributeValueMemberS{Value: rec.Date},
		attrUpdatedAt: &types.AttributeValueMemberS{Value: now()},
	}
	for list, entries := range rec.Lists {
		av, err := rawListToAttr(entries)
		if err != nil {
			return nil, err
		}
		item[list] = av
	}
	for field, v := range rec.Summary {
		item[field] = &types.AttributeValueMemberN{Value: formatNumber(v)}
	}
	return item, nil
}

func itemToRecord(item map[string]types.AttributeValue) (*Record, error) {
	rec := &Record{
		Lists:   make(map[string][]json.RawMessage),
		Summary: make(map[string]float64),
	}
	for name, av := range item {
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			switch name {
			case attrUserID:
				rec.UserID = v.Value
			case attrDate:
				rec.Date = v.Value
			}
		case *types.AttributeValueMemberN:
			f, err := strconv.ParseFloat(v.Value, 64)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", name, err)
			}
			rec.Summary[name] = f
		case *types.AttributeValueMemberL:
			entries := make([]json.RawMessage, 0, len(v.Value))
			for _, el := range v.Value {
				var decoded any
				if err := attributevalue.Unmarshal(el, &decoded); err != nil {
					return nil, fmt.Errorf("unmarshal %s entry: %w", name, err)
				}
				raw, err := json.Marshal(decoded)
				if err != nil {
					return nil, fmt.Errorf("encode %s entry: %w", name, err)
				}
				entries = append(entries, raw)
			}
			rec.Lists[name] = entries
		}
	}
	return rec, nil
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func keysOf[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func unionSorted(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var out []string
	for _, s := range append(append([]string{}, a...), b...) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
