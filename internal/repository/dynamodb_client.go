package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"intake-triage/internal/domain"
)

const (
	pkPrefixIntake = "INTAKE#"
	skPrefixEvent  = "EVT#"
	ttlDuration    = 90 * 24 * time.Hour

	// skTimeLayout is fixed width so sort keys order chronologically.
	skTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// dynamodbAPI is the subset of the DynamoDB client used here.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// EventReader lists the events of one session.
type EventReader interface {
	ListEvents(ctx context.Context, sessionID string, limit int) ([]domain.IntakeEvent, error)
}

// Client is the append-only intake event log backed by one DynamoDB table.
type Client struct {
	api       dynamodbAPI
	tableName string
	now       func() time.Time
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName, now: time.Now}, nil
}

func intakePK(sessionID string) string {
	return pkPrefixIntake + sessionID
}

func eventSK(ts time.Time) string {
	return skPrefixEvent + ts.UTC().Format(skTimeLayout)
}

// NewIntakeEvent builds an event with keys, timestamp and TTL set. The ZIP
// code is kept only for completed and connected events.
func NewIntakeEvent(sessionID string, kind domain.EventKind, step, topic string, level int, zip string, now time.Time) domain.IntakeEvent {
	now = now.UTC()
	if kind != domain.EventCompleted && kind != domain.EventConnected {
		zip = ""
	}
	return domain.IntakeEvent{
		PK:         intakePK(sessionID),
		SK:         eventSK(now),
		SessionID:  sessionID,
		Kind:       kind,
		Step:       step,
		Topic:      topic,
		Level:      level,
		ZipCode:    zip,
		OccurredAt: now.Format(time.RFC3339Nano),
		TTL:        now.Add(ttlDuration).Unix(),
	}
}

// Record stamps ev with keys, timestamp and TTL and appends it.
func (c *Client) Record(ctx context.Context, ev domain.IntakeEvent) error {
	if strings.TrimSpace(ev.SessionID) == "" {
		return errors.New("repository: Record: session id is required")
	}
	return c.AppendEvent(ctx, NewIntakeEvent(ev.SessionID, ev.Kind, ev.Step, ev.Topic, ev.Level, ev.ZipCode, c.now()))
}

// AppendEvent writes ev. An event with the same keys is never overwritten.
func (c *Client) AppendEvent(ctx context.Context, ev domain.IntakeEvent) error {
	if ev.PK == "" || ev.SK == "" {
		return errors.New("repository: AppendEvent: PK and SK are required")
	}
	_, err := c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(c.tableName),
		Item:                eventItem(ev),
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	if err != nil {
		return fmt.Errorf("repository: AppendEvent: %w", err)
	}
	return nil
}

// ListEvents returns up to limit events for a session, oldest first.
// A limit of zero or less means no limit.
func (c *Client) ListEvents(ctx context.Context, sessionID string, limit int) ([]domain.IntakeEvent, error) {
	in := &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: intakePK(sessionID)},
			":prefix": &types.AttributeValueMemberS{Value: skPrefixEvent},
		},
		ScanIndexForward: aws.Bool(true),
	}
	if limit > 0 {
		in.Limit = aws.Int32(int32(min(limit, math.MaxInt32)))
	}

	var events []domain.IntakeEvent
	for {
		out, err := c.api.Query(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("repository: ListEvents query: %w", err)
		}
		for _, item := range out.Items {
			ev, err := itemToEvent(item)
			if err != nil {
				return nil, fmt.Errorf("repository: ListEvents unmarshal: %w", err)
			}
			events = append(events, ev)
		}
		if len(out.LastEvaluatedKey) == 0 || (limit > 0 && len(events) >= limit) {
			break
		}
		in.ExclusiveStartKey = out.LastEvaluatedKey
	}
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

func eventItem(ev domain.IntakeEvent) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"PK":         &types.AttributeValueMemberS{Value: ev.PK},
		"SK":         &types.AttributeValueMemberS{Value: ev.SK},
		"sessionId":  &types.AttributeValueMemberS{Value: ev.SessionID},
		"kind":       &types.AttributeValueMemberS{Value: string(ev.Kind)},
		"step":       &types.AttributeValueMemberS{Value: ev.Step},
		"occurredAt": &types.AttributeValueMemberS{Value: ev.OccurredAt},
		"ttl":        &types.AttributeValueMemberN{Value: strconv.FormatInt(ev.TTL, 10)},
	}
	if ev.Topic != "" {
		item["topic"] = &types.AttributeValueMemberS{Value: ev.Topic}
	}
	if ev.Level > 0 {
		item["level"] = &types.AttributeValueMemberN{Value: strconv.Itoa(ev.Level)}
	}
	if ev.ZipCode != "" {
		item["zip_code"] = &types.AttributeValueMemberS{Value: ev.ZipCode}
	}
	return item
}

func itemToEvent(item map[string]types.AttributeValue) (domain.IntakeEvent, error) {
	pk, err := strAttr(item, "PK")
	if err != nil {
		return domain.IntakeEvent{}, err
	}
	sk, err := strAttr(item, "SK")
	if err != nil {
		return domain.IntakeEvent{}, err
	}
	kind, err := strAttr(item, "kind")
	if err != nil {
		return domain.IntakeEvent{}, err
	}
	step, _ := strAttr(item, "step")
	sessionID, _ := strAttr(item, "sessionId")
	occurredAt, _ := strAttr(item, "occurredAt")
	topic, _ := strAttr(item, "topic")
	zip, _ := strAttr(item, "zip_code")

	ev := domain.IntakeEvent{
		PK:         pk,
		SK:         sk,
		SessionID:  sessionID,
		Kind:       domain.EventKind(kind),
		Step:       step,
		Topic:      topic,
		ZipCode:    zip,
		OccurredAt: occurredAt,
	}
	if ev.SessionID == "" {
		ev.SessionID = strings.TrimPrefix(pk, pkPrefixIntake)
	}
	if _, ok := item["level"]; ok {
		if ev.Level, err = intAttr(item, "level"); err != nil {
			return domain.IntakeEvent{}, err
		}
	}
	if _, ok := item["ttl"]; ok {
		ttl, err := intAttr(item, "ttl")
		if err != nil {
			return domain.IntakeEvent{}, err
		}
		ev.TTL = int64(ttl)
	}
	return ev, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
