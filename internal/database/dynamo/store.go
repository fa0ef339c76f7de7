// Package dynamo stores form submissions in a single DynamoDB table.
//
// Items are partitioned by resource name ("contact_submissions" or
// "service_inquiries") and sorted by a fixed-width UTC timestamp followed by
// the record id, so a reverse Query returns the newest records first.
package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

const (
	contactPartition = "contact_submissions"
	inquiryPartition = "service_inquiries"

	sortKeyLayout = "2006-01-02T15:04:05.000000000Z"
)

// API is the subset of the DynamoDB client the store uses.
type API interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	DescribeTable(context.Context, *dynamodb.DescribeTableInput, ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Config holds the table settings.
type Config struct {
	Table  string
	Client API
	Logger *logging.Logger
	Clock  *forms.Clock
}

// Store is a database.Store backed by DynamoDB.
type Store struct {
	table  string
	client API
	logger *logging.Logger
	clock  *forms.Clock
	newID  func() string
}

// New creates a Store. Configuration is checked by Initialize.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = forms.NewClock(nil)
	}
	return &Store{
		table:  strings.TrimSpace(cfg.Table),
		client: cfg.Client,
		logger: logger,
		clock:  clock,
		newID:  uuid.NewString,
	}
}

type contactItem struct {
	PK                 string `dynamodbav:"pk"`
	SK                 string `dynamodbav:"sk"`
	ID                 string `dynamodbav:"id"`
	FirstName          string `dynamodbav:"first_name"`
	LastName           string `dynamodbav:"last_name"`
	Email              string `dynamodbav:"email"`
	Company            string `dynamodbav:"company,omitempty"`
	ProjectType        string `dynamodbav:"project_type"`
	ProjectDescription string `dynamodbav:"project_description"`
	CreatedAt          string `dynamodbav:"created_at"`
}

type inquiryItem struct {
	PK          string `dynamodbav:"pk"`
	SK          string `dynamodbav:"sk"`
	ID          string `dynamodbav:"id"`
	ServiceType string `dynamodbav:"service_type"`
	Email       string `dynamodbav:"email"`
	Name        string `dynamodbav:"name,omitempty"`
	Message     string `dynamodbav:"message,omitempty"`
	CreatedAt   string `dynamodbav:"created_at"`
}

func sortKey(createdAt time.Time, id string) string {
	return createdAt.UTC().Format(sortKeyLayout) + "#" + id
}

func parseTime(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// Initialize checks that the table exists and is reachable.
func (s *Store) Initialize(ctx context.Context) error {
	if s.client == nil {
		return forms.ConfigurationError("Missing AWS configuration for DynamoDB", nil)
	}
	if s.table == "" {
		return forms.ConfigurationError("Missing DynamoDB table name", nil)
	}
	out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err != nil {
		return forms.ConnectivityError("DynamoDB database initialization failed", err)
	}
	if out.Table != nil && out.Table.TableStatus != "" && out.Table.TableStatus != types.TableStatusActive && out.Table.TableStatus != types.TableStatusUpdating {
		return forms.ConnectivityError("DynamoDB database initialization failed", fmt.Errorf("table %s is %s", s.table, out.Table.TableStatus))
	}
	s.logger.Info("DynamoDB database initialized", "table", s.table)
	return nil
}

func (s *Store) put(ctx context.Context, item any) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("dynamo: marshal item: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(pk)"),
	})
	return err
}

func (s *Store) InsertContactSubmission(ctx context.Context, in forms.ContactInput) (*forms.ContactSubmission, error) {
	if s.client == nil {
		return nil, forms.ConfigurationError("Database not initialized. Call Initialize first.", forms.ErrNotInitialized)
	}
	rec := in.Record(s.newID(), s.clock.Next())
	item := contactItem{
		PK:                 contactPartition,
		SK:                 sortKey(rec.CreatedAt, rec.ID),
		ID:                 rec.ID,
		FirstName:          rec.FirstName,
		LastName:           rec.LastName,
		Email:              rec.Email,
		Company:            rec.Company,
		ProjectType:        rec.ProjectType,
		ProjectDescription: rec.ProjectDescription,
		CreatedAt:          rec.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := s.put(ctx, item); err != nil {
		return nil, forms.StoreError("Failed to submit contact form", err)
	}
	return &rec, nil
}

func (s *Store) InsertServiceInquiry(ctx context.Context, in forms.ServiceInquiryInput) (*forms.ServiceInquiry, error) {
	if s.client == nil {
		return nil, forms.ConfigurationError("Database not initialized. Call Initialize first.", forms.ErrNotInitialized)
	}
	rec := in.Record(s.newID(), s.clock.Next())
	item := inquiryItem{
		PK:          inquiryPartition,
		SK:          sortKey(rec.CreatedAt, rec.ID),
		ID:          rec.ID,
		ServiceType: string(rec.ServiceType),
		Email:       rec.Email,
		Name:        rec.Name,
		Message:     rec.Message,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339Nano),
	}
	if err := s.put(ctx, item); err != nil {
		return nil, forms.StoreError("Failed to submit service inquiry", err)
	}
	return &rec, nil
}

// query reads a partition newest first, following LastEvaluatedKey until
// limit items are collected.
func (s *Store) query(ctx context.Context, partition string, limit int) ([]map[string]types.AttributeValue, error) {
	var (
		out      []map[string]types.AttributeValue
		startKey map[string]types.AttributeValue
	)
	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			KeyConditionExpression: aws.String("pk = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: partition},
			},
			ScanIndexForward:  aws.Bool(false),
			ExclusiveStartKey: startKey,
		}
		if limit > 0 {
			input.Limit = aws.Int32(int32(limit - len(out)))
		}
		resp, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}
		out = append(out, resp.Items...)
		if len(resp.LastEvaluatedKey) == 0 || (limit > 0 && len(out) >= limit) {
			break
		}
		startKey = resp.LastEvaluatedKey
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListContactSubmissions(ctx context.Context, limit int) ([]forms.ContactSubmission, error) {
	if s.client == nil {
		return nil, forms.ConfigurationError("Database not initialized. Call Initialize first.", forms.ErrNotInitialized)
	}
	raw, err := s.query(ctx, contactPartition, limit)
	if err != nil {
		return nil, forms.StoreError("Failed to fetch contact submissions", err)
	}
	var items []contactItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, forms.StoreError("Failed to fetch contact submissions", err)
	}
	out := make([]forms.ContactSubmission, 0, len(items))
	for _, it := range items {
		out = append(out, forms.ContactSubmission{
			ID:                 it.ID,
			FirstName:          it.FirstName,
			LastName:           it.LastName,
			Email:              it.Email,
			Company:            it.Company,
			ProjectType:        it.ProjectType,
			ProjectDescription: it.ProjectDescription,
			CreatedAt:          parseTime(it.CreatedAt),
		})
	}
	return out, nil
}

func (s *Store) ListServiceInquiries(ctx context.Context, limit int) ([]forms.ServiceInquiry, error) {
	if s.client == nil {
		return nil, forms.ConfigurationError("Database not initialized. Call Initialize first.", forms.ErrNotInitialized)
	}
	raw, err := s.query(ctx, inquiryPartition, limit)
	if err != nil {
		return nil, forms.StoreError("Failed to fetch service inquiries", err)
	}
	var items []inquiryItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, forms.StoreError("Failed to fetch service inquiries", err)
	}
	out := make([]forms.ServiceInquiry, 0, len(items))
	for _, it := range items {
		out = append(out, forms.ServiceInquiry{
			ID:          it.ID,
			ServiceType: forms.ServiceType(it.ServiceType),
			Email:       it.Email,
			Name:        it.Name,
			Message:     it.Message,
			CreatedAt:   parseTime(it.CreatedAt),
		})
	}
	return out, nil
}

// Close is a no-op; the SDK client is shared.
func (s *Store) Close() error {
	return nil
}
