package dynamo

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

// fakeTable keeps items per partition and answers reverse Queries a page at
// a time.
type fakeTable struct {
	items       map[string][]map[string]types.AttributeValue
	puts        []*dynamodb.PutItemInput
	queries     []*dynamodb.QueryInput
	pageSize    int
	putErr      error
	queryErr    error
	describeErr error
	status      types.TableStatus
}

func newFakeTable() *fakeTable {
	return &fakeTable{items: map[string][]map[string]types.AttributeValue{}, status: types.TableStatusActive}
}

func str(item map[string]types.AttributeValue, key string) string {
	if v, ok := item[key].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func (f *fakeTable) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.puts = append(f.puts, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	pk := str(in.Item, "pk")
	f.items[pk] = append(f.items[pk], in.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeTable) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queries = append(f.queries, in)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	pk := in.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value
	all := append([]map[string]types.AttributeValue(nil), f.items[pk]...)
	sort.Slice(all, func(i, j int) bool { return str(all[i], "sk") > str(all[j], "sk") })

	start := 0
	if in.ExclusiveStartKey != nil {
		after := str(in.ExclusiveStartKey, "sk")
		for start < len(all) && str(all[start], "sk") >= after {
			start++
		}
	}
	n := len(all) - start
	if f.pageSize > 0 && n > f.pageSize {
		n = f.pageSize
	}
	if in.Limit != nil && int(*in.Limit) < n {
		n = int(*in.Limit)
	}
	page := all[start : start+n]
	out := &dynamodb.QueryOutput{Items: page}
	if start+n < len(all) && n > 0 {
		last := page[n-1]
		out.LastEvaluatedKey = map[string]types.AttributeValue{"pk": last["pk"], "sk": last["sk"]}
	}
	return out, nil
}

func (f *fakeTable) DescribeTable(_ context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if f.describeErr != nil {
		return nil, f.describeErr
	}
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableName: in.TableName, TableStatus: f.status}}, nil
}

func steppingClock(start time.Time) *forms.Clock {
	next := start
	return forms.NewClock(func() time.Time {
		next = next.Add(time.Second)
		return next
	})
}

func newTestStore(t *testing.T, table *fakeTable) *Store {
	t.Helper()
	store := New(Config{
		Table:  "sshrobotics_forms",
		Client: table,
		Logger: logging.New("error"),
		Clock:  steppingClock(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, store.Initialize(context.Background()))
	return store
}

func TestInitializeRequiresClient(t *testing.T) {
	err := New(Config{Table: "forms"}).Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, forms.KindConfiguration, forms.KindOf(err))
}

func TestInitializeDescribeFailure(t *testing.T) {
	table := newFakeTable()
	table.describeErr = errors.New("ResourceNotFoundException")
	err := New(Config{Table: "forms", Client: table}).Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, forms.KindConnectivity, forms.KindOf(err))
}

func TestInitializeRejectsTableBeingCreated(t *testing.T) {
	table := newFakeTable()
	table.status = types.TableStatusCreating
	err := New(Config{Table: "forms", Client: table}).Initialize(context.Background())
	require.Error(t, err)
	assert.Equal(t, forms.KindConnectivity, forms.KindOf(err))
}

func TestInsertContactSubmissionWritesKeys(t *testing.T) {
	table := newFakeTable()
	store := newTestStore(t, table)
	store.newID = func() string { return "id-1" }

	rec, err := store.InsertContactSubmission(context.Background(), forms.ContactInput{
		FirstName:          "John",
		LastName:           "Doe",
		Email:              "john@example.com",
		ProjectType:        "Robotics Engineering",
		ProjectDescription: "Need a gripper",
	})
	require.NoError(t, err)
	assert.Equal(t, "id-1", rec.ID)

	require.Len(t, table.puts, 1)
	put := table.puts[0]
	assert.Equal(t, "sshrobotics_forms", aws.ToString(put.TableName))
	assert.Equal(t, "attribute_not_exists(pk)", aws.ToString(put.ConditionExpression))
	assert.Equal(t, "contact_submissions", str(put.Item, "pk"))
	assert.Equal(t, "2026-03-01T00:00:01.000000000Z#id-1", str(put.Item, "sk"))
	_, hasCompany := put.Item["company"]
	assert.False(t, hasCompany)
}

func TestCreatedAtIsNotBeforeCall(t *testing.T) {
	table := newFakeTable()
	store := New(Config{Table: "sshrobotics_forms", Client: table, Logger: logging.New("error")})
	require.NoError(t, store.Initialize(context.Background()))

	before := time.Now()
	rec, err := store.InsertServiceInquiry(context.Background(), forms.ServiceInquiryInput{ServiceType: forms.ServiceAutomation, Email: "ops@example.com"})
	require.NoError(t, err)
	assert.False(t, rec.CreatedAt.Before(before), "created_at %s precedes call at %s", rec.CreatedAt, before)

	items, err := store.ListServiceInquiries(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.False(t, items[0].CreatedAt.Before(before))
}

func TestListNewestFirstAcrossPages(t *testing.T) {
	table := newFakeTable()
	table.pageSize = 2
	store := newTestStore(t, table)
	ctx := context.Background()

	for _, st := range []forms.ServiceType{forms.ServiceRobotics, forms.ServiceAutomation, forms.ServiceElectronics, forms.ServiceRobotics, forms.ServiceAutomation} {
		_, err := store.InsertServiceInquiry(ctx, forms.ServiceInquiryInput{ServiceType: st, Email: "a@b.com"})
		require.NoError(t, err)
	}

	items, err := store.ListServiceInquiries(ctx, 4)
	require.NoError(t, err)
	require.Len(t, items, 4)
	for i := 1; i < len(items); i++ {
		assert.True(t, items[i-1].CreatedAt.After(items[i].CreatedAt))
	}
	assert.Equal(t, forms.ServiceAutomation, items[0].ServiceType)
	require.Len(t, table.queries, 2)
	assert.False(t, aws.ToBool(table.queries[0].ScanIndexForward))
	assert.Equal(t, int32(4), aws.ToInt32(table.queries[0].Limit))
	assert.Equal(t, int32(2), aws.ToInt32(table.queries[1].Limit))
}

func TestListEmptyPartition(t *testing.T) {
	store := newTestStore(t, newFakeTable())
	items, err := store.ListContactSubmissions(context.Background(), 500)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestStoreErrors(t *testing.T) {
	table := newFakeTable()
	store := newTestStore(t, table)
	table.putErr = errors.New("ProvisionedThroughputExceededException")
	table.queryErr = errors.New("AccessDeniedException")

	_, err := store.InsertServiceInquiry(context.Background(), forms.ServiceInquiryInput{ServiceType: forms.ServiceRobotics, Email: "a@b.com"})
	require.Error(t, err)
	assert.Equal(t, "Failed to submit service inquiry", forms.DetailOf(err))

	_, err = store.ListContactSubmissions(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, forms.KindStore, forms.KindOf(err))
	assert.Equal(t, "Failed to fetch contact submissions", forms.DetailOf(err))
}
