// Package dynamodb archives payroll snapshots to a single DynamoDB table.
package dynamodb

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awsv2xray "github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"

	"backoffice-api/internal/domain"
)

// API is the subset of the DynamoDB client used by the archive.
type API interface {
	PutItem(ctx context.Context, params *awsv2dynamodb.PutItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *awsv2dynamodb.GetItemInput, optFns ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.GetItemOutput, error)
}

type Client struct {
	db        API
	tableName string
}

func NewClient(ctx context.Context, region, tableName string) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	awsv2xray.AWSV2Instrumentor(&cfg.APIOptions)
	return &Client{db: awsv2dynamodb.NewFromConfig(cfg), tableName: tableName}, nil
}

func NewClientWithAPI(api API, tableName string) *Client {
	return &Client{db: api, tableName: tableName}
}

const dateLayout = "2006-01-02"

func snapshotPK(date time.Time) string { return "SNAPSHOT#" + date.UTC().Format(dateLayout) }
func snapshotSK() string               { return "META" }

type snapshotItem struct {
	PK               string         `dynamodbav:"PK"`
	SK               string         `dynamodbav:"SK"`
	EntityType       string         `dynamodbav:"EntityType"`
	Date             string         `dynamodbav:"Date"`
	Headcount        int            `dynamodbav:"Headcount"`
	TotalBasicSalary float64        `dynamodbav:"TotalBasicSalary"`
	ByContractType   map[string]int `dynamodbav:"ByContractType"`
	GeneratedAt      string         `dynamodbav:"GeneratedAt"`
}

type SnapshotArchive struct{ client *Client }

func NewSnapshotArchive(client *Client) *SnapshotArchive {
	return &SnapshotArchive{client: client}
}

// Put writes the snapshot for its date, replacing an earlier run of the same
// day.
func (a *SnapshotArchive) Put(ctx context.Context, s domain.PayrollSnapshot) error {
	av, err := attributevalue.MarshalMap(snapshotItem{
		PK:               snapshotPK(s.Date),
		SK:               snapshotSK(),
		EntityType:       "PAYROLL_SNAPSHOT",
		Date:             s.Date.UTC().Format(dateLayout),
		Headcount:        s.Headcount,
		TotalBasicSalary: s.TotalBasicSalary,
		ByContractType:   s.ByContractType,
		GeneratedAt:      s.GeneratedAt.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutSnapshot", func(ctx context.Context) error {
		_, err := a.client.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName: aws.String(a.client.tableName),
			Item:      av,
		})
		return err
	})
}

func (a *SnapshotArchive) Get(ctx context.Context, date time.Time) (domain.PayrollSnapshot, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetSnapshot", func(ctx context.Context) error {
		var e error
		out, e = a.client.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName: aws.String(a.client.tableName),
			Key: map[string]awsv2types.AttributeValue{
				"PK": &awsv2types.AttributeValueMemberS{Value: snapshotPK(date)},
				"SK": &awsv2types.AttributeValueMemberS{Value: snapshotSK()},
			},
		})
		return e
	})
	if err != nil {
		return domain.PayrollSnapshot{}, err
	}
	if out == nil || out.Item == nil {
		return domain.PayrollSnapshot{}, domain.ErrNotFound
	}
	var raw snapshotItem
	if err := attributevalue.UnmarshalMap(out.Item, &raw); err != nil {
		return domain.PayrollSnapshot{}, err
	}
	day, err := time.Parse(dateLayout, raw.Date)
	if err != nil {
		return domain.PayrollSnapshot{}, errors.Join(domain.ErrInvalidInput, err)
	}
	generatedAt, _ := time.Parse(time.RFC3339, raw.GeneratedAt)
	return domain.PayrollSnapshot{
		Date:             day,
		Headcount:        raw.Headcount,
		TotalBasicSalary: raw.TotalBasicSalary,
		ByContractType:   raw.ByContractType,
		GeneratedAt:      generatedAt,
	}, nil
}
