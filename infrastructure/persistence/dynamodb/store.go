// Package dynamodb persists activities and insights in a single DynamoDB
// table.
package dynamodb

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "insights-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

// Client is the subset of the DynamoDB API the repositories use
type Client interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ConnectFunc opens a client
type ConnectFunc func(ctx context.Context) (Client, error)

// StoreConfig names the table and its indexes
type StoreConfig struct {
	Region          string
	TableName       string
	Endpoint        string
	TimeIndexName   string
	StatusIndexName string
}

// Store owns the lazily opened client. The first caller connects; later
// callers reuse the handle. A failed connect is not remembered.
type Store struct {
	cfg     StoreConfig
	connect ConnectFunc
	logger  *zap.Logger

	mu     sync.Mutex
	client Client
}

// NewStore creates a store that connects with the default AWS credential chain
func NewStore(cfg StoreConfig, logger *zap.Logger) *Store {
	return NewStoreWithConnect(cfg, awsConnect(cfg), logger)
}

// NewStoreWithConnect creates a store with a custom connect function
func NewStoreWithConnect(cfg StoreConfig, connect ConnectFunc, logger *zap.Logger) *Store {
	return &Store{cfg: cfg, connect: connect, logger: logger}
}

func awsConnect(cfg StoreConfig) ConnectFunc {
	return func(ctx context.Context) (Client, error) {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
			}
		}), nil
	}
}

// Client returns the connected client, connecting on first use
func (s *Store) Client(ctx context.Context) (Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}

	client, err := s.connect(ctx)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("connect", err)
	}
	if _, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.cfg.TableName),
	}); err != nil {
		return nil, pkgerrors.NewDatabaseError("connect", err)
	}

	s.logger.Info("Connected to DynamoDB",
		zap.String("table", s.cfg.TableName),
		zap.String("region", s.cfg.Region),
	)
	s.client = client
	return client, nil
}

// Connected reports whether a client has been opened
func (s *Store) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// Ping connects if needed and checks the table is reachable
func (s *Store) Ping(ctx context.Context) error {
	client, err := s.Client(ctx)
	if err != nil {
		return err
	}
	if _, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.cfg.TableName),
	}); err != nil {
		return pkgerrors.NewDatabaseError("describe_table", err)
	}
	return nil
}

// TableName returns the configured table
func (s *Store) TableName() string {
	return s.cfg.TableName
}
