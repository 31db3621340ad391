// Package dynamostore implements the edge log on Amazon DynamoDB.
//
// Table layout:
//
//	primary key     (source HASH, edgeKey RANGE)
//	secondary index (destination HASH, edgeKey RANGE), projecting all attributes
//
// Table and index provisioning are not handled here.
package dynamostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/roach88/insignia/internal/graph"
)

// Attribute names of the stored items.
const (
	attrSource      = "source"
	attrDestination = "destination"
	attrEdgeKey     = "edgeKey"
)

// API is the subset of the DynamoDB client used by the store.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Config names the table and index and, for Connect, where to reach them.
type Config struct {
	Table    string
	Index    string
	Region   string
	Endpoint string // optional override, e.g. a local DynamoDB
}

// Store is a DynamoDB-backed edge store.
type Store struct {
	client API
	table  string
	index  string
}

// item is the stored form of one edge.
type item struct {
	Source      string `dynamodbav:"source"`
	Destination string `dynamodbav:"destination"`
	EdgeKey     string `dynamodbav:"edgeKey"`
	Payload     string `dynamodbav:"payload,omitempty"`
}

// New creates a store over an existing client.
func New(client API, cfg Config) (*Store, error) {
	if client == nil {
		return nil, errors.New("dynamodb client is required")
	}
	if cfg.Table == "" || cfg.Index == "" {
		return nil, errors.New("dynamodb table and index names are required")
	}
	return &Store{client: client, table: cfg.Table, index: cfg.Index}, nil
}

// Connect loads the default AWS configuration and creates a store.
func Connect(ctx context.Context, cfg Config) (*Store, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return New(client, cfg)
}

// Close is a no-op; the HTTP client needs no teardown.
func (s *Store) Close() error {
	return nil
}

// PutEdge unconditionally writes the item keyed by (source, edgeKey).
func (s *Store) PutEdge(ctx context.Context, edge graph.Edge) error {
	payload, err := graph.MarshalPayload(edge.Payload)
	if err != nil {
		return fmt.Errorf("put edge: %w", err)
	}

	av, err := attributevalue.MarshalMap(item{
		Source:      edge.Source,
		Destination: edge.Destination,
		EdgeKey:     edge.Key,
		Payload:     string(payload),
	})
	if err != nil {
		return fmt.Errorf("put edge: marshal item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("put edge: %w", err)
	}
	return nil
}

// QueryBySource queries the table by source, optionally restricted to edge
// keys beginning with keyPrefix.
func (s *Store) QueryBySource(ctx context.Context, source, keyPrefix string) ([]graph.Edge, error) {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(s.table),
		KeyConditionExpression:   aws.String("#hash = :hash"),
		ExpressionAttributeNames: map[string]string{"#hash": attrSource},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":hash": &types.AttributeValueMemberS{Value: source},
		},
		ConsistentRead: aws.Bool(false),
	}
	if keyPrefix != "" {
		input.KeyConditionExpression = aws.String("#hash = :hash AND begins_with(#range, :prefix)")
		input.ExpressionAttributeNames["#range"] = attrEdgeKey
		input.ExpressionAttributeValues[":prefix"] = &types.AttributeValueMemberS{Value: keyPrefix}
	}

	edges, err := s.query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query by source: %w", err)
	}
	return edges, nil
}

// QueryByDestination queries the secondary index by destination.
func (s *Store) QueryByDestination(ctx context.Context, destination string) ([]graph.Edge, error) {
	input := &dynamodb.QueryInput{
		TableName:                aws.String(s.table),
		IndexName:                aws.String(s.index),
		KeyConditionExpression:   aws.String("#hash = :hash"),
		ExpressionAttributeNames: map[string]string{"#hash": attrDestination},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":hash": &types.AttributeValueMemberS{Value: destination},
		},
	}

	edges, err := s.query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query by destination: %w", err)
	}
	return edges, nil
}

// query runs input to exhaustion, following LastEvaluatedKey.
func (s *Store) query(ctx context.Context, input *dynamodb.QueryInput) ([]graph.Edge, error) {
	edges := []graph.Edge{}
	for {
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, err
		}

		for _, av := range out.Items {
			var it item
			if err := attributevalue.UnmarshalMap(av, &it); err != nil {
				return nil, fmt.Errorf("unmarshal item: %w", err)
			}
			payload, err := graph.UnmarshalPayload([]byte(it.Payload))
			if err != nil {
				return nil, fmt.Errorf("item %q: %w", it.EdgeKey, err)
			}
			edges = append(edges, graph.Edge{
				Source:      it.Source,
				Destination: it.Destination,
				Key:         it.EdgeKey,
				Payload:     payload,
			})
		}

		if len(out.LastEvaluatedKey) == 0 {
			return edges, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}
