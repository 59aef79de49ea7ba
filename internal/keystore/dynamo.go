// Package keystore provides API key record lookup for the fallback
// credential path.
package keystore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"
	"github.com/samber/mo"

	"github.com/omarluq/cc-gate/internal/authz"
)

// hashIndexName is the GSI keyed on the salted key hash.
const hashIndexName = "ApiKeyValueHashIndex"

// DynamoAPI is the subset of the DynamoDB client the store needs.
type DynamoAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// keyItem is the stored shape of an API key record.
type keyItem struct {
	Username            string   `dynamodbav:"username"`
	APIKeyName          string   `dynamodbav:"api_key_name"`
	APIKeyValueHash     string   `dynamodbav:"api_key_value_hash"`
	ExpirationTimestamp *float64 `dynamodbav:"expiration_timestamp"`
}

// DynamoStore looks up key records in a DynamoDB table by salted hash,
// through the hash GSI. The raw key never reaches the store; only its hash
// is ever sent over the wire.
type DynamoStore struct {
	client DynamoAPI
	table  string
	log    zerolog.Logger
}

var _ authz.KeyStore = (*DynamoStore)(nil)

// NewDynamoStore creates a store reading the given table.
func NewDynamoStore(client DynamoAPI, table string, logger zerolog.Logger) *DynamoStore {
	return &DynamoStore{
		client: client,
		table:  table,
		log:    logger.With().Str("component", "keystore").Logger(),
	}
}

// QueryByHash returns the key record whose stored hash matches.
// Returns authz.ErrKeyNotFound when no record matches, and an error
// wrapping authz.ErrStoreLookupFailed on store faults.
func (s *DynamoStore) QueryByHash(ctx context.Context, hash string) (authz.KeyRecord, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		IndexName:              aws.String(hashIndexName),
		KeyConditionExpression: aws.String("api_key_value_hash = :hash_value"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":hash_value": &types.AttributeValueMemberS{Value: hash},
		},
	})
	if err != nil {
		return authz.KeyRecord{}, fmt.Errorf("%w: %w", authz.ErrStoreLookupFailed, err)
	}

	if len(out.Items) == 0 {
		return authz.KeyRecord{}, authz.ErrKeyNotFound
	}
	if len(out.Items) > 1 {
		// Hash collisions across records should not happen; flag and take
		// the first match.
		s.log.Warn().Int("matches", len(out.Items)).Msg("multiple key records share one hash")
	}

	var item keyItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return authz.KeyRecord{}, fmt.Errorf("%w: unmarshal record: %w", authz.ErrStoreLookupFailed, err)
	}

	record := authz.KeyRecord{
		Owner:     item.Username,
		KeyName:   item.APIKeyName,
		ValueHash: item.APIKeyValueHash,
	}
	if item.ExpirationTimestamp != nil {
		record.ExpiresAt = mo.Some(*item.ExpirationTimestamp)
	}
	return record, nil
}
