package database

import (
	"context"
	"errors"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/wolfman30/sshrobotics-web/internal/config"
	"github.com/wolfman30/sshrobotics-web/internal/database/dynamo"
	"github.com/wolfman30/sshrobotics-web/internal/database/localapi"
	"github.com/wolfman30/sshrobotics-web/internal/database/pocketbase"
	"github.com/wolfman30/sshrobotics-web/internal/database/sqlitestore"
	"github.com/wolfman30/sshrobotics-web/internal/database/supabase"
	"github.com/wolfman30/sshrobotics-web/internal/forms"
	"github.com/wolfman30/sshrobotics-web/pkg/logging"
)

// ErrUnsupportedKind is returned when asked to build an unknown backend.
var ErrUnsupportedKind = errors.New("unsupported database type")

// Dependencies are the shared clients backends are built from.
type Dependencies struct {
	HTTPClient *http.Client
	// AWS is required only for the dynamodb backend.
	AWS    *aws.Config
	Logger *logging.Logger
}

// NewStore builds the uninitialized Store for kind from application config.
func NewStore(kind Kind, cfg *config.Config, deps Dependencies) (Store, error) {
	if cfg == nil {
		return nil, forms.ConfigurationError("database: config required", nil)
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Default()
	}

	switch kind {
	case KindSQLiteAPI:
		return localapi.New(localapi.Config{
			BaseURL:    cfg.SQLiteAPIURL,
			HTTPClient: deps.HTTPClient,
			Timeout:    cfg.HTTPClientTimeout,
			Logger:     logger,
		}), nil
	case KindSupabase:
		return supabase.New(supabase.Config{
			DatabaseURL: cfg.SupabaseDBURL,
			Logger:      logger,
		}), nil
	case KindPocketBase:
		return pocketbase.New(pocketbase.Config{
			BaseURL:    cfg.PocketBaseURL,
			HTTPClient: deps.HTTPClient,
			Timeout:    cfg.HTTPClientTimeout,
			Logger:     logger,
		}), nil
	case KindSQLiteFile:
		return sqlitestore.New(sqlitestore.Config{
			Path:   cfg.DBPath,
			Logger: logger,
		}), nil
	case KindDynamoDB:
		dcfg := dynamo.Config{Table: cfg.DynamoDBTable, Logger: logger}
		if deps.AWS != nil {
			dcfg.Client = dynamodb.NewFromConfig(*deps.AWS)
		}
		return dynamo.New(dcfg), nil
	}
	return nil, forms.ConfigurationError("Unsupported database type: "+string(kind), ErrUnsupportedKind)
}

// ConfigBuilder returns a Builder that constructs stores from cfg and deps.
func ConfigBuilder(cfg *config.Config, deps Dependencies) Builder {
	return func(_ context.Context, kind Kind) (Store, error) {
		return NewStore(kind, cfg, deps)
	}
}
