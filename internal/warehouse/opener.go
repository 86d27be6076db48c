package warehouse

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	dbsql "github.com/databricks/databricks-sql-go"

	"github.com/djlord-it/checkerhub/internal/config"
)

const databricksPort = 443

// Opener yields a fresh handle for a single statement. The caller closes it.
type Opener interface {
	Open(ctx context.Context) (*sql.DB, error)
}

// ConnectorOpener opens a single-connection *sql.DB over a driver.Connector.
type ConnectorOpener struct {
	connector driver.Connector
}

func NewConnectorOpener(c driver.Connector) *ConnectorOpener {
	return &ConnectorOpener{connector: c}
}

func (o *ConnectorOpener) Open(ctx context.Context) (*sql.DB, error) {
	db := sql.OpenDB(o.connector)
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect: %w", err)
	}
	return db, nil
}

// DatabricksOpener connects to the SQL warehouse named by SERVER_HOST and HTTP_PATH.
func DatabricksOpener(cfg config.Config) (*ConnectorOpener, error) {
	connector, err := dbsql.NewConnector(
		dbsql.WithServerHostname(cfg.ServerHost),
		dbsql.WithPort(databricksPort),
		dbsql.WithHTTPPath(cfg.HTTPPath),
		dbsql.WithAccessToken(cfg.Token),
	)
	if err != nil {
		return nil, fmt.Errorf("databricks connector: %w", err)
	}
	return NewConnectorOpener(connector), nil
}
