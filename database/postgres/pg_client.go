package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/quarkid/vcsl-core/errs"
	"github.com/quarkid/vcsl-core/types"
	"github.com/quarkid/vcsl-core/util"
	"github.com/tendermint/tendermint/libs/log"
)

// Postgres : holds db connection info
type Postgres struct {
	DB     sql.DB
	Logger log.Logger
}

// NewPG : creates new postgres connection and tests it
func NewPG(user string, password string, host string, port string, dbName string, logger log.Logger) (*Postgres, error) {
	connStr := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
	return NewPGFromURI(connStr, logger)
}

func NewPGFromURI(connStr string, logger log.Logger) (*Postgres, error) {
	db, err := sql.Open("postgres", connStr)
	if util.LoggerError(logger, err) != nil {
		return nil, err
	}
	err = db.Ping()
	if util.LoggerError(logger, err) != nil {
		return nil, err
	}
	pg := &Postgres{
		DB:     *db,
		Logger: logger,
	}
	if err := pg.initSchema(); util.LoggerError(logger, err) != nil {
		return nil, err
	}
	return pg, nil
}

// UpsertIssuerUrl inserts a new issuer row or updates it on conflict. An
// empty txid stores NULL; the anchor id is recorded by calling again once
// the broadcast has succeeded.
func (pg *Postgres) UpsertIssuerUrl(issuerID string, url string, txid string) error {
	stmt := "INSERT INTO issuer_urls (issuer_id, url, txid, created_at, updated_at) " +
		"VALUES ($1, $2, $3, now(), now()) " +
		"ON CONFLICT (issuer_id) " +
		"DO UPDATE " +
		"SET " +
		"url = EXCLUDED.url, " +
		"txid = EXCLUDED.txid, " +
		"updated_at = now();"
	var anchor sql.NullString
	if txid != "" {
		anchor = sql.NullString{String: txid, Valid: true}
	}
	_, err := pg.DB.Exec(stmt, issuerID, url, anchor)
	if util.LoggerError(pg.Logger, err) != nil {
		return errs.Wrap(errs.Persistence, fmt.Sprintf("issuer url upsert for %s failed", issuerID), err)
	}
	return nil
}

// GetIssuerUrl : retrieve the url and optional anchor txid for an issuer
func (pg *Postgres) GetIssuerUrl(issuerID string) (types.IssuerRecord, error) {
	stmt := "SELECT url, txid FROM issuer_urls WHERE issuer_id = $1;"
	row := pg.DB.QueryRow(stmt, issuerID)
	var url string
	var anchor sql.NullString
	switch err := row.Scan(&url, &anchor); err {
	case sql.ErrNoRows:
		return types.IssuerRecord{}, errs.New(errs.NotFound, fmt.Sprintf("no issuer url for %s", issuerID))
	case nil:
		return types.IssuerRecord{
			IssuerID:   issuerID,
			Url:        url,
			AnchorTxID: anchor.String,
		}, nil
	default:
		util.LoggerError(pg.Logger, err)
		return types.IssuerRecord{}, errs.Wrap(errs.Persistence, fmt.Sprintf("issuer url query for %s failed", issuerID), err)
	}
}

// UpsertVcsl inserts or updates a VCSL row. The txid is mandatory here: a
// VCSL record only ever exists with the anchor that preceded it.
func (pg *Postgres) UpsertVcsl(id string, pointer string, txid string) error {
	stmt := "INSERT INTO vcsl_data (vcsl_id, ipns, txid, created_at, updated_at) " +
		"VALUES ($1, $2, $3, now(), now()) " +
		"ON CONFLICT (vcsl_id) " +
		"DO UPDATE " +
		"SET " +
		"ipns = EXCLUDED.ipns, " +
		"txid = EXCLUDED.txid, " +
		"updated_at = now();"
	_, err := pg.DB.Exec(stmt, id, pointer, txid)
	if util.LoggerError(pg.Logger, err) != nil {
		return errs.Wrap(errs.Persistence, fmt.Sprintf("vcsl upsert for %s failed", id), err)
	}
	return nil
}

// GetVcsl : retrieve the pointer and anchor txid for a VCSL id
func (pg *Postgres) GetVcsl(id string) (types.VcslRecord, error) {
	stmt := "SELECT ipns, txid FROM vcsl_data WHERE vcsl_id = $1;"
	row := pg.DB.QueryRow(stmt, id)
	var pointer, txid string
	switch err := row.Scan(&pointer, &txid); err {
	case sql.ErrNoRows:
		return types.VcslRecord{}, errs.New(errs.NotFound, fmt.Sprintf("no vcsl data for %s", id))
	case nil:
		return types.VcslRecord{
			VcslID:     id,
			Pointer:    pointer,
			AnchorTxID: txid,
		}, nil
	default:
		util.LoggerError(pg.Logger, err)
		return types.VcslRecord{}, errs.Wrap(errs.Persistence, fmt.Sprintf("vcsl query for %s failed", id), err)
	}
}
