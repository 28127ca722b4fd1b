package postgres

var issuerUrlsSchema = `
CREATE TABLE IF NOT EXISTS issuer_urls (
    issuer_id character varying(255) NOT NULL PRIMARY KEY,
    url text NOT NULL,
    txid character varying(64),
    created_at timestamp with time zone NOT NULL,
    updated_at timestamp with time zone NOT NULL
);
`

var vcslDataSchema = `
CREATE TABLE IF NOT EXISTS vcsl_data (
    vcsl_id character varying(255) NOT NULL PRIMARY KEY,
    ipns text NOT NULL,
    txid character varying(64) NOT NULL,
    created_at timestamp with time zone NOT NULL,
    updated_at timestamp with time zone NOT NULL
);
`

// initSchema creates the two tables if this is a fresh database
func (pg *Postgres) initSchema() error {
	for _, schema := range []string{issuerUrlsSchema, vcslDataSchema} {
		if _, err := pg.DB.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}
