package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lucsky/cuid"

	"github.com/autosocial/modbot/database/db"
	"github.com/autosocial/modbot/model"
)

type Database struct {
	connString string
	pool       *pgxpool.Pool
}

func NewDatabase(connString string) *Database {
	return &Database{
		connString: connString,
	}
}

func (d *Database) Connect(ctx context.Context) error {
	var err error
	d.pool, err = pgxpool.New(ctx, d.connString)
	if err != nil {
		return err
	}
	return nil
}

func (d *Database) Disconnect() {
	d.pool.Close()
}

/*
GetActiveKnowledge fetches every active knowledge snippet and joins them into
a single context blob for the classifier, one "- [tone] content" line per
snippet. Snippet order is insignificant. Returns "" when nothing is active.
*/
func (d *Database) GetActiveKnowledge(ctx context.Context) (string, error) {
	rows, err := d.pool.Query(ctx, `
	SELECT
		id,
		content,
		tone,
		is_active
	FROM knowledge_base
	WHERE is_active = true`,
	)
	if err != nil {
		return "", err
	}

	snippets, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.KnowledgeSnippet])
	if err != nil {
		return "", err
	}

	lines := make([]string, 0, len(snippets))
	for _, snippet := range snippets {
		tone := snippet.Tone
		if tone == "" {
			tone = "Neutral"
		}
		lines = append(lines, fmt.Sprintf("- [%s] %s", tone, snippet.Content))
	}
	return strings.Join(lines, "\n"), nil
}

/*
GetAccountCredentials finds the connected account matching a platform and the
platform's id for the receiving page/channel. Returns (nil, nil) when no
account matches; the caller treats that as "act in audit-only mode", not as
an error. If more than one row matches (which data entry should prevent), the
lowest id wins so the pick is at least deterministic.
*/
func (d *Database) GetAccountCredentials(ctx context.Context, platform model.Platform, platformID string) (*model.SocialAccount, error) {
	rows, err := d.pool.Query(ctx, `
	SELECT
		id,
		platform,
		platform_id,
		access_token,
		name
	FROM social_accounts
	WHERE platform = $1
	  AND platform_id = $2
	ORDER BY id
	LIMIT 1`,
		platform,
		platformID,
	)
	if err != nil {
		return nil, err
	}

	raws, err := pgx.CollectRows(rows, pgx.RowToStructByName[db.SocialAccount])
	if err != nil {
		return nil, err
	}
	if len(raws) == 0 {
		return nil, nil
	}

	return model.SocialAccountFromRow(raws[0])
}

/*
UpsertInteraction writes the audit record for one processed event, keyed by
external_id so a redelivered webhook overwrites the existing row instead of
duplicating it. The timestamp comes from now() on the database server, not
from the caller, so log ordering survives clock skew between app instances.
*/
func (d *Database) UpsertInteraction(ctx context.Context, entry model.Interaction) error {
	// don't really care about the result, as long as this succeeds
	_, err := d.pool.Exec(ctx, `
	INSERT INTO interaction_log (id, external_id, platform, author, text, status, is_abusive, ai_reply, processing_time_ms, timestamp)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
	ON CONFLICT (external_id) DO UPDATE SET
		platform = EXCLUDED.platform,
		author = EXCLUDED.author,
		text = EXCLUDED.text,
		status = EXCLUDED.status,
		is_abusive = EXCLUDED.is_abusive,
		ai_reply = EXCLUDED.ai_reply,
		processing_time_ms = EXCLUDED.processing_time_ms,
		timestamp = now()`,
		cuid.New(),
		entry.ExternalID,
		entry.Platform,
		entry.Author,
		entry.Text,
		entry.Status,
		entry.IsAbusive,
		entry.AIReply,
		entry.ProcessingTimeMs,
	)
	if err != nil {
		return err
	}
	return nil
}

// SeedKnowledge inserts a default snippet when the knowledge base is empty,
// so a fresh install has something to ground replies on.
func (d *Database) SeedKnowledge(ctx context.Context) (bool, error) {
	var count int
	err := d.pool.QueryRow(ctx, `SELECT count(*) FROM knowledge_base`).Scan(&count)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	_, err = d.pool.Exec(ctx, `
	INSERT INTO knowledge_base (id, content, tone, is_active) VALUES ($1, $2, $3, $4)`,
		cuid.New(),
		"We are a friendly company. Our support email is help@autosocial.com.",
		"Helpful",
		true,
	)
	if err != nil {
		return false, err
	}
	return true, nil
}
