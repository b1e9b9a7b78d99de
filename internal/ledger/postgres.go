package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kiris-store/checkout-bot/internal/domain"
)

// PostgresStore is the SQL-backed ledger implementation.
type PostgresStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgresStore creates a ledger store over the given database handle.
func NewPostgresStore(db *sql.DB, log *slog.Logger) *PostgresStore {
	if log == nil {
		log = slog.Default()
	}

	return &PostgresStore{
		db:  db,
		log: log,
	}
}

// Append inserts one claim row and fills in its assigned id.
func (s *PostgresStore) Append(ctx context.Context, claim *Claim) error {
	if claim.Timestamp.IsZero() {
		claim.Timestamp = time.Now().UTC()
	}

	const query = `
		INSERT INTO claims (
			ts, order_backend_url, order_number, order_total_local, rate,
			order_total_usd, amount_due_usd, transaction_hash, network,
			wallet_address, txn_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		claim.Timestamp,
		claim.OrderBackendURL,
		claim.OrderNumber,
		claim.OrderTotalLocal,
		claim.Rate,
		claim.OrderTotalUSD,
		claim.AmountDueUSD,
		claim.TransactionHash,
		string(claim.Network),
		claim.WalletAddress,
		string(claim.TxnStatus),
	).Scan(&claim.ID)
	if err != nil {
		s.log.Error("failed to append claim",
			slog.String("order_number", claim.OrderNumber),
			slog.Any("error", err),
		)
		return fmt.Errorf("append claim: %w", err)
	}

	return nil
}

// ListUnapproved returns pending claims in insertion order.
func (s *PostgresStore) ListUnapproved(ctx context.Context) ([]Claim, error) {
	const query = `
		SELECT id, ts, order_backend_url, order_number, order_total_local, rate,
			order_total_usd, amount_due_usd, transaction_hash, network,
			wallet_address, txn_status
		FROM claims
		WHERE txn_status <> 'Approved'
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list unapproved claims: %w", err)
	}
	defer rows.Close()

	var claims []Claim
	for rows.Next() {
		var (
			claim   Claim
			network string
			status  string
		)
		if err := rows.Scan(
			&claim.ID,
			&claim.Timestamp,
			&claim.OrderBackendURL,
			&claim.OrderNumber,
			&claim.OrderTotalLocal,
			&claim.Rate,
			&claim.OrderTotalUSD,
			&claim.AmountDueUSD,
			&claim.TransactionHash,
			&network,
			&claim.WalletAddress,
			&status,
		); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}

		claim.Network = domain.Network(network)
		claim.TxnStatus = Status(status)
		claims = append(claims, claim)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claims: %w", err)
	}

	return claims, nil
}

// SetStatus updates one claim's status keyed by its stable id.
func (s *PostgresStore) SetStatus(ctx context.Context, id int64, status Status) error {
	const query = `UPDATE claims SET txn_status = $2 WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("set claim status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("set claim status: %w", err)
	}
	if affected == 0 {
		return ErrClaimNotFound
	}

	return nil
}

// HealthCheck verifies database connectivity for the readiness probe.
func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
