package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/infrastructure/persistence/sqlite"
)

const clientColumns = `id, full_name, phone_number, id_number, email, address, created_at`

// ClientRepository implements port.ClientRepository
type ClientRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *sql.DB, logger *zap.Logger) *ClientRepository {
	return &ClientRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a client and sets its ID
func (r *ClientRepository) Create(ctx context.Context, client *entity.Client) error {
	query := `
		INSERT INTO clients (full_name, phone_number, id_number, email, address, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	if client.CreatedAt.IsZero() {
		client.CreatedAt = time.Now().UTC()
	}

	result, err := sqlite.Conn(ctx, r.db).ExecContext(ctx, query,
		client.FullName,
		client.PhoneNumber,
		client.IDNumber,
		client.Email,
		client.Address,
		client.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create client", zap.String("full_name", client.FullName), zap.Error(err))
		return fmt.Errorf("failed to create client: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	client.ID = id
	return nil
}

// GetByID retrieves a client, or port.ErrNotFound
func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

	client, err := scanClient(sqlite.Conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("client %d: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get client", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	return client, nil
}

// List retrieves clients newest first
func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY id DESC LIMIT ? OFFSET ?`
	return r.query(ctx, query, limit, offset)
}

// ListAll retrieves every client in insertion order
func (r *ClientRepository) ListAll(ctx context.Context) ([]*entity.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY id ASC`
	return r.query(ctx, query)
}

func (r *ClientRepository) query(ctx context.Context, query string, args ...interface{}) ([]*entity.Client, error) {
	rows, err := sqlite.Conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list clients", zap.Error(err))
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := []*entity.Client{}
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

func scanClient(row rowScanner) (*entity.Client, error) {
	var c entity.Client
	if err := row.Scan(&c.ID, &c.FullName, &c.PhoneNumber, &c.IDNumber, &c.Email, &c.Address, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

var _ port.ClientRepository = (*ClientRepository)(nil)
