package repository

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/contact-finder/internal/entity"
)

// ErrContactNotFound is returned when no contact matches the lookup.
var ErrContactNotFound = errors.New("contact not found")

//go:embed schema.sql
var schemaSQL string

// pgxPool is satisfied by *pgxpool.Pool and by the reconnecting database handle.
type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ContactsRepository describes persistence operations for contact records.
type ContactsRepository interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, contact *entity.Contact) (*entity.Contact, error)
	FindByID(ctx context.Context, id int64) (*entity.Contact, error)
	FindByURL(ctx context.Context, url string) (*entity.Contact, error)
	TextSearch(ctx context.Context, query string, limit int) ([]entity.Contact, error)
	SubstringSearch(ctx context.Context, query string, limit int) ([]entity.Contact, error)
}

// PGXContactsRepository implements ContactsRepository using pgx.
type PGXContactsRepository struct {
	pool pgxPool
}

// NewPGXContactsRepository wires a pgx backed repository.
func NewPGXContactsRepository(pool pgxPool) *PGXContactsRepository {
	return &PGXContactsRepository{pool: pool}
}

const contactColumns = `id, url, company_commercial_name, company_legal_name, company_all_available_names,
        phones, socials, address, latitude, longitude, success, error, created_at, updated_at`

// EnsureSchema creates the contacts table and its text index when missing.
func (r *PGXContactsRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range strings.Split(schemaSQL, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts or replaces the contact keyed by url and returns the stored
// row. The id and created_at of an existing row are preserved.
func (r *PGXContactsRepository) Upsert(ctx context.Context, contact *entity.Contact) (*entity.Contact, error) {
	if contact == nil {
		return nil, fmt.Errorf("contact payload is nil")
	}
	if strings.TrimSpace(contact.URL) == "" {
		return nil, fmt.Errorf("contact url is required")
	}

	socials, err := json.Marshal(contact.Socials)
	if err != nil {
		return nil, fmt.Errorf("encode socials: %w", err)
	}

	var lat, lng *float64
	if contact.Coords != nil {
		lat, lng = &contact.Coords.Lat, &contact.Coords.Lng
	}

	query := `
        INSERT INTO contacts (
            url,
            company_commercial_name,
            company_legal_name,
            company_all_available_names,
            phones,
            socials,
            address,
            latitude,
            longitude,
            success,
            error
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (url) DO UPDATE SET
            company_commercial_name = EXCLUDED.company_commercial_name,
            company_legal_name = EXCLUDED.company_legal_name,
            company_all_available_names = EXCLUDED.company_all_available_names,
            phones = EXCLUDED.phones,
            socials = EXCLUDED.socials,
            address = EXCLUDED.address,
            latitude = EXCLUDED.latitude,
            longitude = EXCLUDED.longitude,
            success = EXCLUDED.success,
            error = EXCLUDED.error,
            updated_at = NOW()
        RETURNING ` + contactColumns

	row := r.pool.QueryRow(ctx, query,
		contact.URL,
		contact.CompanyCommercialName,
		contact.CompanyLegalName,
		nonNil(contact.CompanyAllAvailableNames),
		nonNil(contact.Phones),
		socials,
		contact.Address,
		lat,
		lng,
		contact.Success,
		contact.Error,
	)

	stored, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("upsert contact: %w", err)
	}
	return stored, nil
}

// FindByID fetches a contact by its numeric identifier.
func (r *PGXContactsRepository) FindByID(ctx context.Context, id int64) (*entity.Contact, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("query contact by id: %w", err)
	}
	return contact, nil
}

// FindByURL fetches a contact by its canonical url.
func (r *PGXContactsRepository) FindByURL(ctx context.Context, url string) (*entity.Contact, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE url = $1`, url)
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("query contact by url: %w", err)
	}
	return contact, nil
}

// TextSearch queries the full-text index, best ranked first.
func (r *PGXContactsRepository) TextSearch(ctx context.Context, query string, limit int) ([]entity.Contact, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+contactColumns+`
        FROM contacts
        WHERE search_vector @@ websearch_to_tsquery('simple', $1)
        ORDER BY ts_rank(search_vector, websearch_to_tsquery('simple', $1)) DESC, id ASC
        LIMIT $2`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("text search contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

// SubstringSearch matches query case-insensitively anywhere in the textual
// fields or the phone list.
func (r *PGXContactsRepository) SubstringSearch(ctx context.Context, query string, limit int) ([]entity.Contact, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.pool.Query(ctx, `
        SELECT `+contactColumns+`
        FROM contacts
        WHERE company_commercial_name ILIKE $1
           OR company_legal_name ILIKE $1
           OR url ILIKE $1
           OR address ILIKE $1
           OR socials->>'facebook' ILIKE $1
           OR socials->>'instagram' ILIKE $1
           OR socials->>'linkedin' ILIKE $1
           OR socials->>'twitter' ILIKE $1
           OR socials->>'tiktok' ILIKE $1
           OR EXISTS (SELECT 1 FROM unnest(phones) AS phone WHERE phone ILIKE $1)
        ORDER BY id ASC
        LIMIT $2`, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("substring search contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

func scanContacts(rows pgx.Rows) ([]entity.Contact, error) {
	var contacts []entity.Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, *contact)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contacts: %w", err)
	}
	return contacts, nil
}

func scanContact(row pgx.Row) (*entity.Contact, error) {
	var (
		c       entity.Contact
		socials []byte
		lat     *float64
		lng     *float64
	)
	if err := row.Scan(
		&c.ID,
		&c.URL,
		&c.CompanyCommercialName,
		&c.CompanyLegalName,
		&c.CompanyAllAvailableNames,
		&c.Phones,
		&socials,
		&c.Address,
		&lat,
		&lng,
		&c.Success,
		&c.Error,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(socials) > 0 {
		if err := json.Unmarshal(socials, &c.Socials); err != nil {
			return nil, fmt.Errorf("decode socials: %w", err)
		}
	}
	if lat != nil && lng != nil {
		c.Coords = &entity.Coords{Lat: *lat, Lng: *lng}
	}
	c.CompanyAllAvailableNames = nonNil(c.CompanyAllAvailableNames)
	c.Phones = nonNil(c.Phones)
	return &c, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
