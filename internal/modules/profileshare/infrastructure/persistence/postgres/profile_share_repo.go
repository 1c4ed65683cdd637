package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/domain"
)

const uniqueViolation = "23505"

const selectColumns = `id, user_id, full_name, designation, profile_picture, logo, city, social_medias, profile_url,
	dot_color, bg_color, pattern, show_avatar_in_qr, show_logo_in_qr, qr_code_image, created_at, updated_at, version`

// profileShareRow is the flat table shape of domain.Record
type profileShareRow struct {
	ID             uuid.UUID      `db:"id"`
	UserID         uuid.UUID      `db:"user_id"`
	FullName       string         `db:"full_name"`
	Designation    string         `db:"designation"`
	ProfilePicture string         `db:"profile_picture"`
	Logo           string         `db:"logo"`
	City           string         `db:"city"`
	SocialMedias   pq.StringArray `db:"social_medias"`
	ProfileURL     string         `db:"profile_url"`
	DotColor       string         `db:"dot_color"`
	BgColor        string         `db:"bg_color"`
	Pattern        string         `db:"pattern"`
	ShowAvatarInQR bool           `db:"show_avatar_in_qr"`
	ShowLogoInQR   bool           `db:"show_logo_in_qr"`
	QRCodeImage    string         `db:"qr_code_image"`
	CreatedAt      time.Time      `db:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at"`
	Version        int64          `db:"version"`
}

type PgProfileShareRepository struct {
	db *sqlx.DB
}

// NewProfileShareRepository creates a PostgreSQL-backed domain.Repository.
func NewProfileShareRepository(db *sqlx.DB) *PgProfileShareRepository {
	return &PgProfileShareRepository{db: db}
}

// GetByUserID implements domain.Repository
func (r *PgProfileShareRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Record, error) {
	var row profileShareRow
	query := `SELECT ` + selectColumns + ` FROM profile_shares WHERE user_id = $1`

	err := r.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile share: %w", err)
	}
	return row.toRecord(), nil
}

// GetForUpdate implements domain.Repository. Postgres is the source of truth,
// so it is the same read as GetByUserID.
func (r *PgProfileShareRepository) GetForUpdate(ctx context.Context, userID uuid.UUID) (*domain.Record, error) {
	return r.GetByUserID(ctx, userID)
}

// Create implements domain.Repository
func (r *PgProfileShareRepository) Create(ctx context.Context, record *domain.Record) error {
	query := `INSERT INTO profile_shares (
		id, user_id, full_name, designation, profile_picture, logo, city, social_medias, profile_url,
		dot_color, bg_color, pattern, show_avatar_in_qr, show_logo_in_qr, qr_code_image, created_at, updated_at, version
	) VALUES (
		:id, :user_id, :full_name, :designation, :profile_picture, :logo, :city, :social_medias, :profile_url,
		:dot_color, :bg_color, :pattern, :show_avatar_in_qr, :show_logo_in_qr, :qr_code_image, :created_at, :updated_at, :version
	)`

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}
	if record.Version == 0 {
		record.Version = 1
	}

	_, err := r.db.NamedExecContext(ctx, query, fromRecord(record))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return domain.ErrRecordExists
		}
		return fmt.Errorf("failed to create profile share: %w", err)
	}
	return nil
}

// Save implements domain.Repository. The version predicate turns the write
// into a compare-and-swap: a row saved since record was read is left alone.
func (r *PgProfileShareRepository) Save(ctx context.Context, record *domain.Record) error {
	query := `UPDATE profile_shares SET
		full_name = :full_name,
		designation = :designation,
		profile_picture = :profile_picture,
		logo = :logo,
		city = :city,
		social_medias = :social_medias,
		profile_url = :profile_url,
		dot_color = :dot_color,
		bg_color = :bg_color,
		pattern = :pattern,
		show_avatar_in_qr = :show_avatar_in_qr,
		show_logo_in_qr = :show_logo_in_qr,
		qr_code_image = :qr_code_image,
		updated_at = :updated_at,
		version = version + 1
	WHERE user_id = :user_id AND version = :version`

	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}

	result, err := r.db.NamedExecContext(ctx, query, fromRecord(record))
	if err != nil {
		return fmt.Errorf("failed to save profile share: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save profile share: %w", err)
	}
	if rows == 0 {
		return r.missedSave(ctx, record.UserID)
	}
	record.Version++
	return nil
}

// missedSave tells a stale version apart from a missing row after an UPDATE
// matched nothing.
func (r *PgProfileShareRepository) missedSave(ctx context.Context, userID uuid.UUID) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM profile_shares WHERE user_id = $1)`, userID)
	if err != nil {
		return fmt.Errorf("failed to save profile share: %w", err)
	}
	if exists {
		return domain.ErrConcurrentUpdate
	}
	return domain.ErrRecordNotFound
}

func fromRecord(rec *domain.Record) profileShareRow {
	social := pq.StringArray(rec.ProfileData.SocialMedias)
	if social == nil {
		social = pq.StringArray{}
	}
	return profileShareRow{
		ID:             rec.ID,
		UserID:         rec.UserID,
		FullName:       rec.ProfileData.FullName,
		Designation:    rec.ProfileData.Designation,
		ProfilePicture: rec.ProfileData.ProfilePicture,
		Logo:           rec.ProfileData.Logo,
		City:           rec.ProfileData.City,
		SocialMedias:   social,
		ProfileURL:     rec.ProfileData.ProfileURL,
		DotColor:       rec.QRSettings.DotColor,
		BgColor:        rec.QRSettings.BgColor,
		Pattern:        string(rec.QRSettings.Pattern),
		ShowAvatarInQR: rec.DisplaySettings.ShowAvatarInQR,
		ShowLogoInQR:   rec.DisplaySettings.ShowLogoInQR,
		QRCodeImage:    rec.QRCodeImage,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
		Version:        rec.Version,
	}
}

func (row profileShareRow) toRecord() *domain.Record {
	social := []string(row.SocialMedias)
	if social == nil {
		social = []string{}
	}
	return &domain.Record{
		ID:     row.ID,
		UserID: row.UserID,
		ProfileData: domain.ProfileData{
			FullName:       row.FullName,
			Designation:    row.Designation,
			ProfilePicture: row.ProfilePicture,
			Logo:           row.Logo,
			City:           row.City,
			SocialMedias:   social,
			ProfileURL:     row.ProfileURL,
		},
		QRSettings: domain.QRSettings{
			DotColor: row.DotColor,
			BgColor:  row.BgColor,
			Pattern:  domain.Pattern(row.Pattern),
		},
		DisplaySettings: domain.DisplaySettings{
			ShowAvatarInQR: row.ShowAvatarInQR,
			ShowLogoInQR:   row.ShowLogoInQR,
		},
		QRCodeImage: row.QRCodeImage,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Version:     row.Version,
	}
}
