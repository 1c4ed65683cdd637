package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Pattern string

const (
	PatternSquare        Pattern = "square"
	PatternDots          Pattern = "dots"
	PatternRounded       Pattern = "rounded"
	PatternClassy        Pattern = "classy"
	PatternClassyRounded Pattern = "classy-rounded"
)

const (
	DefaultDotColor = "#06b6d4"
	DefaultBgColor  = "transparent"
	DefaultPattern  = PatternSquare
)

// ProfileData is the public profile shown on the share card
type ProfileData struct {
	FullName       string   `json:"fullName"`
	Designation    string   `json:"designation"`
	ProfilePicture string   `json:"profilePicture"`
	Logo           string   `json:"logo"`
	City           string   `json:"city"`
	SocialMedias   []string `json:"socialMedias"`
	ProfileURL     string   `json:"profileUrl"`
}

// QRSettings controls how clients draw the QR code
type QRSettings struct {
	DotColor string  `json:"dotColor"`
	BgColor  string  `json:"bgColor"`
	Pattern  Pattern `json:"pattern"`
}

// DisplaySettings selects which image, if any, sits in the center of the QR code.
// At most one flag is true, and ShowLogoInQR requires ProfileData.Logo.
type DisplaySettings struct {
	ShowAvatarInQR bool `json:"showAvatarInQR"`
	ShowLogoInQR   bool `json:"showLogoInQR"`
}

var (
	DefaultDisplay = DisplaySettings{ShowAvatarInQR: true, ShowLogoInQR: false}
	LogoDisplay    = DisplaySettings{ShowAvatarInQR: false, ShowLogoInQR: true}
)

// Record is the per-user profile share document
type Record struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	ProfileData     ProfileData     `json:"profileData"`
	QRSettings      QRSettings      `json:"qrSettings"`
	DisplaySettings DisplaySettings `json:"displaySettings"`
	QRCodeImage     string          `json:"qrCodeImage"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`

	// Version counts successful saves. Save compares it to detect lost updates.
	Version int64 `json:"-"`
}

// NewRecord builds the default record for a user who has never saved one.
func NewRecord(userID uuid.UUID, now time.Time) *Record {
	return &Record{
		ID:     uuid.New(),
		UserID: userID,
		ProfileData: ProfileData{
			SocialMedias: []string{},
		},
		QRSettings: QRSettings{
			DotColor: DefaultDotColor,
			BgColor:  DefaultBgColor,
			Pattern:  DefaultPattern,
		},
		DisplaySettings: DefaultDisplay,
		CreatedAt:       now,
		UpdatedAt:       now,
		Version:         1,
	}
}

// HasLogo reports whether a logo is attached.
func (r *Record) HasLogo() bool {
	return r.ProfileData.Logo != ""
}

// SetDisplay replaces the display flags after checking them against the current logo.
func (r *Record) SetDisplay(d DisplaySettings) error {
	if err := d.validate(r.HasLogo()); err != nil {
		return err
	}
	r.DisplaySettings = d
	return nil
}

// AttachLogo stores the logo URL and switches the QR overlay to it.
func (r *Record) AttachLogo(url string) {
	r.ProfileData.Logo = url
	r.DisplaySettings = LogoDisplay
}

// DetachLogo clears the logo, restores the avatar overlay and returns the old URL.
func (r *Record) DetachLogo() string {
	previous := r.ProfileData.Logo
	r.ProfileData.Logo = ""
	r.DisplaySettings = DefaultDisplay
	return previous
}

// Clone returns a deep copy so callers can merge without touching the original.
func (r *Record) Clone() *Record {
	c := *r
	c.ProfileData.SocialMedias = append([]string{}, r.ProfileData.SocialMedias...)
	return &c
}

func (d DisplaySettings) validate(hasLogo bool) error {
	if d.ShowAvatarInQR && d.ShowLogoInQR {
		return invalid(ErrInvalidDisplaySettings, "displaySettings", "avatar and logo cannot both be shown in the QR code")
	}
	if d.ShowLogoInQR && !hasLogo {
		return invalid(ErrInvalidDisplaySettings, "displaySettings.showLogoInQR", "upload a logo before showing it in the QR code")
	}
	return nil
}

// Repository defines the contract for profile share persistence
type Repository interface {
	// GetByUserID returns ErrRecordNotFound when the user has no record.
	// The result may come from a cache.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Record, error)
	// GetForUpdate reads the stored record without any cache in between.
	// Read-modify-write paths start from it.
	GetForUpdate(ctx context.Context, userID uuid.UUID) (*Record, error)
	// Create returns ErrRecordExists when a record for the user is already stored.
	Create(ctx context.Context, record *Record) error
	// Save overwrites the stored record if its version still equals
	// record.Version, then increments record.Version. It returns
	// ErrConcurrentUpdate when another save came first.
	Save(ctx context.Context, record *Record) error
}
