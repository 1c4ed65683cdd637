package domain

import (
	"fmt"
	"regexp"
)

const (
	MaxSocialMedias = 20
	maxTextLength   = 200
	maxURLLength    = 2048
)

var hexColor = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// Patch is a partial update. Nil sections and nil fields are left untouched.
type Patch struct {
	ProfileData     *ProfileDataPatch     `json:"profileData"`
	QRSettings      *QRSettingsPatch      `json:"qrSettings"`
	DisplaySettings *DisplaySettingsPatch `json:"displaySettings"`
	QRCodeImage     *string               `json:"qrCodeImage"`
}

type ProfileDataPatch struct {
	FullName       *string   `json:"fullName"`
	Designation    *string   `json:"designation"`
	ProfilePicture *string   `json:"profilePicture"`
	Logo           *string   `json:"logo"`
	City           *string   `json:"city"`
	SocialMedias   *[]string `json:"socialMedias"`
	ProfileURL     *string   `json:"profileUrl"`
}

type QRSettingsPatch struct {
	DotColor *string  `json:"dotColor"`
	BgColor  *string  `json:"bgColor"`
	Pattern  *Pattern `json:"pattern"`
}

type DisplaySettingsPatch struct {
	ShowAvatarInQR *bool `json:"showAvatarInQR"`
	ShowLogoInQR   *bool `json:"showLogoInQR"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.ProfileData == nil && p.QRSettings == nil && p.DisplaySettings == nil && p.QRCodeImage == nil
}

// Validate checks each provided field on its own. Checks that depend on the
// stored record happen in Record.Apply.
func (p Patch) Validate() error {
	if pd := p.ProfileData; pd != nil {
		// checked in field order so the first invalid field is the one reported
		for _, f := range []struct {
			name  string
			value *string
			max   int
		}{
			{"profileData.fullName", pd.FullName, maxTextLength},
			{"profileData.designation", pd.Designation, maxTextLength},
			{"profileData.profilePicture", pd.ProfilePicture, maxURLLength},
			{"profileData.logo", pd.Logo, maxURLLength},
			{"profileData.city", pd.City, maxTextLength},
			{"profileData.profileUrl", pd.ProfileURL, maxURLLength},
		} {
			if f.value != nil && len(*f.value) > f.max {
				return invalid(ErrInvalidPatch, f.name, fmt.Sprintf("must be at most %d characters", f.max))
			}
		}
		if pd.SocialMedias != nil {
			links := *pd.SocialMedias
			if len(links) > MaxSocialMedias {
				return invalid(ErrInvalidPatch, "profileData.socialMedias", fmt.Sprintf("at most %d links are allowed", MaxSocialMedias))
			}
			for _, link := range links {
				if len(link) > maxURLLength {
					return invalid(ErrInvalidPatch, "profileData.socialMedias", fmt.Sprintf("links must be at most %d characters", maxURLLength))
				}
			}
		}
	}

	if qs := p.QRSettings; qs != nil {
		if qs.DotColor != nil && !hexColor.MatchString(*qs.DotColor) {
			return invalid(ErrInvalidPatch, "qrSettings.dotColor", "must be a hex color such as #06b6d4")
		}
		if qs.BgColor != nil && *qs.BgColor != "transparent" && !hexColor.MatchString(*qs.BgColor) {
			return invalid(ErrInvalidPatch, "qrSettings.bgColor", "must be a hex color or transparent")
		}
		if qs.Pattern != nil && !qs.Pattern.Valid() {
			return invalid(ErrInvalidPatch, "qrSettings.pattern", fmt.Sprintf("unknown pattern %q", *qs.Pattern))
		}
	}

	if ds := p.DisplaySettings; ds != nil {
		if isTrue(ds.ShowAvatarInQR) && isTrue(ds.ShowLogoInQR) {
			return invalid(ErrInvalidDisplaySettings, "displaySettings", "avatar and logo cannot both be shown in the QR code")
		}
	}
	return nil
}

// Valid reports whether p is a pattern clients know how to draw.
func (p Pattern) Valid() bool {
	switch p {
	case PatternSquare, PatternDots, PatternRounded, PatternClassy, PatternClassyRounded:
		return true
	}
	return false
}

// Apply validates p and merges it into r. On error r is unchanged.
func (r *Record) Apply(p Patch) error {
	if err := p.Validate(); err != nil {
		return err
	}

	next := r.Clone()
	if pd := p.ProfileData; pd != nil {
		if pd.Logo != nil && *pd.Logo != next.ProfileData.Logo {
			return invalid(ErrInvalidPatch, "profileData.logo", "use upload-logo or remove-logo to change the logo")
		}
		set(&next.ProfileData.FullName, pd.FullName)
		set(&next.ProfileData.Designation, pd.Designation)
		set(&next.ProfileData.ProfilePicture, pd.ProfilePicture)
		set(&next.ProfileData.City, pd.City)
		set(&next.ProfileData.ProfileURL, pd.ProfileURL)
		if pd.SocialMedias != nil {
			next.ProfileData.SocialMedias = append([]string{}, (*pd.SocialMedias)...)
		}
	}
	if qs := p.QRSettings; qs != nil {
		set(&next.QRSettings.DotColor, qs.DotColor)
		set(&next.QRSettings.BgColor, qs.BgColor)
		set(&next.QRSettings.Pattern, qs.Pattern)
	}
	if ds := p.DisplaySettings; ds != nil {
		if err := next.SetDisplay(ds.mergeInto(next.DisplaySettings)); err != nil {
			return err
		}
	}
	set(&next.QRCodeImage, p.QRCodeImage)

	*r = *next
	return nil
}

// mergeInto applies the provided flags. Turning one overlay on without
// mentioning the other switches the other off.
func (p DisplaySettingsPatch) mergeInto(current DisplaySettings) DisplaySettings {
	next := current
	set(&next.ShowAvatarInQR, p.ShowAvatarInQR)
	set(&next.ShowLogoInQR, p.ShowLogoInQR)
	if isTrue(p.ShowAvatarInQR) && p.ShowLogoInQR == nil {
		next.ShowLogoInQR = false
	}
	if isTrue(p.ShowLogoInQR) && p.ShowAvatarInQR == nil {
		next.ShowAvatarInQR = false
	}
	return next
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
