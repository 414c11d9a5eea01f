package auth

import "time"

// AccessClaims are the claims carried inside an encrypted v4.local access token.
type AccessClaims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	SessionID string `json:"sid"`

	Issuer     string    `json:"iss"`
	Subject    string    `json:"sub"`
	Audience   string    `json:"aud"`
	Expiration time.Time `json:"exp"`
	NotBefore  time.Time `json:"nbf"`
	IssuedAt   time.Time `json:"iat"`
	TokenID    string    `json:"jti"`
}

// DeviceInfo is what a client reports about itself at login.
type DeviceInfo struct {
	DeviceType    string `json:"device_type,omitempty" doc:"mobile, tablet, desktop, web"`
	Platform      string `json:"platform,omitempty" doc:"iOS, Android, Web, ..."`
	ClientName    string `json:"client_name,omitempty"`
	ClientVersion string `json:"client_version,omitempty"`
}

// Normalize fills unknown fields so sessions always list something readable.
func (d DeviceInfo) Normalize() DeviceInfo {
	if d.DeviceType == "" {
		d.DeviceType = "unknown"
	}
	if d.Platform == "" {
		d.Platform = "unknown"
	}
	return d
}
