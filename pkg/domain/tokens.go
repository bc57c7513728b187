package domain

// TokenPair is the access/refresh credential pair issued on login.
type TokenPair struct {
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// Complete reports whether both tokens are present.
func (p TokenPair) Complete() bool {
	return p.AccessToken != "" && p.RefreshToken != ""
}

// Empty reports whether neither token is present.
func (p TokenPair) Empty() bool {
	return p.AccessToken == "" && p.RefreshToken == ""
}
