package credentials

import (
	"encoding/json"
	"fmt"

	"github.com/jrsteele09/go-auth-client/internal/errors"
	"github.com/jrsteele09/go-auth-client/internal/utils"
)

// UserInfo is the cached profile record returned by the auth service's /auth/me.
// It is kept as a generic record so fields the client does not know survive a round
// trip through storage.
type UserInfo map[string]any

// ParseUserInfo decodes a stored user_info value. A stored JSON null decodes to a nil
// record without error.
func ParseUserInfo(raw string) (UserInfo, error) {
	var info UserInfo
	if err := json.Unmarshal([]byte(raw), &info); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrMalformedUserInfo, err)
	}
	return info, nil
}

// Encode serializes the record for storage
func (u UserInfo) Encode() (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", errors.Wrapf(err, "UserInfo.Encode")
	}
	return string(data), nil
}

func (u UserInfo) str(key string) string {
	s, _ := u[key].(string)
	return s
}

func (u UserInfo) Username() string { return u.str("username") }
func (u UserInfo) Email() string    { return u.str("email") }
func (u UserInfo) FullName() string { return u.str("full_name") }
func (u UserInfo) CN() string       { return u.str("cn") }

func (u UserInfo) IsActive() bool {
	active, _ := u["is_active"].(bool)
	return active
}

func (u UserInfo) Groups() []string {
	return utils.StringSlice(u["groups"])
}

// DisplayName returns the full name, falling back to the common name and then the
// username
func (u UserInfo) DisplayName() string {
	return utils.FirstNonEmpty(u.FullName(), u.CN(), u.Username())
}
