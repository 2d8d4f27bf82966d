package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTTL is the lifetime of tokens minted by POST /jwt.
const SessionTTL = time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims are the decoded contents of a verified token. Session tokens carry
// whatever the caller posted, so they stay a free-form map.
type Claims map[string]any

// Email returns the "email" claim, or "" when absent or not a string.
func (c Claims) Email() string {
	v, _ := c["email"].(string)
	return v
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// IssueSessionToken signs the caller supplied claims. Registered timing
// claims are always overwritten.
func (m *Manager) IssueSessionToken(claims map[string]any) (string, error) {
	now := time.Now().UTC()

	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["iat"] = jwt.NewNumericDate(now)
	mc["exp"] = jwt.NewNumericDate(now.Add(m.ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	return token.SignedString(m.secret)
}

func (m *Manager) IssueLoginToken(email string) (string, error) {
	now := time.Now().UTC()

	claims := jwt.MapClaims{
		"email": email,
		"jti":   uuid.NewString(),
		"iat":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(m.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

func (m *Manager) Verify(tokenStr string) (Claims, error) {
	if tokenStr == "" {
		return nil, ErrInvalidToken
	}

	mc := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, mc, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256
		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return Claims(mc), nil
}

// expiresInPattern is the duration grammar of the `ms` package that
// jsonwebtoken applies to string expiresIn values.
var expiresInPattern = regexp.MustCompile(`(?i)^(-?(?:\d+)?\.?\d+) *(milliseconds?|msecs?|ms|seconds?|secs?|s|minutes?|mins?|m|hours?|hrs?|h|days?|d|weeks?|w|years?|yrs?|y)?$`)

// ParseExpiresIn reads EXPIRES_IN the way jsonwebtoken reads a string
// expiresIn: "3600" is milliseconds, "90m", "2 days", "1w", "1y" carry a
// unit. Compound Go durations such as "1h30m" are accepted as well.
func ParseExpiresIn(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, errors.New("empty duration")
	}

	d, err := parseMS(v)
	if err != nil {
		d, err = time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", v)
		}
	}

	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", v)
	}
	return d, nil
}

func parseMS(v string) (time.Duration, error) {
	m := expiresInPattern.FindStringSubmatch(v)
	if m == nil {
		return 0, errors.New("not an ms duration")
	}

	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}

	var unit time.Duration
	switch strings.ToLower(m[2]) {
	case "years", "year", "yrs", "yr", "y":
		unit = time.Duration(365.25 * float64(24*time.Hour))
	case "weeks", "week", "w":
		unit = 7 * 24 * time.Hour
	case "days", "day", "d":
		unit = 24 * time.Hour
	case "hours", "hour", "hrs", "hr", "h":
		unit = time.Hour
	case "minutes", "minute", "mins", "min", "m":
		unit = time.Minute
	case "seconds", "second", "secs", "sec", "s":
		unit = time.Second
	default:
		// bare numbers and ms/msec/millisecond(s)
		unit = time.Millisecond
	}

	return time.Duration(n * float64(unit)), nil
}
