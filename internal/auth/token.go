package auth // package auth provides token issuing/verification and password hashing

import (
    "errors"
    "strconv"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
    "github.com/google/uuid"       // jti generation for access tokens
)

// Verification failure kinds.  The session middleware needs to tell these
// apart so it can answer with the right error code: an expired token should
// push the client towards a silent re-login, a bad signature should not.
var (
    ErrTokenMalformed        = errors.New("token malformed")
    ErrTokenExpired          = errors.New("token expired")
    ErrTokenSignatureInvalid = errors.New("token signature invalid")
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are short-lived and encoded
// in the Authorization header when calling protected endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims is the decoded content of a verified access token.  Subject is the
// user id the token was issued for; Role and Capabilities are snapshots taken
// at issue time and are only trusted for UX decisions; the session
// middleware always re-reads the live user record before authorizing
// anything.
type Claims struct {
    Subject      uint64    // sub claim, the user id
    Role         string    // role claim at issue time
    Capabilities []string  // caps claim at issue time
    TokenID      string    // jti claim, unique per token
    IssuedAt     time.Time // iat claim
    ExpiresAt    time.Time // exp claim
}

// NewAccessToken builds and signs an HS256 JWT for a user.  It takes the
// signing secret, the user ID, the user's role and capabilities, and a TTL
// in minutes.  It returns an AccessToken structure containing the signed
// token and its expiration time.  The JWT includes standard claims: subject
// (sub), role, caps, a unique token id (jti), expiration (exp) and issued
// at (iat).  The jti exists so a future revocation registry can key on a
// single token without changing this codec.
func NewAccessToken(secret string, userID uint64, role string, caps []string, ttlMin int) (AccessToken, error) {
    // Calculate the expiration time by adding the TTL to the current UTC time.
    exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "sub":  userID,
        "role": role,
        "caps": caps,
        "jti":  uuid.NewString(),
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    // Sign the token with the provided secret and obtain the string form.  If
    // signing fails, return the error and a zero AccessToken.
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccess parses and validates a raw access token string.  On success
// it returns the decoded Claims.  On failure it returns exactly one of
// ErrTokenMalformed, ErrTokenExpired or ErrTokenSignatureInvalid so callers
// can map the failure to a precise response code.  Tokens signed with a
// method other than HMAC are rejected as signature failures.
func VerifyAccess(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Type assert the signing method to HMAC; reject others.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, jwt.ErrTokenSignatureInvalid
        }
        return []byte(secret), nil
    })
    if err != nil {
        switch {
        case errors.Is(err, jwt.ErrTokenExpired):
            return Claims{}, ErrTokenExpired
        case errors.Is(err, jwt.ErrTokenSignatureInvalid):
            return Claims{}, ErrTokenSignatureInvalid
        default:
            return Claims{}, ErrTokenMalformed
        }
    }
    if !tok.Valid {
        return Claims{}, ErrTokenSignatureInvalid
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrTokenMalformed
    }
    return claimsFromMap(mc)
}

// claimsFromMap converts raw MapClaims into a typed Claims value.  JSON
// numbers arrive as float64; some clients re-encode sub as a string, so
// both forms are accepted.  A missing or unusable sub claim makes the
// token malformed.
func claimsFromMap(mc jwt.MapClaims) (Claims, error) {
    var c Claims
    switch sub := mc["sub"].(type) {
    case float64:
        c.Subject = uint64(sub)
    case string:
        n, err := strconv.ParseUint(sub, 10, 64)
        if err != nil {
            return Claims{}, ErrTokenMalformed
        }
        c.Subject = n
    default:
        return Claims{}, ErrTokenMalformed
    }
    if c.Subject == 0 {
        return Claims{}, ErrTokenMalformed
    }
    if role, ok := mc["role"].(string); ok {
        c.Role = role
    }
    if jti, ok := mc["jti"].(string); ok {
        c.TokenID = jti
    }
    if raw, ok := mc["caps"].([]interface{}); ok {
        for _, v := range raw {
            if s, ok := v.(string); ok && s != "" {
                c.Capabilities = append(c.Capabilities, s)
            }
        }
    }
    if exp, ok := mc["exp"].(float64); ok {
        c.ExpiresAt = time.Unix(int64(exp), 0).UTC()
    }
    if iat, ok := mc["iat"].(float64); ok {
        c.IssuedAt = time.Unix(int64(iat), 0).UTC()
    }
    return c, nil
}
