package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags so the
// password hash can never leak into a serialized body.
//
// Role is a single value from the closed enumeration defined in the
// policy package (salarie, contremaitre, gerante, admin).  Capabilities
// is an independent axis layered on top of the role: a salarie who is
// also the magasinier keeps the salarie role and carries the
// "magasinier" capability, which grants the stocks module.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FirstName    – given name, shown in the UI.
//  LastName     – family name, shown in the UI.
//  Email        – unique email address (stored lowercase).
//  PasswordHash – bcrypt hashed password.
//  Role         – name of the role (e.g. salarie, gerante).
//  Capabilities – extra capability flags (users.capabilities SET column).
//  IsActive     – whether the account is active; inactive users fail
//                 session resolution even with an unexpired token.
//  LastLoginAt  – timestamp of the last successful login (nullable).
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64     // users.id
    FirstName    string     // users.first_name
    LastName     string     // users.last_name
    Email        string     // users.email
    PasswordHash string     // users.password_hash
    Role         string     // users.role
    Capabilities []string   // users.capabilities (comma separated set)
    IsActive     bool       // users.is_active
    LastLoginAt  *time.Time // users.last_login_at (nullable)
    CreatedAt    time.Time  // users.created_at
    UpdatedAt    time.Time  // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA-256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA-256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    ID        uint64     // refresh_tokens.id
    UserID    uint64     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
