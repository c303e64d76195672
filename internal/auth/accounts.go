package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotApproved        = errors.New("account awaiting admin approval")
	ErrInactive           = errors.New("account deactivated")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrDuplicateUsername  = errors.New("username already taken")
	ErrUserNotFound       = errors.New("user not found")
)

type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	IsAdmin    bool   `json:"is_admin"`
	IsApproved bool   `json:"is_approved"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  int64  `json:"created_at"`
}

// Role maps the user's admin flag onto the RBAC role set.
func (u User) Role() string {
	if u.IsAdmin {
		return "admin"
	}
	return "student"
}

// Accounts manages user records. New registrations start unapproved and
// cannot log in until an admin approves them.
type Accounts struct {
	db *sql.DB
}

func NewAccounts(db *sql.DB) *Accounts { return &Accounts{db: db} }

func (a *Accounts) Register(ctx context.Context, username, email, password string) (User, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	if username == "" || email == "" || password == "" {
		return User{}, errors.New("username, email and password required")
	}

	var existEmail, existUser string
	err := a.db.QueryRowContext(ctx,
		`SELECT email, username FROM users WHERE email=$1 OR username=$2`,
		email, username).Scan(&existEmail, &existUser)
	switch {
	case err == nil:
		if existEmail == email {
			return User{}, ErrDuplicateEmail
		}
		return User{}, ErrDuplicateUsername
	case !errors.Is(err, sql.ErrNoRows):
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return User{}, err
	}
	u := User{
		ID:         uuid.New().String(),
		Username:   username,
		Email:      email,
		IsApproved: false,
		IsActive:   true,
		CreatedAt:  time.Now().Unix(),
	}
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, is_admin, is_approved, is_active, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Username, u.Email, string(hash), false, false, true, u.CreatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

// Authenticate verifies the password and the approval/active gates.
func (a *Accounts) Authenticate(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u User
	var hash string
	err := a.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, is_admin, is_approved, is_active, created_at
		 FROM users WHERE email=$1`, email).
		Scan(&u.ID, &u.Username, &u.Email, &hash, &u.IsAdmin, &u.IsApproved, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	if !u.IsApproved {
		return User{}, ErrNotApproved
	}
	if !u.IsActive {
		return User{}, ErrInactive
	}
	return u, nil
}

func (a *Accounts) Get(ctx context.Context, id string) (User, error) {
	var u User
	err := a.db.QueryRowContext(ctx,
		`SELECT id, username, email, is_admin, is_approved, is_active, created_at
		 FROM users WHERE id=$1`, id).
		Scan(&u.ID, &u.Username, &u.Email, &u.IsAdmin, &u.IsApproved, &u.IsActive, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	return u, nil
}

func (a *Accounts) List(ctx context.Context, pendingOnly bool) ([]User, error) {
	q := `SELECT id, username, email, is_admin, is_approved, is_active, created_at
	      FROM users ORDER BY created_at DESC`
	if pendingOnly {
		q = `SELECT id, username, email, is_admin, is_approved, is_active, created_at
		     FROM users WHERE is_approved=$1 ORDER BY created_at DESC`
	}
	var rows *sql.Rows
	var err error
	if pendingOnly {
		rows, err = a.db.QueryContext(ctx, q, false)
	} else {
		rows, err = a.db.QueryContext(ctx, q)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.IsAdmin, &u.IsApproved, &u.IsActive, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (a *Accounts) Approve(ctx context.Context, id string) error {
	return a.setFlag(ctx, id, "is_approved", true)
}

func (a *Accounts) SetActive(ctx context.Context, id string, active bool) error {
	return a.setFlag(ctx, id, "is_active", active)
}

func (a *Accounts) setFlag(ctx context.Context, id, col string, v bool) error {
	res, err := a.db.ExecContext(ctx, `UPDATE users SET `+col+`=$1 WHERE id=$2`, v, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
