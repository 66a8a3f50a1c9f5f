package account_test

import (
	"errors"
	"testing"
	"time"

	"clubdash/internal/domain/account"
)

// TestAccount_Validate tests validation of Account.
func TestAccount_Validate(t *testing.T) {
	tests := []struct {
		name    string
		account account.Account
		wantErr error
	}{
		{
			name:    "valid admin account",
			account: account.Account{ID: "1", Username: "admin", Email: "admin@clubs.example.edu", Role: account.RoleAdmin},
		},
		{
			name:    "valid member account",
			account: account.Account{ID: "2", Username: "j.doe+chess", Email: "jdoe@clubs.example.edu", Role: account.RoleMember},
		},
		{
			name:    "empty username",
			account: account.Account{ID: "3", Email: "x@clubs.example.edu", Role: account.RoleMember},
			wantErr: account.ErrEmptyUsername,
		},
		{
			name:    "username with spaces",
			account: account.Account{ID: "4", Username: "jane doe", Email: "x@clubs.example.edu", Role: account.RoleMember},
			wantErr: account.ErrInvalidUsername,
		},
		{
			name:    "empty email",
			account: account.Account{ID: "5", Username: "jane", Role: account.RoleAdmin},
			wantErr: account.ErrEmptyEmail,
		},
		{
			name:    "invalid email no at sign",
			account: account.Account{ID: "6", Username: "jane", Email: "not-an-email", Role: account.RoleAdmin},
			wantErr: account.ErrInvalidEmail,
		},
		{
			name:    "invalid role",
			account: account.Account{ID: "7", Username: "jane", Email: "jane@clubs.example.edu", Role: "superadmin"},
			wantErr: account.ErrInvalidRole,
		},
		{
			name:    "empty role",
			account: account.Account{ID: "8", Username: "jane", Email: "jane@clubs.example.edu"},
			wantErr: account.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.account.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Account.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestNormalizeEmail tests email normalization.
func TestNormalizeEmail(t *testing.T) {
	if got := account.NormalizeEmail("  Jane.Doe@Clubs.Example.EDU "); got != "jane.doe@clubs.example.edu" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

// TestAccount_SetPassword tests the SetPassword method.
func TestAccount_SetPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid password", "securepassword123", false},
		{"exactly 8 chars", "12345678", false},
		{"empty password", "", true},
		{"too short", "short", true},
		{"7 chars", "1234567", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &account.Account{}
			err := a.SetPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && a.PasswordHash == "" {
				t.Error("SetPassword() should set PasswordHash")
			}
			if err == nil && a.PasswordHash == tt.password {
				t.Error("SetPassword() should hash the password, not store plaintext")
			}
		})
	}
}

// TestAccount_CheckPassword tests the CheckPassword method.
func TestAccount_CheckPassword(t *testing.T) {
	a := &account.Account{}
	if err := a.SetPassword("securepassword123"); err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"correct password", "securepassword123", false},
		{"wrong password", "wrongpassword123", true},
		{"empty password", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.CheckPassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestAccount_CheckPassword_NoHash tests CheckPassword with no hash set.
func TestAccount_CheckPassword_NoHash(t *testing.T) {
	a := &account.Account{}
	err := a.CheckPassword("anypassword1234")
	if err == nil {
		t.Error("CheckPassword() should fail when no hash is set")
	}
}

func TestAccount_Lockout(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	a := &account.Account{}
	if a.IsLocked(now) {
		t.Fatal("new account is locked")
	}
	for i := 1; i < account.MaxFailedLogins; i++ {
		a.RecordFailedLogin(now)
		if a.IsLocked(now) {
			t.Fatalf("locked after %d failures", i)
		}
	}
	a.RecordFailedLogin(now)
	if !a.IsLocked(now) || a.FailedLogins != account.MaxFailedLogins {
		t.Fatalf("after %d failures: locked=%v failed=%d", account.MaxFailedLogins, a.IsLocked(now), a.FailedLogins)
	}

	tests := []struct {
		name   string
		at     time.Time
		locked bool
	}{
		{"a minute in", now.Add(time.Minute), true},
		{"one second before expiry", now.Add(account.LockoutDuration - time.Second), true},
		{"at expiry", now.Add(account.LockoutDuration), false},
		{"long after", now.Add(24 * time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.IsLocked(tt.at); got != tt.locked {
				t.Errorf("IsLocked = %v, want %v", got, tt.locked)
			}
		})
	}

	a.ResetFailedLogins()
	if a.FailedLogins != 0 || a.IsLocked(now) {
		t.Errorf("after reset: failed=%d locked=%v", a.FailedLogins, a.IsLocked(now))
	}
}

// TestAccount_IsAdmin tests the admin role check.
func TestAccount_IsAdmin(t *testing.T) {
	tests := []struct {
		role    string
		isAdmin bool
	}{
		{account.RoleAdmin, true},
		{account.RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			a := &account.Account{Role: tt.role}
			if a.IsAdmin() != tt.isAdmin {
				t.Errorf("IsAdmin() = %v, want %v", a.IsAdmin(), tt.isAdmin)
			}
		})
	}
}
