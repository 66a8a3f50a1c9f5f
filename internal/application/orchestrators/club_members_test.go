package orchestrators

import (
	"context"
	"errors"
	"testing"

	"clubdash/internal/domain/account"
	"clubdash/internal/domain/club"
)

func membersFixture() (MembersDeps, *mockClubStore) {
	accounts := newMockAccountStore(
		account.Account{ID: "owner", Username: "olive", Email: "olive@example.edu", Role: account.RoleMember},
		account.Account{ID: "a2", Username: "ben", Email: "ben@example.edu", Role: account.RoleMember},
	)
	clubs := newMockClubStore()
	clubs.Save(context.Background(), club.Club{ID: "c1", Name: "Chess", OwnerID: "owner"})
	return MembersDeps{ClubStore: clubs, AccountStore: accounts, Now: nowFn}, clubs
}

func TestExecuteAddMember(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr error
	}{
		{"adds", "ben@example.edu", nil},
		{"missing email", "", ErrEmailRequired},
		{"unknown user", "nobody@example.edu", ErrAccountNotFound},
		{"already member", "olive@example.edu", club.ErrAlreadyMember},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, clubs := membersFixture()
			acct, err := ExecuteAddMember(context.Background(), MemberChangeInput{ClubID: "c1", Email: tt.email}, deps)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if err == nil {
				if _, err := clubs.GetMembership(context.Background(), "c1", acct.ID); err != nil {
					t.Errorf("membership missing: %v", err)
				}
			}
		})
	}
}

func TestExecuteRemoveMember(t *testing.T) {
	deps, clubs := membersFixture()
	ctx := context.Background()
	if _, err := ExecuteAddMember(ctx, MemberChangeInput{ClubID: "c1", Email: "ben@example.edu"}, deps); err != nil {
		t.Fatal(err)
	}

	if err := ExecuteRemoveMember(ctx, MemberChangeInput{ClubID: "c1", Email: "ben@example.edu"}, deps); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := clubs.GetMembership(ctx, "c1", "a2"); err == nil {
		t.Error("membership still present")
	}
	if err := ExecuteRemoveMember(ctx, MemberChangeInput{ClubID: "c1", Email: "ben@example.edu"}, deps); !errors.Is(err, club.ErrNotMember) {
		t.Errorf("second remove err = %v, want ErrNotMember", err)
	}
	if err := ExecuteRemoveMember(ctx, MemberChangeInput{ClubID: "c1", Email: "ghost@example.edu"}, deps); !errors.Is(err, club.ErrNotMember) {
		t.Errorf("unknown email err = %v, want ErrNotMember", err)
	}
	if err := ExecuteRemoveMember(ctx, MemberChangeInput{ClubID: "c1", Email: "olive@example.edu"}, deps); !errors.Is(err, club.ErrCannotRemoveOwner) {
		t.Errorf("owner err = %v, want ErrCannotRemoveOwner", err)
	}
}
