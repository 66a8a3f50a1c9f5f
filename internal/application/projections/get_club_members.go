package projections

import (
	"context"
	"errors"

	domainClub "clubdash/internal/domain/club"
)

// ErrNoMembers is returned for a club with an empty roster.
var ErrNoMembers = errors.New("no members found")

// QueryClubMembers returns a club's roster, owner first.
// POST: ErrNoMembers when the roster is empty
func QueryClubMembers(ctx context.Context, clubID string, clubs ClubStore) ([]domainClub.Member, error) {
	members, err := clubs.ListMembers(ctx, clubID)
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return nil, ErrNoMembers
	}
	return members, nil
}
