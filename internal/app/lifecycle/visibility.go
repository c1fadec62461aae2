package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"carematch/internal/app/ds"
	"carematch/internal/app/dto"
	"carematch/internal/app/repository"
	"carematch/internal/app/role"

	"github.com/sirupsen/logrus"
)

// VisibilityFor returns the list predicate for caller:
//
//	requester: own requests that are not completed, canceled or expired
//	supporter: open requests, minus those the supporter declined or was refused from
func VisibilityFor(caller Caller) (repository.RequestFilter, error) {
	if caller.Subject == "" {
		return repository.RequestFilter{}, fmt.Errorf("%w: anonymous caller", ErrForbidden)
	}

	switch caller.Role {
	case role.Requester:
		return repository.RequestFilter{
			RequesterID:     caller.Subject,
			ExcludeStatuses: ds.TerminalRequestStatuses,
		}, nil
	case role.Supporter:
		return repository.RequestFilter{
			Statuses:          []ds.RequestStatus{ds.RequestOpen},
			ExcludeReleasedBy: caller.Subject,
		}, nil
	}
	return repository.RequestFilter{}, fmt.Errorf("%w: unknown role %s", ErrForbidden, caller.Role)
}

// ListFor lists the requests caller may see, earliest schedule first, each
// with the counterpart fields the caller's role is entitled to.
func (e *Engine) ListFor(ctx context.Context, caller Caller) ([]dto.RequestResponse, error) {
	filter, err := VisibilityFor(caller)
	if err != nil {
		return nil, err
	}

	repo := e.repo.WithContext(ctx)
	requests, err := repo.ListRequests(filter)
	if err != nil {
		return nil, classify(err)
	}

	counterparts, err := repo.GetUsersByIDs(counterpartIDs(caller.Role, requests))
	if err != nil {
		return nil, classify(err)
	}

	out := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		req := &requests[i]
		view := dto.FromRequest(req)
		switch caller.Role {
		case role.Requester:
			if req.MatchedSupporterID != nil {
				if u, ok := counterparts[*req.MatchedSupporterID]; ok {
					view.Supporter = e.supporterContact(ctx, &u)
				}
			}
		case role.Supporter:
			view.WorkLocation2 = ""
			if u, ok := counterparts[req.RequesterID]; ok {
				view.Requester = e.requesterSummary(&u)
			}
		}
		out = append(out, view)
	}
	return out, nil
}

// GetDetail returns one request projected for caller. Requesters see only
// their own requests; supporters see open requests in summary form and
// requests matched to them in full.
func (e *Engine) GetDetail(ctx context.Context, requestID uint, caller Caller) (*dto.RequestResponse, error) {
	if caller.Subject == "" {
		return nil, fmt.Errorf("%w: anonymous caller", ErrForbidden)
	}

	repo := e.repo.WithContext(ctx)
	req, err := repo.GetRequestByID(requestID)
	if err != nil {
		return nil, classify(err)
	}

	view := dto.FromRequest(req)
	switch caller.Role {
	case role.Requester:
		if req.RequesterID != caller.Subject {
			return nil, fmt.Errorf("%w: request %d belongs to another requester", ErrForbidden, req.ID)
		}
		if req.MatchedSupporterID != nil {
			u, err := e.optionalUser(repo, *req.MatchedSupporterID)
			if err != nil {
				return nil, err
			}
			if u != nil {
				view.Supporter = e.supporterContact(ctx, u)
			}
		}
		return &view, nil

	case role.Supporter:
		matched := req.MatchedSupporterID != nil && *req.MatchedSupporterID == caller.Subject
		if !matched && req.Status != ds.RequestOpen {
			return nil, fmt.Errorf("%w: request %d is not available to this supporter", ErrForbidden, req.ID)
		}
		u, err := e.optionalUser(repo, req.RequesterID)
		if err != nil {
			return nil, err
		}
		if matched {
			if u != nil {
				view.RequesterContact = e.requesterContact(ctx, u)
			}
			return &view, nil
		}
		view.WorkLocation2 = ""
		if u != nil {
			view.Requester = e.requesterSummary(u)
		}
		return &view, nil
	}
	return nil, fmt.Errorf("%w: unknown role %s", ErrForbidden, caller.Role)
}

// ListEngagements lists every order the calling supporter ever held, with its
// request, earliest schedule first.
func (e *Engine) ListEngagements(ctx context.Context, caller Caller) ([]dto.RequestResponse, error) {
	if caller.Role != role.Supporter || caller.Subject == "" {
		return nil, fmt.Errorf("%w: only supporters have engagements", ErrForbidden)
	}

	repo := e.repo.WithContext(ctx)
	orders, err := repo.ListOrdersBySupporter(caller.Subject)
	if err != nil {
		return nil, classify(err)
	}

	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.Request.RequesterID)
	}
	requesters, err := repo.GetUsersByIDs(ids)
	if err != nil {
		return nil, classify(err)
	}

	out := make([]dto.RequestResponse, 0, len(orders))
	for i := range orders {
		req := &orders[i].Request
		view := dto.FromRequest(req)
		view.OrderStatus = orders[i].Status

		u, ok := requesters[req.RequesterID]
		matched := req.MatchedSupporterID != nil && *req.MatchedSupporterID == caller.Subject
		switch {
		case ok && matched:
			view.RequesterContact = e.requesterContact(ctx, &u)
		case ok:
			view.WorkLocation2 = ""
			view.Requester = e.requesterSummary(&u)
		default:
			view.WorkLocation2 = ""
		}
		out = append(out, view)
	}
	return out, nil
}

func counterpartIDs(r role.Role, requests []ds.Request) []string {
	ids := make([]string, 0, len(requests))
	for _, req := range requests {
		switch r {
		case role.Requester:
			if req.MatchedSupporterID != nil {
				ids = append(ids, *req.MatchedSupporterID)
			}
		case role.Supporter:
			ids = append(ids, req.RequesterID)
		}
	}
	return ids
}

// optionalUser loads a profile, treating a missing one as nil.
func (e *Engine) optionalUser(repo *repository.Repository, id string) (*ds.User, error) {
	users, err := repo.GetUsersByIDs([]string{id})
	if err != nil {
		return nil, classify(err)
	}
	u, ok := users[id]
	if !ok {
		logrus.WithField("user_id", id).Warn("counterpart profile not found")
		return nil, nil
	}
	return &u, nil
}

func (e *Engine) requesterSummary(u *ds.User) *dto.RequesterSummary {
	return &dto.RequesterSummary{
		AgeGroup: AgeGroup(u.Birthday, e.now().In(e.loc)),
		Gender:   u.Gender,
		Address1: u.Address1,
		Bio:      u.Bio,
	}
}

func (e *Engine) requesterContact(ctx context.Context, u *ds.User) *dto.RequesterContact {
	return &dto.RequesterContact{
		FamilyName:     u.FamilyName,
		FirstName:      u.FirstName,
		FamilyNameKana: u.FamilyNameKana,
		FirstNameKana:  u.FirstNameKana,
		Gender:         u.Gender,
		AgeGroup:       AgeGroup(u.Birthday, e.now().In(e.loc)),
		PhoneNumber:    u.PhoneNumber,
		Address1:       u.Address1,
		Address2:       u.Address2,
		AvatarURL:      e.avatarURL(ctx, u),
		Bio:            u.Bio,
	}
}

func (e *Engine) supporterContact(ctx context.Context, u *ds.User) *dto.SupporterContact {
	name := strings.TrimSpace(u.FamilyNameKana + " " + u.FirstNameKana)
	if name == "" {
		name = strings.TrimSpace(u.FamilyName + " " + u.FirstName)
	}
	return &dto.SupporterContact{
		Name:        name,
		PhoneNumber: u.PhoneNumber,
		Note:        u.Bio,
		AvatarURL:   e.avatarURL(ctx, u),
	}
}

func (e *Engine) avatarURL(ctx context.Context, u *ds.User) string {
	if e.avatars == nil || u.ProfileImageKey == nil || *u.ProfileImageKey == "" {
		return ""
	}
	url, err := e.avatars.AvatarURL(ctx, *u.ProfileImageKey)
	if err != nil {
		logrus.WithError(err).WithField("user_id", u.ID).Warn("failed to sign avatar url")
		return ""
	}
	return url
}
